package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/baharkarakas/reliefshare/internal/models"
	repo "github.com/baharkarakas/reliefshare/internal/repository"
	"github.com/google/uuid"
)

var ErrNoSession = errors.New("no valid session")

// SessionManager issues and validates server-side sessions. The cookie value
// is a signed token naming the stored session; deleting the row revokes it.
type SessionManager struct {
	store  repo.Sessions
	signer *TokenSigner
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionManager(store repo.Sessions, signer *TokenSigner, ttl time.Duration) *SessionManager {
	return &SessionManager{store: store, signer: signer, ttl: ttl, now: time.Now}
}

func (m *SessionManager) Create(ctx context.Context, userID int64) (string, time.Time, error) {
	now := m.now()
	s := models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: now.Add(m.ttl),
		CreatedAt: now,
	}
	if err := m.store.Create(ctx, s); err != nil {
		return "", time.Time{}, fmt.Errorf("store session: %w", err)
	}
	token, err := m.signer.Sign(s.ID, userID, s.ExpiresAt)
	if err != nil {
		_ = m.store.Delete(ctx, s.ID)
		return "", time.Time{}, err
	}
	return token, s.ExpiresAt, nil
}

// Resolve returns the live session behind token, or ErrNoSession. Storage
// failures are returned as-is so callers can tell them apart.
func (m *SessionManager) Resolve(ctx context.Context, token string) (models.Session, error) {
	if token == "" {
		return models.Session{}, ErrNoSession
	}
	sid, uid, err := m.signer.Parse(token)
	if err != nil {
		return models.Session{}, ErrNoSession
	}
	s, err := m.store.Get(ctx, sid)
	if errors.Is(err, repo.ErrNotFound) {
		return models.Session{}, ErrNoSession
	}
	if err != nil {
		return models.Session{}, err
	}
	if s.UserID != uid || s.Expired(m.now()) {
		return models.Session{}, ErrNoSession
	}
	return s, nil
}

// Destroy removes the session behind token. Unknown or malformed tokens are ignored.
func (m *SessionManager) Destroy(ctx context.Context, token string) error {
	sid, _, err := m.signer.Parse(token)
	if err != nil {
		return nil
	}
	return m.store.Delete(ctx, sid)
}

func (m *SessionManager) Prune(ctx context.Context) (int64, error) {
	return m.store.DeleteExpired(ctx, m.now())
}
