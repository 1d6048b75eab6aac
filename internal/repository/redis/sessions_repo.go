// Package redis stores sessions as expiring keys.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/baharkarakas/reliefshare/internal/models"
	repo "github.com/baharkarakas/reliefshare/internal/repository"
	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "reliefshare:session:"

func NewClient(addr, password string) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

type Sessions struct {
	rdb goredis.Cmdable
}

var _ repo.Sessions = (*Sessions)(nil)

func NewSessions(rdb goredis.Cmdable) *Sessions { return &Sessions{rdb: rdb} }

type record struct {
	UserID    int64     `json:"uid"`
	ExpiresAt time.Time `json:"exp"`
	CreatedAt time.Time `json:"iat"`
}

func (s *Sessions) Create(ctx context.Context, sess models.Session) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", sess.ID)
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now()
	}
	b, err := json.Marshal(record{UserID: sess.UserID, ExpiresAt: sess.ExpiresAt, CreatedAt: sess.CreatedAt})
	if err != nil {
		return err
	}
	ok, err := s.rdb.SetNX(ctx, keyPrefix+sess.ID, b, ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return repo.ErrDuplicate
	}
	return nil
}

func (s *Sessions) Get(ctx context.Context, id string) (models.Session, error) {
	b, err := s.rdb.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, goredis.Nil) {
		return models.Session{}, repo.ErrNotFound
	}
	if err != nil {
		return models.Session{}, err
	}
	var rec record
	if err := json.Unmarshal(b, &rec); err != nil {
		return models.Session{}, fmt.Errorf("decode session %s: %w", id, err)
	}
	return models.Session{ID: id, UserID: rec.UserID, ExpiresAt: rec.ExpiresAt, CreatedAt: rec.CreatedAt}, nil
}

func (s *Sessions) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, keyPrefix+id).Err()
}

// DeleteExpired is a no-op: redis evicts keys when their TTL lapses.
func (s *Sessions) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}
