// Package memory holds mutex-guarded in-process repositories. They honour
// the same contracts as the postgres ones and back tests and STORAGE=memory.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/baharkarakas/reliefshare/internal/models"
	repo "github.com/baharkarakas/reliefshare/internal/repository"
)

type Repositories struct {
	Users     *Users
	Resources *Resources
	Watchlist *Watchlist
	Sessions  *Sessions
}

func NewRepositories() Repositories {
	return Repositories{
		Users:     NewUsers(),
		Resources: NewResources(),
		Watchlist: NewWatchlist(),
		Sessions:  NewSessions(),
	}
}

var now = time.Now

// ---------- users ----------

type Users struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]models.User
}

var _ repo.Users = (*Users)(nil)

func NewUsers() *Users { return &Users{byID: map[int64]models.User{}} }

func (r *Users) Create(_ context.Context, username, hash string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Username == username {
			return models.User{}, repo.ErrDuplicate
		}
	}
	r.nextID++
	u := models.User{ID: r.nextID, Username: username, PasswordHash: hash, CreatedAt: now()}
	r.byID[u.ID] = u
	return u, nil
}

func (r *Users) GetByID(_ context.Context, id int64) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return models.User{}, repo.ErrNotFound
	}
	return u, nil
}

func (r *Users) GetByUsername(_ context.Context, username string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, repo.ErrNotFound
}

func (r *Users) GetByIDs(_ context.Context, ids []int64) (map[int64]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[int64]models.User, len(ids))
	for _, id := range ids {
		if u, ok := r.byID[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

// ---------- resources ----------

type Resources struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]models.Resource
}

var _ repo.Resources = (*Resources)(nil)

func NewResources() *Resources { return &Resources{byID: map[int64]models.Resource{}} }

func (r *Resources) sorted(keep func(models.Resource) bool) []models.Resource {
	out := []models.Resource{}
	for _, res := range r.byID {
		if keep(res) {
			out = append(out, res.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Resources) List(_ context.Context, f models.ResourceFilter) ([]models.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sorted(f.Match), nil
}

func (r *Resources) ListByOwner(_ context.Context, userID int64) ([]models.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sorted(func(res models.Resource) bool { return res.UserID == userID }), nil
}

func (r *Resources) GetByID(_ context.Context, id int64) (models.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.byID[id]
	if !ok {
		return models.Resource{}, repo.ErrNotFound
	}
	return res.Clone(), nil
}

func (r *Resources) Create(_ context.Context, in models.Resource) (models.Resource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	res := in.Clone()
	res.ID = r.nextID
	res.CreatedAt = now()
	r.byID[res.ID] = res
	return res.Clone(), nil
}

func (r *Resources) Update(_ context.Context, in models.Resource) (models.Resource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[in.ID]
	if !ok {
		return models.Resource{}, repo.ErrNotFound
	}
	res := in.Clone()
	res.UserID = cur.UserID
	res.CreatedAt = cur.CreatedAt
	r.byID[res.ID] = res
	return res.Clone(), nil
}

func (r *Resources) SetAvailable(_ context.Context, id int64, available bool) (models.Resource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.byID[id]
	if !ok {
		return models.Resource{}, repo.ErrNotFound
	}
	res.Available = available
	r.byID[id] = res
	return res.Clone(), nil
}

func (r *Resources) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// ---------- watchlist ----------

type Watchlist struct {
	mu      sync.RWMutex
	nextID  int64
	entries []models.WatchlistEntry
}

var _ repo.Watchlist = (*Watchlist)(nil)

func NewWatchlist() *Watchlist { return &Watchlist{} }

func (r *Watchlist) ListByUser(_ context.Context, userID int64) ([]models.WatchlistEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.WatchlistEntry{}
	for _, e := range r.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *Watchlist) indexOf(userID, resourceID int64) int {
	return slices.IndexFunc(r.entries, func(e models.WatchlistEntry) bool {
		return e.UserID == userID && e.ResourceID == resourceID
	})
}

func (r *Watchlist) Get(_ context.Context, userID, resourceID int64) (models.WatchlistEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.indexOf(userID, resourceID); i >= 0 {
		return r.entries[i], nil
	}
	return models.WatchlistEntry{}, repo.ErrNotFound
}

func (r *Watchlist) Add(_ context.Context, userID, resourceID int64) (models.WatchlistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexOf(userID, resourceID) >= 0 {
		return models.WatchlistEntry{}, repo.ErrDuplicate
	}
	r.nextID++
	e := models.WatchlistEntry{ID: r.nextID, UserID: userID, ResourceID: resourceID, CreatedAt: now()}
	r.entries = append(r.entries, e)
	return e, nil
}

func (r *Watchlist) Remove(_ context.Context, userID, resourceID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(userID, resourceID)
	if i < 0 {
		return false, nil
	}
	r.entries = slices.Delete(r.entries, i, i+1)
	return true, nil
}

// ---------- sessions ----------

type Sessions struct {
	mu   sync.RWMutex
	byID map[string]models.Session
}

var _ repo.Sessions = (*Sessions)(nil)

func NewSessions() *Sessions { return &Sessions{byID: map[string]models.Session{}} }

func (r *Sessions) Create(_ context.Context, s models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[s.ID]; ok {
		return repo.ErrDuplicate
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now()
	}
	r.byID[s.ID] = s
	return nil
}

func (r *Sessions) Get(_ context.Context, id string) (models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byID[id]
	if !ok {
		return models.Session{}, repo.ErrNotFound
	}
	return s, nil
}

func (r *Sessions) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

func (r *Sessions) DeleteExpired(_ context.Context, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, s := range r.byID {
		if s.Expired(at) {
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}
