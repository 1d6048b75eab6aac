package repository

import (
	"context"
	"errors"
	"time"

	"github.com/baharkarakas/reliefshare/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

type Users interface {
	Create(ctx context.Context, username, passwordHash string) (models.User, error)
	GetByID(ctx context.Context, id int64) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
	// GetByIDs returns the users that exist among ids, keyed by id.
	GetByIDs(ctx context.Context, ids []int64) (map[int64]models.User, error)
}

type Resources interface {
	List(ctx context.Context, f models.ResourceFilter) ([]models.Resource, error)
	ListByOwner(ctx context.Context, userID int64) ([]models.Resource, error)
	GetByID(ctx context.Context, id int64) (models.Resource, error)
	Create(ctx context.Context, r models.Resource) (models.Resource, error)
	// Update overwrites every mutable column of r. UserID and CreatedAt are never changed.
	Update(ctx context.Context, r models.Resource) (models.Resource, error)
	SetAvailable(ctx context.Context, id int64, available bool) (models.Resource, error)
	Delete(ctx context.Context, id int64) error
}

// Watchlist stores (user, resource) pairs. Entries are not removed when the
// referenced resource is deleted.
type Watchlist interface {
	ListByUser(ctx context.Context, userID int64) ([]models.WatchlistEntry, error)
	Get(ctx context.Context, userID, resourceID int64) (models.WatchlistEntry, error)
	Add(ctx context.Context, userID, resourceID int64) (models.WatchlistEntry, error)
	// Remove reports whether an entry was deleted. An absent entry is not an error.
	Remove(ctx context.Context, userID, resourceID int64) (bool, error)
}

type Sessions interface {
	Create(ctx context.Context, s models.Session) error
	Get(ctx context.Context, id string) (models.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
