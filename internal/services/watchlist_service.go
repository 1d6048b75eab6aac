package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/baharkarakas/reliefshare/internal/events"
	"github.com/baharkarakas/reliefshare/internal/metrics"
	"github.com/baharkarakas/reliefshare/internal/models"
	repo "github.com/baharkarakas/reliefshare/internal/repository"
	"github.com/baharkarakas/reliefshare/internal/worker"
)

type watchlistEvent struct {
	UserID     int64 `json:"userId"`
	ResourceID int64 `json:"resourceId"`
}

type WatchlistService struct {
	watchlist repo.Watchlist
	resources repo.Resources
	pool      *worker.Pool
	events    events.Publisher
}

func NewWatchlistService(w repo.Watchlist, r repo.Resources, pool *worker.Pool, pub events.Publisher) *WatchlistService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &WatchlistService{watchlist: w, resources: r, pool: pool, events: pub}
}

// List resolves the user's entries in insertion order. Entries whose listing
// has been deleted are skipped.
func (s *WatchlistService) List(ctx context.Context, userID int64) ([]models.WatchedResource, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	entries, err := s.watchlist.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list watchlist: %w", err)
	}

	slots := make([]*models.Resource, len(entries))
	resolve := func(ctx context.Context, i int) error {
		r, err := s.resources.GetByID(ctx, entries[i].ResourceID)
		if errors.Is(err, repo.ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("load watched resource %d: %w", entries[i].ResourceID, err)
		}
		slots[i] = &r
		return nil
	}
	if s.pool != nil {
		err = s.pool.Each(ctx, len(entries), resolve)
	} else {
		for i := range entries {
			if err = resolve(ctx, i); err != nil {
				break
			}
		}
	}
	if err != nil {
		return nil, err
	}

	out := make([]models.WatchedResource, 0, len(entries))
	for _, r := range slots {
		if r != nil {
			out = append(out, models.WatchedResource{Resource: *r, IsWatched: true})
		}
	}
	return out, nil
}

func (s *WatchlistService) Add(ctx context.Context, userID, resourceID int64) (models.WatchlistEntry, error) {
	if userID == 0 {
		return models.WatchlistEntry{}, ErrUnauthenticated
	}
	if _, err := s.resources.GetByID(ctx, resourceID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return models.WatchlistEntry{}, ErrNotFound
		}
		return models.WatchlistEntry{}, fmt.Errorf("load resource: %w", err)
	}
	_, err := s.watchlist.Get(ctx, userID, resourceID)
	if err == nil {
		metrics.WatchlistOps.WithLabelValues("add", "duplicate").Inc()
		return models.WatchlistEntry{}, fmt.Errorf("already in watchlist: %w", ErrConflict)
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return models.WatchlistEntry{}, fmt.Errorf("check watchlist: %w", err)
	}
	e, err := s.watchlist.Add(ctx, userID, resourceID)
	if errors.Is(err, repo.ErrDuplicate) {
		metrics.WatchlistOps.WithLabelValues("add", "duplicate").Inc()
		return models.WatchlistEntry{}, fmt.Errorf("already in watchlist: %w", ErrConflict)
	}
	if err != nil {
		return models.WatchlistEntry{}, fmt.Errorf("add to watchlist: %w", err)
	}
	metrics.WatchlistOps.WithLabelValues("add", "ok").Inc()
	events.Emit(ctx, s.events, events.WatchlistAdded, watchlistEvent{UserID: userID, ResourceID: resourceID})
	return e, nil
}

// Remove is idempotent; removing an absent entry succeeds without an event.
func (s *WatchlistService) Remove(ctx context.Context, userID, resourceID int64) error {
	if userID == 0 {
		return ErrUnauthenticated
	}
	removed, err := s.watchlist.Remove(ctx, userID, resourceID)
	if err != nil {
		return fmt.Errorf("remove from watchlist: %w", err)
	}
	if !removed {
		metrics.WatchlistOps.WithLabelValues("remove", "absent").Inc()
		return nil
	}
	metrics.WatchlistOps.WithLabelValues("remove", "ok").Inc()
	events.Emit(ctx, s.events, events.WatchlistRemoved, watchlistEvent{UserID: userID, ResourceID: resourceID})
	return nil
}
