package postgres

import (
	"context"
	"fmt"

	"github.com/baharkarakas/reliefshare/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type watchlistRepo struct{ pool *pgxpool.Pool }

func (r *watchlistRepo) ListByUser(ctx context.Context, userID int64) ([]models.WatchlistEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, resource_id, created_at
		   FROM watchlist
		  WHERE user_id=$1
		  ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list watchlist: %w", err)
	}
	defer rows.Close()

	out := []models.WatchlistEntry{}
	for rows.Next() {
		var e models.WatchlistEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.ResourceID, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *watchlistRepo) Get(ctx context.Context, userID, resourceID int64) (models.WatchlistEntry, error) {
	var e models.WatchlistEntry
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, resource_id, created_at
		   FROM watchlist
		  WHERE user_id=$1 AND resource_id=$2`,
		userID, resourceID,
	).Scan(&e.ID, &e.UserID, &e.ResourceID, &e.CreatedAt)
	return e, translate(err)
}

func (r *watchlistRepo) Add(ctx context.Context, userID, resourceID int64) (models.WatchlistEntry, error) {
	var e models.WatchlistEntry
	err := r.pool.QueryRow(ctx,
		`INSERT INTO watchlist(user_id, resource_id, created_at) VALUES($1,$2,now())
		 RETURNING id, user_id, resource_id, created_at`,
		userID, resourceID,
	).Scan(&e.ID, &e.UserID, &e.ResourceID, &e.CreatedAt)
	return e, translate(err)
}

func (r *watchlistRepo) Remove(ctx context.Context, userID, resourceID int64) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM watchlist WHERE user_id=$1 AND resource_id=$2`, userID, resourceID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
