package postgres

import (
	"context"
	"time"

	"github.com/baharkarakas/reliefshare/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type sessionsRepo struct{ pool *pgxpool.Pool }

func (r *sessionsRepo) Create(ctx context.Context, s models.Session) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO sessions(id, user_id, expires_at) VALUES($1,$2,$3)`,
		s.ID, s.UserID, s.ExpiresAt,
	)
	return translate(err)
}

func (r *sessionsRepo) Get(ctx context.Context, id string) (models.Session, error) {
	var s models.Session
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, expires_at, created_at FROM sessions WHERE id=$1`, id,
	).Scan(&s.ID, &s.UserID, &s.ExpiresAt, &s.CreatedAt)
	return s, translate(err)
}

func (r *sessionsRepo) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id=$1`, id)
	return err
}

func (r *sessionsRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
