package postgres

import (
	"context"
	"fmt"

	"github.com/baharkarakas/reliefshare/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type resourcesRepo struct{ pool *pgxpool.Pool }

const resourceCols = `id, user_id, types, title, description, location, latitude, longitude,
	capacity, email, phone, image_urls, available, created_at`

func scanResource(row pgx.Row) (models.Resource, error) {
	var res models.Resource
	err := row.Scan(
		&res.ID, &res.UserID, &res.Types, &res.Title, &res.Description, &res.Location,
		&res.Latitude, &res.Longitude, &res.Capacity, &res.Email, &res.Phone,
		&res.ImageURLs, &res.Available, &res.CreatedAt,
	)
	return res, err
}

func collect(rows pgx.Rows) ([]models.Resource, error) {
	defer rows.Close()
	out := []models.Resource{}
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *resourcesRepo) List(ctx context.Context, f models.ResourceFilter) ([]models.Resource, error) {
	var types []string
	if len(f.Types) > 0 {
		types = f.Types
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+resourceCols+`
		   FROM resources
		  WHERE ($1::text[] IS NULL OR types && $1::text[])
		    AND ($2::text = ''
		         OR strpos(lower(title), lower($2::text)) > 0
		         OR strpos(lower(description), lower($2::text)) > 0
		         OR strpos(lower(location), lower($2::text)) > 0)
		    AND (NOT $3::boolean OR available)
		  ORDER BY id`,
		types, f.Query, f.AvailableOnly,
	)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	return collect(rows)
}

func (r *resourcesRepo) ListByOwner(ctx context.Context, userID int64) ([]models.Resource, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+resourceCols+` FROM resources WHERE user_id=$1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list owned resources: %w", err)
	}
	return collect(rows)
}

func (r *resourcesRepo) GetByID(ctx context.Context, id int64) (models.Resource, error) {
	res, err := scanResource(r.pool.QueryRow(ctx,
		`SELECT `+resourceCols+` FROM resources WHERE id=$1`, id))
	return res, translate(err)
}

func (r *resourcesRepo) Create(ctx context.Context, in models.Resource) (models.Resource, error) {
	res, err := scanResource(r.pool.QueryRow(ctx,
		`INSERT INTO resources (
		   user_id, types, title, description, location, latitude, longitude,
		   capacity, email, phone, image_urls, available
		 ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		 RETURNING `+resourceCols,
		in.UserID, in.Types, in.Title, in.Description, in.Location, in.Latitude, in.Longitude,
		in.Capacity, in.Email, in.Phone, in.ImageURLs, in.Available,
	))
	if err != nil {
		return models.Resource{}, fmt.Errorf("create resource: %w", translate(err))
	}
	return res, nil
}

func (r *resourcesRepo) Update(ctx context.Context, in models.Resource) (models.Resource, error) {
	res, err := scanResource(r.pool.QueryRow(ctx,
		`UPDATE resources
		    SET types=$2, title=$3, description=$4, location=$5, latitude=$6, longitude=$7,
		        capacity=$8, email=$9, phone=$10, image_urls=$11, available=$12
		  WHERE id=$1
		  RETURNING `+resourceCols,
		in.ID, in.Types, in.Title, in.Description, in.Location, in.Latitude, in.Longitude,
		in.Capacity, in.Email, in.Phone, in.ImageURLs, in.Available,
	))
	return res, translate(err)
}

func (r *resourcesRepo) SetAvailable(ctx context.Context, id int64, available bool) (models.Resource, error) {
	res, err := scanResource(r.pool.QueryRow(ctx,
		`UPDATE resources SET available=$2 WHERE id=$1 RETURNING `+resourceCols, id, available))
	return res, translate(err)
}

func (r *resourcesRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM resources WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete resource: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return translate(pgx.ErrNoRows)
	}
	return nil
}
