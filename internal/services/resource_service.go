package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/baharkarakas/reliefshare/internal/api/validate"
	"github.com/baharkarakas/reliefshare/internal/events"
	"github.com/baharkarakas/reliefshare/internal/images"
	"github.com/baharkarakas/reliefshare/internal/metrics"
	"github.com/baharkarakas/reliefshare/internal/models"
	repo "github.com/baharkarakas/reliefshare/internal/repository"
)

type CreateResourceInput struct {
	Types       []string `json:"types" validate:"required,min=1,dive,resourcetype"`
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Location    string   `json:"location" validate:"required"`
	Latitude    *string  `json:"latitude"`
	Longitude   *string  `json:"longitude"`
	Capacity    *int     `json:"capacity" validate:"omitempty,min=0"`
	Email       *string  `json:"email" validate:"omitempty,email"`
	Phone       *string  `json:"phone"`
	Available   *bool    `json:"available"`
}

// UpdateResourceInput carries only the fields present in the request. For the
// nullable string fields an empty value clears the column.
type UpdateResourceInput struct {
	Types         *[]string
	Title         *string
	Description   *string
	Location      *string
	Latitude      *string
	Longitude     *string
	Capacity      *int
	ClearCapacity bool
	Email         *string
	Phone         *string
	Available     *bool
}

type resourceEvent struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"userId"`
}

type ResourceService struct {
	resources repo.Resources
	users     repo.Users
	events    events.Publisher
}

func NewResourceService(resources repo.Resources, users repo.Users, pub events.Publisher) *ResourceService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &ResourceService{resources: resources, users: users, events: pub}
}

// ListAll returns every matching listing with its provider attached. The
// provider is nil when the owner row no longer exists.
func (s *ResourceService) ListAll(ctx context.Context, f models.ResourceFilter) ([]models.ResourceWithProvider, error) {
	rs, err := s.resources.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	seen := make(map[int64]struct{}, len(rs))
	ids := make([]int64, 0, len(rs))
	for _, r := range rs {
		if _, ok := seen[r.UserID]; !ok {
			seen[r.UserID] = struct{}{}
			ids = append(ids, r.UserID)
		}
	}
	owners, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load providers: %w", err)
	}
	out := make([]models.ResourceWithProvider, 0, len(rs))
	for _, r := range rs {
		item := models.ResourceWithProvider{Resource: r}
		if u, ok := owners[r.UserID]; ok {
			p := u.Public()
			item.Provider = &p
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *ResourceService) ListOwned(ctx context.Context, userID int64) ([]models.Resource, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	rs, err := s.resources.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list owned resources: %w", err)
	}
	return rs, nil
}

func (s *ResourceService) Create(ctx context.Context, userID int64, in CreateResourceInput, uploads []images.Upload) (models.Resource, error) {
	if userID == 0 {
		return models.Resource{}, ErrUnauthenticated
	}
	normalize(&in)
	urls, err := check(in, uploads)
	if err != nil {
		return models.Resource{}, err
	}
	r := models.Resource{
		UserID:      userID,
		Types:       in.Types,
		Title:       in.Title,
		Description: in.Description,
		Location:    in.Location,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		Capacity:    in.Capacity,
		Email:       in.Email,
		Phone:       in.Phone,
		ImageURLs:   urls,
		Available:   true,
	}
	if in.Available != nil {
		r.Available = *in.Available
	}
	created, err := s.resources.Create(ctx, r)
	if err != nil {
		return models.Resource{}, fmt.Errorf("create resource: %w", err)
	}
	metrics.ResourceOps.WithLabelValues("create").Inc()
	events.Emit(ctx, s.events, events.ResourceCreated, resourceEvent{ID: created.ID, UserID: userID})
	return created, nil
}

// Update merges the present fields onto the stored listing, validates the
// result and appends any new images after the existing ones.
func (s *ResourceService) Update(ctx context.Context, userID, id int64, in UpdateResourceInput, uploads []images.Upload) (models.Resource, error) {
	r, err := s.authorize(ctx, userID, id)
	if err != nil {
		return models.Resource{}, err
	}
	merged := CreateResourceInput{
		Types:       r.Types,
		Title:       r.Title,
		Description: r.Description,
		Location:    r.Location,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		Capacity:    r.Capacity,
		Email:       r.Email,
		Phone:       r.Phone,
	}
	if in.Types != nil {
		merged.Types = *in.Types
	}
	setStr(&merged.Title, in.Title)
	setStr(&merged.Description, in.Description)
	setStr(&merged.Location, in.Location)
	setPtr(&merged.Latitude, in.Latitude)
	setPtr(&merged.Longitude, in.Longitude)
	setPtr(&merged.Email, in.Email)
	setPtr(&merged.Phone, in.Phone)
	if in.ClearCapacity {
		merged.Capacity = nil
	} else if in.Capacity != nil {
		merged.Capacity = in.Capacity
	}
	normalize(&merged)
	urls, err := check(merged, uploads)
	if err != nil {
		return models.Resource{}, err
	}

	r.Types = merged.Types
	r.Title = merged.Title
	r.Description = merged.Description
	r.Location = merged.Location
	r.Latitude = merged.Latitude
	r.Longitude = merged.Longitude
	r.Capacity = merged.Capacity
	r.Email = merged.Email
	r.Phone = merged.Phone
	r.ImageURLs = append(r.ImageURLs, urls...)
	if in.Available != nil {
		r.Available = *in.Available
	}

	updated, err := s.resources.Update(ctx, r)
	if errors.Is(err, repo.ErrNotFound) {
		return models.Resource{}, ErrNotFound
	}
	if err != nil {
		return models.Resource{}, fmt.Errorf("update resource: %w", err)
	}
	metrics.ResourceOps.WithLabelValues("update").Inc()
	events.Emit(ctx, s.events, events.ResourceUpdated, resourceEvent{ID: id, UserID: userID})
	return updated, nil
}

func (s *ResourceService) SetAvailability(ctx context.Context, userID, id int64, available bool) (models.Resource, error) {
	if _, err := s.authorize(ctx, userID, id); err != nil {
		return models.Resource{}, err
	}
	r, err := s.resources.SetAvailable(ctx, id, available)
	if errors.Is(err, repo.ErrNotFound) {
		return models.Resource{}, ErrNotFound
	}
	if err != nil {
		return models.Resource{}, fmt.Errorf("set availability: %w", err)
	}
	metrics.ResourceOps.WithLabelValues("availability").Inc()
	events.Emit(ctx, s.events, events.ResourceUpdated, resourceEvent{ID: id, UserID: userID})
	return r, nil
}

// Delete removes the listing. Watchlist entries pointing at it are left in
// place and skipped when watchlists are read.
func (s *ResourceService) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.authorize(ctx, userID, id); err != nil {
		return err
	}
	err := s.resources.Delete(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete resource: %w", err)
	}
	metrics.ResourceOps.WithLabelValues("delete").Inc()
	events.Emit(ctx, s.events, events.ResourceDeleted, resourceEvent{ID: id, UserID: userID})
	return nil
}

// Authorize reports whether userID may mutate listing id. Handlers call it
// before decoding a request body so that only the owner's input is parsed.
func (s *ResourceService) Authorize(ctx context.Context, userID, id int64) error {
	_, err := s.authorize(ctx, userID, id)
	return err
}

// authorize loads the listing for a mutation: unauthenticated, then missing,
// then not owned.
func (s *ResourceService) authorize(ctx context.Context, userID, id int64) (models.Resource, error) {
	if userID == 0 {
		return models.Resource{}, ErrUnauthenticated
	}
	r, err := s.resources.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return models.Resource{}, ErrNotFound
	}
	if err != nil {
		return models.Resource{}, fmt.Errorf("load resource: %w", err)
	}
	if r.UserID != userID {
		return models.Resource{}, ErrForbidden
	}
	return r, nil
}

// check validates fields and uploads together so the client sees every
// problem at once, then encodes the images.
func check(in CreateResourceInput, uploads []images.Upload) ([]string, error) {
	var errs validate.Errs
	if err := collect(&errs, validate.Struct(in)); err != nil {
		return nil, err
	}
	urls, err := images.Encode(uploads)
	if err := collect(&errs, err); err != nil {
		return nil, err
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	if urls == nil {
		urls = []string{}
	}
	return urls, nil
}

// collect appends validation failures to errs and returns any other error.
func collect(errs *validate.Errs, err error) error {
	if err == nil {
		return nil
	}
	var ve validate.Errs
	if errors.As(err, &ve) {
		*errs = append(*errs, ve...)
		return nil
	}
	return err
}

func normalize(in *CreateResourceInput) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Location = strings.TrimSpace(in.Location)
	in.Latitude = blankToNil(in.Latitude)
	in.Longitude = blankToNil(in.Longitude)
	in.Email = blankToNil(in.Email)
	in.Phone = blankToNil(in.Phone)
	types := make([]string, 0, len(in.Types))
	for _, t := range in.Types {
		types = append(types, strings.TrimSpace(t))
	}
	in.Types = types
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func setStr(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setPtr(dst **string, v *string) {
	if v != nil {
		c := *v
		*dst = &c
	}
}
