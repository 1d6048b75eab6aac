package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/reliefshare/internal/api/validate"
	"github.com/baharkarakas/reliefshare/internal/events"
	"github.com/baharkarakas/reliefshare/internal/images"
	"github.com/baharkarakas/reliefshare/internal/models"
	"github.com/baharkarakas/reliefshare/internal/repository/memory"
	"github.com/baharkarakas/reliefshare/internal/worker"
)

type recorder struct {
	mu       sync.Mutex
	subjects []string
}

func (r *recorder) Publish(_ context.Context, subject string, _ any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subjects = append(r.subjects, subject)
	return nil
}

func (r *recorder) count(subject string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.subjects {
		if s == subject {
			n++
		}
	}
	return n
}

type fixture struct {
	repos     memory.Repositories
	users     *UserService
	resources *ResourceService
	watchlist *WatchlistService
	events    *recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := memory.NewRepositories()
	pool := worker.NewPool(4)
	t.Cleanup(pool.Stop)
	rec := &recorder{}
	return &fixture{
		repos:     repos,
		users:     NewUserService(repos.Users),
		resources: NewResourceService(repos.Resources, repos.Users, rec),
		watchlist: NewWatchlistService(repos.Watchlist, repos.Resources, pool, rec),
		events:    rec,
	}
}

func (f *fixture) user(t *testing.T, name string) models.User {
	t.Helper()
	u, err := f.repos.Users.Create(context.Background(), name, "x")
	require.NoError(t, err)
	return u
}

func validInput() CreateResourceInput {
	return CreateResourceInput{
		Types:       []string{"shelter", "food"},
		Title:       "Community hall",
		Description: "Beds for 10",
		Location:    "Main St",
	}
}

func ptr[T any](v T) *T { return &v }

func fields(t *testing.T, err error) []string {
	t.Helper()
	var errs validate.Errs
	require.True(t, errors.As(err, &errs), "want validation error, got %v", err)
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Field)
	}
	return out
}

func TestRegisterAndAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.users.Register(ctx, "  alice ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.NotEqual(t, "secret1", u.PasswordHash)

	_, err = f.users.Register(ctx, "alice", "secret2")
	assert.ErrorIs(t, err, ErrConflict)

	got, err := f.users.Authenticate(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = f.users.Authenticate(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.users.Authenticate(ctx, "nobody", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.users.Register(context.Background(), "ab", "123")
	assert.ElementsMatch(t, []string{"username", "password"}, fields(t, err))
}

func TestRegisterPasswordLength(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.Register(ctx, "alice", strings.Repeat("p", 80))
	assert.Equal(t, []string{"password"}, fields(t, err))

	// 40 runes pass the length tag but are 80 bytes, over bcrypt's limit.
	_, err = f.users.Register(ctx, "alice", strings.Repeat("é", 40))
	assert.Equal(t, []string{"password"}, fields(t, err))

	_, err = f.users.Register(ctx, "alice", strings.Repeat("p", 72))
	assert.NoError(t, err)
}

func TestCreateDefaults(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "a")
	in := validInput()
	in.Email = ptr("")
	in.Phone = ptr("  ")
	in.Capacity = ptr(10)

	r, err := f.resources.Create(context.Background(), a.ID, in, nil)
	require.NoError(t, err)
	assert.True(t, r.Available)
	assert.Equal(t, a.ID, r.UserID)
	assert.Nil(t, r.Email)
	assert.Nil(t, r.Phone)
	require.NotNil(t, r.Capacity)
	assert.Equal(t, 10, *r.Capacity)
	assert.NotNil(t, r.ImageURLs)
	assert.Empty(t, r.ImageURLs)
	assert.Equal(t, []string{"resources.created"}, f.events.subjects)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "a")
	ctx := context.Background()

	tests := []struct {
		name  string
		edit  func(*CreateResourceInput)
		field string
	}{
		{"no types", func(in *CreateResourceInput) { in.Types = nil }, "types"},
		{"empty types", func(in *CreateResourceInput) { in.Types = []string{} }, "types"},
		{"unknown type", func(in *CreateResourceInput) { in.Types = []string{"food", "boats"} }, "types[1]"},
		{"blank title", func(in *CreateResourceInput) { in.Title = "  " }, "title"},
		{"negative capacity", func(in *CreateResourceInput) { in.Capacity = ptr(-1) }, "capacity"},
		{"bad email", func(in *CreateResourceInput) { in.Email = ptr("nope") }, "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.edit(&in)
			_, err := f.resources.Create(ctx, a.ID, in, nil)
			assert.Contains(t, fields(t, err), tt.field)
		})
	}

	all, err := f.resources.ListAll(ctx, models.ResourceFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateRejectsBadUploads(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "a")
	ctx := context.Background()

	_, err := f.resources.Create(ctx, a.ID, validInput(), []images.Upload{{Filename: "a.pdf", ContentType: "application/pdf", Data: []byte("x")}})
	assert.Contains(t, fields(t, err), "images[0]")

	six := make([]images.Upload, 6)
	for i := range six {
		six[i] = images.Upload{ContentType: "image/png", Data: []byte{1}}
	}
	_, err = f.resources.Create(ctx, a.ID, validInput(), six)
	assert.Contains(t, fields(t, err), "images")

	big := images.Upload{ContentType: "image/png", Data: make([]byte, images.MaxFileSize+1)}
	_, err = f.resources.Create(ctx, a.ID, validInput(), []images.Upload{big})
	assert.Contains(t, fields(t, err), "images[0]")

	owned, err := f.resources.ListOwned(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, owned)
}

func TestCreateRequiresUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.resources.Create(context.Background(), 0, validInput(), nil)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestListAllAttachesProvider(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "alice")
	ctx := context.Background()
	_, err := f.resources.Create(ctx, a.ID, validInput(), nil)
	require.NoError(t, err)
	orphan, err := f.repos.Resources.Create(ctx, models.Resource{UserID: 999, Types: []string{"other"}, Title: "t", Available: true})
	require.NoError(t, err)

	all, err := f.resources.ListAll(ctx, models.ResourceFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.NotNil(t, all[0].Provider)
	assert.Equal(t, models.Provider{ID: a.ID, Username: "alice"}, *all[0].Provider)
	assert.Equal(t, orphan.ID, all[1].ID)
	assert.Nil(t, all[1].Provider)

	food, err := f.resources.ListAll(ctx, models.ResourceFilter{Types: []string{"food"}})
	require.NoError(t, err)
	assert.Len(t, food, 1)
}

func TestGuardOrder(t *testing.T) {
	f := newFixture(t)
	a, b := f.user(t, "a"), f.user(t, "b")
	ctx := context.Background()
	r, err := f.resources.Create(ctx, a.ID, validInput(), nil)
	require.NoError(t, err)

	_, err = f.resources.SetAvailability(ctx, 0, 12345, false)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = f.resources.SetAvailability(ctx, b.ID, 12345, false)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.resources.Update(ctx, b.ID, r.ID, UpdateResourceInput{Title: ptr("mine")}, nil)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, f.resources.Delete(ctx, b.ID, r.ID), ErrForbidden)

	got, err := f.repos.Resources.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r, got)
}

func TestUpdateAppendsImagesAndKeepsOwner(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "a")
	ctx := context.Background()
	first := images.Upload{ContentType: "image/png", Data: []byte("one")}
	r, err := f.resources.Create(ctx, a.ID, validInput(), []images.Upload{first})
	require.NoError(t, err)
	require.Len(t, r.ImageURLs, 1)

	second := images.Upload{ContentType: "image/jpeg", Data: []byte("two")}
	up, err := f.resources.Update(ctx, a.ID, r.ID, UpdateResourceInput{
		Title:         ptr("Renamed"),
		Phone:         ptr("555"),
		ClearCapacity: true,
	}, []images.Upload{second})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", up.Title)
	assert.Equal(t, r.Description, up.Description)
	assert.Equal(t, a.ID, up.UserID)
	assert.Equal(t, r.CreatedAt, up.CreatedAt)
	require.NotNil(t, up.Phone)
	assert.Equal(t, "555", *up.Phone)
	assert.Nil(t, up.Capacity)
	assert.Equal(t, []string{r.ImageURLs[0], images.DataURI(second)}, up.ImageURLs)

	_, err = f.resources.Update(ctx, a.ID, r.ID, UpdateResourceInput{Types: ptr([]string{})}, nil)
	assert.Contains(t, fields(t, err), "types")
}

func TestSetAvailabilityOnlyTouchesAvailable(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "a")
	ctx := context.Background()
	r, err := f.resources.Create(ctx, a.ID, validInput(), nil)
	require.NoError(t, err)

	got, err := f.resources.SetAvailability(ctx, a.ID, r.ID, false)
	require.NoError(t, err)
	want := r
	want.Available = false
	assert.Equal(t, want, got)
}

func TestWatchlistLifecycle(t *testing.T) {
	f := newFixture(t)
	a, b := f.user(t, "a"), f.user(t, "b")
	ctx := context.Background()
	r1, err := f.resources.Create(ctx, a.ID, validInput(), nil)
	require.NoError(t, err)
	r2, err := f.resources.Create(ctx, a.ID, validInput(), nil)
	require.NoError(t, err)

	_, err = f.watchlist.Add(ctx, b.ID, 4242)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.watchlist.Add(ctx, b.ID, r2.ID)
	require.NoError(t, err)
	_, err = f.watchlist.Add(ctx, b.ID, r1.ID)
	require.NoError(t, err)
	_, err = f.watchlist.Add(ctx, b.ID, r1.ID)
	assert.ErrorIs(t, err, ErrConflict)

	list, err := f.watchlist.List(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, r2.ID, list[0].ID)
	assert.Equal(t, r1.ID, list[1].ID)
	assert.True(t, list[0].IsWatched)

	require.NoError(t, f.resources.Delete(ctx, a.ID, r2.ID))
	list, err = f.watchlist.List(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, r1.ID, list[0].ID)

	require.NoError(t, f.watchlist.Remove(ctx, b.ID, r1.ID))
	require.NoError(t, f.watchlist.Remove(ctx, b.ID, r1.ID))
	assert.Equal(t, 1, f.events.count(events.WatchlistRemoved))
	list, err = f.watchlist.List(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.watchlist.List(ctx, 0)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
