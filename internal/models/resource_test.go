package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResourceFilterMatch(t *testing.T) {
	r := Resource{
		Types:       []string{"shelter", "food"},
		Title:       "Church Hall",
		Description: "Cots and hot meals",
		Location:    "Main St, Springfield",
		Available:   false,
	}

	tests := []struct {
		name   string
		filter ResourceFilter
		want   bool
	}{
		{"zero filter", ResourceFilter{}, true},
		{"any selected type present", ResourceFilter{Types: []string{"water", "food"}}, true},
		{"no selected type present", ResourceFilter{Types: []string{"medical"}}, false},
		{"title case-insensitive", ResourceFilter{Query: "church"}, true},
		{"description substring", ResourceFilter{Query: "HOT MEAL"}, true},
		{"location substring", ResourceFilter{Query: "springfield"}, true},
		{"query miss", ResourceFilter{Query: "boat"}, false},
		{"available only excludes unavailable", ResourceFilter{AvailableOnly: true}, false},
		{"combined", ResourceFilter{Types: []string{"shelter"}, Query: "main"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Match(r))
		})
	}

	r.Available = true
	assert.True(t, ResourceFilter{AvailableOnly: true}.Match(r))
}

func TestResourceCloneIsDeep(t *testing.T) {
	capacity := 4
	email := "a@b.org"
	r := Resource{Types: []string{"shelter"}, ImageURLs: []string{"x"}, Capacity: &capacity, Email: &email}

	c := r.Clone()
	c.Types[0] = "food"
	c.ImageURLs[0] = "y"
	*c.Capacity = 9
	*c.Email = "z@z.org"

	assert.Equal(t, "shelter", r.Types[0])
	assert.Equal(t, "x", r.ImageURLs[0])
	assert.Equal(t, 4, *r.Capacity)
	assert.Equal(t, "a@b.org", *r.Email)
}

func TestIsResourceType(t *testing.T) {
	assert.True(t, IsResourceType("water"))
	assert.False(t, IsResourceType("Water"))
	assert.False(t, IsResourceType(""))
}

func TestUserPublic(t *testing.T) {
	u := User{ID: 3, Username: "ana", PasswordHash: "secret"}
	assert.Equal(t, Provider{ID: 3, Username: "ana"}, u.Public())
}
