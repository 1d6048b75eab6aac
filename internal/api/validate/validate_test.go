package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Types    []string `json:"types" validate:"required,min=1,dive,resourcetype"`
	Title    string   `json:"title" validate:"required"`
	Capacity *int     `json:"capacity" validate:"omitempty,min=0"`
	Email    *string  `json:"email" validate:"omitempty,email"`
}

func TestStructCollectsFieldErrors(t *testing.T) {
	neg := -1
	bad := "not-an-email"
	err := Struct(sample{Types: []string{"food", "lava"}, Capacity: &neg, Email: &bad})
	require.Error(t, err)

	var errs Errs
	require.True(t, errors.As(err, &errs))

	byField := map[string]string{}
	for _, e := range errs {
		byField[e.Field] = e.Msg
	}
	assert.Equal(t, "must be one of: shelter, supplies, transportation, medical, food, water, other", byField["types[1]"])
	assert.Equal(t, "required", byField["title"])
	assert.Equal(t, "must be >= 0", byField["capacity"])
	assert.Equal(t, "must be a valid email address", byField["email"])
}

func TestStructEmptySlice(t *testing.T) {
	err := Struct(sample{Types: []string{}, Title: "x"})
	var errs Errs
	require.True(t, errors.As(err, &errs))
	require.Len(t, errs, 1)
	assert.Equal(t, "types", errs[0].Field)
}

func TestStructValid(t *testing.T) {
	zero := 0
	email := "help@example.org"
	assert.NoError(t, Struct(sample{Types: []string{"water"}, Title: "x", Capacity: &zero, Email: &email}))
}

func TestErrsHelpers(t *testing.T) {
	var errs Errs
	assert.NoError(t, errs.Err())
	errs.Add("a", "bad")
	errs.Add("b", "worse")
	assert.EqualError(t, errs.Err(), "a: bad; b: worse")
}
