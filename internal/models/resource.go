package models

import (
	"slices"
	"strings"
	"time"
)

type ResourceType string

const (
	TypeShelter        ResourceType = "shelter"
	TypeSupplies       ResourceType = "supplies"
	TypeTransportation ResourceType = "transportation"
	TypeMedical        ResourceType = "medical"
	TypeFood           ResourceType = "food"
	TypeWater          ResourceType = "water"
	TypeOther          ResourceType = "other"
)

var ResourceTypes = []ResourceType{
	TypeShelter, TypeSupplies, TypeTransportation, TypeMedical, TypeFood, TypeWater, TypeOther,
}

func IsResourceType(s string) bool {
	return slices.Contains(ResourceTypes, ResourceType(s))
}

type Resource struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	Types       []string  `json:"types"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Latitude    *string   `json:"latitude"`
	Longitude   *string   `json:"longitude"`
	Capacity    *int      `json:"capacity"`
	Email       *string   `json:"email"`
	Phone       *string   `json:"phone"`
	ImageURLs   []string  `json:"imageUrls"`
	Available   bool      `json:"available"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Clone returns a copy that shares no slices or pointers with r.
func (r Resource) Clone() Resource {
	c := r
	c.Types = slices.Clone(r.Types)
	c.ImageURLs = slices.Clone(r.ImageURLs)
	c.Latitude = cloneStr(r.Latitude)
	c.Longitude = cloneStr(r.Longitude)
	c.Email = cloneStr(r.Email)
	c.Phone = cloneStr(r.Phone)
	if r.Capacity != nil {
		n := *r.Capacity
		c.Capacity = &n
	}
	return c
}

func cloneStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

type ResourceWithProvider struct {
	Resource
	Provider *Provider `json:"provider"`
}

type WatchedResource struct {
	Resource
	IsWatched bool `json:"isWatched"`
}

// ResourceFilter narrows a listing. The zero value matches everything.
type ResourceFilter struct {
	Types         []string
	Query         string
	AvailableOnly bool
}

func (f ResourceFilter) Match(r Resource) bool {
	if len(f.Types) > 0 && !slices.ContainsFunc(r.Types, func(t string) bool { return slices.Contains(f.Types, t) }) {
		return false
	}
	if q := strings.ToLower(f.Query); q != "" &&
		!strings.Contains(strings.ToLower(r.Title), q) &&
		!strings.Contains(strings.ToLower(r.Description), q) &&
		!strings.Contains(strings.ToLower(r.Location), q) {
		return false
	}
	return r.Available || !f.AvailableOnly
}
