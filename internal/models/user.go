package models

import (
	"time"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
}

// Provider is the public projection of a User attached to listings.
type Provider struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func (u User) Public() Provider {
	return Provider{ID: u.ID, Username: u.Username}
}
