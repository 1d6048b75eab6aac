package models

import "time"

// WatchlistEntry records that a user tracks a resource. ResourceID is a weak
// reference: the resource may have been deleted since the entry was created.
type WatchlistEntry struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"userId"`
	ResourceID int64     `json:"resourceId"`
	CreatedAt  time.Time `json:"createdAt"`
}
