package model

import "time"

// MapLike records that a user liked a map. The (user, map) pair is
// unique.
type MapLike struct {
	ID        string
	User      string
	Map       string
	CreatedOn time.Time
}
