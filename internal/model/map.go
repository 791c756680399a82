package model

import (
	"regexp"
	"time"
)

// Category classifies a map on the browse page.
type Category string

const (
	CategoryCasual    Category = "Casual"
	CategoryArt       Category = "Art"
	CategoryChallenge Category = "Challenge"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryCasual, CategoryArt, CategoryChallenge:
		return true
	}
	return false
}

// CodePattern matches in-game share codes, e.g. "1234-5678-9012".
var CodePattern = regexp.MustCompile(`^[0-9]{4}-[0-9]{4}-[0-9]{4}$`)

// Map is a published custom map. Images holds object-storage keys;
// public URLs are derived at read time.
type Map struct {
	ID          string
	Title       string
	Description string
	Code        string
	Category    Category
	Images      []string
	Creator     string
	LikesCount  int
	CreatedOn   time.Time
	UpdatedOn   time.Time
}

// Creator is the author summary embedded in map responses.
type Creator struct {
	ID       string `json:"_id"`
	Nickname string `json:"nickname"`
}

// MapView is the client-facing rendering of a map: image keys are
// expanded to CDN URLs and the like state of the requesting user is
// annotated.
type MapView struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Code        string    `json:"code"`
	Category    Category  `json:"category"`
	Images      []string  `json:"images"`
	Creator     Creator   `json:"creator"`
	LikesCount  int       `json:"likesCount"`
	IsLiked     bool      `json:"isLikedByCurrentUser"`
	CreatedOn   time.Time `json:"createdAt"`
	UpdatedOn   time.Time `json:"updatedAt"`
}

// MapPage is one page of browse results.
type MapPage struct {
	CurrentPage     int       `json:"currentPage"`
	TotalPages      int       `json:"totalPages"`
	TotalMaps       int       `json:"totalMaps"`
	ItemsPerPage    int       `json:"itemsPerPage"`
	HasNextPage     bool      `json:"hasNextPage"`
	HasPreviousPage bool      `json:"hasPreviousPage"`
	Maps            []MapView `json:"maps"`
}
