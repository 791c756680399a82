package model

import "time"

// User represents a player account. Accounts are created on first
// Google sign-in and keyed by the provider's subject identifier.
type User struct {
	ID           string    `json:"_id"`
	Nickname     string    `json:"nickname"`
	IsCustomName bool      `json:"isCustomName"`
	Status       string    `json:"status"`
	GoogleID     string    `json:"-"`
	Provider     string    `json:"provider"`
	DisplayName  string    `json:"displayName"`
	Email        string    `json:"email"`
	Photo        string    `json:"photo"`
	Maps         []string  `json:"maps"`
	CreatedOn    time.Time `json:"createdAt"`
	UpdatedOn    time.Time `json:"updatedAt"`
}

// PublicUser is the subset of an account visible to anyone.
type PublicUser struct {
	ID       string    `json:"_id"`
	Nickname string    `json:"nickname"`
	Status   string    `json:"status"`
	Photo    string    `json:"photo"`
	Maps     []MapView `json:"maps"`
}

// Profile is what an authenticated user sees about themselves.
type Profile struct {
	ID          string    `json:"_id"`
	Nickname    string    `json:"nickname"`
	Status      string    `json:"status"`
	DisplayName string    `json:"displayName"`
	Email       string    `json:"email"`
	Photo       string    `json:"photo"`
	Maps        []MapView `json:"maps"`
	LikedMaps   []MapView `json:"likedMaps"`
}

// UserStatus is the lightweight presence payload returned by the
// login-status endpoint. It never includes identifiers.
type UserStatus struct {
	Nickname string `json:"nickname"`
	Photo    string `json:"photo"`
}
