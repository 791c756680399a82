// Package model defines the domain types for the custom-maps API:
// user accounts, maps, likes, sessions, and the request and response
// shapes exchanged with clients.
package model
