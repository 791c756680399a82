package model

import "time"

// Session is a server-side login session. The opaque token doubles as
// the record key; the cookie sent to the client carries the token and
// nothing else.
type Session struct {
	Token     string
	UserID    string
	ExpiresOn time.Time
	TouchedOn time.Time
	CreatedOn time.Time
}

// Expired reports whether the session lapsed before now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresOn.After(now)
}
