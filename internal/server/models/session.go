package models

import "time"

// Session is a server-side login session row. The Token value is what the
// cookie carries; ExpiresAt bounds its validity.
type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
}

// Expired reports whether the session is past its validity window.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
