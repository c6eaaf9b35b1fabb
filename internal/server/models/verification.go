package models

import "time"

// PhoneVerification is a one-time code issued for phone number
// confirmation. Rows expire quickly and are reaped by the janitor.
type PhoneVerification struct {
	ID        string
	UserID    string
	Phone     string
	Code      string
	ExpiresAt time.Time
	CreatedAt time.Time
}
