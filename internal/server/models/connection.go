package models

import "time"

// Connection request lifecycle states.
const (
	RequestPending  = "PENDING"
	RequestAccepted = "ACCEPTED"
	RequestIgnored  = "IGNORED"
	RequestBlocked  = "BLOCKED"
)

// ConnectionRequest is a gated voice-intro request between two users.
type ConnectionRequest struct {
	ID            int64     `json:"id"`
	SenderID      string    `json:"senderId"`
	ReceiverID    string    `json:"receiverId"`
	Status        string    `json:"status"`
	AudioIntroURL string    `json:"audioIntroUrl,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// IncomingRequest is a pending request joined with the sender's public
// profile, as returned by the inbox query.
type IncomingRequest struct {
	ID            int64         `json:"id"`
	Status        string        `json:"status"`
	AudioIntroURL string        `json:"audioIntroUrl,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	Sender        PublicProfile `json:"sender"`
}
