package realtime

import (
	"encoding/json"

	"github.com/echosphere/echosphere/internal/server/models"
)

// Frame type discriminators on the wire.
const (
	TypeIdentify       = "IDENTIFY"
	TypeLocationUpdate = "LOCATION_UPDATE"
	TypeUserMoved      = "USER_MOVED"
	TypeNotification   = "NOTIFICATION"
	TypeNewPin         = "new_pin"
)

// Notification payload kinds.
const (
	NotifyConnectionRequest  = "CONNECTION_REQUEST"
	NotifyConnectionAccepted = "CONNECTION_ACCEPTED"
)

// envelope is the shape of every inbound client frame.
type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// identifyPayload is the body of an IDENTIFY frame.
type identifyPayload struct {
	UserID string `json:"userId"`
}

// locationPayload is the body of a LOCATION_UPDATE frame.
type locationPayload struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Outbound is a server→client frame. Each variant knows its own wire shape,
// so callers cannot produce a frame with a mismatched type/payload pair.
type Outbound interface {
	MarshalFrame() ([]byte, error)
}

// UserMoved is the broadcast sent to other sockets when a client reports a
// location update.
type UserMoved struct {
	UserID string  `json:"userId,omitempty"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
}

func (m UserMoved) MarshalFrame() ([]byte, error) {
	return json.Marshal(struct {
		Type    string    `json:"type"`
		Payload UserMoved `json:"payload"`
	}{TypeUserMoved, m})
}

// Notification is a targeted push to a single identity, e.g. an incoming
// connection request.
type Notification struct {
	Kind      string                `json:"type"`
	Sender    *models.PublicProfile `json:"sender,omitempty"`
	RequestID int64                 `json:"requestId,omitempty"`
	UserID    string                `json:"userId,omitempty"`
	Username  string                `json:"username,omitempty"`
}

func (m Notification) MarshalFrame() ([]byte, error) {
	return json.Marshal(struct {
		Type    string       `json:"type"`
		Payload Notification `json:"payload"`
	}{TypeNotification, m})
}

// NewPin announces a freshly dropped pin to every connected socket. The pin
// rides at the top level of the frame, not under payload, matching what the
// map client consumes.
type NewPin struct {
	Pin *models.Pin
}

func (m NewPin) MarshalFrame() ([]byte, error) {
	return json.Marshal(struct {
		Type string      `json:"type"`
		Pin  *models.Pin `json:"pin"`
	}{TypeNewPin, m.Pin})
}
