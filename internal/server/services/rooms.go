package services

import (
	"time"

	"github.com/echosphere/echosphere/internal/common"
	"github.com/echosphere/echosphere/internal/server/config"
	"github.com/golang-jwt/jwt/v5"
)

// roomTokenValidity bounds how long a join token stays usable. Joining the
// room keeps working past this point; only the handshake is time-limited.
const roomTokenValidity = 10 * time.Minute

// videoGrant mirrors the claim shape SFU media servers expect.
type videoGrant struct {
	RoomJoin     bool   `json:"roomJoin"`
	Room         string `json:"room"`
	CanPublish   bool   `json:"canPublish"`
	CanSubscribe bool   `json:"canSubscribe"`
}

type roomClaims struct {
	jwt.RegisteredClaims
	Name  string     `json:"name,omitempty"`
	Video videoGrant `json:"video"`
}

// RoomService issues signed join tokens for live voice rooms.
type RoomService struct {
	config *config.Config
}

func NewRoomService(cfg *config.Config) *RoomService {
	return &RoomService{config: cfg}
}

// JoinToken signs an HS256 token granting identity publish and subscribe
// access to the named room.
func (s *RoomService) JoinToken(roomName, identity, participantName string) (string, error) {
	if roomName == "" || identity == "" {
		return "", common.ErrorValidation
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, roomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(roomTokenValidity)),
		},
		Name: participantName,
		Video: videoGrant{
			RoomJoin:     true,
			Room:         roomName,
			CanPublish:   true,
			CanSubscribe: true,
		},
	})

	signed, err := token.SignedString([]byte(s.config.RoomSecretKey))
	if err != nil {
		return "", common.ErrorInternal
	}

	return signed, nil
}

// ParseJoinToken verifies a join token and returns the identity it was
// issued to. Used by tests and by any co-located media bridge.
func (s *RoomService) ParseJoinToken(tokenString string) (string, error) {
	claims := &roomClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.config.RoomSecretKey), nil
	})
	if err != nil {
		return "", common.ErrInvalidToken
	}
	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	return claims.Subject, nil
}
