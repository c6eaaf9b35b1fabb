// Package models contains the row structs shared by repositories and
// services on the server side.
package models

import "time"

// User is an account row. PasswordHash is the encoded argon2id hash and is
// never serialized to clients.
type User struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	PasswordHash    string    `json:"-"`
	Phone           string    `json:"-"`
	PhoneVerified   bool      `json:"phoneVerified"`
	IsAnonymous     bool      `json:"isAnonymous"`
	ReputationScore int       `json:"reputationScore"`
	AvatarURL       string    `json:"avatarUrl"`
	CreatedAt       time.Time `json:"createdAt"`
}

// PublicProfile is the subset of User exposed to other users.
type PublicProfile struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	AvatarURL       string `json:"avatarUrl"`
	ReputationScore int    `json:"reputationScore"`
}

// Public returns the externally visible projection of the user.
func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:              u.ID,
		Username:        u.Username,
		AvatarURL:       u.AvatarURL,
		ReputationScore: u.ReputationScore,
	}
}
