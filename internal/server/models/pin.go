package models

import "time"

// Pin is a geotagged audio post. Lat/Lng hold the true drop location and are
// never exposed for discovery; FuzzyLat/FuzzyLng carry the privacy-jittered
// coordinate that public queries and broadcasts use.
type Pin struct {
	ID                  int64     `json:"id"`
	CreatorID           string    `json:"creatorId,omitempty"`
	Title               string    `json:"title,omitempty"`
	AudioURL            string    `json:"audioUrl"`
	Lat                 float64   `json:"-"`
	Lng                 float64   `json:"-"`
	FuzzyLat            float64   `json:"lat"`
	FuzzyLng            float64   `json:"lng"`
	LocationName        string    `json:"locationName,omitempty"`
	IsAnonymousPost     bool      `json:"isAnonymous"`
	VoiceMaskingEnabled bool      `json:"voiceMaskingEnabled"`
	IsHidden            bool      `json:"-"`
	ExpiresAt           time.Time `json:"expiresAt"`
	CreatedAt           time.Time `json:"createdAt"`
}
