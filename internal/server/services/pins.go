package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/echosphere/echosphere/internal/common"
	"github.com/echosphere/echosphere/internal/geo"
	"github.com/echosphere/echosphere/internal/logging"
	"github.com/echosphere/echosphere/internal/server/config"
	"github.com/echosphere/echosphere/internal/server/models"
	"github.com/echosphere/echosphere/internal/server/realtime"
	"github.com/echosphere/echosphere/internal/server/repositories/repomanager"
)

const (
	// DefaultDiscoveryRadiusMeters is used when the client omits a radius.
	DefaultDiscoveryRadiusMeters = 5000
	// MaxDiscoveryRadiusMeters caps how far a single query may reach.
	MaxDiscoveryRadiusMeters = 50000
	// MaxDiscoveryResults bounds one discovery response.
	MaxDiscoveryResults = 50
)

// CreatePinInput carries the validated fields of a pin drop.
type CreatePinInput struct {
	Title               string
	AudioURL            string
	Lat                 float64
	Lng                 float64
	LocationName        string
	IsAnonymous         bool
	VoiceMaskingEnabled bool
}

// PinService owns pin creation and nearby discovery.
type PinService struct {
	db       *sql.DB
	repos    repomanager.RepositoryManager
	config   *config.Config
	notifier Notifier
	log      logging.Logger
}

func NewPinService(db *sql.DB, repos repomanager.RepositoryManager, cfg *config.Config, notifier Notifier, log logging.Logger) *PinService {
	return &PinService{
		db:       db,
		repos:    repos,
		config:   cfg,
		notifier: notifier,
		log:      log.With("module", "pin_service"),
	}
}

// Create stores the pin with a privacy-fuzzed public location and a TTL,
// then broadcasts it to every connected socket. The broadcast happens only
// after the insert committed.
func (s *PinService) Create(ctx context.Context, creatorID string, in CreatePinInput) (*models.Pin, error) {
	if in.AudioURL == "" {
		return nil, common.ErrorValidation
	}
	if in.Lat < -90 || in.Lat > 90 || in.Lng < -180 || in.Lng > 180 {
		return nil, common.ErrorValidation
	}

	fuzzy := geo.Fuzz(geo.Point{Lat: in.Lat, Lng: in.Lng}, geo.DefaultJitterDegrees)

	pin := &models.Pin{
		CreatorID:           creatorID,
		Title:               in.Title,
		AudioURL:            in.AudioURL,
		Lat:                 in.Lat,
		Lng:                 in.Lng,
		FuzzyLat:            fuzzy.Lat,
		FuzzyLng:            fuzzy.Lng,
		LocationName:        in.LocationName,
		IsAnonymousPost:     in.IsAnonymous,
		VoiceMaskingEnabled: in.VoiceMaskingEnabled,
		ExpiresAt:           time.Now().Add(s.config.PinTTL),
	}

	pin, err := s.repos.Pins(s.db).Create(ctx, pin)
	if err != nil {
		return nil, common.ErrorInternal
	}

	broadcast := *pin
	if broadcast.IsAnonymousPost {
		broadcast.CreatorID = ""
	}
	s.notifier.Broadcast(ctx, realtime.NewPin{Pin: &broadcast})

	return pin, nil
}

// Nearby returns unexpired pins around the given point, fuzzed locations
// only, newest first.
func (s *PinService) Nearby(ctx context.Context, lat, lng, radiusMeters float64) ([]*models.Pin, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, common.ErrorValidation
	}
	if radiusMeters <= 0 {
		radiusMeters = DefaultDiscoveryRadiusMeters
	}
	if radiusMeters > MaxDiscoveryRadiusMeters {
		radiusMeters = MaxDiscoveryRadiusMeters
	}

	pins, err := s.repos.Pins(s.db).SelectNearby(ctx, geo.Point{Lat: lat, Lng: lng}, radiusMeters, MaxDiscoveryResults)
	if err != nil {
		return nil, common.ErrorInternal
	}

	// Discovery never leaks the creator of an anonymous post.
	for _, p := range pins {
		if p.IsAnonymousPost {
			p.CreatorID = ""
		}
	}

	return pins, nil
}
