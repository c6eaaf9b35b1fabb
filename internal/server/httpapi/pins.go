package httpapi

import (
	"github.com/echosphere/echosphere/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

type createPinRequest struct {
	Title               string  `json:"title"`
	AudioURL            string  `json:"audioUrl"`
	Lat                 float64 `json:"lat"`
	Lng                 float64 `json:"lng"`
	LocationName        string  `json:"locationName"`
	IsAnonymous         bool    `json:"isAnonymous"`
	VoiceMaskingEnabled bool    `json:"voiceMaskingEnabled"`
}

func (s *Server) handleCreatePin(c *fiber.Ctx) error {
	var req createPinRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	pin, err := s.pins.Create(c.Context(), currentUser(c).ID, services.CreatePinInput{
		Title:               req.Title,
		AudioURL:            req.AudioURL,
		Lat:                 req.Lat,
		Lng:                 req.Lng,
		LocationName:        req.LocationName,
		IsAnonymous:         req.IsAnonymous,
		VoiceMaskingEnabled: req.VoiceMaskingEnabled,
	})
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"pin": pin})
}

func (s *Server) handleNearbyPins(c *fiber.Ctx) error {
	lat := c.QueryFloat("lat")
	lng := c.QueryFloat("lng")
	radius := c.QueryFloat("radius")

	if !c.Context().QueryArgs().Has("lat") || !c.Context().QueryArgs().Has("lng") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "lat and lng are required"})
	}

	pins, err := s.pins.Nearby(c.Context(), lat, lng, radius)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"pins": pins})
}
