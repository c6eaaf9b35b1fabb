package httpapi

import (
	"github.com/gofiber/fiber/v2"
)

type roomTokenRequest struct {
	Room string `json:"room"`
}

func (s *Server) handleRoomToken(c *fiber.Ctx) error {
	var req roomTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	user := currentUser(c)
	token, err := s.rooms.JoinToken(req.Room, user.ID, user.Username)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"token": token})
}
