package httpapi

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

type connectionRequestBody struct {
	ReceiverID    string `json:"receiverId"`
	AudioIntroURL string `json:"audioIntroUrl"`
}

func (s *Server) handleConnectionRequest(c *fiber.Ctx) error {
	var req connectionRequestBody
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	created, err := s.connections.Request(c.Context(), currentUser(c), req.ReceiverID, req.AudioIntroURL)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"request": created})
}

func (s *Server) handleIncomingRequests(c *fiber.Ctx) error {
	reqs, err := s.connections.Incoming(c.Context(), currentUser(c).ID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"requests": reqs})
}

func (s *Server) handleConnectionRespond(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request id"})
	}

	status, err := s.connections.Respond(c.Context(), currentUser(c), id, c.Params("action"))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"status": status})
}
