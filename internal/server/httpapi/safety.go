package httpapi

import (
	"github.com/gofiber/fiber/v2"
)

type blockRequest struct {
	BlockedID string `json:"blockedId"`
}

func (s *Server) handleBlock(c *fiber.Ctx) error {
	var req blockRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	if err := s.safety.Block(c.Context(), currentUser(c).ID, req.BlockedID); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "blocked"})
}

func (s *Server) handleUnblock(c *fiber.Ctx) error {
	if err := s.safety.Unblock(c.Context(), currentUser(c).ID, c.Params("blockedId")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "unblocked"})
}

type reportRequest struct {
	TargetType string `json:"targetType"`
	TargetID   string `json:"targetId"`
	Reason     string `json:"reason"`
}

func (s *Server) handleReport(c *fiber.Ctx) error {
	var req reportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	report, err := s.safety.Report(c.Context(), currentUser(c).ID, req.TargetType, req.TargetID, req.Reason)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"report": report})
}
