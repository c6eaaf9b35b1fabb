package httpapi

import (
	"github.com/echosphere/echosphere/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

// maxUploadBytes caps the declared size of a single upload.
const maxUploadBytes = 10 * 1024 * 1024

type uploadURLRequest struct {
	Kind        string `json:"kind"`
	ContentType string `json:"contentType"`
	FileSize    int64  `json:"fileSize"`
}

func (s *Server) handleUploadURL(c *fiber.Ctx) error {
	req := uploadURLRequest{Kind: services.UploadKindPin, ContentType: "audio/webm"}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
		}
	}

	if req.FileSize < 0 || req.FileSize > maxUploadBytes {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file too large"})
	}

	uploadURL, publicURL, err := s.storage.PresignUpload(c.Context(), req.Kind, req.ContentType)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"uploadUrl": uploadURL,
		"publicUrl": publicURL,
	})
}
