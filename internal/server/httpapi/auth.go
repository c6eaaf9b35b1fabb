package httpapi

import (
	"github.com/gofiber/fiber/v2"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleSignup(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	user, token, err := s.auth.Signup(c.Context(), req.Username, req.Password)
	if err != nil {
		return fail(c, err)
	}

	s.setSessionCookie(c, token)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": user})
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	user, token, err := s.auth.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		return fail(c, err)
	}

	s.setSessionCookie(c, token)
	return c.JSON(fiber.Map{"user": user})
}

func (s *Server) handleLogout(c *fiber.Ctx) error {
	if token := c.Cookies(sessionCookieName); token != "" {
		if err := s.auth.Logout(c.Context(), token); err != nil {
			return fail(c, err)
		}
	}
	s.clearSessionCookie(c)
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleMe(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"user": currentUser(c)})
}

type phoneStartRequest struct {
	Phone string `json:"phone"`
}

func (s *Server) handlePhoneStart(c *fiber.Ctx) error {
	var req phoneStartRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	if err := s.auth.StartPhoneVerification(c.Context(), currentUser(c).ID, req.Phone); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "sent"})
}

type phoneVerifyRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

func (s *Server) handlePhoneVerify(c *fiber.Ctx) error {
	var req phoneVerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	if err := s.auth.ConfirmPhoneVerification(c.Context(), currentUser(c).ID, req.Phone, req.Code); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "verified"})
}
