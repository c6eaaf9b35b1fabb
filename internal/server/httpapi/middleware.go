package httpapi

import (
	"time"

	"github.com/echosphere/echosphere/internal/server/models"
	"github.com/gofiber/fiber/v2"
)

// sessionCookieName is the cookie carrying the opaque session token.
const sessionCookieName = "echo_session"

// Locals keys.
const (
	localUser      = "user"
	localWSUserID  = "ws_user_id"
	localSessToken = "session_token"
)

// requestLogger logs one line per request after it completes.
func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	s.logger.Info(c.Context(), "request",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"duration", time.Since(start).String(),
	)
	return err
}

// withSession resolves the session cookie, if any, into c.Locals(localUser).
// Requests without a valid session pass through unauthenticated; requireUser
// is the gate.
func (s *Server) withSession(c *fiber.Ctx) error {
	token := c.Cookies(sessionCookieName)
	if token == "" {
		return c.Next()
	}

	user, fresh, err := s.auth.ValidateSession(c.Context(), token)
	if err != nil {
		// invalid or expired cookie is cleared, not reported
		s.clearSessionCookie(c)
		return c.Next()
	}

	if fresh {
		s.setSessionCookie(c, token)
	}

	c.Locals(localUser, user)
	c.Locals(localSessToken, token)
	return c.Next()
}

// requireUser rejects requests that did not resolve to an authenticated user.
func (s *Server) requireUser(c *fiber.Ctx) error {
	if currentUser(c) == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}
	return c.Next()
}

func currentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(localUser).(*models.User)
	return user
}

func (s *Server) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(s.config.SessionValidityDuration),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
