package httpapi

import (
	"context"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// registerWebsocket mounts the realtime endpoint. The session is resolved
// before the upgrade, while cookies are still readable, and travels to the
// connection handler through Locals.
func (s *Server) registerWebsocket() {
	s.app.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		userID := ""
		if token := c.Cookies(sessionCookieName); token != "" {
			if user, _, err := s.auth.ValidateSession(c.Context(), token); err == nil {
				userID = user.ID
			}
		}
		c.Locals(localWSUserID, userID)
		return c.Next()
	}, websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals(localWSUserID).(string)

		stop := make(chan struct{})
		go s.realtime.KeepAlive(conn, pingInterval, stop)

		// Serve blocks until the connection closes.
		s.realtime.Serve(context.Background(), conn, userID)
		close(stop)
	}))
}
