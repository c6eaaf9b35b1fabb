// Package httpapi exposes the public HTTP and WebSocket surface over the
// services layer. Routing is done with Fiber; the WebSocket endpoint hands
// upgraded connections to the realtime handler.
package httpapi

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/echosphere/echosphere/internal/logging"
	"github.com/echosphere/echosphere/internal/server/config"
	"github.com/echosphere/echosphere/internal/server/models"
	"github.com/echosphere/echosphere/internal/server/realtime"
	"github.com/echosphere/echosphere/internal/server/services"
)

// pingInterval is the cadence of server-side websocket keepalive pings.
const pingInterval = 30 * time.Second

// Service interfaces consumed by the handlers. The concrete implementations
// live in the services package; tests substitute fakes.

type authSvc interface {
	Signup(ctx context.Context, username, password string) (*models.User, string, error)
	Login(ctx context.Context, username, password string) (*models.User, string, error)
	Logout(ctx context.Context, token string) error
	ValidateSession(ctx context.Context, token string) (*models.User, bool, error)
	StartPhoneVerification(ctx context.Context, userID string, phone string) error
	ConfirmPhoneVerification(ctx context.Context, userID string, phone string, code string) error
}

type pinSvc interface {
	Create(ctx context.Context, creatorID string, in services.CreatePinInput) (*models.Pin, error)
	Nearby(ctx context.Context, lat, lng, radiusMeters float64) ([]*models.Pin, error)
}

type connectionSvc interface {
	Request(ctx context.Context, sender *models.User, receiverID string, audioIntroURL string) (*models.ConnectionRequest, error)
	Incoming(ctx context.Context, userID string) ([]*models.IncomingRequest, error)
	Respond(ctx context.Context, user *models.User, requestID int64, action string) (string, error)
}

type safetySvc interface {
	Block(ctx context.Context, blockerID, blockedID string) error
	Unblock(ctx context.Context, blockerID, blockedID string) error
	Report(ctx context.Context, reporterID, targetType, targetID, reason string) (*models.Report, error)
}

type storageSvc interface {
	PresignUpload(ctx context.Context, kind, contentType string) (uploadURL string, publicURL string, err error)
}

type roomSvc interface {
	JoinToken(roomName, identity, participantName string) (string, error)
}

type realtimeHandler interface {
	Serve(ctx context.Context, conn realtime.Conn, sessionUserID string)
	KeepAlive(conn realtime.Conn, interval time.Duration, stop <-chan struct{})
}

// Server is the public HTTP/WebSocket endpoint.
type Server struct {
	app    *fiber.App
	config *config.Config
	logger logging.Logger

	auth        authSvc
	pins        pinSvc
	connections connectionSvc
	safety      safetySvc
	storage     storageSvc
	rooms       roomSvc
	realtime    realtimeHandler
}

func NewServer(
	cfg *config.Config,
	logger logging.Logger,
	auth authSvc,
	pins pinSvc,
	connections connectionSvc,
	safety safetySvc,
	storage storageSvc,
	rooms roomSvc,
	rt realtimeHandler,
) *Server {
	s := &Server{
		config:      cfg,
		logger:      logger.With("module", "httpapi"),
		auth:        auth,
		pins:        pins,
		connections: connections,
		safety:      safety,
		storage:     storage,
		rooms:       rooms,
		realtime:    rt,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "EchoSphere",
		DisableStartupMessage: true,
	})

	s.app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept",
	}))

	s.app.Use(s.requestLogger)

	s.registerRoutes()

	return s
}

func (s *Server) registerRoutes() {
	s.app.Get("/health", s.handleHealth)

	auth := s.app.Group("/auth")
	auth.Post("/signup", s.handleSignup)
	auth.Post("/login", s.handleLogin)
	auth.Post("/logout", s.handleLogout)
	auth.Get("/me", s.withSession, s.requireUser, s.handleMe)
	auth.Post("/phone/start", s.withSession, s.requireUser, s.handlePhoneStart)
	auth.Post("/phone/verify", s.withSession, s.requireUser, s.handlePhoneVerify)

	s.app.Post("/upload-url", s.withSession, s.requireUser, s.handleUploadURL)

	s.app.Post("/pins", s.withSession, s.requireUser, s.handleCreatePin)
	s.app.Get("/pins", s.handleNearbyPins)

	conns := s.app.Group("/connections", s.withSession, s.requireUser)
	conns.Post("/requests", s.handleConnectionRequest)
	conns.Get("/requests", s.handleIncomingRequests)
	conns.Post("/requests/:id/:action", s.handleConnectionRespond)

	safety := s.app.Group("/safety", s.withSession, s.requireUser)
	safety.Post("/block", s.handleBlock)
	safety.Delete("/block/:blockedId", s.handleUnblock)
	safety.Post("/report", s.handleReport)

	s.app.Post("/rooms/token", s.withSession, s.requireUser, s.handleRoomToken)

	s.registerWebsocket()
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		if err := s.app.ShutdownWithTimeout(5 * time.Second); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.config.EndpointAddr)
	return s.app.Listen(s.config.EndpointAddr)
}
