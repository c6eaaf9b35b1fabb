package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/echosphere/echosphere/internal/logging"
)

// Handler runs the per-connection protocol: it reads inbound frames until
// the channel closes, keeps the registry in sync, and routes location
// updates to everyone else.
type Handler struct {
	registry *Registry
	log      logging.Logger
}

// NewHandler returns a handler bound to the given registry.
func NewHandler(registry *Registry, log logging.Logger) *Handler {
	return &Handler{
		registry: registry,
		log:      log.With("module", "realtime_handler"),
	}
}

// Serve owns conn until it closes. sessionUserID is the identity resolved
// from the authenticated session during the upgrade; it may be empty for an
// anonymous socket.
//
// Identity is bound server-side: a session-backed socket is registered
// immediately, and an IDENTIFY frame claiming anyone other than the session
// user is logged and ignored. An anonymous socket may IDENTIFY (the claimed
// id is accepted as-is, matching the legacy clients), but it can only be
// hardened upstream by requiring a session on the upgrade route.
//
// Serve blocks until the first read error, which is the single terminal
// transition: the connection is unregistered and untracked exactly once, no
// matter how it ended.
func (h *Handler) Serve(ctx context.Context, conn Conn, sessionUserID string) {
	h.registry.Track(conn)

	identity := ""
	if sessionUserID != "" {
		h.registry.Register(sessionUserID, conn)
		identity = sessionUserID
	}

	defer func() {
		if identity != "" {
			h.registry.Unregister(identity, conn)
		}
		h.registry.Untrack(conn)
		h.log.Debug(ctx, "client disconnected", "identity", identity)
	}()

	h.log.Debug(ctx, "client connected", "identity", identity)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			h.log.Warn(ctx, "discarding malformed frame", "error", err)
			continue
		}

		switch env.Type {
		case TypeIdentify:
			var p identifyPayload
			if err := json.Unmarshal(env.Payload, &p); err != nil || p.UserID == "" {
				h.log.Warn(ctx, "discarding malformed IDENTIFY frame", "error", err)
				continue
			}
			if sessionUserID != "" && p.UserID != sessionUserID {
				h.log.Warn(ctx, "IDENTIFY does not match session user, ignoring",
					"claimed", p.UserID, "session", sessionUserID)
				continue
			}
			// Re-IDENTIFY just overwrites; binding is idempotent.
			if identity != "" && identity != p.UserID {
				h.registry.Unregister(identity, conn)
			}
			h.registry.Register(p.UserID, conn)
			identity = p.UserID

		case TypeLocationUpdate:
			var p locationPayload
			if err := json.Unmarshal(env.Payload, &p); err != nil {
				h.log.Warn(ctx, "discarding malformed LOCATION_UPDATE frame", "error", err)
				continue
			}
			h.registry.BroadcastExcept(ctx, conn, UserMoved{
				UserID: identity,
				Lat:    p.Lat,
				Lng:    p.Lng,
			})

		default:
			// Unknown frames never terminate the connection.
			h.log.Warn(ctx, "discarding frame of unknown type", "type", env.Type)
		}
	}
}

// KeepAlive sends websocket pings on interval until stop is closed or a ping
// fails. A failed ping closes the connection, which unblocks the read loop.
// Pings go through the registry so they share the connection's write lock
// with regular frames.
func (h *Handler) KeepAlive(conn Conn, interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := h.registry.Ping(conn); err != nil {
				_ = conn.Close()
				return
			}
		}
	}
}
