// Package realtime owns the live WebSocket connections: it maps
// authenticated identities to their channel, routes targeted notifications,
// and fans out location and pin events.
//
// The registry is a plain in-memory structure rebuilt empty on every process
// restart; clients re-identify after reconnecting. Multi-device is not
// supported: binding an identity that is already bound supersedes the
// previous channel (last wins), and the superseded socket simply stays open
// until its own close fires.
package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/echosphere/echosphere/internal/logging"
)

// Conn is the subset of a websocket connection the registry needs. It is
// satisfied by *websocket.Conn from gofiber/contrib/websocket.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Websocket opcodes, fixed by RFC 6455; kept local so the registry does not
// depend on a concrete websocket package.
const (
	textMessage = 1
	pingMessage = 9
)

// DefaultWriteTimeout bounds a single outbound write so one slow consumer
// cannot stall an unrelated request handler.
const DefaultWriteTimeout = 5 * time.Second

// member is one live connection plus its write lock. The websocket transport
// forbids concurrent writers, so every outbound frame for a connection goes
// through mu.
type member struct {
	conn Conn
	mu   sync.Mutex
}

func (m *member) write(opcode int, data []byte, timeout time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = m.conn.SetWriteDeadline(time.Now().Add(timeout))
	return m.conn.WriteMessage(opcode, data)
}

// Registry is the process-wide connection table. Construct one with
// NewRegistry at startup and share it by reference; it must never be
// mutated except through its methods.
type Registry struct {
	log          logging.Logger
	writeTimeout time.Duration

	mu         sync.RWMutex
	members    map[Conn]*member
	byIdentity map[string]*member
}

// NewRegistry returns an empty registry.
func NewRegistry(log logging.Logger) *Registry {
	return &Registry{
		log:          log.With("module", "realtime"),
		writeTimeout: DefaultWriteTimeout,
		members:      make(map[Conn]*member),
		byIdentity:   make(map[string]*member),
	}
}

// Track adds a connection to the broadcast set. Every accepted socket is
// tracked, identified or not; anonymous sockets still receive broadcasts.
func (r *Registry) Track(conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[conn]; !ok {
		r.members[conn] = &member{conn: conn}
	}
}

// Untrack removes a connection from the broadcast set and from any identity
// slot it still occupies.
func (r *Registry) Untrack(conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.members, conn)
	for id, m := range r.byIdentity {
		if m.conn == conn {
			delete(r.byIdentity, id)
		}
	}
}

// Register binds identity to conn, superseding any previous binding for that
// identity. The previous channel (if different) is left open but orphaned
// from the map; it is cleaned up when its own close fires. Register never
// fails.
func (r *Registry) Register(identity string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[conn]
	if !ok {
		m = &member{conn: conn}
		r.members[conn] = m
	}
	r.byIdentity[identity] = m
}

// Unregister removes the binding for identity only if the current binding is
// exactly conn. A superseded connection closing late therefore cannot evict
// its successor. Unregister never fails.
func (r *Registry) Unregister(identity string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.byIdentity[identity]; ok && m.conn == conn {
		delete(r.byIdentity, identity)
	}
}

// Connected reports whether identity currently has a live binding.
func (r *Registry) Connected(identity string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byIdentity[identity]
	return ok
}

// Send delivers msg to the channel bound to identity. Delivery is strictly
// best-effort and at-most-once: if the identity is not bound the message is
// silently dropped (the target is simply offline), and nothing is queued. A
// write failure is treated as an implicit disconnect of the target.
func (r *Registry) Send(ctx context.Context, identity string, msg Outbound) {
	r.mu.RLock()
	m, ok := r.byIdentity[identity]
	r.mu.RUnlock()
	if !ok {
		return
	}

	data, err := msg.MarshalFrame()
	if err != nil {
		r.log.Error(ctx, "failed to encode frame", "error", err)
		return
	}

	if err := m.write(textMessage, data, r.writeTimeout); err != nil {
		r.log.Warn(ctx, "write failed, dropping connection", "identity", identity, "error", err)
		r.dropMember(m)
	}
}

// Broadcast delivers msg to every tracked connection.
func (r *Registry) Broadcast(ctx context.Context, msg Outbound) {
	r.broadcast(ctx, msg, nil)
}

// BroadcastExcept delivers msg to every tracked connection except sender.
func (r *Registry) BroadcastExcept(ctx context.Context, sender Conn, msg Outbound) {
	r.broadcast(ctx, msg, sender)
}

func (r *Registry) broadcast(ctx context.Context, msg Outbound, except Conn) {
	data, err := msg.MarshalFrame()
	if err != nil {
		r.log.Error(ctx, "failed to encode frame", "error", err)
		return
	}

	// Snapshot under the read lock, then write lock-free so a slow consumer
	// or a concurrent register/unregister cannot stall the iteration.
	r.mu.RLock()
	targets := make([]*member, 0, len(r.members))
	for conn, m := range r.members {
		if conn == except {
			continue
		}
		targets = append(targets, m)
	}
	r.mu.RUnlock()

	for _, m := range targets {
		if err := m.write(textMessage, data, r.writeTimeout); err != nil {
			r.log.Warn(ctx, "broadcast write failed, dropping connection", "error", err)
			r.dropMember(m)
		}
	}
}

// Ping writes a websocket ping frame to conn under its write lock. Unknown
// connections report no error; they are already gone.
func (r *Registry) Ping(conn Conn) error {
	r.mu.RLock()
	m, ok := r.members[conn]
	r.mu.RUnlock()
	if !ok {
		return nil
	}
	return m.write(pingMessage, nil, r.writeTimeout)
}

// dropMember runs the implicit-disconnect path: the connection is closed and
// removed from both tables, exactly as if the peer had closed it.
func (r *Registry) dropMember(m *member) {
	r.Untrack(m.conn)
	_ = m.conn.Close()
}

// Size returns the number of tracked connections.
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}
