// Package realtime implements the client side of the live WebSocket
// protocol: a connection that identifies itself, streams location updates,
// and reconnects with bounded backoff when the link drops.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/echosphere/echosphere/internal/logging"
	"github.com/fasthttp/websocket"
)

// ErrNotConnected is returned by writes attempted while the link is down.
var ErrNotConnected = errors.New("not connected")

// State of the connection lifecycle. Transitions are explicit:
// Disconnected -> Connecting -> Connected -> Disconnected.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Frame type tags on the wire.
const (
	typeIdentify       = "IDENTIFY"
	typeLocationUpdate = "LOCATION_UPDATE"
)

const (
	defaultInitialBackoff = time.Second
	defaultMaxBackoff     = 30 * time.Second
	writeTimeout          = 5 * time.Second
)

// Config holds client settings. URL is the ws:// or wss:// endpoint.
// UserID, when set, is announced with an IDENTIFY frame after every
// (re)connect. SessionToken, when set, is sent as the session cookie so the
// server can bind the identity itself.
type Config struct {
	URL            string
	UserID         string
	SessionToken   string
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// OnMessage is invoked for every inbound frame with its type tag and raw
	// bytes. Called from the read goroutine; implementations must not block.
	OnMessage func(frameType string, frame []byte)

	// OnStateChange is invoked on every lifecycle transition.
	OnStateChange func(state State)
}

// Client maintains one logical connection to the realtime endpoint.
type Client struct {
	cfg  Config
	log  logging.Logger
	dial func(urlStr string, reqHeader http.Header) (*websocket.Conn, *http.Response, error)

	mu    sync.Mutex
	conn  *websocket.Conn
	state State
}

func NewClient(cfg Config, log logging.Logger) *Client {
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = defaultInitialBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = defaultMaxBackoff
	}
	return &Client{
		cfg: cfg,
		log: log.With("module", "realtime_client"),
		dial: func(urlStr string, reqHeader http.Header) (*websocket.Conn, *http.Response, error) {
			return websocket.DefaultDialer.Dial(urlStr, reqHeader)
		},
	}
}

// State returns the current lifecycle state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	changed := c.state != s
	c.state = s
	c.mu.Unlock()
	if changed && c.cfg.OnStateChange != nil {
		c.cfg.OnStateChange(s)
	}
}

// Run connects and keeps the connection alive until ctx is cancelled. Every
// drop schedules a reconnect with doubling backoff, reset after a successful
// connect.
func (c *Client) Run(ctx context.Context) {
	backoff := c.cfg.InitialBackoff

	for {
		if ctx.Err() != nil {
			c.setState(StateDisconnected)
			return
		}

		c.setState(StateConnecting)
		conn, err := c.connect(ctx)
		if err != nil {
			c.log.Warn(ctx, "connect failed", "error", err)
			c.setState(StateDisconnected)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > c.cfg.MaxBackoff {
				backoff = c.cfg.MaxBackoff
			}
			continue
		}

		backoff = c.cfg.InitialBackoff
		c.setState(StateConnected)

		c.readLoop(ctx, conn)

		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
		c.setState(StateDisconnected)
	}
}

func (c *Client) connect(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	if c.cfg.SessionToken != "" {
		header.Set("Cookie", "echo_session="+c.cfg.SessionToken)
	}

	conn, resp, err := c.dial(c.cfg.URL, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	if c.cfg.UserID != "" {
		if err := c.Identify(c.cfg.UserID); err != nil {
			_ = conn.Close()
			return nil, err
		}
	}

	return conn, nil
}

// readLoop drains inbound frames until the connection dies or ctx is
// cancelled. Cancellation closes the connection to unblock the read.
func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) {
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var env struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(data, &env); err != nil {
			c.log.Warn(ctx, "discarding malformed frame", "error", err)
			continue
		}

		if c.cfg.OnMessage != nil {
			c.cfg.OnMessage(env.Type, data)
		}
	}
}

// Identify announces the user id on the current connection.
func (c *Client) Identify(userID string) error {
	return c.send(typeIdentify, map[string]string{"userId": userID})
}

// SendLocation streams a live position update.
func (c *Client) SendLocation(lat, lng float64) error {
	return c.send(typeLocationUpdate, map[string]float64{"lat": lat, "lng": lng})
}

func (c *Client) send(frameType string, payload any) error {
	frame, err := json.Marshal(map[string]any{
		"type":    frameType,
		"payload": payload,
	})
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return ErrNotConnected
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, frame)
}
