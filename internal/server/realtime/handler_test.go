package realtime

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveAsync(h *Handler, conn Conn, sessionUserID string) *sync.WaitGroup {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.Serve(context.Background(), conn, sessionUserID)
	}()
	return &wg
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

// IDENTIFY then a targeted send from another context, then disconnect and a
// send that must be a silent no-op.
func TestHandler_IdentifyThenTargetedSend(t *testing.T) {
	r := NewRegistry(testLogger())
	h := NewHandler(r, testLogger())
	ctx := context.Background()

	c1 := newFakeConn()
	wg := serveAsync(h, c1, "")

	c1.inbound <- []byte(`{"type":"IDENTIFY","payload":{"userId":"u1"}}`)
	waitFor(t, func() bool { return r.Connected("u1") })

	r.Send(ctx, "u1", Notification{Kind: NotifyConnectionRequest, RequestID: 1})

	waitFor(t, func() bool { return len(c1.frames(t)) == 1 })
	frames := c1.frames(t)
	assert.Equal(t, TypeNotification, frames[0]["type"])

	close(c1.inbound)
	wg.Wait()

	assert.False(t, r.Connected("u1"))
	assert.Equal(t, 0, r.Size())

	// Target is gone; this must be a no-op, not an error.
	r.Send(ctx, "u1", Notification{Kind: NotifyConnectionRequest})
	assert.Len(t, c1.frames(t), 1)
}

// C1 and C2 identify as distinct users; C1's LOCATION_UPDATE arrives at C2
// as USER_MOVED and never echoes back to C1.
func TestHandler_LocationFanout(t *testing.T) {
	r := NewRegistry(testLogger())
	h := NewHandler(r, testLogger())

	c1 := newFakeConn()
	c2 := newFakeConn()
	wg1 := serveAsync(h, c1, "")
	wg2 := serveAsync(h, c2, "")

	c1.inbound <- []byte(`{"type":"IDENTIFY","payload":{"userId":"u1"}}`)
	c2.inbound <- []byte(`{"type":"IDENTIFY","payload":{"userId":"u2"}}`)
	waitFor(t, func() bool { return r.Connected("u1") && r.Connected("u2") })

	c1.inbound <- []byte(`{"type":"LOCATION_UPDATE","payload":{"lat":1,"lng":2}}`)

	waitFor(t, func() bool { return len(c2.frames(t)) == 1 })
	frames := c2.frames(t)
	assert.Equal(t, TypeUserMoved, frames[0]["type"])
	payload := frames[0]["payload"].(map[string]any)
	assert.Equal(t, float64(1), payload["lat"])
	assert.Equal(t, float64(2), payload["lng"])
	assert.Equal(t, "u1", payload["userId"])

	assert.Empty(t, c1.frames(t), "sender must not receive its own update")

	close(c1.inbound)
	close(c2.inbound)
	wg1.Wait()
	wg2.Wait()
}

func TestHandler_MalformedFramesKeepConnectionOpen(t *testing.T) {
	r := NewRegistry(testLogger())
	h := NewHandler(r, testLogger())

	c := newFakeConn()
	wg := serveAsync(h, c, "")

	c.inbound <- []byte(`this is not json`)
	c.inbound <- []byte(`{"type":"NO_SUCH_TYPE","payload":{}}`)
	c.inbound <- []byte(`{"type":"IDENTIFY","payload":"not an object"}`)
	c.inbound <- []byte(`{"type":"IDENTIFY","payload":{"userId":"u1"}}`)

	waitFor(t, func() bool { return r.Connected("u1") })

	close(c.inbound)
	wg.Wait()
}

func TestHandler_SessionBindsIdentityServerSide(t *testing.T) {
	r := NewRegistry(testLogger())
	h := NewHandler(r, testLogger())
	ctx := context.Background()

	c := newFakeConn()
	wg := serveAsync(h, c, "session-user")

	waitFor(t, func() bool { return r.Connected("session-user") })

	// A claim for someone else is ignored.
	c.inbound <- []byte(`{"type":"IDENTIFY","payload":{"userId":"impostor"}}`)
	// Re-IDENTIFY as self is an idempotent overwrite.
	c.inbound <- []byte(`{"type":"IDENTIFY","payload":{"userId":"session-user"}}`)

	// Drain: a frame after the above guarantees they were processed.
	c.inbound <- []byte(`{"type":"LOCATION_UPDATE","payload":{"lat":0,"lng":0}}`)
	waitFor(t, func() bool { return r.Connected("session-user") })

	assert.False(t, r.Connected("impostor"))

	r.Send(ctx, "session-user", Notification{Kind: NotifyConnectionAccepted})
	waitFor(t, func() bool { return len(c.frames(t)) == 1 })

	close(c.inbound)
	wg.Wait()
	require.False(t, r.Connected("session-user"))
}

func TestHandler_ReIdentifySwitchesIdentity(t *testing.T) {
	r := NewRegistry(testLogger())
	h := NewHandler(r, testLogger())

	c := newFakeConn()
	wg := serveAsync(h, c, "")

	c.inbound <- []byte(`{"type":"IDENTIFY","payload":{"userId":"first"}}`)
	waitFor(t, func() bool { return r.Connected("first") })

	c.inbound <- []byte(`{"type":"IDENTIFY","payload":{"userId":"second"}}`)
	waitFor(t, func() bool { return r.Connected("second") })

	assert.False(t, r.Connected("first"), "old identity must be released on re-IDENTIFY")

	close(c.inbound)
	wg.Wait()
}

func TestHandler_KeepAliveStops(t *testing.T) {
	r := NewRegistry(testLogger())
	h := NewHandler(r, testLogger())

	c := newFakeConn()
	r.Track(c)

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		h.KeepAlive(c, 10*time.Millisecond, stop)
		close(done)
	}()

	time.Sleep(35 * time.Millisecond)
	close(stop)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("KeepAlive did not stop")
	}
}
