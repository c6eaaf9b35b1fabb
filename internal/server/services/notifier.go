// Package services contains the business rules between the HTTP layer and
// the repositories: accounts and sessions, pins, connection requests,
// safety actions, object-storage presigning, room tokens, and SMS delivery.
package services

import (
	"context"

	"github.com/echosphere/echosphere/internal/server/realtime"
)

// Notifier is the slice of the realtime registry the services need. Services
// push into it only after their own store mutation has committed, never
// before, so clients are never notified about state that did not persist.
type Notifier interface {
	Send(ctx context.Context, identity string, msg realtime.Outbound)
	Broadcast(ctx context.Context, msg realtime.Outbound)
}
