// Package repomanager wires the per-table repositories to a database handle
// and owns schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/echosphere/echosphere/internal/dbx"
	"github.com/echosphere/echosphere/internal/server/repositories/blocks"
	"github.com/echosphere/echosphere/internal/server/repositories/connections"
	"github.com/echosphere/echosphere/internal/server/repositories/pins"
	"github.com/echosphere/echosphere/internal/server/repositories/reports"
	"github.com/echosphere/echosphere/internal/server/repositories/sessions"
	"github.com/echosphere/echosphere/internal/server/repositories/users"
	"github.com/echosphere/echosphere/internal/server/repositories/verifications"
)

// RepositoryManager hands out repositories bound to a DBTX, which may be the
// root *sql.DB or a *sql.Tx so services can compose repositories inside a
// transaction.
type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	Pins(db dbx.DBTX) pins.Repository
	Verifications(db dbx.DBTX) verifications.Repository
	Connections(db dbx.DBTX) connections.Repository
	Blocks(db dbx.DBTX) blocks.Repository
	Reports(db dbx.DBTX) reports.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
