// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/kinsync/internal/dbx"
	"github.com/dmitrijs2005/kinsync/internal/server/migrations"
	"github.com/dmitrijs2005/kinsync/internal/server/repositories/actionitems"
	"github.com/dmitrijs2005/kinsync/internal/server/repositories/attachments"
	"github.com/dmitrijs2005/kinsync/internal/server/repositories/contacts"
	"github.com/dmitrijs2005/kinsync/internal/server/repositories/journal"
	"github.com/dmitrijs2005/kinsync/internal/server/repositories/ledger"
	"github.com/dmitrijs2005/kinsync/internal/server/repositories/members"
	"github.com/dmitrijs2005/kinsync/internal/server/repositories/syncstate"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

// Ledger returns the idempotency ledger bound to the provided DBTX.
func (m *PostgresRepositoryManager) Ledger(db dbx.DBTX) ledger.Repository {
	return ledger.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Contacts(db dbx.DBTX) contacts.Repository {
	return contacts.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Journal(db dbx.DBTX) journal.Repository {
	return journal.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) ActionItems(db dbx.DBTX) actionitems.Repository {
	return actionitems.NewPostgresRepository(db)
}

// SyncState returns the cursor bookkeeping repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) SyncState(db dbx.DBTX) syncstate.Repository {
	return syncstate.NewPostgresRepository(db)
}

// Members returns the workspace membership repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Members(db dbx.DBTX) members.Repository {
	return members.NewPostgresRepository(db)
}

// Attachments returns the attachment repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Attachments(db dbx.DBTX) attachments.Repository {
	return attachments.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}
