package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/kinsync/internal/dbx"
	"github.com/dmitrijs2005/kinsync/internal/server/repositories/actionitems"
	"github.com/dmitrijs2005/kinsync/internal/server/repositories/attachments"
	"github.com/dmitrijs2005/kinsync/internal/server/repositories/contacts"
	"github.com/dmitrijs2005/kinsync/internal/server/repositories/journal"
	"github.com/dmitrijs2005/kinsync/internal/server/repositories/ledger"
	"github.com/dmitrijs2005/kinsync/internal/server/repositories/members"
	"github.com/dmitrijs2005/kinsync/internal/server/repositories/syncstate"
)

// RepositoryManager vends repositories bound to a DBTX, so callers can
// choose between the pool and an open transaction per call.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Ledger(db dbx.DBTX) ledger.Repository
	Contacts(db dbx.DBTX) contacts.Repository
	Journal(db dbx.DBTX) journal.Repository
	ActionItems(db dbx.DBTX) actionitems.Repository
	SyncState(db dbx.DBTX) syncstate.Repository
	Members(db dbx.DBTX) members.Repository
	Attachments(db dbx.DBTX) attachments.Repository
}
