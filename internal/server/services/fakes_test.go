package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/kinsync/internal/common"
	"github.com/dmitrijs2005/kinsync/internal/dbx"
	"github.com/dmitrijs2005/kinsync/internal/server/appliers"
	"github.com/dmitrijs2005/kinsync/internal/server/cursor"
	"github.com/dmitrijs2005/kinsync/internal/server/models"
	"github.com/dmitrijs2005/kinsync/internal/server/repositories/actionitems"
	"github.com/dmitrijs2005/kinsync/internal/server/repositories/attachments"
	"github.com/dmitrijs2005/kinsync/internal/server/repositories/contacts"
	"github.com/dmitrijs2005/kinsync/internal/server/repositories/journal"
	"github.com/dmitrijs2005/kinsync/internal/server/repositories/ledger"
	"github.com/dmitrijs2005/kinsync/internal/server/repositories/members"
	"github.com/dmitrijs2005/kinsync/internal/server/repositories/syncstate"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// --- ledger ---

type fakeLedger struct {
	mu        sync.Mutex
	entries   []*models.LedgerEntry
	seq       int
	appendErr error
	setErr    error

	listOut   []*models.LedgerEntry
	listErr   error
	listPos   *cursor.Position
	listLimit int
}

func (f *fakeLedger) Append(_ context.Context, e *models.LedgerEntry) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return false, f.appendErr
	}
	if e.ClientChangeID != nil {
		for _, x := range f.entries {
			if x.ClientChangeID != nil && *x.ClientChangeID == *e.ClientChangeID &&
				x.WorkspaceID == e.WorkspaceID && x.ClientID == e.ClientID {
				return false, nil
			}
		}
	}
	f.seq++
	e.ID = fmt.Sprintf("e%d", f.seq)
	e.CreatedAt = time.Unix(int64(f.seq), 0).UTC()
	f.entries = append(f.entries, e)
	return true, nil
}

func (f *fakeLedger) SetVersion(_ context.Context, id string, v int64) error {
	if f.setErr != nil {
		return f.setErr
	}
	for _, x := range f.entries {
		if x.ID == id {
			x.Version = v
			return nil
		}
	}
	return fmt.Errorf("unexpected rows affected: 0")
}

func (f *fakeLedger) ListSince(_ context.Context, _ string, pos *cursor.Position, limit int) ([]*models.LedgerEntry, error) {
	f.listPos, f.listLimit = pos, limit
	return f.listOut, f.listErr
}

// --- sync state ---

type touch struct {
	workspaceID, userID, clientID, cursor string
}

type fakeSyncState struct {
	touches  []touch
	touchErr error
	getOut   *models.SyncState
	getErr   error
}

func (f *fakeSyncState) Touch(_ context.Context, ws, user, client, c string) error {
	if f.touchErr != nil {
		return f.touchErr
	}
	f.touches = append(f.touches, touch{ws, user, client, c})
	return nil
}

func (f *fakeSyncState) Get(context.Context, string, string, string) (*models.SyncState, error) {
	return f.getOut, f.getErr
}

// --- members ---

type fakeMembers struct {
	roles map[string]string
	err   error
	calls int
}

func (f *fakeMembers) Get(_ context.Context, ws, user string) (*models.Member, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	role, ok := f.roles[ws+"/"+user]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &models.Member{WorkspaceID: ws, UserID: user, Role: role}, nil
}

// --- attachments ---

type fakeAttachments struct {
	created   []*models.Attachment
	createErr error
	markErr   error
	marked    []string
	getOut    *models.Attachment
	getErr    error
}

func (f *fakeAttachments) Create(_ context.Context, a *models.Attachment) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, a)
	return nil
}

func (f *fakeAttachments) MarkUploaded(_ context.Context, _, key string) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.marked = append(f.marked, key)
	return nil
}

func (f *fakeAttachments) Get(context.Context, string, string) (*models.Attachment, error) {
	return f.getOut, f.getErr
}

// --- manager ---

type fakeRepoManager struct {
	ledger      *fakeLedger
	syncState   *fakeSyncState
	members     *fakeMembers
	attachments *fakeAttachments
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		ledger:      &fakeLedger{},
		syncState:   &fakeSyncState{},
		members:     &fakeMembers{roles: map[string]string{}},
		attachments: &fakeAttachments{},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Ledger(dbx.DBTX) ledger.Repository            { return m.ledger }
func (m *fakeRepoManager) Contacts(dbx.DBTX) contacts.Repository        { return nil }
func (m *fakeRepoManager) Journal(dbx.DBTX) journal.Repository          { return nil }
func (m *fakeRepoManager) ActionItems(dbx.DBTX) actionitems.Repository  { return nil }
func (m *fakeRepoManager) SyncState(dbx.DBTX) syncstate.Repository      { return m.syncState }
func (m *fakeRepoManager) Members(dbx.DBTX) members.Repository          { return m.members }
func (m *fakeRepoManager) Attachments(dbx.DBTX) attachments.Repository  { return m.attachments }

// --- appliers ---

type applierFunc func(ctx context.Context, tx dbx.DBTX, scope appliers.Scope, data map[string]any) (appliers.Result, error)

func (f applierFunc) Apply(ctx context.Context, tx dbx.DBTX, scope appliers.Scope, data map[string]any) (appliers.Result, error) {
	return f(ctx, tx, scope, data)
}

// countingApplier bumps a per-id version on every call, like an upsert would.
type countingApplier struct {
	versions map[string]int64
	scopes   []appliers.Scope
	err      error
}

func (a *countingApplier) Apply(_ context.Context, _ dbx.DBTX, scope appliers.Scope, data map[string]any) (appliers.Result, error) {
	a.scopes = append(a.scopes, scope)
	if a.err != nil {
		return appliers.Result{}, a.err
	}
	id := appliers.EntityID(data)
	a.versions[id]++
	return appliers.Result{EntityID: id, Version: a.versions[id]}, nil
}
