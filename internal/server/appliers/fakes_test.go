package appliers

import (
	"context"
	"time"

	"github.com/dmitrijs2005/kinsync/internal/common"
	"github.com/dmitrijs2005/kinsync/internal/dbx"
	"github.com/dmitrijs2005/kinsync/internal/server/models"
	"github.com/dmitrijs2005/kinsync/internal/server/repositories/actionitems"
	"github.com/dmitrijs2005/kinsync/internal/server/repositories/contacts"
	"github.com/dmitrijs2005/kinsync/internal/server/repositories/journal"
)

// memStore mimics the Postgres repositories closely enough for applier tests:
// tenant-guarded upserts, version bumps, soft deletes keeping the first stamp.
type memStore struct {
	contacts map[string]*models.Contact
	journal  map[string]*models.JournalEntry
	items    map[string]*models.ActionItem
	ownerErr error
}

func newMemStore() *memStore {
	return &memStore{
		contacts: map[string]*models.Contact{},
		journal:  map[string]*models.JournalEntry{},
		items:    map[string]*models.ActionItem{},
	}
}

func (s *memStore) Contacts(dbx.DBTX) contacts.Repository       { return memContacts{s} }
func (s *memStore) Journal(dbx.DBTX) journal.Repository         { return memJournal{s} }
func (s *memStore) ActionItems(dbx.DBTX) actionitems.Repository { return memItems{s} }

type memContacts struct{ s *memStore }

func (m memContacts) OwnerOf(_ context.Context, id string) (string, error) {
	if m.s.ownerErr != nil {
		return "", m.s.ownerErr
	}
	c, ok := m.s.contacts[id]
	if !ok {
		return "", common.ErrNotFound
	}
	return c.WorkspaceID, nil
}

func (m memContacts) Upsert(_ context.Context, c *models.Contact) (int64, error) {
	cur, ok := m.s.contacts[c.ID]
	if !ok {
		cp := *c
		cp.Version = 1
		m.s.contacts[c.ID] = &cp
		return 1, nil
	}
	if cur.WorkspaceID != c.WorkspaceID {
		return 0, common.ErrTenantViolation
	}
	cur.Name, cur.AvatarURL, cur.Notes, cur.Status = c.Name, c.AvatarURL, c.Notes, c.Status
	cur.Version++
	return cur.Version, nil
}

func (m memContacts) SoftDelete(_ context.Context, ws, id string) (int64, error) {
	cur, ok := m.s.contacts[id]
	if !ok || cur.WorkspaceID != ws {
		return 0, common.ErrNotFound
	}
	if cur.DeletedAt == nil {
		now := time.Now()
		cur.DeletedAt = &now
	}
	cur.Version++
	return cur.Version, nil
}

type memJournal struct{ s *memStore }

func (m memJournal) OwnerOf(_ context.Context, id string) (string, error) {
	e, ok := m.s.journal[id]
	if !ok {
		return "", common.ErrNotFound
	}
	return e.WorkspaceID, nil
}

func (m memJournal) Upsert(_ context.Context, e *models.JournalEntry) (int64, error) {
	cur, ok := m.s.journal[e.ID]
	if !ok {
		cp := *e
		cp.Version = 1
		m.s.journal[e.ID] = &cp
		return 1, nil
	}
	cur.RawText = e.RawText
	cur.Version++
	return cur.Version, nil
}

func (m memJournal) SoftDelete(_ context.Context, ws, id string) (int64, error) {
	cur, ok := m.s.journal[id]
	if !ok || cur.WorkspaceID != ws {
		return 0, common.ErrNotFound
	}
	now := time.Now()
	cur.DeletedAt = &now
	cur.Version++
	return cur.Version, nil
}

type memItems struct{ s *memStore }

func (m memItems) OwnerOf(_ context.Context, id string) (string, error) {
	a, ok := m.s.items[id]
	if !ok {
		return "", common.ErrNotFound
	}
	return a.WorkspaceID, nil
}

func (m memItems) Upsert(_ context.Context, a *models.ActionItem) (int64, error) {
	cur, ok := m.s.items[a.ID]
	if !ok {
		cp := *a
		cp.Version = 1
		m.s.items[a.ID] = &cp
		return 1, nil
	}
	cur.DueAt, cur.SuggestionReason = a.DueAt, a.SuggestionReason
	cur.Version++
	return cur.Version, nil
}

func (m memItems) SoftDelete(_ context.Context, ws, id string) (int64, error) {
	cur, ok := m.s.items[id]
	if !ok || cur.WorkspaceID != ws {
		return 0, common.ErrNotFound
	}
	now := time.Now()
	cur.DeletedAt = &now
	cur.Version++
	return cur.Version, nil
}
