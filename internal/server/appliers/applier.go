// Package appliers turns synced changes into entity writes.
//
// One Applier exists per (entity, op) pair. Every applier resolves the owner
// of the client-supplied id before writing and refuses to touch rows of
// another workspace. Appliers write through the CRUD repositories bound to
// the caller's transaction.
package appliers

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/kinsync/internal/common"
	"github.com/dmitrijs2005/kinsync/internal/dbx"
	"github.com/dmitrijs2005/kinsync/internal/server/models"
	"github.com/dmitrijs2005/kinsync/internal/server/repositories/actionitems"
	"github.com/dmitrijs2005/kinsync/internal/server/repositories/contacts"
	"github.com/dmitrijs2005/kinsync/internal/server/repositories/journal"
)

// Scope identifies who is applying a change.
type Scope struct {
	WorkspaceID    string
	UserID         string
	ClientID       string
	ClientChangeID string
}

// Result is the state of the entity after a successful apply.
type Result struct {
	EntityID string
	Version  int64
}

// Applier performs one (entity, op) mutation inside tx.
type Applier interface {
	Apply(ctx context.Context, tx dbx.DBTX, scope Scope, data map[string]any) (Result, error)
}

// Repos is the slice of the repository manager appliers need.
type Repos interface {
	Contacts(db dbx.DBTX) contacts.Repository
	Journal(db dbx.DBTX) journal.Repository
	ActionItems(db dbx.DBTX) actionitems.Repository
}

type key struct {
	entity string
	op     string
}

// Registry maps (entity, op) to an Applier. It is not safe for concurrent
// Register calls; populate it before serving.
type Registry struct {
	appliers map[key]Applier
}

func NewRegistry() *Registry {
	return &Registry{appliers: make(map[key]Applier)}
}

// Register binds a to (entity, op), replacing any previous binding.
func (r *Registry) Register(entity, op string, a Applier) {
	r.appliers[key{entity, op}] = a
}

// Lookup returns the applier for (entity, op).
func (r *Registry) Lookup(entity, op string) (Applier, bool) {
	a, ok := r.appliers[key{entity, op}]
	return a, ok
}

// NewDefaultRegistry registers upsert and delete for contacts, journal
// entries and action items.
func NewDefaultRegistry(repos Repos) *Registry {
	r := NewRegistry()
	r.Register(models.EntityContact, models.OpUpsert, &ContactUpsert{repos: repos})
	r.Register(models.EntityContact, models.OpDelete, &ContactDelete{repos: repos})
	r.Register(models.EntityJournalEntry, models.OpUpsert, &JournalUpsert{repos: repos})
	r.Register(models.EntityJournalEntry, models.OpDelete, &JournalDelete{repos: repos})
	r.Register(models.EntityActionItem, models.OpUpsert, &ActionItemUpsert{repos: repos})
	r.Register(models.EntityActionItem, models.OpDelete, &ActionItemDelete{repos: repos})
	return r
}

type ownerLookup interface {
	OwnerOf(ctx context.Context, id string) (string, error)
}

// checkOwner fails with ErrTenantViolation when id belongs to a workspace
// other than workspaceID. A missing row is accepted only when allowMissing.
func checkOwner(ctx context.Context, repo ownerLookup, id, workspaceID string, allowMissing bool) error {
	owner, err := repo.OwnerOf(ctx, id)
	if errors.Is(err, common.ErrNotFound) {
		if allowMissing {
			return nil
		}
		return fmt.Errorf("%w: %s", common.ErrNotFound, id)
	}
	if err != nil {
		return err
	}
	if owner != workspaceID {
		return fmt.Errorf("%w: %s", common.ErrTenantViolation, id)
	}
	return nil
}
