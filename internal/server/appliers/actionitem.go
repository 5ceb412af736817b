package appliers

import (
	"context"

	"github.com/dmitrijs2005/kinsync/internal/dbx"
	"github.com/dmitrijs2005/kinsync/internal/server/models"
)

// ActionItemUpsert writes an action item. Its contact and source journal
// entry must both exist in the acting workspace.
type ActionItemUpsert struct{ repos Repos }

func (a *ActionItemUpsert) Apply(ctx context.Context, tx dbx.DBTX, scope Scope, data map[string]any) (Result, error) {
	id, err := uuidField("id", EntityID(data))
	if err != nil {
		return Result{}, err
	}
	contactID, err := uuidField("contact_id", stringValue(data, "contact_id", "contactId"))
	if err != nil {
		return Result{}, err
	}
	sourceEntryID, err := uuidField("source_entry_id", stringValue(data, "source_entry_id", "sourceEntryId"))
	if err != nil {
		return Result{}, err
	}
	dueAt, err := timeField(data, "due_at", "dueAt")
	if err != nil {
		return Result{}, err
	}

	if err := checkOwner(ctx, a.repos.Contacts(tx), contactID, scope.WorkspaceID, false); err != nil {
		return Result{}, err
	}
	if err := checkOwner(ctx, a.repos.Journal(tx), sourceEntryID, scope.WorkspaceID, false); err != nil {
		return Result{}, err
	}

	repo := a.repos.ActionItems(tx)
	if err := checkOwner(ctx, repo, id, scope.WorkspaceID, true); err != nil {
		return Result{}, err
	}

	item := &models.ActionItem{
		ID:               id,
		WorkspaceID:      scope.WorkspaceID,
		ContactID:        contactID,
		SourceEntryID:    sourceEntryID,
		DueAt:            dueAt,
		SuggestionReason: stringField(data, "suggestion_reason", "suggestionReason"),
		Status:           stringField(data, "status"),
	}
	v, err := repo.Upsert(ctx, item)
	if err != nil {
		return Result{}, err
	}
	return Result{EntityID: id, Version: v}, nil
}

type ActionItemDelete struct{ repos Repos }

func (a *ActionItemDelete) Apply(ctx context.Context, tx dbx.DBTX, scope Scope, data map[string]any) (Result, error) {
	id, err := uuidField("id", EntityID(data))
	if err != nil {
		return Result{}, err
	}

	repo := a.repos.ActionItems(tx)
	if err := checkOwner(ctx, repo, id, scope.WorkspaceID, false); err != nil {
		return Result{}, err
	}

	v, err := repo.SoftDelete(ctx, scope.WorkspaceID, id)
	if err != nil {
		return Result{}, err
	}
	return Result{EntityID: id, Version: v}, nil
}
