package appliers

import (
	"context"

	"github.com/dmitrijs2005/kinsync/internal/dbx"
	"github.com/dmitrijs2005/kinsync/internal/server/models"
)

// JournalUpsert writes a journal entry authored by the acting user. A
// client-supplied created_at is kept so offline entries sort by when they
// were written.
type JournalUpsert struct{ repos Repos }

func (a *JournalUpsert) Apply(ctx context.Context, tx dbx.DBTX, scope Scope, data map[string]any) (Result, error) {
	id, err := uuidField("id", EntityID(data))
	if err != nil {
		return Result{}, err
	}
	createdAt, err := timeField(data, "created_at", "createdAt")
	if err != nil {
		return Result{}, err
	}

	repo := a.repos.Journal(tx)
	if err := checkOwner(ctx, repo, id, scope.WorkspaceID, true); err != nil {
		return Result{}, err
	}

	e := &models.JournalEntry{
		ID:             id,
		WorkspaceID:    scope.WorkspaceID,
		AuthorID:       scope.UserID,
		RawText:        stringValue(data, "raw_text", "rawText"),
		CreatedAt:      createdAt,
		ClientID:       optional(scope.ClientID),
		ClientChangeID: optional(scope.ClientChangeID),
	}
	v, err := repo.Upsert(ctx, e)
	if err != nil {
		return Result{}, err
	}
	return Result{EntityID: id, Version: v}, nil
}

type JournalDelete struct{ repos Repos }

func (a *JournalDelete) Apply(ctx context.Context, tx dbx.DBTX, scope Scope, data map[string]any) (Result, error) {
	id, err := uuidField("id", EntityID(data))
	if err != nil {
		return Result{}, err
	}

	repo := a.repos.Journal(tx)
	if err := checkOwner(ctx, repo, id, scope.WorkspaceID, false); err != nil {
		return Result{}, err
	}

	v, err := repo.SoftDelete(ctx, scope.WorkspaceID, id)
	if err != nil {
		return Result{}, err
	}
	return Result{EntityID: id, Version: v}, nil
}
