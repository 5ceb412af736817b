package appliers

import (
	"context"

	"github.com/dmitrijs2005/kinsync/internal/dbx"
	"github.com/dmitrijs2005/kinsync/internal/server/models"
)

// ContactUpsert creates or overwrites a contact keyed by the client id.
type ContactUpsert struct{ repos Repos }

func (a *ContactUpsert) Apply(ctx context.Context, tx dbx.DBTX, scope Scope, data map[string]any) (Result, error) {
	id, err := uuidField("id", EntityID(data))
	if err != nil {
		return Result{}, err
	}

	repo := a.repos.Contacts(tx)
	if err := checkOwner(ctx, repo, id, scope.WorkspaceID, true); err != nil {
		return Result{}, err
	}

	c := &models.Contact{
		ID:             id,
		WorkspaceID:    scope.WorkspaceID,
		Name:           contactName(data),
		AvatarURL:      stringField(data, "avatar_url", "avatarUrl"),
		Notes:          stringField(data, "notes"),
		Status:         stringField(data, "status"),
		ClientID:       optional(scope.ClientID),
		ClientChangeID: optional(scope.ClientChangeID),
	}
	v, err := repo.Upsert(ctx, c)
	if err != nil {
		return Result{}, err
	}
	return Result{EntityID: id, Version: v}, nil
}

// ContactDelete soft-deletes a contact of the acting workspace.
type ContactDelete struct{ repos Repos }

func (a *ContactDelete) Apply(ctx context.Context, tx dbx.DBTX, scope Scope, data map[string]any) (Result, error) {
	id, err := uuidField("id", EntityID(data))
	if err != nil {
		return Result{}, err
	}

	repo := a.repos.Contacts(tx)
	if err := checkOwner(ctx, repo, id, scope.WorkspaceID, false); err != nil {
		return Result{}, err
	}

	v, err := repo.SoftDelete(ctx, scope.WorkspaceID, id)
	if err != nil {
		return Result{}, err
	}
	return Result{EntityID: id, Version: v}, nil
}
