package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/kinsync/internal/client/client"
	"github.com/dmitrijs2005/kinsync/internal/client/models"
	"github.com/dmitrijs2005/kinsync/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/kinsync/internal/logging"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

const pushPath = "/v1/sync/push"

var ErrInvalidChange = errors.New("invalid change")

// PullReport summarises a PullAll run.
type PullReport struct {
	Pages   int
	Entries int
	Cursor  string
}

// ApplyFunc receives each pulled page before the cursor moves past it.
type ApplyFunc func(ctx context.Context, entries []models.LedgerEntry) error

type SyncService struct {
	outbox   *OutboxService
	api      client.Client
	meta     metadata.Repository
	clientID string
	log      logging.Logger
}

func NewSyncService(outbox *OutboxService, api client.Client, meta metadata.Repository, clientID string, log logging.Logger) *SyncService {
	return &SyncService{
		outbox:   outbox,
		api:      api,
		meta:     meta,
		clientID: clientID,
		log:      log.With("module", "sync", "client_id", clientID),
	}
}

func (s *SyncService) ClientID() string {
	return s.clientID
}

// EnsureClientID returns the device id: configured if set, otherwise the one
// stored in metadata, otherwise a new one which is then stored.
func EnsureClientID(ctx context.Context, meta metadata.Repository, configured string) (string, error) {
	if configured = strings.TrimSpace(configured); configured != "" {
		return configured, nil
	}

	id, ok, err := meta.Get(ctx, metadata.KeyClientID)
	if err != nil {
		return "", err
	}
	if ok && id != "" {
		return id, nil
	}

	id = uuid.NewString()
	if err := meta.Set(ctx, metadata.KeyClientID, id); err != nil {
		return "", err
	}
	return id, nil
}

func validateChange(c *models.Change) error {
	switch c.Entity {
	case models.EntityContact, models.EntityJournalEntry, models.EntityActionItem:
	default:
		return fmt.Errorf("%w: unknown entity %q", ErrInvalidChange, c.Entity)
	}
	switch c.Op {
	case models.OpUpsert, models.OpDelete:
	default:
		return fmt.Errorf("%w: unknown op %q", ErrInvalidChange, c.Op)
	}
	id, _ := c.Data["id"].(string)
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: data.id is required", ErrInvalidChange)
	}
	return nil
}

// EnqueueChange queues a single-change push. A clientChangeId is assigned
// when the change has none so that redelivery is idempotent on the server.
func (s *SyncService) EnqueueChange(ctx context.Context, kind string, change models.Change) (*models.OutboxItem, error) {
	if err := validateChange(&change); err != nil {
		return nil, err
	}
	if change.ClientChangeID == "" {
		change.ClientChangeID = uuid.NewString()
	}
	if kind == "" {
		kind = models.KindSyncPush
	}

	body, err := json.Marshal(models.PushRequest{
		ClientID: s.clientID,
		Changes:  []models.Change{change},
	})
	if err != nil {
		return nil, fmt.Errorf("error encoding change: %w", err)
	}

	return s.outbox.Enqueue(ctx, kind, http.MethodPost, pushPath, body)
}

// Cursor returns the stored pull cursor, empty before the first pull.
func (s *SyncService) Cursor(ctx context.Context) (string, error) {
	cursor, _, err := s.meta.Get(ctx, metadata.KeyPullCursor)
	return cursor, err
}

// PullAll pulls from the stored cursor until the server returns an empty
// page. The cursor is persisted after every page, so an interrupted run
// resumes where it stopped. apply may be nil.
func (s *SyncService) PullAll(ctx context.Context, apply ApplyFunc) (PullReport, error) {
	var report PullReport

	cursor, err := s.Cursor(ctx)
	if err != nil {
		return report, fmt.Errorf("error reading cursor: %w", err)
	}
	report.Cursor = cursor

	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		page, err := s.api.Pull(ctx, cursor, s.clientID)
		if err != nil {
			return report, err
		}
		if len(page.Changes) == 0 {
			// first cursor of a tenant with no history
			if cursor == "" && page.NextCursor != "" {
				if err := s.meta.Set(ctx, metadata.KeyPullCursor, page.NextCursor); err != nil {
					return report, fmt.Errorf("error saving cursor: %w", err)
				}
				report.Cursor = page.NextCursor
			}
			break
		}

		if apply != nil {
			if err := apply(ctx, page.Changes); err != nil {
				return report, fmt.Errorf("error applying page: %w", err)
			}
		}
		report.Pages++
		report.Entries += len(page.Changes)

		if page.NextCursor == "" || page.NextCursor == cursor {
			break
		}
		if err := s.meta.Set(ctx, metadata.KeyPullCursor, page.NextCursor); err != nil {
			return report, fmt.Errorf("error saving cursor: %w", err)
		}
		cursor = page.NextCursor
		report.Cursor = cursor
	}

	s.log.Info(ctx, "pull complete", "pages", report.Pages, "entries", report.Entries)
	return report, nil
}

// State asks the server what it has recorded for this device.
func (s *SyncService) State(ctx context.Context) (*models.SyncState, error) {
	return s.api.State(ctx, s.clientID)
}
