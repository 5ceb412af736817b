package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/kinsync/internal/common"
	"github.com/dmitrijs2005/kinsync/internal/dbx"
	"github.com/dmitrijs2005/kinsync/internal/logging"
	"github.com/dmitrijs2005/kinsync/internal/server/appliers"
	"github.com/dmitrijs2005/kinsync/internal/server/config"
	"github.com/dmitrijs2005/kinsync/internal/server/cursor"
	"github.com/dmitrijs2005/kinsync/internal/server/metrics"
	"github.com/dmitrijs2005/kinsync/internal/server/models"
	"github.com/dmitrijs2005/kinsync/internal/server/repositories/repomanager"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// SkipReason explains why a pushed change had no effect. The empty value
// means the change was applied.
type SkipReason string

const (
	SkipNone            SkipReason = ""
	SkipMalformed       SkipReason = "malformed"
	SkipDuplicate       SkipReason = "duplicate"
	SkipUnknownEntity   SkipReason = "unknown_entity"
	SkipTenantViolation SkipReason = "tenant_violation"
	SkipNotFound        SkipReason = "not_found"
	SkipApplyFailed     SkipReason = "apply_failed"
)

// Outcome is the per-change result of a push. It is kept server-side.
type Outcome struct {
	Index    int
	Entity   string
	Op       string
	EntityID string
	Applied  bool
	Version  int64
	Reason   SkipReason
	Err      error
}

// PullResult is one page of the ledger.
type PullResult struct {
	Changes    []*models.LedgerEntry `json:"changes"`
	NextCursor string                `json:"nextCursor"`
}

// errRollback aborts a change transaction without counting as a failure.
var errRollback = errors.New("rollback")

type SyncService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	registry    *appliers.Registry
	pageSize    int
	log         logging.Logger
	now         func() time.Time
}

func NewSyncService(db *sql.DB, m repomanager.RepositoryManager, registry *appliers.Registry, cfg *config.Config, log logging.Logger) *SyncService {
	pageSize := cfg.PullPageSize
	if pageSize <= 0 {
		pageSize = 200
	}
	return &SyncService{
		db:          db,
		repomanager: m,
		registry:    registry,
		pageSize:    pageSize,
		log:         log.With("module", "sync"),
		now:         time.Now,
	}
}

// Push applies changes in order, each in its own transaction. A change that
// fails is rolled back and skipped; the rest of the batch still runs. After
// the batch the device's sync state is stamped with the current time.
//
// The returned error is non-nil only when the context was already done or
// the final bookkeeping write failed.
func (s *SyncService) Push(ctx context.Context, workspaceID, userID, clientID string, changes []models.Change) ([]Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, 0, len(changes))
	for i := range changes {
		o := s.pushOne(ctx, workspaceID, userID, clientID, i, &changes[i])
		s.record(ctx, workspaceID, clientID, o)
		outcomes = append(outcomes, o)
	}

	stamp := s.now().UTC().Format(time.RFC3339Nano)
	if err := s.repomanager.SyncState(s.db).Touch(ctx, workspaceID, userID, clientID, stamp); err != nil {
		return outcomes, fmt.Errorf("error updating sync state: %w", err)
	}
	return outcomes, nil
}

func (s *SyncService) pushOne(ctx context.Context, workspaceID, userID, clientID string, index int, c *models.Change) Outcome {
	o := Outcome{Index: index, Entity: c.Entity, Op: c.Op}

	rawID := appliers.EntityID(c.Data)
	if rawID == "" {
		o.Reason = SkipMalformed
		o.Err = fmt.Errorf("%w: data.id is required", common.ErrMalformedChange)
		return o
	}
	parsed, err := uuid.Parse(rawID)
	if err != nil {
		o.EntityID = rawID
		o.Reason = SkipMalformed
		o.Err = fmt.Errorf("%w: data.id: %v", common.ErrMalformedChange, err)
		return o
	}
	entityID := parsed.String()
	o.EntityID = entityID

	payload, err := json.Marshal(c.Data)
	if err != nil {
		o.Reason = SkipMalformed
		o.Err = fmt.Errorf("%w: %v", common.ErrMalformedChange, err)
		return o
	}

	var clientChangeID *string
	if c.HasClientChangeID() {
		clientChangeID = c.ClientChangeID
	}
	scope := appliers.Scope{WorkspaceID: workspaceID, UserID: userID, ClientID: clientID}
	if clientChangeID != nil {
		scope.ClientChangeID = *clientChangeID
	}

	newEntry := func(version int64) *models.LedgerEntry {
		return &models.LedgerEntry{
			WorkspaceID:    workspaceID,
			ClientID:       clientID,
			ClientChangeID: clientChangeID,
			Entity:         c.Entity,
			EntityID:       entityID,
			Op:             c.Op,
			Data:           payload,
			Version:        version,
		}
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		ledger := s.repomanager.Ledger(tx)

		var entry *models.LedgerEntry
		if clientChangeID != nil {
			entry = newEntry(0)
			inserted, err := ledger.Append(ctx, entry)
			if err != nil {
				return err
			}
			if !inserted {
				o.Reason = SkipDuplicate
				return nil
			}
		}

		applier, ok := s.registry.Lookup(c.Entity, c.Op)
		if !ok {
			o.Reason = SkipUnknownEntity
			return errRollback
		}

		res, err := applier.Apply(ctx, tx, scope, c.Data)
		if err != nil {
			return err
		}
		o.Version = res.Version

		if entry != nil {
			return ledger.SetVersion(ctx, entry.ID, res.Version)
		}
		_, err = ledger.Append(ctx, newEntry(res.Version))
		return err
	})

	switch {
	case err == nil:
		o.Applied = o.Reason == SkipNone
	case errors.Is(err, errRollback):
	case errors.Is(err, common.ErrTenantViolation):
		o.Reason, o.Err = SkipTenantViolation, err
	case errors.Is(err, common.ErrNotFound):
		o.Reason, o.Err = SkipNotFound, err
	case errors.Is(err, common.ErrMalformedChange):
		o.Reason, o.Err = SkipMalformed, err
	default:
		o.Reason, o.Err = SkipApplyFailed, err
	}
	if !o.Applied {
		o.Version = 0
	}
	return o
}

func (s *SyncService) record(ctx context.Context, workspaceID, clientID string, o Outcome) {
	entity := o.Entity
	if o.Reason == SkipUnknownEntity {
		entity = "unknown"
	}
	result := string(o.Reason)
	if o.Applied {
		result = "applied"
	}
	metrics.IncChange(entity, o.Op, result)

	args := []any{"workspace", workspaceID, "client", clientID, "index", o.Index,
		"entity", o.Entity, "op", o.Op, "entity_id", o.EntityID}
	switch o.Reason {
	case SkipNone:
		s.log.Debug(ctx, "change applied", append(args, "version", o.Version)...)
	case SkipDuplicate:
		s.log.Debug(ctx, "duplicate change skipped", args...)
	case SkipTenantViolation, SkipApplyFailed:
		s.log.Warn(ctx, "change rejected", append(args, "reason", o.Reason, "error", o.Err)...)
	default:
		s.log.Info(ctx, "change skipped", append(args, "reason", o.Reason, "error", o.Err)...)
	}
}

// Pull returns ledger entries of workspaceID after cursorStr. With no
// entries the supplied cursor is echoed back, or a fresh initial cursor when
// none was supplied. A non-empty clientID has its sync state advanced to
// the returned cursor.
func (s *SyncService) Pull(ctx context.Context, workspaceID, userID, cursorStr, clientID string) (*PullResult, error) {
	var pos *cursor.Position
	if cursorStr != "" {
		p, err := cursor.Parse(cursorStr)
		if err != nil {
			return nil, err
		}
		pos = p
	}

	entries, err := s.repomanager.Ledger(s.db).ListSince(ctx, workspaceID, pos, s.pageSize)
	if err != nil {
		return nil, fmt.Errorf("error listing changes: %w", err)
	}
	if entries == nil {
		entries = []*models.LedgerEntry{}
	}
	metrics.ObservePull(len(entries))

	next := cursorStr
	if n := len(entries); n > 0 {
		last := entries[n-1]
		next = cursor.Encode(cursor.Position{CreatedAt: last.CreatedAt, ID: last.ID})
	} else if next == "" {
		next = cursor.Initial(s.now())
	}

	if clientID != "" {
		if err := s.repomanager.SyncState(s.db).Touch(ctx, workspaceID, userID, clientID, next); err != nil {
			s.log.Warn(ctx, "failed to record pull cursor", "workspace", workspaceID, "client", clientID, "error", err)
		}
	}

	return &PullResult{Changes: entries, NextCursor: next}, nil
}

// State returns the sync bookkeeping of one device, or nil if it never synced.
func (s *SyncService) State(ctx context.Context, workspaceID, userID, clientID string) (*models.SyncState, error) {
	st, err := s.repomanager.SyncState(s.db).Get(ctx, workspaceID, userID, clientID)
	if err != nil {
		return nil, fmt.Errorf("error reading sync state: %w", err)
	}
	return st, nil
}
