package services

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/kinsync/internal/client/client"
	"github.com/dmitrijs2005/kinsync/internal/client/models"
	"github.com/dmitrijs2005/kinsync/internal/client/repositories/outbox"
	"github.com/dmitrijs2005/kinsync/internal/logging"
	"github.com/google/uuid"
)

// FlushReport summarises one pass over the outbox.
type FlushReport struct {
	Attempted int
	Delivered int
	Remaining int
	// Aborted is set when the pass stopped early on 401/403 or cancellation.
	Aborted bool
}

// OutboxService queues HTTP calls locally and replays them in order.
type OutboxService struct {
	repo outbox.Repository
	api  client.Client
	log  logging.Logger
	now  func() time.Time

	// mu serialises Enqueue and Flush so an item queued mid-flush is not
	// lost when the outbox is replaced.
	mu sync.Mutex
}

func NewOutboxService(repo outbox.Repository, api client.Client, log logging.Logger) *OutboxService {
	return &OutboxService{
		repo: repo,
		api:  api,
		log:  log.With("module", "outbox"),
		now:  time.Now,
	}
}

// Enqueue appends a pending call. data may be nil for body-less requests.
func (s *OutboxService) Enqueue(ctx context.Context, kind, method, url string, data []byte) (*models.OutboxItem, error) {
	item := &models.OutboxItem{
		ID:        uuid.NewString(),
		Kind:      kind,
		URL:       url,
		Method:    method,
		Data:      data,
		CreatedAt: s.now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Append(ctx, item); err != nil {
		return nil, fmt.Errorf("error queueing %s: %w", kind, err)
	}
	s.log.Debug(ctx, "queued", "id", item.ID, "kind", kind, "method", method, "url", url)
	return item, nil
}

// Pending lists queued items in delivery order.
func (s *OutboxService) Pending(ctx context.Context) ([]*models.OutboxItem, error) {
	return s.repo.List(ctx)
}

// Flush replays every queued item in order. A 2xx response drops the item;
// any other status or a transport error keeps it for the next pass, in its
// original position. A 401 or 403 ends the pass at once: that item and all
// later ones are kept and the matching client error is returned.
//
// Without a token nothing is sent and client.ErrUnauthorized is returned.
func (s *OutboxService) Flush(ctx context.Context) (FlushReport, error) {
	var report FlushReport
	if !s.api.HasToken() {
		return report, client.ErrUnauthorized
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.repo.List(ctx)
	if err != nil {
		return report, fmt.Errorf("error reading outbox: %w", err)
	}
	if len(items) == 0 {
		return report, nil
	}

	var stopErr error
	remaining := make([]*models.OutboxItem, 0, len(items))
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			remaining = append(remaining, items[i:]...)
			report.Aborted, stopErr = true, err
			break
		}

		report.Attempted++
		code, err := s.api.Do(ctx, item.Method, item.URL, item.Data)
		switch {
		case err != nil:
			s.log.Warn(ctx, "delivery failed", "id", item.ID, "kind", item.Kind, "error", err)
			remaining = append(remaining, item)
			continue
		case code == http.StatusUnauthorized || code == http.StatusForbidden:
			s.log.Warn(ctx, "delivery refused, stopping flush", "id", item.ID, "kind", item.Kind, "status", code)
			remaining = append(remaining, items[i:]...)
			report.Aborted, stopErr = true, client.ErrUnauthorized
			if code == http.StatusForbidden {
				stopErr = client.ErrForbidden
			}
		case code >= 200 && code < 300:
			report.Delivered++
			continue
		default:
			s.log.Info(ctx, "delivery rejected, keeping item", "id", item.ID, "kind", item.Kind, "status", code)
			remaining = append(remaining, item)
			continue
		}
		break
	}
	report.Remaining = len(remaining)

	if report.Delivered > 0 {
		// the pass may have been cancelled; the rewrite must still land
		if err := s.repo.Replace(context.WithoutCancel(ctx), remaining); err != nil {
			return report, fmt.Errorf("error saving outbox: %w", err)
		}
	}

	s.log.Info(ctx, "outbox flushed", "attempted", report.Attempted, "delivered", report.Delivered,
		"remaining", report.Remaining, "aborted", report.Aborted)
	return report, stopErr
}
