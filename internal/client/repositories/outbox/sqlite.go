package outbox

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/kinsync/internal/client/models"
	"github.com/dmitrijs2005/kinsync/internal/dbx"
)

// SQLiteRepository keeps the outbox in the local SQLite database so pending
// items survive restarts.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func insert(ctx context.Context, db dbx.DBTX, item *models.OutboxItem) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO outbox (id, kind, url, method, data, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, item.ID, item.Kind, item.URL, item.Method, []byte(item.Data), item.CreatedAt.UTC().Format(time.RFC3339Nano))
	return err
}

func (r *SQLiteRepository) Append(ctx context.Context, item *models.OutboxItem) error {
	if err := insert(ctx, r.db, item); err != nil {
		return fmt.Errorf("failed to append outbox item %s: %w", item.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]*models.OutboxItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, kind, url, method, data, created_at
		FROM outbox
		ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list outbox: %w", err)
	}
	defer rows.Close()

	items := make([]*models.OutboxItem, 0)
	for rows.Next() {
		var (
			item      models.OutboxItem
			data      []byte
			createdAt string
		)
		if err := rows.Scan(&item.ID, &item.Kind, &item.URL, &item.Method, &data, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox row: %w", err)
		}
		if len(data) > 0 {
			item.Data = data
		}
		item.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("bad created_at on outbox item %s: %w", item.ID, err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate outbox rows: %w", err)
	}
	return items, nil
}

// Replace rewrites the outbox in a single transaction.
func (r *SQLiteRepository) Replace(ctx context.Context, items []*models.OutboxItem) error {
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM outbox`); err != nil {
			return err
		}
		for _, item := range items {
			if err := insert(ctx, tx, item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace outbox: %w", err)
	}
	return nil
}
