// Package cursor encodes and decodes pull cursors.
//
// A cursor names a position in the ledger stream as "{created_at}|{id}",
// with created_at in RFC 3339 (nanosecond precision, UTC). A bare timestamp
// with no "|" is accepted on input and compares on time alone.
package cursor

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/kinsync/internal/common"
	"github.com/google/uuid"
)

const separator = "|"

// Position is a point in the (created_at, id) total order of ledger entries.
// An empty ID means the position carries no tie-break.
type Position struct {
	CreatedAt time.Time
	ID        string
}

// Encode renders p in the wire format.
func Encode(p Position) string {
	s := p.CreatedAt.UTC().Format(time.RFC3339Nano)
	if p.ID == "" {
		return s
	}
	return s + separator + p.ID
}

// Initial returns the cursor handed to a client whose first pull found nothing.
func Initial(now time.Time) string {
	return Encode(Position{CreatedAt: now, ID: common.ZeroID})
}

// Parse decodes s. The split happens at the last "|" and both halves must be
// present. Any malformed input yields common.ErrInvalidCursor.
func Parse(s string) (*Position, error) {
	ts, id, found := cutLast(s, separator)
	if found && (ts == "" || id == "") {
		return nil, fmt.Errorf("%w: %q", common.ErrInvalidCursor, s)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidCursor, err)
	}

	if !found {
		return &Position{CreatedAt: createdAt}, nil
	}

	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidCursor, err)
	}
	return &Position{CreatedAt: createdAt, ID: id}, nil
}

func cutLast(s, sep string) (before, after string, found bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}
