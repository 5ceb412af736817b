package models

// Entity tags understood by the sync engine.
const (
	EntityContact      = "contact"
	EntityJournalEntry = "journal_entry"
	EntityActionItem   = "action_item"
)

// Operations a Change may carry.
const (
	OpUpsert = "upsert"
	OpDelete = "delete"
)

// Change is one client mutation as submitted to push. Data is a full
// snapshot of the entity's public fields, keyed by "id".
type Change struct {
	Entity         string         `json:"entity" binding:"required"`
	Op             string         `json:"op" binding:"required,oneof=upsert delete"`
	Data           map[string]any `json:"data" binding:"required"`
	ClientChangeID *string        `json:"clientChangeId,omitempty"`
}

// HasClientChangeID reports whether the change carries a usable idempotency key.
func (c *Change) HasClientChangeID() bool {
	return c.ClientChangeID != nil && *c.ClientChangeID != ""
}
