package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/kinsync/internal/client/models"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// queue enqueues one change and reports the entity and outbox ids.
func (o *rootOptions) queue(cmd *cobra.Command, kind string, change models.Change) error {
	return o.withApp(cmd, func(ctx context.Context, app *App) error {
		item, err := app.sync.EnqueueChange(ctx, kind, change)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "queued %s %s %v (outbox %s)\n",
			change.Op, change.Entity, change.Data["id"], item.ID)
		return err
	})
}

// setChanged copies string flags the user set into data under their
// payload keys.
func setChanged(fs *pflag.FlagSet, data map[string]any, keys map[string]string) {
	for flag, key := range keys {
		if !fs.Changed(flag) {
			continue
		}
		v, _ := fs.GetString(flag)
		data[key] = v
	}
}

func newID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

func deleteCommand(opts *rootOptions, entity string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Queue a soft delete",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.queue(cmd, models.KindSyncPush, models.Change{
				Entity: entity,
				Op:     models.OpDelete,
				Data:   map[string]any{"id": args[0]},
			})
		},
	}
}

// NewEnqueueCommand queues an arbitrary change given as JSON.
func NewEnqueueCommand(opts *rootOptions) *cobra.Command {
	var entity, op, data, changeID, kind string

	cmd := &cobra.Command{
		Use:   "enqueue",
		Short: "Queue a raw change",
		Example: `  kinsync enqueue --entity contact --op upsert \
    --data '{"id":"5b0e2f0e-4b1a-4c55-9a53-0f5d2c8f8a11","name":"Alice"}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload map[string]any
			if err := json.Unmarshal([]byte(data), &payload); err != nil {
				return fmt.Errorf("invalid --data: %w", err)
			}
			return opts.queue(cmd, kind, models.Change{
				Entity:         entity,
				Op:             op,
				Data:           payload,
				ClientChangeID: changeID,
			})
		},
	}

	cmd.Flags().StringVarP(&entity, "entity", "e", "", "contact, journal_entry or action_item")
	cmd.Flags().StringVarP(&op, "op", "o", models.OpUpsert, "upsert or delete")
	cmd.Flags().StringVarP(&data, "data", "d", "", "change payload as a JSON object")
	cmd.Flags().StringVar(&changeID, "change-id", "", "client change id (generated when empty)")
	cmd.Flags().StringVar(&kind, "kind", models.KindSyncPush, "outbox item kind")
	_ = cmd.MarkFlagRequired("entity")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

var contactKeys = map[string]string{
	"name":       "name",
	"notes":      "notes",
	"status":     "status",
	"avatar-url": "avatar_url",
}

func contactFlags(fs *pflag.FlagSet) {
	fs.String("name", "", "display name")
	fs.String("notes", "", "free-form notes")
	fs.String("status", "", "relationship status")
	fs.String("avatar-url", "", "avatar image URL")
}

func NewContactCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Queue contact changes",
	}

	var id string
	add := &cobra.Command{
		Use:   "add",
		Short: "Queue a new contact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data := map[string]any{"id": newID(id)}
			setChanged(cmd.Flags(), data, contactKeys)
			return opts.queue(cmd, models.KindContactCreate, models.Change{
				Entity: models.EntityContact,
				Op:     models.OpUpsert,
				Data:   data,
			})
		},
	}
	add.Flags().StringVar(&id, "id", "", "contact id (generated when empty)")
	contactFlags(add.Flags())
	_ = add.MarkFlagRequired("name")

	edit := &cobra.Command{
		Use:   "edit <id>",
		Short: "Queue an update; only the given fields are sent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data := map[string]any{"id": args[0]}
			setChanged(cmd.Flags(), data, contactKeys)
			return opts.queue(cmd, models.KindContactUpdate, models.Change{
				Entity: models.EntityContact,
				Op:     models.OpUpsert,
				Data:   data,
			})
		},
	}
	contactFlags(edit.Flags())

	cmd.AddCommand(add, edit, deleteCommand(opts, models.EntityContact))
	return cmd
}

func NewJournalCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Queue journal entry changes",
	}

	var id, text, at string
	add := &cobra.Command{
		Use:   "add",
		Short: "Queue a journal entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			created := time.Now().UTC()
			if at != "" {
				t, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at: %w", err)
				}
				created = t
			}
			return opts.queue(cmd, models.KindJournalCreate, models.Change{
				Entity: models.EntityJournalEntry,
				Op:     models.OpUpsert,
				Data: map[string]any{
					"id":         newID(id),
					"raw_text":   text,
					"created_at": created.Format(time.RFC3339Nano),
				},
			})
		},
	}
	add.Flags().StringVar(&id, "id", "", "entry id (generated when empty)")
	add.Flags().StringVarP(&text, "text", "t", "", "entry text")
	add.Flags().StringVar(&at, "at", "", "entry time, RFC 3339 (default now)")
	_ = add.MarkFlagRequired("text")

	cmd.AddCommand(add, deleteCommand(opts, models.EntityJournalEntry))
	return cmd
}

func NewActionCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "action",
		Short: "Queue action item changes",
	}

	var id, contactID, entryID, due string
	add := &cobra.Command{
		Use:   "add",
		Short: "Queue an action item for a contact, sourced from a journal entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data := map[string]any{
				"id":              newID(id),
				"contact_id":      contactID,
				"source_entry_id": entryID,
			}
			if due != "" {
				t, err := time.Parse(time.RFC3339, due)
				if err != nil {
					return fmt.Errorf("invalid --due: %w", err)
				}
				data["due_at"] = t.UTC().Format(time.RFC3339Nano)
			}
			setChanged(cmd.Flags(), data, map[string]string{
				"reason": "suggestion_reason",
				"status": "status",
			})
			return opts.queue(cmd, models.KindSyncPush, models.Change{
				Entity: models.EntityActionItem,
				Op:     models.OpUpsert,
				Data:   data,
			})
		},
	}
	add.Flags().StringVar(&id, "id", "", "action item id (generated when empty)")
	add.Flags().StringVar(&contactID, "contact", "", "contact id")
	add.Flags().StringVar(&entryID, "entry", "", "source journal entry id")
	add.Flags().StringVar(&due, "due", "", "due time, RFC 3339")
	add.Flags().String("reason", "", "why the action was suggested")
	add.Flags().String("status", "", "status")
	_ = add.MarkFlagRequired("contact")
	_ = add.MarkFlagRequired("entry")

	cmd.AddCommand(add, deleteCommand(opts, models.EntityActionItem))
	return cmd
}
