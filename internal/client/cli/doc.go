// Package cli is the kinsync client command line.
//
// Local edits are queued in the sqlite outbox (contact, journal, action,
// enqueue), delivered with flush or by the watch loop, and remote changes are
// fetched with pull, which remembers its cursor between runs.
package cli
