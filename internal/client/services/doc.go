// Package services contains the kinsync client's application services: the
// outbox drain loop, change enqueueing, cursor-driven pulls, and the
// connectivity watcher that flushes the outbox when the server comes back.
package services
