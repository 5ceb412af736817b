// Package models holds the client-side data shapes: outbox items kept in the
// local store and the wire types exchanged with the sync server.
package models
