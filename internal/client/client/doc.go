// Package client contains the kinsync client's building blocks for talking
// to the sync server and for bootstrapping local storage.
//
// # Overview
//
//  1. Client is the API contract the client services depend on: Ping, Push,
//     Pull, State, attachment calls, and Do, which replays a raw outbox item.
//  2. HTTPClient implements it over HTTP/JSON. Every request carries the
//     bearer token and the X-Workspace-Id header.
//  3. InitDatabase and RunMigrations open the local SQLite store and apply the
//     embedded goose migrations.
//
// # Error Handling
//
// Transport failures wrap ErrUnavailable. HTTP 401 and 403 map to
// ErrUnauthorized and ErrForbidden, 404 to common.ErrNotFound. Any other
// non-2xx status is a *StatusError. Match with errors.Is / errors.As.
package client
