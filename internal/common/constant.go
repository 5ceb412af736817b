// Package common contains shared constants and sentinel errors used across
// kinsync server and client components.
package common

const (
	// AuthorizationHeaderName carries the bearer access token.
	AuthorizationHeaderName = "Authorization"

	// WorkspaceHeaderName selects the workspace (tenant) a request acts on.
	WorkspaceHeaderName = "X-Workspace-Id"

	// BearerPrefix precedes the token in the Authorization header.
	BearerPrefix = "Bearer "

	// ZeroID is the id half of the cursor handed to a tenant with no history.
	ZeroID = "00000000-0000-0000-0000-000000000000"
)
