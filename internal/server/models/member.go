package models

type Member struct {
	WorkspaceID string
	UserID      string
	Role        string
}
