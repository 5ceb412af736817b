package rest

import (
	"context"

	"github.com/dmitrijs2005/kinsync/internal/server/models"
	"github.com/dmitrijs2005/kinsync/internal/server/services"
)

type pushCall struct {
	workspaceID, userID, clientID string
	changes                       []models.Change
}

type pullCall struct {
	workspaceID, userID, cursor, clientID string
}

type fakeSync struct {
	pushes  []pushCall
	pushErr error

	pulls    []pullCall
	pullOut  *services.PullResult
	pullErr  error
	pullHook func()

	stateOut *models.SyncState
	stateErr error
}

func (f *fakeSync) Push(_ context.Context, ws, user, client string, changes []models.Change) ([]services.Outcome, error) {
	f.pushes = append(f.pushes, pushCall{ws, user, client, changes})
	if f.pushErr != nil {
		return nil, f.pushErr
	}
	out := make([]services.Outcome, len(changes))
	for i := range changes {
		out[i] = services.Outcome{Index: i, Applied: true}
	}
	return out, nil
}

func (f *fakeSync) Pull(_ context.Context, ws, user, cursor, client string) (*services.PullResult, error) {
	if f.pullHook != nil {
		f.pullHook()
	}
	f.pulls = append(f.pulls, pullCall{ws, user, cursor, client})
	return f.pullOut, f.pullErr
}

func (f *fakeSync) State(context.Context, string, string, string) (*models.SyncState, error) {
	return f.stateOut, f.stateErr
}

type fakeMembers struct {
	err   error
	calls int
}

func (f *fakeMembers) Check(context.Context, string, string) error {
	f.calls++
	return f.err
}

type fakeAttachments struct {
	task      *models.UploadTask
	uploadErr error

	completed   []string
	completeErr error

	url    string
	urlErr error
}

func (f *fakeAttachments) RequestUpload(context.Context, string, string) (*models.UploadTask, error) {
	return f.task, f.uploadErr
}

func (f *fakeAttachments) CompleteUpload(_ context.Context, _, key string) error {
	if f.completeErr != nil {
		return f.completeErr
	}
	f.completed = append(f.completed, key)
	return nil
}

func (f *fakeAttachments) DownloadURL(context.Context, string, string) (string, error) {
	return f.url, f.urlErr
}
