package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/dmitrijs2005/kinsync/internal/client/migrations"
	"github.com/dmitrijs2005/kinsync/internal/client/models"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

type doResult struct {
	code int
	err  error
}

type doCall struct {
	Method string
	URL    string
	Body   []byte
}

type fakeClient struct {
	mu sync.Mutex

	NoToken bool
	PingErr error

	// Responses is keyed by URL; missing keys answer 200.
	Responses map[string]doResult
	Calls     []doCall
	// OnDo runs before each Do returns.
	OnDo func(call doCall)

	Pages    []*models.PullResponse
	PullErr  error
	Cursors  []string
	StateOut *models.SyncState
	StateErr error
	LastID   string
}

func (f *fakeClient) HasToken() bool { return !f.NoToken }

func (f *fakeClient) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.PingErr
}

func (f *fakeClient) setPingErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PingErr = err
}

func (f *fakeClient) Do(_ context.Context, method, target string, body []byte) (int, error) {
	f.mu.Lock()
	call := doCall{Method: method, URL: target, Body: body}
	f.Calls = append(f.Calls, call)
	res, ok := f.Responses[target]
	hook := f.OnDo
	f.mu.Unlock()

	if hook != nil {
		hook(call)
	}
	if !ok {
		return 200, nil
	}
	return res.code, res.err
}

func (f *fakeClient) calls() []doCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]doCall(nil), f.Calls...)
}

func (f *fakeClient) Push(context.Context, string, []models.Change) error { return nil }

func (f *fakeClient) Pull(_ context.Context, cursor, clientID string) (*models.PullResponse, error) {
	f.Cursors = append(f.Cursors, cursor)
	f.LastID = clientID
	if f.PullErr != nil {
		return nil, f.PullErr
	}
	if len(f.Pages) == 0 {
		return &models.PullResponse{NextCursor: cursor}, nil
	}
	p := f.Pages[0]
	f.Pages = f.Pages[1:]
	return p, nil
}

func (f *fakeClient) State(_ context.Context, clientID string) (*models.SyncState, error) {
	f.LastID = clientID
	return f.StateOut, f.StateErr
}

func (f *fakeClient) RequestUpload(context.Context) (*models.UploadTask, error) { return nil, nil }
func (f *fakeClient) CompleteUpload(context.Context, string) error            { return nil }
func (f *fakeClient) DownloadURL(context.Context, string) (string, error)     { return "", nil }

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	p, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.Migrations)
	require.NoError(t, err)
	_, err = p.Up(context.Background())
	require.NoError(t, err)
	return db
}
