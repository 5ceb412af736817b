package cli

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/kinsync/internal/client/models"
	"github.com/dmitrijs2005/kinsync/internal/server/auth"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testWorkspace = "aaaaaaaa-0000-0000-0000-000000000001"
	testClientID  = "dev-a"
)

// fakeServer records what the CLI sends and serves canned pull pages.
type fakeServer struct {
	mu      sync.Mutex
	pushes  []models.PushRequest
	cursors []string
	pages   []models.PullResponse
	// pushStatus overrides the push response when non-zero.
	pushStatus int
	headers    http.Header
	uploaded   []byte
	completed  string
	srv        *httptest.Server
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	f := &fakeServer{}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /v1/sync/push", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.headers = r.Header.Clone()
		if f.pushStatus != 0 {
			w.WriteHeader(f.pushStatus)
			return
		}
		var req models.PushRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.pushes = append(f.pushes, req)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("GET /v1/sync/pull", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		cursor := r.URL.Query().Get("cursor")
		f.cursors = append(f.cursors, cursor)
		page := models.PullResponse{Changes: []models.LedgerEntry{}, NextCursor: cursor}
		if len(f.pages) > 0 {
			page, f.pages = f.pages[0], f.pages[1:]
		}
		_ = json.NewEncoder(w).Encode(page)
	})
	mux.HandleFunc("GET /v1/sync/state", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.SyncState{
			WorkspaceID: testWorkspace,
			UserID:      "u1",
			ClientID:    r.URL.Query().Get("clientId"),
			LastCursor:  "t1|e1",
		})
	})
	mux.HandleFunc("POST /v1/sync/attachments", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.UploadTask{Key: "ws/k1", URL: f.srv.URL + "/bucket/ws/k1"})
	})
	mux.HandleFunc("PUT /bucket/ws/k1", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.uploaded, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /v1/sync/attachments/complete", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Key string `json:"key"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.completed = body.Key
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("GET /v1/sync/attachments/download", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"url": "https://s3.example/" + r.URL.Query().Get("key")})
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeServer) pushed() []models.PushRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.PushRequest(nil), f.pushes...)
}

func (f *fakeServer) setPages(pages ...models.PullResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages = pages
}

func (f *fakeServer) seenCursors() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.cursors...)
}

func (f *fakeServer) upload() ([]byte, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.uploaded, f.completed
}

func (f *fakeServer) header(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.headers.Get(name)
}

func (f *fakeServer) setPushStatus(code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushStatus = code
}

type harness struct {
	t      *testing.T
	server *fakeServer
	db     string
}

func newHarness(t *testing.T) *harness {
	t.Setenv("KINSYNC_CONFIG", "")
	return &harness{
		t:      t,
		server: newFakeServer(t),
		db:     filepath.Join(t.TempDir(), "data", "kinsync.db"),
	}
}

func (h *harness) run(args ...string) (string, string, error) {
	h.t.Helper()
	base := []string{
		"--server", h.server.srv.URL,
		"--token", "tok",
		"--workspace", testWorkspace,
		"--client-id", testClientID,
		"--db", h.db,
		"--log-level", "error",
	}
	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append(args, base...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, stderr, err := h.run(args...)
	require.NoError(h.t, err, stderr)
	return out
}

func TestContactAddFlush(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("contact", "add", "--name", "Alice", "--notes", "met at conf")
	assert.Contains(t, out, "queued upsert contact")

	list := h.mustRun("outbox", "list")
	assert.Contains(t, list, models.KindContactCreate)
	assert.Contains(t, list, "/v1/sync/push")

	out = h.mustRun("flush")
	assert.Equal(t, "delivered 1 of 1, 0 remaining\n", out)

	pushes := h.server.pushed()
	require.Len(t, pushes, 1)
	push := pushes[0]
	assert.Equal(t, testClientID, push.ClientID)
	require.Len(t, push.Changes, 1)
	c := push.Changes[0]
	assert.Equal(t, models.EntityContact, c.Entity)
	assert.Equal(t, "Alice", c.Data["name"])
	assert.Equal(t, "met at conf", c.Data["notes"])
	assert.NotContains(t, c.Data, "status")
	assert.NotEmpty(t, c.ClientChangeID)

	assert.Equal(t, "Bearer tok", h.server.header("Authorization"))
	assert.Equal(t, testWorkspace, h.server.header("X-Workspace-Id"))

	list = h.mustRun("outbox", "list")
	assert.NotContains(t, list, models.KindContactCreate)
}

func TestFlushKeepsRejectedItems(t *testing.T) {
	h := newHarness(t)
	h.server.setPushStatus(http.StatusForbidden)

	h.mustRun("contact", "delete", "5b0e2f0e-4b1a-4c55-9a53-0f5d2c8f8a11")
	h.mustRun("journal", "add", "--text", "coffee with Bob", "--at", "2024-05-01T09:00:00Z")

	out, _, err := h.run("flush")
	require.Error(t, err)
	assert.Contains(t, out, "delivered 0 of 1, 2 remaining")

	h.server.setPushStatus(0)
	out = h.mustRun("flush")
	assert.Equal(t, "delivered 2 of 2, 0 remaining\n", out)

	pushes := h.server.pushed()
	require.Len(t, pushes, 2)
	assert.Equal(t, models.OpDelete, pushes[0].Changes[0].Op)
	j := pushes[1].Changes[0]
	assert.Equal(t, models.EntityJournalEntry, j.Entity)
	assert.Equal(t, "coffee with Bob", j.Data["raw_text"])
	assert.Equal(t, "2024-05-01T09:00:00Z", j.Data["created_at"])
}

func TestEnqueueRaw(t *testing.T) {
	h := newHarness(t)

	h.mustRun("enqueue", "--entity", "action_item",
		"--data", `{"id":"a1","contact_id":"c1","source_entry_id":"j1"}`, "--change-id", "k1")
	h.mustRun("flush")

	pushes := h.server.pushed()
	require.Len(t, pushes, 1)
	assert.Equal(t, "k1", pushes[0].Changes[0].ClientChangeID)

	_, _, err := h.run("enqueue", "--entity", "note", "--data", `{"id":"x"}`)
	require.ErrorContains(t, err, "unknown entity")

	_, _, err = h.run("enqueue", "--entity", "contact", "--data", `not json`)
	require.ErrorContains(t, err, "invalid --data")
}

func TestActionAdd(t *testing.T) {
	h := newHarness(t)

	h.mustRun("action", "add", "--contact", "c1", "--entry", "j1", "--due", "2024-06-01T12:00:00+02:00", "--reason", "follow up")
	h.mustRun("flush")

	pushes := h.server.pushed()
	require.Len(t, pushes, 1)
	data := pushes[0].Changes[0].Data
	assert.Equal(t, "c1", data["contact_id"])
	assert.Equal(t, "j1", data["source_entry_id"])
	assert.Equal(t, "2024-06-01T10:00:00Z", data["due_at"])
	assert.Equal(t, "follow up", data["suggestion_reason"])
}

func TestPullAdvancesCursorAcrossRuns(t *testing.T) {
	h := newHarness(t)
	h.server.setPages(models.PullResponse{
		Changes:    []models.LedgerEntry{{ID: "e1", Entity: models.EntityContact, Op: models.OpUpsert}},
		NextCursor: "t1|e1",
	})

	out, stderr, err := h.run("pull")
	require.NoError(t, err)
	assert.Contains(t, out, `"id":"e1"`)
	assert.Contains(t, stderr, `pulled 1 entries in 1 pages, cursor "t1|e1"`)

	h.mustRun("pull", "-q")
	assert.Equal(t, []string{"", "t1|e1", "t1|e1"}, h.server.seenCursors())

	state := h.mustRun("state", "--local")
	var view stateView
	require.NoError(t, json.Unmarshal([]byte(state), &view))
	assert.Equal(t, "t1|e1", view.LocalCursor)
	assert.Equal(t, testClientID, view.ClientID)
	assert.Nil(t, view.Server)
}

func TestState(t *testing.T) {
	h := newHarness(t)
	h.mustRun("contact", "add", "--name", "Alice")

	var view stateView
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("state")), &view))
	assert.Equal(t, 1, view.Pending)
	require.NotNil(t, view.Server)
	assert.Equal(t, testClientID, view.Server.ClientID)
	assert.Equal(t, "t1|e1", view.Server.LastCursor)
}

func TestPing(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, "online\n", h.mustRun("ping"))

	h.server.srv.Close()
	out, _, err := h.run("ping")
	require.Error(t, err)
	assert.Equal(t, "offline\n", out)
}

func TestAttach(t *testing.T) {
	h := newHarness(t)
	file := filepath.Join(t.TempDir(), "photo.txt")
	require.NoError(t, os.WriteFile(file, []byte("hello"), 0o600))

	out := h.mustRun("attach", "upload", file)
	assert.Equal(t, "ws/k1\n", out)
	uploaded, completed := h.server.upload()
	assert.Equal(t, []byte("hello"), uploaded)
	assert.Equal(t, "ws/k1", completed)

	out = h.mustRun("attach", "url", "ws/k1")
	assert.Equal(t, "https://s3.example/ws/k1\n", out)
}

func TestToken(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("token", "--user", "u1", "--secret", "s3cret", "--ttl", "5m")
	userID, err := auth.GetUserIDFromToken(strings.TrimSpace(out), []byte("s3cret"))
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)

	_, _, err = h.run("token", "--user", "u1")
	require.Error(t, err)
}

func TestConfigFileAndEnv(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "client.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"request_timeout":"2s","workspace_id":"ignored"}`), 0o600))
	t.Setenv("KINSYNC_CONFIG", path)

	// flags given by the harness win over the file
	h.mustRun("contact", "add", "--name", "Alice")
	h.mustRun("flush")
	assert.Equal(t, testWorkspace, h.server.header("X-Workspace-Id"))

	_, _, err := h.run("flush", "--timeout", "soon")
	require.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`{`), 0o600))
	_, _, err = h.run("flush")
	require.ErrorContains(t, err, "error parsing config")

}
