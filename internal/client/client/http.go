package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/kinsync/internal/client/models"
	"github.com/dmitrijs2005/kinsync/internal/common"
	"github.com/goccy/go-json"
)

const maxErrorBody = 512

type HTTPClient struct {
	baseURL     string
	token       string
	workspaceID string
	http        *http.Client
}

// NewHTTPClient returns a client for the server at baseURL. A zero timeout
// means no per-request timeout beyond the caller's context.
func NewHTTPClient(baseURL, token, workspaceID string, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", baseURL)
	}
	return &HTTPClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		token:       token,
		workspaceID: workspaceID,
		http:        &http.Client{Timeout: timeout},
	}, nil
}

func (c *HTTPClient) HasToken() bool {
	return c.token != ""
}

func (c *HTTPClient) resolve(target string) string {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return target
	}
	if !strings.HasPrefix(target, "/") {
		target = "/" + target
	}
	return c.baseURL + target
}

func (c *HTTPClient) send(ctx context.Context, method, target string, body []byte) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.resolve(target), r)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+c.token)
	}
	if c.workspaceID != "" {
		req.Header.Set(common.WorkspaceHeaderName, c.workspaceID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp, nil
}

func (c *HTTPClient) Do(ctx context.Context, method, target string, body []byte) (int, error) {
	resp, err := c.send(ctx, method, target, body)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func statusError(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return common.ErrNotFound
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
}

// call sends in as JSON (when non-nil) and decodes a 2xx body into out
// (when non-nil).
func (c *HTTPClient) call(ctx context.Context, method, target string, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return fmt.Errorf("error encoding request: %w", err)
		}
	}

	resp, err := c.send(ctx, method, target, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}
	return nil
}

// Ping probes the server's liveness endpoint.
func (c *HTTPClient) Ping(ctx context.Context) error {
	code, err := c.Do(ctx, http.MethodGet, "/live", nil)
	if err != nil {
		return err
	}
	if code != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnavailable, code)
	}
	return nil
}

func (c *HTTPClient) Push(ctx context.Context, clientID string, changes []models.Change) error {
	if changes == nil {
		changes = []models.Change{}
	}
	return c.call(ctx, http.MethodPost, "/v1/sync/push", models.PushRequest{ClientID: clientID, Changes: changes}, nil)
}

func (c *HTTPClient) Pull(ctx context.Context, cursor, clientID string) (*models.PullResponse, error) {
	q := url.Values{}
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	if clientID != "" {
		q.Set("clientId", clientID)
	}
	target := "/v1/sync/pull"
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	var out models.PullResponse
	if err := c.call(ctx, http.MethodGet, target, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// State returns nil when the server has no record of clientID.
func (c *HTTPClient) State(ctx context.Context, clientID string) (*models.SyncState, error) {
	var out *models.SyncState
	target := "/v1/sync/state?" + url.Values{"clientId": {clientID}}.Encode()
	if err := c.call(ctx, http.MethodGet, target, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) RequestUpload(ctx context.Context) (*models.UploadTask, error) {
	var out models.UploadTask
	if err := c.call(ctx, http.MethodPost, "/v1/sync/attachments", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) CompleteUpload(ctx context.Context, key string) error {
	return c.call(ctx, http.MethodPost, "/v1/sync/attachments/complete", map[string]string{"key": key}, nil)
}

func (c *HTTPClient) DownloadURL(ctx context.Context, key string) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	target := "/v1/sync/attachments/download?" + url.Values{"key": {key}}.Encode()
	if err := c.call(ctx, http.MethodGet, target, nil, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

var _ Client = (*HTTPClient)(nil)
