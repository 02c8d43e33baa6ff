package artbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/clintonluvs29/anime-fiesta/internal/domain"
	"github.com/clintonluvs29/anime-fiesta/internal/infra"
)

// Options controls how the Artbox client is configured.
type Options struct {
	RESTBaseURL string
	SocketURL   string
	APIKey      string
	HTTPClient  *http.Client
	Logger      *infra.Logger
}

// Client is the gateway to the Artbox render service: REST calls for control
// and a websocket for lifecycle events. It is constructed once at startup and
// injected; the socket connection itself is a lazily-initialized handle that
// is dialed on first use and re-dialed on the next use after a failure.
type Client struct {
	httpClient *http.Client
	restURL    string
	sockURL    string
	token      string
	logger     infra.Logger

	events chan Event

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewClient constructs an Artbox client with sane defaults. Callers may
// provide a nil HTTP client; a reusable one with a timeout will be created.
func NewClient(opts Options) *Client {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &Client{
		httpClient: client,
		restURL:    strings.TrimRight(opts.RESTBaseURL, "/"),
		sockURL:    strings.TrimSpace(opts.SocketURL),
		token:      strings.TrimSpace(opts.APIKey),
		logger:     logger,
		events:     make(chan Event, 256),
	}
}

// Degraded reports whether the client is missing credentials and will refuse
// to start projects.
func (c *Client) Degraded() bool {
	return c.token == ""
}

// Events returns the normalized provider event stream. The channel is shared
// across socket reconnects and is never closed; consumers stop via their own
// context.
func (c *Client) Events() <-chan Event {
	return c.events
}

// StartProject launches one batch generation and returns the provider's
// project id plus the ordered sub-task ids. The event socket is brought up
// before the REST call so no notification for the new project can slip by.
func (c *Client) StartProject(ctx context.Context, req StartRequest) (StartResponse, error) {
	if c.token == "" {
		return StartResponse{}, fmt.Errorf("artbox: no api key configured: %w", domain.ErrProviderUnavailable)
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return StartResponse{}, fmt.Errorf("artbox: prompt required: %w", domain.ErrInvalidPrompt)
	}
	if req.Count <= 0 {
		return StartResponse{}, fmt.Errorf("artbox: count must be positive")
	}
	if err := c.ensureSocket(ctx); err != nil {
		return StartResponse{}, fmt.Errorf("artbox: event socket: %w: %w", domain.ErrProviderUnavailable, err)
	}

	payload := startRequest{
		Prompt:    strings.TrimSpace(req.Prompt),
		Count:     req.Count,
		Character: strings.TrimSpace(req.Character),
		SceneType: strings.TrimSpace(req.SceneType),
		Seed:      req.Seed,
	}

	var out startResponse
	if err := c.postJSON(ctx, "/v1/generations", payload, &out); err != nil {
		return StartResponse{}, err
	}
	if out.ProjectID == "" || len(out.JobIDs) == 0 {
		return StartResponse{}, fmt.Errorf("artbox: start response missing project or jobs")
	}
	return StartResponse{ProjectID: out.ProjectID, JobIDs: out.JobIDs}, nil
}

// CancelProject asks the provider to stop a running batch. An unknown id is
// not an error: the project may already be finished provider-side.
func (c *Client) CancelProject(ctx context.Context, projectID string) error {
	if c.token == "" {
		return fmt.Errorf("artbox: no api key configured: %w", domain.ErrProviderUnavailable)
	}
	endpoint := fmt.Sprintf("%s/v1/generations/%s/cancel", c.restURL, projectID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("artbox: cancel: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("artbox: cancel: http %d", resp.StatusCode)
	}
	return nil
}

// JobResult fetches the result reference for a finished sub-task. Used when
// the completion event arrived without one.
func (c *Client) JobResult(ctx context.Context, jobID string) (string, error) {
	endpoint := fmt.Sprintf("%s/v1/jobs/%s/result", c.restURL, jobID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("artbox: job result: %w", err)
	}
	defer resp.Body.Close()

	var out resultResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return "", fmt.Errorf("artbox: job result: http %d", resp.StatusCode)
		}
		return "", fmt.Errorf("artbox: job result: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		if out.Message != "" {
			return "", fmt.Errorf("artbox: job result: %s (%s)", out.Message, out.Code)
		}
		return "", fmt.Errorf("artbox: job result: http %d", resp.StatusCode)
	}
	if strings.TrimSpace(out.ImageURL) == "" {
		return "", fmt.Errorf("artbox: job result missing image url")
	}
	return out.ImageURL, nil
}

// FetchImage downloads rendered image bytes for the result proxy. Result URLs
// point at the provider's delivery hosts, so no auth header is attached.
func (c *Client) FetchImage(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("artbox: fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, "", fmt.Errorf("artbox: fetch image: http %d", resp.StatusCode)
	}
	blob, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("artbox: fetch image: %w", err)
	}
	return blob, resp.Header.Get("Content-Type"), nil
}

// Close tears down the socket connection if one is open.
func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()
	if conn != nil {
		return conn.Close()
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.restURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("artbox: %w: %w", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	raw := json.RawMessage{}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil && resp.StatusCode < http.StatusBadRequest {
		return fmt.Errorf("artbox: decode response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr startResponse
		if len(raw) > 0 && json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("artbox: %s (%s)", apiErr.Message, apiErr.Code)
		}
		return fmt.Errorf("artbox: http %d", resp.StatusCode)
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("artbox: decode response: %w", err)
		}
	}
	return nil
}
