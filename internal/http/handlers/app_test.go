package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/clintonluvs29/anime-fiesta/internal/domain"
	"github.com/clintonluvs29/anime-fiesta/internal/providers/artbox"
	"github.com/clintonluvs29/anime-fiesta/internal/relay"
)

// fakeGateway stands in for the Artbox client on both of its faces: the REST
// side the handlers call and the event source the bridge consumes.
type fakeGateway struct {
	events chan artbox.Event

	mu       sync.Mutex
	started  []artbox.StartRequest
	cancels  []string
	images   map[string][]byte
	startErr error

	projectID string
	jobIDs    []string
}

func (f *fakeGateway) StartProject(_ context.Context, req artbox.StartRequest) (artbox.StartResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, req)
	if f.startErr != nil {
		return artbox.StartResponse{}, f.startErr
	}
	return artbox.StartResponse{ProjectID: f.projectID, JobIDs: f.jobIDs}, nil
}

func (f *fakeGateway) FetchImage(_ context.Context, url string) ([]byte, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.images[url]; ok {
		return b, "image/png", nil
	}
	return nil, "", fmt.Errorf("unknown url %s", url)
}

func (f *fakeGateway) Events() <-chan artbox.Event { return f.events }

func (f *fakeGateway) CancelProject(_ context.Context, projectID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels = append(f.cancels, projectID)
	return nil
}

func (f *fakeGateway) JobResult(_ context.Context, jobID string) (string, error) {
	return "", fmt.Errorf("no deferred result for %s", jobID)
}

func (f *fakeGateway) lastStart(t *testing.T) artbox.StartRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.started) == 0 {
		t.Fatal("no start request recorded")
	}
	return f.started[len(f.started)-1]
}

func defaultJobIDs() []string {
	ids := make([]string, 16)
	for i := range ids {
		ids[i] = fmt.Sprintf("job_%02d", i)
	}
	return ids
}

// newTestApp wires a real registry, hub, and running bridge around the fake
// gateway, with short delays suited to tests.
func newTestApp(t *testing.T) (*App, *fakeGateway) {
	t.Helper()
	gw := &fakeGateway{
		events:    make(chan artbox.Event, 64),
		images:    map[string][]byte{},
		projectID: "proj_1",
		jobIDs:    defaultJobIDs(),
	}
	registry := relay.NewRegistry()
	hub := relay.NewHub()
	bridge := relay.NewBridge(relay.BridgeOptions{
		Provider:        gw,
		Registry:        registry,
		Hub:             hub,
		CompletionDelay: 40 * time.Millisecond,
		CleanupDelay:    10 * time.Second,
	})
	ctx, cancel := context.WithCancel(context.Background())
	go bridge.Run(ctx)
	t.Cleanup(func() {
		cancel()
		bridge.Stop()
	})

	return &App{
		Logger:   zerolog.Nop(),
		Gateway:  gw,
		Registry: registry,
		Hub:      hub,
		Bridge:   bridge,
	}, gw
}

func newTestServer(t *testing.T, app *App) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Post("/api/generate", app.Generate)
	r.Get("/api/progress/{projectId}", app.Progress)
	r.Get("/api/status/{projectId}", app.Status)
	r.Get("/api/cancel/{projectId}", app.Cancel)
	r.Get("/api/result/{projectId}/{jobId}", app.Result)
	r.Get("/api/health", app.Health)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

// sseClient reads one live event-stream response.
type sseClient struct {
	resp *http.Response
	br   *bufio.Reader
}

func openStream(t *testing.T, url string) *sseClient {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		t.Fatalf("stream status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		resp.Body.Close()
		t.Fatalf("content type = %q", ct)
	}
	c := &sseClient{resp: resp, br: bufio.NewReader(resp.Body)}
	t.Cleanup(func() { resp.Body.Close() })
	return c
}

// next blocks until the next data frame, skipping keepalive comments.
func (c *sseClient) next(t *testing.T) domain.Event {
	t.Helper()
	for {
		line, err := c.br.ReadString('\n')
		if err != nil {
			t.Fatalf("read stream: %v", err)
		}
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		payload, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			t.Fatalf("unexpected frame %q", line)
		}
		var evt domain.Event
		if err := json.Unmarshal([]byte(payload), &evt); err != nil {
			t.Fatalf("decode frame %q: %v", payload, err)
		}
		return evt
	}
}

// expectEnd drains comments until the server closes the stream.
func (c *sseClient) expectEnd(t *testing.T) {
	t.Helper()
	for {
		line, err := c.br.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		t.Fatalf("unexpected frame %q after end of stream", line)
	}
}
