package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/clintonluvs29/anime-fiesta/internal/domain"
)

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestGenerateStartsProject(t *testing.T) {
	app, gw := newTestApp(t)
	srv := newTestServer(t, app)

	resp := postJSON(t, srv.URL+"/api/generate", `{"prompt":"battle scene","character":"rei","sceneType":"forest"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var out struct {
		ProjectID string `json:"projectId"`
		Jobs      []struct {
			ID    string `json:"id"`
			Index int    `json:"index"`
		} `json:"jobs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.ProjectID != "proj_1" {
		t.Errorf("projectId = %q, want proj_1", out.ProjectID)
	}
	if len(out.Jobs) != 16 {
		t.Fatalf("len(jobs) = %d, want 16", len(out.Jobs))
	}
	for i, j := range out.Jobs {
		if j.Index != i {
			t.Errorf("jobs[%d].index = %d, want %d", i, j.Index, i)
		}
		if j.ID != fmt.Sprintf("job_%02d", i) {
			t.Errorf("jobs[%d].id = %q", i, j.ID)
		}
	}

	req := gw.lastStart(t)
	if req.Count != 16 {
		t.Errorf("start count = %d, want 16", req.Count)
	}
	if want := "battle scene, featuring rei, forest scene"; req.Prompt != want {
		t.Errorf("start prompt = %q, want %q", req.Prompt, want)
	}

	snap, err := app.Registry.Snapshot("proj_1")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.State != domain.StatePending {
		t.Errorf("state = %q, want %q", snap.State, domain.StatePending)
	}
	if len(snap.Jobs) != 16 {
		t.Errorf("registered jobs = %d, want 16", len(snap.Jobs))
	}
}

func TestGenerateRejectsBadInput(t *testing.T) {
	app, _ := newTestApp(t)
	srv := newTestServer(t, app)

	tests := []struct {
		name string
		body string
	}{
		{"missing prompt", `{"character":"rei"}`},
		{"blank prompt", `{"prompt":"   "}`},
		{"malformed json", `{"prompt":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/api/generate", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestGenerateProviderUnavailable(t *testing.T) {
	app, gw := newTestApp(t)
	gw.startErr = fmt.Errorf("dial tcp: %w", domain.ErrProviderUnavailable)
	srv := newTestServer(t, app)

	resp := postJSON(t, srv.URL+"/api/generate", `{"prompt":"battle scene"}`)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
	if app.Registry.Len() != 0 {
		t.Errorf("registry len = %d, want 0", app.Registry.Len())
	}
}

func TestGenerateProviderError(t *testing.T) {
	app, gw := newTestApp(t)
	gw.startErr = fmt.Errorf("artbox: generation request rejected")
	srv := newTestServer(t, app)

	resp := postJSON(t, srv.URL+"/api/generate", `{"prompt":"battle scene"}`)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
}

func TestGenerateDuplicateProject(t *testing.T) {
	app, _ := newTestApp(t)
	srv := newTestServer(t, app)

	first := postJSON(t, srv.URL+"/api/generate", `{"prompt":"battle scene"}`)
	if first.StatusCode != http.StatusOK {
		t.Fatalf("first status = %d, want 200", first.StatusCode)
	}
	second := postJSON(t, srv.URL+"/api/generate", `{"prompt":"battle scene"}`)
	if second.StatusCode != http.StatusInternalServerError {
		t.Errorf("second status = %d, want 500", second.StatusCode)
	}
}
