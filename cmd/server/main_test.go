package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	analyticssvc "github.com/janisto/crisphub/internal/service/analytics"
	githubsvc "github.com/janisto/crisphub/internal/service/github"
)

func newTestHandler() http.Handler {
	return newRouter(analyticssvc.New(githubsvc.NewMockGitHubService()))
}

func TestHealthRoute(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp := httptest.NewRecorder()
	newTestHandler().ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if body["status"] != "healthy" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestCORSEchoesOriginWithCredentials(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/stats/octocat", nil)
	req.Header.Set("Origin", "https://dashboard.example.com")
	resp := httptest.NewRecorder()
	newTestHandler().ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "https://dashboard.example.com" {
		t.Fatalf("unexpected Access-Control-Allow-Origin %q", got)
	}
	if got := resp.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Fatalf("unexpected Access-Control-Allow-Credentials %q", got)
	}
}

func TestUpstreamFailureIs404(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/repo/octocat/missing", nil)
	resp := httptest.NewRecorder()
	newTestHandler().ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if body["detail"] == "" {
		t.Fatalf("expected detail message, got %v", body)
	}
}

func TestRootCommandFlags(t *testing.T) {
	cmd := newRootCmd()
	for _, name := range []string{"host", "port", "github-api-url"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("missing flag --%s", name)
		}
	}
}
