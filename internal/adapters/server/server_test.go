package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/evanschultz/agenda/internal/adapters/server/common"
	"github.com/evanschultz/agenda/internal/adapters/storage/sqlite"
	"github.com/evanschultz/agenda/internal/app"
	"github.com/google/uuid"
)

// newTestService builds an adapter over an in-memory sqlite-backed service.
func newTestService(t *testing.T) common.AgendaService {
	t.Helper()
	repo, err := sqlite.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})
	return common.NewAppServiceAdapter(app.NewService(repo, uuid.NewString, time.Now, app.ServiceConfig{}))
}

func TestNewHandlerRoutesHealthAPIAndLogs(t *testing.T) {
	var logs bytes.Buffer
	logger := log.NewWithOptions(&logs, log.Options{Level: log.DebugLevel, Formatter: log.LogfmtFormatter})
	handler, cfg, err := NewHandler(Config{}, Dependencies{Service: newTestService(t), Logger: logger})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	if cfg.APIEndpoint != "/api" || cfg.MCPEndpoint != "/mcp" || cfg.HTTPBind != defaultBindAddress {
		t.Fatalf("unexpected normalized config %#v", cfg)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("healthz status=%d body=%q", rec.Code, rec.Body.String())
	}

	body := strings.NewReader(`{"titulo":"Deploy","categoria":"Ops"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/tasks", body)
	req.Header.Set(requestIDHeader, "req-1")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/tasks status=%d body=%s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get(requestIDHeader); got != "req-1" {
		t.Fatalf("request id header = %q, want req-1", got)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tasks?per_page=5", nil))
	var listed struct {
		Success bool             `json:"success"`
		Data    []map[string]any `json:"data"`
		Meta    map[string]int   `json:"meta"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&listed); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !listed.Success || len(listed.Data) != 1 || listed.Meta["perPage"] != 5 || listed.Meta["totalPages"] != 1 {
		t.Fatalf("unexpected list response %#v", listed)
	}
	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatal("expected generated request id")
	}

	out := logs.String()
	if !strings.Contains(out, "request_id=req-1") || !strings.Contains(out, "status=201") {
		t.Fatalf("expected request log line, got %q", out)
	}
}

func TestNewHandlerValidation(t *testing.T) {
	if _, _, err := NewHandler(Config{}, Dependencies{}); err == nil {
		t.Fatal("expected error without service")
	}
	if _, _, err := NewHandler(Config{APIEndpoint: "/x", MCPEndpoint: "x/"}, Dependencies{Service: newTestService(t)}); err == nil {
		t.Fatal("expected error for colliding endpoints")
	}
}

func TestNormalizeEndpoint(t *testing.T) {
	cases := map[string]string{
		"":         "/api",
		"/":        "/api",
		"v2":       "/v2",
		"/v2/":     "/v2",
		" /a/b/  ": "/a/b",
	}
	for in, want := range cases {
		if got := normalizeEndpoint(in, "/api"); got != want {
			t.Fatalf("normalizeEndpoint(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, listener, Config{}, Dependencies{Service: newTestService(t)})
	}()

	url := "http://" + listener.Addr().String() + "/readyz"
	var resp *http.Response
	for range 50 {
		resp, err = http.Get(url)
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("GET /readyz error = %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("readyz status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve() error = %v", err)
		}
	case <-time.After(defaultShutdownTimeout + time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}
