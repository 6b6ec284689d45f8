package bridge

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(srv.URL, 2*time.Second, slog.New(slog.DiscardHandler))
	return client, srv
}

func TestExecute_MapsResponse(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/command" {
			t.Errorf("path = %q, want /command", r.URL.Path)
		}
		var req commandRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Command != "open downloads" {
			t.Errorf("command = %q", req.Command)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(commandResponse{
			Success: true,
			Result:  "Opened ~/Downloads",
		})
	}))

	res := client.Execute("open downloads")
	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	if res.Text != "Opened ~/Downloads" {
		t.Fatalf("text = %q", res.Text)
	}
	if res.Kind != KindPlain {
		t.Fatalf("kind = %q, want plain", res.Kind)
	}
	if client.Health() != HealthHealthy {
		t.Fatalf("health = %v, want healthy", client.Health())
	}
}

func TestExecute_ErrorWithRemedy(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(commandResponse{
			Success: false,
			Error:   "no such application",
			Metadata: map[string]any{
				"remedy": "Try 'open <path>' instead.",
			},
		})
	}))

	res := client.Execute("launch nothing")
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Text != "no such application" {
		t.Fatalf("text = %q", res.Text)
	}
	if res.Remedy != "Try 'open <path>' instead." {
		t.Fatalf("remedy = %q", res.Remedy)
	}
	if got := res.DisplayText(); !strings.Contains(got, res.Remedy) {
		t.Fatalf("display text missing remedy: %q", got)
	}
}

func TestExecute_ConfirmationFlow(t *testing.T) {
	confirmed := false
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/command":
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(commandResponse{
				Success: false,
				Result:  "This will delete 3 files.",
				Metadata: map[string]any{
					"requires_confirmation": true,
					"cache_key":             "k-42",
				},
			})
		case "/command/confirm":
			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			if body["cache_key"] != "k-42" || body["confirmed"] != true {
				t.Errorf("unexpected confirm body: %v", body)
			}
			confirmed = true
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(commandResponse{Success: true, Result: "Deleted 3 files."})
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	}))

	res := client.Execute("clean temp files")
	if !res.RequiresConfirmation || res.CacheKey != "k-42" {
		t.Fatalf("confirmation not flagged: %+v", res)
	}

	follow := client.Confirm(res.CacheKey, true)
	if !confirmed {
		t.Fatal("confirm endpoint not hit")
	}
	if !follow.Success || follow.Text != "Deleted 3 files." {
		t.Fatalf("unexpected confirm result: %+v", follow)
	}
}

func TestExecute_UnreachableBackend(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 200*time.Millisecond, slog.New(slog.DiscardHandler))

	res := client.Execute("anything")
	if res.Success {
		t.Fatal("expected failure result")
	}
	if res.Remedy == "" {
		t.Fatal("expected a remedy for an unreachable backend")
	}
	if client.Health() != HealthUnreachable {
		t.Fatalf("health = %v, want unreachable", client.Health())
	}
}

func TestExecute_ContextWindowCapped(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(commandResponse{Success: true, Result: "ok"})
	}))

	for i := 0; i < contextWindow+5; i++ {
		client.Execute(fmt.Sprintf("command %d", i))
	}

	turns := client.Turns()
	if len(turns) != contextWindow {
		t.Fatalf("turn count = %d, want %d", len(turns), contextWindow)
	}
	// Oldest retained turn should be the first inside the window.
	if turns[0].Command != fmt.Sprintf("command %d", 5) {
		t.Fatalf("oldest turn = %q", turns[0].Command)
	}
}

func TestExecute_AdoptsBackendContext(t *testing.T) {
	echoed := []Turn{
		{Command: "first", Result: "one", Success: true},
		{Command: "second", Result: "two", Success: true},
	}
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(commandResponse{Success: true, Result: "ok", Context: echoed})
	}))

	client.Execute("second")
	turns := client.Turns()
	if len(turns) != 2 || turns[1].Command != "second" {
		t.Fatalf("backend context not adopted: %+v", turns)
	}
}

func TestClearContext(t *testing.T) {
	cleared := false
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/command":
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(commandResponse{Success: true, Result: "ok"})
		case "/context/clear":
			cleared = true
			w.WriteHeader(http.StatusOK)
		}
	}))

	client.Execute("hello")
	if err := client.ClearContext(); err != nil {
		t.Fatalf("clear context: %v", err)
	}
	if !cleared {
		t.Fatal("clear endpoint not hit")
	}
	if len(client.Turns()) != 0 {
		t.Fatal("local turns not cleared")
	}
}

func TestSubmit_DeliversAsync(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(commandResponse{Success: true, Result: "done"})
	}))

	got := make(chan Result, 1)
	client.Submit("slow thing", func(res Result) { got <- res })

	select {
	case res := <-got:
		if res.Text != "done" {
			t.Fatalf("text = %q", res.Text)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("callback never delivered")
	}
}

func TestCheckHealth(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))

	if status := client.CheckHealth(); status != HealthHealthy {
		t.Fatalf("status = %v, want healthy", status)
	}

	down := NewClient("http://127.0.0.1:1", 200*time.Millisecond, slog.New(slog.DiscardHandler))
	if status := down.CheckHealth(); status != HealthUnreachable {
		t.Fatalf("status = %v, want unreachable", status)
	}
}

func TestClassifyKind(t *testing.T) {
	cases := []struct {
		isAI bool
		text string
		want ResponseKind
	}{
		{false, "short answer", KindPlain},
		{false, "line one\nline two", KindDetailed},
		{false, strings.Repeat("x", 200), KindDetailed},
		{true, "short", KindGenerated},
		{true, "long\nmultiline", KindGenerated},
	}
	for _, tc := range cases {
		if got := ClassifyKind(tc.isAI, tc.text); got != tc.want {
			t.Errorf("ClassifyKind(%v, %q) = %q, want %q", tc.isAI, tc.text, got, tc.want)
		}
	}
}
