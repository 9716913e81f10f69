package ballotfeed

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/abrezinsky/awardpicks/internal/logger"
)

// noopLogger implements logger.Logger but discards all output
type noopLogger struct{}

func (noopLogger) Debug(msg string, args ...any)   {}
func (noopLogger) Info(msg string, args ...any)    {}
func (noopLogger) Warn(msg string, args ...any)    {}
func (noopLogger) Error(msg string, args ...any)   {}
func (n noopLogger) With(args ...any) logger.Logger { return n }
func (noopLogger) SetLevel(level slog.Level)        {}
func (noopLogger) GetLevel() slog.Level             { return slog.LevelInfo }
func (noopLogger) EnableHTTPLogging()               {}
func (noopLogger) DisableHTTPLogging()              {}
func (noopLogger) IsHTTPLoggingEnabled() bool       { return false }

var _ logger.Logger = noopLogger{}

func TestFlexString_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`"goty"`, "goty"},
		{`"  padded  "`, "padded"},
		{`42`, "42"},
		{`3.5`, "3.5"},
		{`null`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var f FlexString
			if err := json.Unmarshal([]byte(tt.input), &f); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if f.String() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, f)
			}
		})
	}

	var f FlexString
	if err := json.Unmarshal([]byte(`{"id":1}`), &f); err == nil {
		t.Error("expected error for object value")
	}
}

func TestHTTPClient_FetchBallot_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2026/ballot.json" {
			t.Errorf("expected path /2026/ballot.json, got %s", r.URL.Path)
		}
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		w.Write([]byte(`{
			"event": "Game Awards 2026",
			"categories": [
				{"id": "goty", "name": "Game of the Year", "order": 1,
				 "nominees": [{"id": 7, "name": "Astro Bot"}, {"id": "balatro", "name": "Balatro"}]}
			]
		}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL+"/2026/", noopLogger{})
	ballot, err := client.FetchBallot(context.Background())
	if err != nil {
		t.Fatalf("FetchBallot failed: %v", err)
	}
	if ballot.Event != "Game Awards 2026" {
		t.Errorf("unexpected event %q", ballot.Event)
	}
	if len(ballot.Categories) != 1 || len(ballot.Categories[0].Nominees) != 2 {
		t.Fatalf("unexpected ballot %+v", ballot)
	}
	if ballot.Categories[0].Nominees[0].ID != "7" {
		t.Errorf("expected numeric id coerced to \"7\", got %q", ballot.Categories[0].Nominees[0].ID)
	}
}

func TestHTTPClient_FetchWinners(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"winners": {"goty": "astro-bot", "best-indie": {"nominee_id": "balatro"}}}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, noopLogger{})
	winners, err := client.FetchWinners(context.Background())
	if err != nil {
		t.Fatalf("FetchWinners failed: %v", err)
	}
	if winners["goty"] != "astro-bot" {
		t.Errorf("unexpected goty winner %v", winners["goty"])
	}
	if _, ok := winners["best-indie"].(map[string]any); !ok {
		t.Errorf("expected object value preserved, got %T", winners["best-indie"])
	}
}

func TestHTTPClient_FetchWinners_EmptyDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	winners, err := NewHTTPClient(server.URL, noopLogger{}).FetchWinners(context.Background())
	if err != nil {
		t.Fatalf("FetchWinners failed: %v", err)
	}
	if winners == nil || len(winners) != 0 {
		t.Errorf("expected empty non-nil map, got %v", winners)
	}
}

func TestHTTPClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) }},
		{"not found", func(w http.ResponseWriter, r *http.Request) { http.NotFound(w, r) }},
		{"invalid json", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("not json")) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewHTTPClient(server.URL, noopLogger{})
			if _, err := client.FetchBallot(context.Background()); err == nil {
				t.Error("expected FetchBallot error")
			}
			if _, err := client.FetchWinners(context.Background()); err == nil {
				t.Error("expected FetchWinners error")
			}
		})
	}
}

func TestHTTPClient_NoBaseURL(t *testing.T) {
	client := NewHTTPClient("", noopLogger{})
	if _, err := client.FetchBallot(context.Background()); err == nil {
		t.Error("expected error without base URL")
	}
}

func TestHTTPClient_ConnectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewHTTPClientWithHTTPClient(url, http.DefaultClient, noopLogger{})
	if _, err := client.FetchBallot(context.Background()); err == nil {
		t.Error("expected connection error")
	}
}

func TestHTTPClient_SetBaseURL(t *testing.T) {
	client := NewHTTPClient("http://a.example", noopLogger{})
	client.SetBaseURL("http://b.example/feed/")
	if client.BaseURL() != "http://b.example/feed" {
		t.Errorf("expected trailing slash trimmed, got %q", client.BaseURL())
	}
}

func TestMockClient(t *testing.T) {
	m := NewMockClient()
	ballot, err := m.FetchBallot(context.Background())
	if err != nil || len(ballot.Categories) == 0 {
		t.Fatalf("expected default ballot, got %v (%v)", ballot, err)
	}

	boom := errors.New("feed down")
	m = NewMockClient(WithBallotError(boom), WithWinnersError(boom), WithBaseURL("http://x"))
	if _, err := m.FetchBallot(context.Background()); err != boom {
		t.Errorf("expected injected ballot error, got %v", err)
	}
	if _, err := m.FetchWinners(context.Background()); err != boom {
		t.Errorf("expected injected winners error, got %v", err)
	}
	if m.Calls() != 2 || m.BaseURL() != "http://x" {
		t.Errorf("unexpected mock state: calls=%d url=%q", m.Calls(), m.BaseURL())
	}
}
