package app

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/abrezinsky/awardpicks/internal/auth"
	"github.com/abrezinsky/awardpicks/internal/config"
	"github.com/abrezinsky/awardpicks/internal/logger"
	"github.com/abrezinsky/awardpicks/internal/scoring"
	"github.com/abrezinsky/awardpicks/pkg/ballotfeed"
)

func testConfig() config.Config {
	return config.Config{
		Port:               8081,
		DBPath:             ":memory:",
		FlagshipCategoryID: "goty",
		FlagshipPoints:     scoring.DefaultFlagshipTable,
		OrdinaryPoints:     scoring.DefaultOrdinaryTable,
		RecomputeBatchSize: 50,
		RecomputeWorkers:   2,
	}
}

func createTestApp(t *testing.T, cfg config.Config) *App {
	t.Helper()
	app, err := New(logger.New(), cfg, ballotfeed.NewMockClient(), auth.New("test-password"))
	if err != nil {
		t.Fatalf("failed to create app: %v", err)
	}
	t.Cleanup(app.Close)
	return app
}

func TestNew_InitializesApp(t *testing.T) {
	app := createTestApp(t, testConfig())

	if app.handlers == nil {
		t.Error("expected handlers to be initialized")
	}
	if app.repo == nil {
		t.Error("expected repo to be initialized")
	}
	if app.cancelCountdown == nil {
		t.Error("expected cancelCountdown to be set")
	}
	if app.scheduler != nil {
		t.Error("expected no scheduler without an interval")
	}
}

func TestNew_FailsWithBadDBPath(t *testing.T) {
	cfg := testConfig()
	cfg.DBPath = "/nonexistent/path/db.sqlite"

	if _, err := New(logger.New(), cfg, ballotfeed.NewMockClient(), auth.New("pw")); err == nil {
		t.Error("expected error for invalid db path")
	}
}

func TestNew_StartsScheduler(t *testing.T) {
	cfg := testConfig()
	cfg.RecomputeInterval = time.Hour
	app := createTestApp(t, cfg)

	if app.scheduler == nil {
		t.Fatal("expected scheduler to be started")
	}
	if jobs := app.scheduler.Jobs(); len(jobs) != 1 {
		t.Errorf("expected 1 scheduled job, got %d", len(jobs))
	}
}

func TestApp_Router_ServesAPI(t *testing.T) {
	app := createTestApp(t, testConfig())
	server := httptest.NewServer(app.Router())
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/status")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for /api/status, got %d", resp.StatusCode)
	}
}

func TestApp_Recompute(t *testing.T) {
	app := createTestApp(t, testConfig())

	summary, err := app.Recompute(context.Background())
	if err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}
	if summary.Scopes != 1 || summary.Scored != 0 {
		t.Errorf("expected an empty global pass, got %+v", summary)
	}
}

func TestApp_Close_Twice(t *testing.T) {
	cfg := testConfig()
	cfg.RecomputeInterval = time.Hour
	app, err := New(logger.New(), cfg, ballotfeed.NewMockClient(), auth.New("pw"))
	if err != nil {
		t.Fatalf("failed to create app: %v", err)
	}

	app.Close()
	app.Close()
}

func TestSetDefaultBaseURL(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		want     string
	}{
		{"sets when empty", "", "http://192.168.1.100:8081"},
		{"replaces localhost", "http://localhost:8081", "http://192.168.1.100:8081"},
		{"keeps a usable URL", "http://192.168.1.50:8081", "http://192.168.1.50:8081"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := createTestApp(t, testConfig())
			ctx := context.Background()
			if tt.existing != "" {
				if err := app.repo.SetSetting(ctx, settingBaseURL, tt.existing); err != nil {
					t.Fatalf("failed to seed setting: %v", err)
				}
			}

			if got := app.setDefaultBaseURL("http://192.168.1.100:8081"); got != tt.want {
				t.Errorf("setDefaultBaseURL() = %q, want %q", got, tt.want)
			}
			if stored, _ := app.repo.GetSetting(ctx, settingBaseURL); stored != tt.want {
				t.Errorf("stored base_url = %q, want %q", stored, tt.want)
			}
		})
	}
}

func TestSetDefaultBaseURL_HandlesRepoError(t *testing.T) {
	app := createTestApp(t, testConfig())
	app.repo.DB().Close()

	if got := app.setDefaultBaseURL("http://192.168.1.100:8081"); got != "http://192.168.1.100:8081" {
		t.Errorf("expected fallback URL, got %q", got)
	}
}

func TestApp_Run_UsesConfiguredBaseURL(t *testing.T) {
	cfg := testConfig()
	cfg.BaseURL = "https://picks.example.com"
	app := createTestApp(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}

	if stored, _ := app.repo.GetSetting(context.Background(), settingBaseURL); stored != "" {
		t.Errorf("configured base URL should not be persisted, got %q", stored)
	}
}

// mockInterface implements networkInterface for testing
type mockInterface struct {
	flags net.Flags
	addrs []net.Addr
	err   error
}

func (m mockInterface) Flags() net.Flags {
	return m.flags
}

func (m mockInterface) Addrs() ([]net.Addr, error) {
	return m.addrs, m.err
}

type mockNetworkProvider struct {
	interfaces []networkInterface
	err        error
}

func (m mockNetworkProvider) Interfaces() ([]networkInterface, error) {
	return m.interfaces, m.err
}

func ipNet(s string) *net.IPNet {
	return &net.IPNet{IP: net.ParseIP(s), Mask: net.CIDRMask(24, 32)}
}

func TestGetPreferredIP(t *testing.T) {
	tests := []struct {
		name     string
		provider mockNetworkProvider
		want     string
	}{
		{
			name:     "provider error",
			provider: mockNetworkProvider{err: net.ErrClosed},
			want:     "localhost",
		},
		{
			name: "addrs error",
			provider: mockNetworkProvider{interfaces: []networkInterface{
				mockInterface{flags: net.FlagUp, err: net.ErrClosed},
			}},
			want: "localhost",
		},
		{
			name: "interface down",
			provider: mockNetworkProvider{interfaces: []networkInterface{
				mockInterface{addrs: []net.Addr{ipNet("192.168.1.10")}},
			}},
			want: "localhost",
		},
		{
			name: "ip addr type",
			provider: mockNetworkProvider{interfaces: []networkInterface{
				mockInterface{flags: net.FlagUp, addrs: []net.Addr{&net.IPAddr{IP: net.ParseIP("10.0.0.7")}}},
			}},
			want: "10.0.0.7",
		},
		{
			name: "private preferred over public",
			provider: mockNetworkProvider{interfaces: []networkInterface{
				mockInterface{flags: net.FlagUp, addrs: []net.Addr{ipNet("8.8.8.8"), ipNet("172.20.0.4")}},
			}},
			want: "172.20.0.4",
		},
		{
			name: "public fallback",
			provider: mockNetworkProvider{interfaces: []networkInterface{
				mockInterface{flags: net.FlagUp, addrs: []net.Addr{ipNet("8.8.8.8")}},
			}},
			want: "8.8.8.8",
		},
		{
			name: "loopback and ipv6 skipped",
			provider: mockNetworkProvider{interfaces: []networkInterface{
				mockInterface{flags: net.FlagUp, addrs: []net.Addr{ipNet("127.0.0.1"), &net.IPAddr{IP: net.ParseIP("fe80::1")}, ipNet("192.168.1.50")}},
			}},
			want: "192.168.1.50",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getPreferredIP(tt.provider); got != tt.want {
				t.Errorf("getPreferredIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetPreferredIP_RealProvider(t *testing.T) {
	ip := getPreferredIP(realNetworkProvider{})
	if ip == "" {
		t.Fatal("IP should never be empty")
	}
	if ip != "localhost" && net.ParseIP(ip).To4() == nil {
		t.Errorf("expected IPv4 or localhost, got %q", ip)
	}
}
