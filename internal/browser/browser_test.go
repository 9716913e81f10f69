package browser

import (
	"errors"
	"slices"
	"testing"
)

type recordingCommander struct {
	name string
	args []string
	err  error
}

func (m *recordingCommander) Start(name string, args ...string) error {
	m.name = name
	m.args = args
	return m.err
}

func TestOpenWithCommander(t *testing.T) {
	const link = "http://192.168.1.20:8081/api/status"

	tests := []struct {
		goos string
		name string
		args []string
	}{
		{"linux", "xdg-open", []string{link}},
		{"freebsd", "xdg-open", []string{link}},
		{"darwin", "open", []string{link}},
		{"windows", "rundll32", []string{"url.dll,FileProtocolHandler", link}},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			cmd := &recordingCommander{}
			if err := OpenWithCommander(link, cmd, tt.goos); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cmd.name != tt.name || !slices.Equal(cmd.args, tt.args) {
				t.Errorf("started %s %v, want %s %v", cmd.name, cmd.args, tt.name, tt.args)
			}
		})
	}
}

func TestOpenWithCommander_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		url  string
		goos string
	}{
		{"unsupported platform", "http://localhost:8081", "plan9"},
		{"file scheme", "file:///etc/passwd", "linux"},
		{"no host", "http:///status", "linux"},
		{"unparseable", "http://[::1", "linux"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &recordingCommander{}
			if err := OpenWithCommander(tt.url, cmd, tt.goos); err == nil {
				t.Fatal("expected error")
			}
			if cmd.name != "" {
				t.Errorf("nothing should start, got %s", cmd.name)
			}
		})
	}
}

func TestOpenWithCommander_StartError(t *testing.T) {
	want := errors.New("no display")
	cmd := &recordingCommander{err: want}

	if err := OpenWithCommander("https://picks.example.com", cmd, "linux"); !errors.Is(err, want) {
		t.Errorf("expected start error, got %v", err)
	}
}

func TestOpen_UsesDefaultCommander(t *testing.T) {
	orig := defaultCommander
	defer func() { defaultCommander = orig }()

	cmd := &recordingCommander{}
	defaultCommander = cmd
	if err := Open("http://localhost:8081/api/status"); err != nil {
		// unsupported runtime.GOOS in this environment
		t.Skipf("Open: %v", err)
	}
	if cmd.name == "" {
		t.Error("expected default commander to be used")
	}
}
