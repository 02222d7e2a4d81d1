package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/cadence/internal/constants"
)

type mockProcess struct {
	pid        int
	executable string
}

func (m *mockProcess) Pid() int           { return m.pid }
func (m *mockProcess) PPid() int          { return 0 }
func (m *mockProcess) Executable() string { return m.executable }

func stubConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	orig := userConfigDirFunc
	userConfigDirFunc = func() (string, error) { return dir, nil }
	t.Cleanup(func() { userConfigDirFunc = orig })
	return dir
}

func stubProcess(t *testing.T, executable string) {
	t.Helper()
	orig := findProcessFunc
	findProcessFunc = func(pid int) (ps.Process, error) {
		if executable == "" {
			return nil, nil
		}
		return &mockProcess{pid: pid, executable: executable}, nil
	}
	t.Cleanup(func() { findProcessFunc = orig })
}

func writeLockfile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, constants.NotifierLockfileName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestGetTrayAppConfigDir(t *testing.T) {
	base := stubConfigDir(t)
	trayDir := filepath.Join(base, constants.TrayAppIdentifier)

	dir, err := GetTrayAppConfigDir()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dir != trayDir {
		t.Errorf("expected %s, got %s", trayDir, dir)
	}

	custom := "/custom/cadence/dir"
	if err := os.MkdirAll(trayDir, 0o755); err != nil {
		t.Fatal(err)
	}
	settings := fmt.Sprintf(`{"settings": {"lockfile_dir": %q}}`, custom)
	if err := os.WriteFile(filepath.Join(trayDir, "settings.json"), []byte(settings), 0o644); err != nil {
		t.Fatal(err)
	}

	dir, err = GetTrayAppConfigDir()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dir != custom {
		t.Errorf("expected %s, got %s", custom, dir)
	}
}

func TestFindAndValidateTrayProcess(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		executable string
		wantErr    bool
		notRunning bool
	}{
		{name: "valid", content: "8080|123|s3cret", executable: "cadence-tray"},
		{name: "malformed", content: "8080|123", executable: "cadence-tray", wantErr: true},
		{name: "empty port", content: "|123|s3cret", executable: "cadence-tray", wantErr: true},
		{name: "port out of range", content: "70000|123|s3cret", executable: "cadence-tray", wantErr: true},
		{name: "bad pid", content: "8080|abc|s3cret", executable: "cadence-tray", wantErr: true},
		{name: "empty secret", content: "8080|123| ", executable: "cadence-tray", wantErr: true},
		{name: "process gone", content: "8080|123|s3cret", executable: "", wantErr: true, notRunning: true},
		{name: "wrong process", content: "8080|123|s3cret", executable: "bash", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubProcess(t, tt.executable)
			path := writeLockfile(t, t.TempDir(), tt.content)

			port, secret, err := findAndValidateTrayProcess(path)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if tt.notRunning && !errors.Is(err, ErrTrayNotRunning) {
					t.Errorf("expected ErrTrayNotRunning, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if port != "8080" || secret != "s3cret" {
				t.Errorf("got port=%q secret=%q", port, secret)
			}
		})
	}
}

func TestMissingLockfile(t *testing.T) {
	_, _, err := findAndValidateTrayProcess(filepath.Join(t.TempDir(), "nope.lock"))
	if !errors.Is(err, ErrTrayNotRunning) {
		t.Errorf("expected ErrTrayNotRunning, got %v", err)
	}
}

func TestNotifyGoalCompleted(t *testing.T) {
	var got WebhookPayload
	var gotSecret string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSecret = r.Header.Get("X-Cadence-Secret")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	u, err := url.Parse(server.URL)
	if err != nil {
		t.Fatal(err)
	}

	base := stubConfigDir(t)
	stubProcess(t, "cadence-tray")
	writeLockfile(t, filepath.Join(base, constants.TrayAppIdentifier), u.Port()+"|42|s3cret")

	if err := New().NotifyGoalCompleted(context.Background(), "Read", 30); err != nil {
		t.Fatalf("NotifyGoalCompleted failed: %v", err)
	}
	if gotSecret != "s3cret" {
		t.Errorf("secret header = %q", gotSecret)
	}
	if got.Text == "" || got.DurationMs != constants.NotificationDurationMs {
		t.Errorf("unexpected payload %+v", got)
	}
}

func TestNotifyServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer server.Close()

	u, _ := url.Parse(server.URL)
	base := stubConfigDir(t)
	stubProcess(t, "cadence-tray")
	writeLockfile(t, filepath.Join(base, constants.TrayAppIdentifier), u.Port()+"|42|s3cret")

	if err := New().Notify(context.Background(), "hi"); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}
