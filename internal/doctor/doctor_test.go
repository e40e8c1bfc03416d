package doctor

import (
	"os"
	"path/filepath"
	"testing"
)

// deadSpawner reports every pid as dead and never spawns.
type deadSpawner struct{}

func (deadSpawner) Spawn(host string, port int) (int, error) { return 0, nil }
func (deadSpawner) Alive(pid int) bool                       { return false }
func (deadSpawner) Terminate(pid int) error                  { return nil }

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	return home
}

func TestRunFlagsLooseStateFilePermissions(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, ".remote_jupyter_sessions")
	if err := os.WriteFile(path, []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	report, err := Run(deadSpawner{}, "sh")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	found := false
	for _, i := range report.Issues {
		if i.Check == "permissions" && i.Target == path {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a permissions issue for %s, got %+v", path, report.Issues)
	}
}

func TestRunFlagsStaleSessions(t *testing.T) {
	home := isolate(t)
	content := "myhost:8888:\n" +
		"  host: myhost\n" +
		"  port: 8888\n" +
		"  link: https://x.example.com:8888/?token=abc\n" +
		"  pid: 99999\n" +
		"  token: abc\n"
	path := filepath.Join(home, ".remote_jupyter_sessions")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	report, err := Run(deadSpawner{}, "sh")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	found := false
	for _, i := range report.Issues {
		if i.Check == "stale-session" && i.Target == "myhost:8888" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a stale-session issue, got %+v", report.Issues)
	}
}

func TestRunFlagsMissingSSHBinary(t *testing.T) {
	isolate(t)
	report, err := Run(deadSpawner{}, "definitely-not-a-real-binary")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !report.HasHigh() {
		t.Fatalf("expected a high severity issue, got %+v", report.Issues)
	}
}
