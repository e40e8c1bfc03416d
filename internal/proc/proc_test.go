package proc

import (
	"os"
	"os/exec"
	"testing"
	"time"
)

func TestAliveSelfAndInvalid(t *testing.T) {
	s := NewSSH("", nil)
	if !s.Alive(os.Getpid()) {
		t.Fatal("expected current process to be alive")
	}
	if s.Alive(0) || s.Alive(-1) {
		t.Fatal("expected non-positive pids to be dead")
	}
}

func TestTerminateRunningProcess(t *testing.T) {
	// Use a plain sleep as a stand-in for an ssh forward: a long-running
	// process with a real PID that can be probed and signalled.
	cmd := exec.Command("sleep", "30")
	if err := cmd.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	pid := cmd.Process.Pid
	t.Cleanup(func() { _ = cmd.Process.Kill(); _, _ = cmd.Process.Wait() })

	s := NewSSH("", nil)
	if !s.Alive(pid) {
		t.Fatalf("expected pid %d alive", pid)
	}
	if err := s.Terminate(pid); err != nil {
		t.Fatalf("terminate: %v", err)
	}
	_ = cmd.Wait()

	// After the child has been reaped the signal-0 probe must fail.
	deadline := time.Now().Add(2 * time.Second)
	for s.Alive(pid) {
		if time.Now().After(deadline) {
			t.Fatalf("pid %d still probing alive after SIGTERM", pid)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestEnsureSSHBinaryMissing(t *testing.T) {
	if err := EnsureSSHBinary("definitely-not-a-real-binary-name"); err == nil {
		t.Fatal("expected error for missing binary")
	}
}

func TestNewSSHDefaultsBinary(t *testing.T) {
	s := NewSSH("", nil)
	if s.Binary() != "ssh" {
		t.Fatalf("expected default binary ssh, got %s", s.Binary())
	}
}
