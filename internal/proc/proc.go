// Package proc starts, probes, and signals the SSH processes that back
// tracked sessions.
//
// It does not implement the SSH protocol; it shells out to the system ssh
// binary, so the user's full SSH configuration (keys, agents, ProxyJump
// chains) applies without any of that logic being reimplemented here. All
// arguments are passed via argv, never through a shell, so host names with
// metacharacters cannot inject commands.
package proc

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
)

// Spawner abstracts OS process control so registry logic can be tested with
// a fake instead of real SSH tunnels.
type Spawner interface {
	// Spawn starts a forwarding process for host/port and returns its PID.
	Spawn(host string, port int) (int, error)
	// Alive reports whether the process with the given PID is running.
	Alive(pid int) bool
	// Terminate requests graceful termination of the given PID.
	Terminate(pid int) error
}

// SSH is the production Spawner. It launches detached ssh port-forward
// processes that outlive the current invocation.
type SSH struct {
	binary    string
	extraArgs []string
}

// NewSSH creates a Spawner using the given ssh binary name (empty means
// "ssh") and extra arguments inserted before the forwarding flags.
func NewSSH(binary string, extraArgs []string) *SSH {
	if binary == "" {
		binary = "ssh"
	}
	return &SSH{binary: binary, extraArgs: extraArgs}
}

// Binary returns the configured ssh binary name.
func (s *SSH) Binary() string { return s.binary }

// EnsureSSHBinary checks that the configured ssh binary is on PATH. Called
// before any spawn or interactive session so the user gets a clear message
// instead of a confusing exec error.
func EnsureSSHBinary(binary string) error {
	if binary == "" {
		binary = "ssh"
	}
	if _, err := exec.LookPath(binary); err != nil {
		return fmt.Errorf("%s binary not found in PATH", binary)
	}
	return nil
}

// Spawn starts "ssh -Y -N -L localhost:port:localhost:port host" in the
// background and returns the child PID. The forwarded port is the same on
// both ends, matching the Jupyter server's own port.
func (s *SSH) Spawn(host string, port int) (int, error) {
	args := append([]string{}, s.extraArgs...)
	args = append(args,
		"-Y",
		"-N",
		"-L",
		fmt.Sprintf("localhost:%d:localhost:%d", port, port),
		host,
	)
	cmd := exec.Command(s.binary, args...)
	cmd.Stdin = nil
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("start ssh forward: %w", err)
	}
	pid := cmd.Process.Pid
	// Reap the child if it dies while this invocation is still running, so a
	// failed forward is not left as a zombie that would probe as alive.
	go func() { _ = cmd.Wait() }()
	return pid, nil
}

// Alive probes liveness with signal 0.
func (s *SSH) Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return p.Signal(syscall.Signal(0)) == nil
}

// Terminate sends SIGTERM to the given PID.
func (s *SSH) Terminate(pid int) error {
	p, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("signal pid %d: %w", pid, err)
	}
	if err := p.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal pid %d: %w", pid, err)
	}
	return nil
}
