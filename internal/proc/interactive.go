package proc

import (
	"context"
	"io"
	"os"
	"os/exec"

	"github.com/creack/pty"
)

// RunInteractive opens an interactive ssh session to host inside a local
// PTY and blocks until it ends. The PTY is required for password prompts and
// remote line editing. Cancelling ctx kills the ssh process.
func (s *SSH) RunInteractive(ctx context.Context, host string) error {
	cmd := exec.Command(s.binary, host)

	f, err := pty.Start(cmd)
	if err != nil {
		return err
	}
	defer f.Close()

	// Forward keystrokes into the PTY master. io.Copy blocks until the PTY
	// closes, so this runs in its own goroutine.
	go func() {
		_, _ = io.Copy(f, os.Stdin)
	}()

	// Mirror remote output until the ssh process exits.
	_, _ = io.Copy(os.Stdout, f)

	if ctx.Err() != nil {
		_ = cmd.Process.Kill()
	}
	return cmd.Wait()
}
