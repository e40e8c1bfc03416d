// Package cli provides the command-line interface for rjy.
//
// Every command follows the same shape: load the persisted registry, apply
// exactly one operation, save it back. Read-only commands skip the save.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/remote-jupyter/rjy/internal/appconfig"
	"github.com/remote-jupyter/rjy/internal/doctor"
	"github.com/remote-jupyter/rjy/internal/events"
	"github.com/remote-jupyter/rjy/internal/model"
	"github.com/remote-jupyter/rjy/internal/proc"
	"github.com/remote-jupyter/rjy/internal/registry"
	"github.com/remote-jupyter/rjy/internal/ui"
)

var errAmbiguousArguments = errors.New("specify either a session key or --all, not both")

// Swapped by tests so commands run against a fake process spawner without a
// real ssh binary.
var (
	newSpawner = func(cfg appconfig.Config) proc.Spawner {
		return proc.NewSSH(cfg.SSHBinary, cfg.SSHArgs)
	}
	ensureSSH = proc.EnsureSSHBinary
)

// env bundles the collaborators one invocation needs.
type env struct {
	cfg     appconfig.Config
	spawner proc.Spawner
	store   *registry.Store
	reg     *registry.Registry
}

func loadEnv() (*env, error) {
	cfg, err := appconfig.Load()
	if err != nil {
		return nil, err
	}
	sp := newSpawner(cfg)
	store, err := registry.NewStore()
	if err != nil {
		return nil, err
	}
	reg, err := store.Load(sp)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, spawner: sp, store: store, reg: reg}, nil
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "rjy",
		Short: "Track SSH port-forwards to remote Jupyter servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ui.Run()
		},
	}

	root.AddCommand(
		newNewCmd(),
		newListCmd(),
		newReconnectCmd(),
		newDisconnectCmd(),
		newDropCmd(),
		newOpenCmd(),
		newEventsCmd(),
		newDoctorCmd(),
	)
	return root
}

func newNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new <link> <host>",
		Short: "Start and track a forward for a Jupyter link",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			if err := ensureSSH(e.cfg.SSHBinary); err != nil {
				return err
			}
			s, err := e.reg.Create(args[0], args[1])
			if err != nil {
				return err
			}
			if err := e.store.Save(e.reg); err != nil {
				return err
			}
			fmt.Printf("Created new session %s.\n", s.Key())
			recordEvent(events.Event{Key: s.Key(), Host: s.Host, EventType: events.TypeCreated, PID: pidOf(s)})
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tracked sessions and their liveness",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			rows := e.reg.Rows()
			if len(rows) == 0 {
				fmt.Println("No active remote Jupyter sessions.")
				return nil
			}
			fmt.Printf("%-24s %-8s %-14s %s\n", "KEY (HOST:PORT)", "PID", "STATUS", "LINK")
			for _, row := range rows {
				fmt.Printf("%-24s %-8s %s %s\n", row.Key, row.PID, renderStatus(row.Status), row.Link)
			}
			return nil
		},
	}
}

func newReconnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rc [key]",
		Short: "Reconnect one session, or every session when no key is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			if err := ensureSSH(e.cfg.SSHBinary); err != nil {
				return err
			}
			keys := e.reg.Keys()
			if len(args) == 1 {
				keys = args
				if err := e.reg.Reconnect(args[0]); err != nil {
					return err
				}
			} else if err := e.reg.ReconnectAll(); err != nil {
				return err
			}
			if err := e.store.Save(e.reg); err != nil {
				return err
			}
			for _, key := range keys {
				fmt.Printf("Reconnected session %s.\n", key)
				if s, ok := e.reg.Get(key); ok {
					recordEvent(events.Event{Key: key, Host: s.Host, EventType: events.TypeReconnected, PID: pidOf(s)})
				}
			}
			return nil
		},
	}
}

func newDisconnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dc [key]",
		Short: "Disconnect one session, or every session when no key is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			keys := e.reg.Keys()
			if len(args) == 1 {
				keys = args
				if err := e.reg.Disconnect(args[0]); err != nil {
					return err
				}
			} else if err := e.reg.DisconnectAll(); err != nil {
				return err
			}
			if err := e.store.Save(e.reg); err != nil {
				return err
			}
			for _, key := range keys {
				fmt.Printf("Disconnected session %s.\n", key)
				if s, ok := e.reg.Get(key); ok {
					recordEvent(events.Event{Key: key, Host: s.Host, EventType: events.TypeDisconnected})
				}
			}
			return nil
		},
	}
}

func newDropCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "drop [key]",
		Short: "Stop a session's forward and forget it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Argument validation happens before any state is touched.
			if all && len(args) > 0 {
				return errAmbiguousArguments
			}
			if !all && len(args) == 0 {
				return errors.New("specify a session key or --all")
			}
			e, err := loadEnv()
			if err != nil {
				return err
			}
			keys := e.reg.Keys()
			if !all {
				keys = args
				if err := e.reg.Drop(args[0]); err != nil {
					return err
				}
			} else if err := e.reg.DropAll(); err != nil {
				return err
			}
			if err := e.store.Save(e.reg); err != nil {
				return err
			}
			for _, key := range keys {
				fmt.Printf("Dropped session %s.\n", key)
				recordEvent(events.Event{Key: key, EventType: events.TypeDropped})
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "drop every tracked session")
	return cmd
}

func newOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open <key>",
		Short: "Open an interactive ssh session to a tracked session's host",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			if err := ensureSSH(e.cfg.SSHBinary); err != nil {
				return err
			}
			s, ok := e.reg.Get(args[0])
			if !ok {
				return fmt.Errorf("%w: no remote Jupyter session with key %q", registry.ErrKeyNotFound, args[0])
			}
			// Interactive sessions can stay open for a long workday.
			ctx, cancel := context.WithTimeout(context.Background(), 24*time.Hour)
			defer cancel()
			ssh := proc.NewSSH(e.cfg.SSHBinary, e.cfg.SSHArgs)
			return ssh.RunInteractive(ctx, s.Host)
		},
	}
}

func newEventsCmd() *cobra.Command {
	var (
		host      string
		key       string
		eventType string
		since     time.Duration
		limit     int
	)
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show the session lifecycle journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := events.Query{Host: host, Key: key, EventType: eventType, Limit: limit}
			if since > 0 {
				q.Since = time.Now().Add(-since)
			}
			list, err := events.NewStore().Read(q)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Println("No matching events.")
				return nil
			}
			fmt.Printf("%-25s %-14s %-24s %-8s %s\n", "TIMESTAMP", "EVENT", "KEY", "PID", "MESSAGE")
			for _, evt := range list {
				pid := ""
				if evt.PID > 0 {
					pid = fmt.Sprintf("%d", evt.PID)
				}
				fmt.Printf("%-25s %-14s %-24s %-8s %s\n",
					evt.Timestamp.Format(time.RFC3339), evt.EventType, evt.Key, pid, evt.Message)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "filter by host")
	cmd.Flags().StringVar(&key, "key", "", "filter by session key")
	cmd.Flags().StringVar(&eventType, "type", "", "filter by event type")
	cmd.Flags().DurationVar(&since, "since", 0, "only events newer than this age, e.g. 24h")
	cmd.Flags().IntVar(&limit, "limit", 0, "keep only the last N events")
	return cmd
}

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose local setup and state file posture",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appconfig.Load()
			if err != nil {
				return err
			}
			report, err := doctor.Run(newSpawner(cfg), cfg.SSHBinary)
			if err != nil {
				return err
			}
			if len(report.Issues) == 0 {
				fmt.Println("No issues found.")
				return nil
			}
			for _, issue := range report.Issues {
				fmt.Printf("[%s] %s %s: %s\n", issue.Severity, issue.Check, issue.Target, issue.Message)
				fmt.Printf("         fix: %s\n", issue.Recommendation)
			}
			if report.HasHigh() {
				return errors.New("doctor found high severity issues")
			}
			return nil
		},
	}
}

var (
	connectedStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	disconnectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
)

func renderStatus(st model.Status) string {
	padded := fmt.Sprintf("%-14s", string(st))
	if st == model.StatusConnected {
		return connectedStyle.Render(padded)
	}
	return disconnectedStyle.Render(padded)
}

// recordEvent appends to the journal best-effort; a failed write never fails
// the command that triggered it.
func recordEvent(evt events.Event) {
	if err := events.NewStore().Append(evt); err != nil {
		slog.Warn("failed to record session event", "error", err)
	}
}

func pidOf(s model.Session) int {
	if s.PID == nil {
		return 0
	}
	return *s.PID
}
