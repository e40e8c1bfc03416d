// Package doctor runs local diagnostics for rjy: ssh availability, state
// file posture, and stale session records.
package doctor

import (
	"fmt"
	"os"
	"sort"

	"github.com/remote-jupyter/rjy/internal/appconfig"
	"github.com/remote-jupyter/rjy/internal/proc"
	"github.com/remote-jupyter/rjy/internal/registry"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

type Issue struct {
	Severity       Severity `json:"severity"`
	Check          string   `json:"check"`
	Target         string   `json:"target"`
	Message        string   `json:"message"`
	Recommendation string   `json:"recommendation"`
}

type Report struct {
	Issues []Issue `json:"issues"`
}

func (r Report) HasHigh() bool {
	for _, i := range r.Issues {
		if i.Severity == SeverityHigh {
			return true
		}
	}
	return false
}

// Run executes local diagnostics using the given spawner for liveness
// probes and the configured ssh binary name.
func Run(sp proc.Spawner, sshBinary string) (Report, error) {
	var issues []Issue

	if err := proc.EnsureSSHBinary(sshBinary); err != nil {
		issues = append(issues, Issue{
			Severity:       SeverityHigh,
			Check:          "ssh-binary",
			Target:         "PATH",
			Message:        err.Error(),
			Recommendation: "install the OpenSSH client or fix ssh_binary in config.yaml",
		})
	}

	st, err := registry.NewStore()
	if err != nil {
		issues = append(issues, Issue{
			Severity:       SeverityHigh,
			Check:          "home-dir",
			Target:         "$HOME",
			Message:        err.Error(),
			Recommendation: "set HOME so the session state file can be resolved",
		})
		return sorted(issues), nil
	}

	checkPathPerm(&issues, st.Path(), 0o600, true)
	if dir, err := appconfig.ConfigDir(); err == nil {
		checkPathPerm(&issues, dir, 0o700, false)
	}

	reg, err := st.Load(sp)
	if err != nil {
		issues = append(issues, Issue{
			Severity:       SeverityMedium,
			Check:          "state-load",
			Target:         st.Path(),
			Message:        err.Error(),
			Recommendation: "repair or remove the state file; a missing file is bootstrapped empty",
		})
		return sorted(issues), nil
	}
	for _, key := range reg.Keys() {
		s, _ := reg.Get(key)
		if s.PID != nil && !sp.Alive(*s.PID) {
			issues = append(issues, Issue{
				Severity:       SeverityMedium,
				Check:          "stale-session",
				Target:         key,
				Message:        fmt.Sprintf("session records a dead forwarding process (pid %d)", *s.PID),
				Recommendation: fmt.Sprintf("run `rjy rc %s` to restart or `rjy drop %s` to forget it", key, key),
			})
		}
	}

	return sorted(issues), nil
}

func sorted(issues []Issue) Report {
	sort.Slice(issues, func(i, j int) bool {
		ri := severityRank(issues[i].Severity)
		rj := severityRank(issues[j].Severity)
		if ri != rj {
			return ri > rj
		}
		if issues[i].Check != issues[j].Check {
			return issues[i].Check < issues[j].Check
		}
		return issues[i].Target < issues[j].Target
	})
	return Report{Issues: issues}
}

func severityRank(s Severity) int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	default:
		return 1
	}
}

func checkPathPerm(issues *[]Issue, path string, max os.FileMode, isFile bool) {
	st, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return
		}
		*issues = append(*issues, Issue{
			Severity:       SeverityLow,
			Check:          "permissions",
			Target:         path,
			Message:        fmt.Sprintf("unable to inspect permissions: %v", err),
			Recommendation: "verify path and permissions manually",
		})
		return
	}
	mode := st.Mode().Perm()
	if mode > max {
		kind := "directory"
		if isFile {
			kind = "file"
		}
		*issues = append(*issues, Issue{
			Severity:       SeverityMedium,
			Check:          "permissions",
			Target:         path,
			Message:        fmt.Sprintf("%s permissions are too broad (%#o)", kind, mode),
			Recommendation: fmt.Sprintf("restrict permissions to %#o or tighter", max),
		})
	}
}
