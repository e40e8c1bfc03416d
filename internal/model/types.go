package model

import "fmt"

// Status is the derived liveness of a session's forwarding process. It is
// computed fresh on every query and never cached on the session record.
type Status string

const (
	StatusConnected    Status = "connected"
	StatusDisconnected Status = "disconnected"
)

// Session is one tracked SSH port-forward to a remote Jupyter server.
//
// PID is nil when no forwarding process is tracked: either the session was
// never started or it was explicitly disconnected. A non-nil PID may still
// refer to a dead process; liveness is always probed, never assumed.
type Session struct {
	Host  string `yaml:"host" json:"host"`
	Port  int    `yaml:"port" json:"port"`
	Link  string `yaml:"link" json:"link"`
	PID   *int   `yaml:"pid" json:"pid"`
	Token string `yaml:"token" json:"token"`
}

// SessionKey derives the registry key for a host/port pair.
func SessionKey(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}

// Key identifies the session within the registry. Always derived from host
// and port, never stored independently.
func (s Session) Key() string {
	return SessionKey(s.Host, s.Port)
}

// Status reports whether the session's forwarding process is alive, using the
// supplied liveness probe. A stale PID yields StatusDisconnected but is left
// in place; only an explicit terminate clears it.
func (s Session) Status(alive func(pid int) bool) Status {
	if s.PID == nil || !alive(*s.PID) {
		return StatusDisconnected
	}
	return StatusConnected
}

// EffectivePID returns the tracked PID only while the process is alive, so
// display code never shows a dead process as live.
func (s Session) EffectivePID(alive func(pid int) bool) *int {
	if s.Status(alive) == StatusDisconnected {
		return nil
	}
	return s.PID
}
