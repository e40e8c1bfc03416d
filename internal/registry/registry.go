// Package registry tracks remote Jupyter sessions and the SSH forwarding
// processes behind them, persisting the set between invocations.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/remote-jupyter/rjy/internal/link"
	"github.com/remote-jupyter/rjy/internal/model"
	"github.com/remote-jupyter/rjy/internal/proc"
)

var (
	// ErrDuplicateKey means a session with the same host:port key is
	// already registered.
	ErrDuplicateKey = errors.New("session already registered")
	// ErrKeyNotFound means no session is registered under the given key.
	ErrKeyNotFound = errors.New("session not found")
)

// Registry is the in-memory set of tracked sessions keyed by host:port. It
// owns every session for the duration of one invocation; callers get copies.
type Registry struct {
	spawner  proc.Spawner
	sessions map[string]model.Session
}

// New creates an empty registry using the given process spawner.
func New(sp proc.Spawner) *Registry {
	return &Registry{
		spawner:  sp,
		sessions: make(map[string]model.Session),
	}
}

// Len returns the number of tracked sessions.
func (r *Registry) Len() int { return len(r.sessions) }

// Get returns a copy of the session under key.
func (r *Registry) Get(key string) (model.Session, bool) {
	s, ok := r.sessions[key]
	return s, ok
}

// Keys returns a sorted snapshot of all registered keys. Bulk operations
// iterate this snapshot so they are unaffected by their own mutations.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.sessions))
	for key := range r.sessions {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Create parses the Jupyter link, spawns a forwarding process for it, and
// registers the new session under host:port. Fails with ErrDuplicateKey
// before any process is spawned if the key is already taken.
func (r *Registry) Create(rawLink, host string) (model.Session, error) {
	parts, err := link.Parse(rawLink)
	if err != nil {
		return model.Session{}, err
	}
	key := model.SessionKey(host, parts.Port)
	if _, ok := r.sessions[key]; ok {
		return model.Session{}, fmt.Errorf(
			"%w: a remote Jupyter session with key %q exists; use 'rjy rc' to reconnect",
			ErrDuplicateKey, key)
	}
	s, err := r.start(host, rawLink)
	if err != nil {
		return model.Session{}, err
	}
	r.sessions[s.Key()] = s
	return s, nil
}

// start builds a fresh session by parsing the link and spawning its forward.
func (r *Registry) start(host, rawLink string) (model.Session, error) {
	parts, err := link.Parse(rawLink)
	if err != nil {
		return model.Session{}, err
	}
	pid, err := r.spawner.Spawn(host, parts.Port)
	if err != nil {
		return model.Session{}, fmt.Errorf("spawn forward for %s:%d: %w", host, parts.Port, err)
	}
	return model.Session{
		Host:  host,
		Port:  parts.Port,
		Link:  rawLink,
		PID:   &pid,
		Token: parts.Token,
	}, nil
}

// terminate signals the session's process when it is still alive and clears
// the tracked PID unconditionally, so a second call is a no-op. Stale PIDs
// of already-dead processes are cleared without any signal.
func (r *Registry) terminate(s *model.Session) error {
	if s.PID == nil {
		return nil
	}
	pid := *s.PID
	s.PID = nil
	if !r.spawner.Alive(pid) {
		return nil
	}
	return r.spawner.Terminate(pid)
}

// Reconnect re-establishes the forward for key. A session whose process is
// still alive is left untouched; a dead one is restarted from its stored
// link and host under the same key.
func (r *Registry) Reconnect(key string) error {
	s, ok := r.sessions[key]
	if !ok {
		return notFound(key)
	}
	delete(r.sessions, key)
	if s.PID != nil && r.spawner.Alive(*s.PID) {
		r.sessions[key] = s
		return nil
	}
	fresh, err := r.start(s.Host, s.Link)
	if err != nil {
		return err
	}
	r.sessions[fresh.Key()] = fresh
	return nil
}

// ReconnectAll reconnects every tracked session, aborting on the first
// failure. Later keys are left untouched when an earlier one fails.
func (r *Registry) ReconnectAll() error {
	for _, key := range r.Keys() {
		if err := r.Reconnect(key); err != nil {
			return err
		}
	}
	return nil
}

// Disconnect terminates the forward for key but keeps the session registered
// with its PID cleared, so it can be reconnected later.
func (r *Registry) Disconnect(key string) error {
	s, ok := r.sessions[key]
	if !ok {
		return notFound(key)
	}
	err := r.terminate(&s)
	r.sessions[key] = s
	return err
}

// DisconnectAll disconnects every tracked session, aborting on the first
// failure.
func (r *Registry) DisconnectAll() error {
	for _, key := range r.Keys() {
		if err := r.Disconnect(key); err != nil {
			return err
		}
	}
	return nil
}

// Drop removes the session under key from the registry and terminates its
// forward.
func (r *Registry) Drop(key string) error {
	s, ok := r.sessions[key]
	if !ok {
		return notFound(key)
	}
	delete(r.sessions, key)
	return r.terminate(&s)
}

// DropAll drops every tracked session, aborting on the first failure. Keys
// after the failing one remain registered.
func (r *Registry) DropAll() error {
	for _, key := range r.Keys() {
		if err := r.Drop(key); err != nil {
			return err
		}
	}
	return nil
}

// Row is one session rendered for tabular display. PID is empty when the
// tracked process is dead or absent.
type Row struct {
	Key    string
	PID    string
	Status model.Status
	Link   string
}

// Rows returns display rows for all sessions in key order, probing process
// liveness fresh for each entry. It never mutates the registry.
func (r *Registry) Rows() []Row {
	rows := make([]Row, 0, len(r.sessions))
	for _, key := range r.Keys() {
		s := r.sessions[key]
		pid := ""
		if p := s.EffectivePID(r.spawner.Alive); p != nil {
			pid = strconv.Itoa(*p)
		}
		rows = append(rows, Row{
			Key:    key,
			PID:    pid,
			Status: s.Status(r.spawner.Alive),
			Link:   s.Link,
		})
	}
	return rows
}

func notFound(key string) error {
	return fmt.Errorf("%w: no remote Jupyter session with key %q", ErrKeyNotFound, key)
}
