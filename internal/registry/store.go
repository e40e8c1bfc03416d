package registry

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/remote-jupyter/rjy/internal/appconfig"
	"github.com/remote-jupyter/rjy/internal/model"
	"github.com/remote-jupyter/rjy/internal/proc"
)

// ErrCorruptState marks a state file whose contents cannot be trusted:
// undecodable YAML or a stored key that does not match its session.
var ErrCorruptState = errors.New("corrupt session state")

// Store reads and writes the persisted session registry. The file is an
// external shared resource with no locking; concurrent invocations race and
// the last writer wins.
type Store struct {
	path string
}

// NewStore resolves the state file under the user's home directory.
func NewStore() (*Store, error) {
	path, err := appconfig.StateFilePath()
	if err != nil {
		return nil, err
	}
	return &Store{path: path}, nil
}

// Path returns the state file location.
func (st *Store) Path() string { return st.path }

// Load reads the registry from disk. A missing or blank state file is
// bootstrapped: an empty registry is persisted immediately and returned.
func (st *Store) Load(sp proc.Spawner) (*Registry, error) {
	reg := New(sp)
	b, err := os.ReadFile(st.path)
	if err != nil {
		if os.IsNotExist(err) {
			return reg, st.Save(reg)
		}
		return nil, fmt.Errorf("read %s: %w", st.path, err)
	}
	if strings.TrimSpace(string(b)) == "" {
		return reg, st.Save(reg)
	}
	var sessions map[string]model.Session
	if err := yaml.Unmarshal(b, &sessions); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	if sessions == nil {
		sessions = make(map[string]model.Session)
	}
	for key, s := range sessions {
		if key != s.Key() {
			return nil, fmt.Errorf("%w: stored key %q does not match session %s", ErrCorruptState, key, s.Key())
		}
	}
	reg.sessions = sessions
	return reg, nil
}

// Save serializes the registry to the state file with owner-only read/write
// permissions. The write is not atomic; a failure may leave the previous
// contents intact or the file partially written.
func (st *Store) Save(reg *Registry) error {
	b, err := yaml.Marshal(reg.sessions)
	if err != nil {
		return fmt.Errorf("serialize sessions: %w", err)
	}
	if err := os.WriteFile(st.path, b, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", st.path, err)
	}
	// WriteFile applies the mode only on create; tighten pre-existing files.
	if err := os.Chmod(st.path, 0o600); err != nil {
		return fmt.Errorf("set permissions on %s: %w", st.path, err)
	}
	return nil
}
