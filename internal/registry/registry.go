// Package registry tracks which PTY sessions exist on this host: their
// metadata, and a per-session file lock enforcing at most one daemon per
// session ID. It never mutates ptysession state — it only observes it.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"agentmux/internal/ptysession"
)

// SessionMeta is the only persisted type the registry owns, per
// SPEC_FULL.md §3.
type SessionMeta struct {
	ID        string             `json:"id"`
	Agent     string             `json:"agent"`
	Args      []string           `json:"args,omitempty"`
	Dir       string             `json:"dir"`
	StartedAt time.Time          `json:"started_at"`
	Size      ptysession.GridSize `json:"size"`
}

// Registry manages one root directory holding one subdirectory per session
// ID, each with a metadata file and a lock file.
type Registry struct {
	root string
}

// New returns a Registry rooted at dir, creating it if necessary.
func New(dir string) (*Registry, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("registry: create root %s: %w", dir, err)
	}
	return &Registry{root: dir}, nil
}

// NewSessionID generates a fresh session ID.
func NewSessionID() string {
	return uuid.NewString()
}

func (r *Registry) sessionDir(id string) string {
	return filepath.Join(r.root, id)
}

func (r *Registry) metaPath(id string) string {
	return filepath.Join(r.sessionDir(id), "session.json")
}

func (r *Registry) lockPath(id string) string {
	return filepath.Join(r.sessionDir(id), "daemon.lock")
}

// Lock acquires the single-daemon-per-session lock for id, creating the
// session directory if needed. The returned flock.Flock must be unlocked by
// the caller to release it; the session itself never unlocks it.
func (r *Registry) Lock(id string) (*flock.Flock, error) {
	dir := r.sessionDir(id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("registry: create session dir %s: %w", id, err)
	}
	lock := flock.New(r.lockPath(id))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("registry: lock session %s: %w", id, err)
	}
	if !locked {
		return nil, fmt.Errorf("registry: session %s already has a running daemon", id)
	}
	return lock, nil
}

// Write persists session metadata.
func (r *Registry) Write(meta SessionMeta) error {
	dir := r.sessionDir(meta.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("registry: create session dir %s: %w", meta.ID, err)
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("registry: marshal metadata for %s: %w", meta.ID, err)
	}
	if err := os.WriteFile(r.metaPath(meta.ID), data, 0o644); err != nil {
		return fmt.Errorf("registry: write metadata for %s: %w", meta.ID, err)
	}
	return nil
}

// Read loads session metadata by ID.
func (r *Registry) Read(id string) (SessionMeta, error) {
	data, err := os.ReadFile(r.metaPath(id))
	if err != nil {
		return SessionMeta{}, err
	}
	var meta SessionMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return SessionMeta{}, fmt.Errorf("registry: parse metadata for %s: %w", id, err)
	}
	return meta, nil
}

// List returns every known session's metadata, skipping any entry whose
// metadata file is missing or unparseable (e.g. a session still being set
// up by a concurrent Construct call).
func (r *Registry) List() ([]SessionMeta, error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("registry: list %s: %w", r.root, err)
	}
	var metas []SessionMeta
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		meta, err := r.Read(e.Name())
		if err != nil {
			continue
		}
		metas = append(metas, meta)
	}
	return metas, nil
}

// Remove deletes a session's directory (metadata + lock file). Callers must
// have already unlocked any held Flock for id.
func (r *Registry) Remove(id string) error {
	return os.RemoveAll(r.sessionDir(id))
}
