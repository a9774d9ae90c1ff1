package fs

import (
	"time"

	"github.com/aretw0/introspection"
)

// RepositoryState describes a vault on disk.
type RepositoryState struct {
	Path      string `json:"path"`
	SystemDir string `json:"system_dir"`
	Gitless   bool   `json:"gitless"`
	ReadOnly  bool   `json:"read_only"`
	// Writes counts notes saved since the repository was opened.
	Writes        int        `json:"writes"`
	WatcherActive bool       `json:"watcher_active"`
	LastEvent     *time.Time `json:"last_event,omitempty"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st := RepositoryState{
		Path:          r.Path,
		SystemDir:     r.config.SystemDir,
		Gitless:       r.config.Gitless,
		ReadOnly:      r.config.ReadOnly,
		Writes:        r.writes,
		WatcherActive: r.watcherActive,
	}
	if r.lastEvent != nil {
		at := *r.lastEvent
		st.LastEvent = &at
	}
	return st
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "fs-repository"
}

var (
	_ introspection.Introspectable = (*Repository)(nil)
	_ introspection.Component      = (*Repository)(nil)
)

func (r *Repository) setWatcherActive(active bool) {
	r.mu.Lock()
	r.watcherActive = active
	r.mu.Unlock()
}

func (r *Repository) recordEvent(at time.Time) {
	r.mu.Lock()
	r.lastEvent = &at
	r.mu.Unlock()
}
