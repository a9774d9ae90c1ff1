// Package memory provides an in-process core.Repository, used by tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/remindme/pkg/core"
)

// Repository keeps notes in a map guarded by a mutex.
type Repository struct {
	mu       sync.RWMutex
	notes    map[string]core.Note
	modified map[string]time.Time
	now      func() time.Time

	// FailSave, when set, is consulted before every Save and may return an error to inject.
	FailSave func(id string) error
}

// NewRepository creates an empty repository, optionally seeded with notes.
func NewRepository(seed ...core.Note) *Repository {
	r := &Repository{
		notes:    make(map[string]core.Note),
		modified: make(map[string]time.Time),
		now:      time.Now,
	}
	for _, n := range seed {
		r.notes[n.ID] = n
		r.modified[n.ID] = r.now()
	}
	return r
}

func (r *Repository) Initialize(ctx context.Context) error { return nil }

func (r *Repository) Save(ctx context.Context, n core.Note) error {
	if n.ID == "" {
		return core.ErrEmptyID
	}
	if r.FailSave != nil {
		if err := r.FailSave(n.ID); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes[n.ID] = n
	r.modified[n.ID] = r.now()
	return nil
}

func (r *Repository) Get(ctx context.Context, id string) (core.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.notes[id]
	if !ok {
		return core.Note{}, fmt.Errorf("%s: %w", id, core.ErrNotFound)
	}
	return n, nil
}

func (r *Repository) List(ctx context.Context) ([]core.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	notes := make([]core.Note, 0, len(r.notes))
	for _, n := range r.notes {
		notes = append(notes, n)
	}
	// Sort for deterministic output
	sort.Slice(notes, func(i, j int) bool {
		return notes[i].ID < notes[j].ID
	})
	return notes, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.notes[id]; !ok {
		return fmt.Errorf("%s: %w", id, core.ErrNotFound)
	}
	delete(r.notes, id)
	delete(r.modified, id)
	return nil
}

// Latest implements core.Recency.
func (r *Repository) Latest(ctx context.Context) (string, time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var (
		id    string
		mtime time.Time
	)
	for k, t := range r.modified {
		if id == "" || t.After(mtime) || (t.Equal(mtime) && k < id) {
			id, mtime = k, t
		}
	}
	if id == "" {
		return "", time.Time{}, core.ErrNotFound
	}
	return id, mtime, nil
}

// IDs implements core.Matcher. Patterns match the ID plus the ".md" extension.
func (r *Repository) IDs(ctx context.Context, pattern string) ([]string, error) {
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []string
	for id := range r.notes {
		if pattern != "" {
			if ok, _ := doublestar.Match(pattern, id+".md"); !ok {
				continue
			}
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Touch marks a note as modified at t, which makes ordering explicit in tests.
func (r *Repository) Touch(id string, t time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modified[id] = t
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "memory"
}

var _ core.Repository = (*Repository)(nil)
var _ core.Recency = (*Repository)(nil)
