package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Service handles the business logic for notes.
type Service struct {
	repo Repository

	mu     sync.RWMutex
	saves  int
	reads  int
	misses int
}

// NewService creates a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Repository exposes the underlying storage adapter.
func (s *Service) Repository() Repository {
	return s.repo
}

// SaveNote saves a note with business validation.
func (s *Service) SaveNote(ctx context.Context, id string, content string, metadata Metadata) error {
	if id == "" {
		return ErrEmptyID
	}

	note := Note{
		ID:       id,
		Content:  content,
		Metadata: metadata,
	}

	if err := s.repo.Save(ctx, note); err != nil {
		return err
	}
	s.mu.Lock()
	s.saves++
	s.mu.Unlock()
	return nil
}

// GetNote retrieves a note.
func (s *Service) GetNote(ctx context.Context, id string) (Note, error) {
	if id == "" {
		return Note{}, ErrEmptyID
	}
	n, err := s.repo.Get(ctx, id)
	s.mu.Lock()
	s.reads++
	if errors.Is(err, ErrNotFound) {
		s.misses++
	}
	s.mu.Unlock()
	return n, err
}

// NoteExists reports whether a note with the given ID is stored.
func (s *Service) NoteExists(ctx context.Context, id string) (bool, error) {
	_, err := s.GetNote(ctx, id)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return false, err
}

// ListNotes retrieves all notes.
func (s *Service) ListNotes(ctx context.Context) ([]Note, error) {
	return s.repo.List(ctx)
}

// DeleteNote removes a note.
func (s *Service) DeleteNote(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptyID
	}
	return s.repo.Delete(ctx, id)
}

// LatestNote returns the ID of the most recently modified note.
func (s *Service) LatestNote(ctx context.Context) (string, time.Time, error) {
	r, ok := s.repo.(Recency)
	if !ok {
		return "", time.Time{}, errors.New("repository does not track modification times")
	}
	return r.Latest(ctx)
}

// Watch observes changes in the repository if supported.
func (s *Service) Watch(ctx context.Context, pattern string) (<-chan Event, error) {
	w, ok := s.repo.(Watchable)
	if !ok {
		return nil, errors.New("repository does not support watching")
	}
	return w.Watch(ctx, pattern)
}

// MatchNotes returns the IDs of notes matching pattern.
func (s *Service) MatchNotes(ctx context.Context, pattern string) ([]string, error) {
	m, ok := s.repo.(Matcher)
	if !ok {
		return nil, errors.New("repository does not support pattern matching")
	}
	return m.IDs(ctx, pattern)
}

// Commit records pending changes when the repository is versioned. It is a no-op otherwise.
func (s *Service) Commit(ctx context.Context, msg string) error {
	v, ok := s.repo.(Versioned)
	if !ok {
		return nil
	}
	if err := v.Commit(ctx, msg); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
