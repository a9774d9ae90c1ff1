// Package notes is the note-access boundary of a reminder run: reading the
// source, reading and writing destinations, and creating missing daily notes.
package notes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/aretw0/remindme/pkg/core"
	"github.com/aretw0/remindme/pkg/dates"
)

// DefaultTemplate seeds new daily notes. It carries the reminder header so
// routed items always find their anchor.
const DefaultTemplate = "# {{date}}\n\n{{header}}\n"

// ErrNoActiveNote is returned when no note is selected and the vault has none to fall back to.
var ErrNoActiveNote = errors.New("no active note")

// Config configures a Store.
type Config struct {
	// Daily names daily notes; it must match the formatter of the date resolver.
	Daily dates.Formatter
	// Template is rendered into new daily notes. {{date}} is the note name and
	// {{header}} the reminder header.
	Template string
	// Header is substituted for {{header}}.
	Header string
	// Active is the explicitly selected note. Empty means the most recently modified note.
	Active string
	Logger *slog.Logger
	// Backoff builds the retry policy of each write. Nil selects a short exponential policy.
	Backoff func() backoff.BackOff
}

// Store reads and writes notes for the reminder pipeline.
type Store struct {
	svc *core.Service
	cfg Config
}

// NewStore creates a Store over svc.
func NewStore(svc *core.Service, cfg Config) *Store {
	if cfg.Template == "" {
		cfg.Template = DefaultTemplate
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Backoff == nil {
		cfg.Backoff = func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 50 * time.Millisecond
			b.MaxElapsedTime = 2 * time.Second
			return b
		}
	}
	return &Store{svc: svc, cfg: cfg}
}

// Service exposes the underlying note service.
func (s *Store) Service() *core.Service {
	return s.svc
}

// ActiveNoteID returns the selected note, falling back to the most recently modified one.
func (s *Store) ActiveNoteID(ctx context.Context) (string, error) {
	if s.cfg.Active != "" {
		return s.cfg.Active, nil
	}
	id, _, err := s.svc.LatestNote(ctx)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return "", ErrNoActiveNote
		}
		return "", fmt.Errorf("%w: %w", ErrNoActiveNote, err)
	}
	return id, nil
}

// ReadActiveNote returns the id and text of the active note.
func (s *Store) ReadActiveNote(ctx context.Context) (string, string, error) {
	id, err := s.ActiveNoteID(ctx)
	if err != nil {
		return "", "", err
	}
	text, err := s.ReadNote(ctx, id)
	if err != nil {
		return "", "", err
	}
	return id, text, nil
}

// ReadNote returns the body of a note, without its frontmatter.
func (s *Store) ReadNote(ctx context.Context, id string) (string, error) {
	n, err := s.svc.GetNote(ctx, id)
	if err != nil {
		return "", err
	}
	return n.Content, nil
}

// NoteExists reports whether a note is stored under id.
func (s *Store) NoteExists(ctx context.Context, id string) (bool, error) {
	return s.svc.NoteExists(ctx, id)
}

// WriteNote replaces the body of a note and keeps its frontmatter.
// Transient failures are retried; missing IDs and read-only vaults are not.
func (s *Store) WriteNote(ctx context.Context, id, text string) error {
	var meta core.Metadata
	if n, err := s.svc.GetNote(ctx, id); err == nil {
		meta = n.Metadata
	} else if !errors.Is(err, core.ErrNotFound) {
		return err
	}

	attempt := 0
	op := func() error {
		attempt++
		err := s.svc.SaveNote(ctx, id, text, meta)
		if err == nil {
			return nil
		}
		if isPermanent(err) {
			return backoff.Permanent(err)
		}
		s.cfg.Logger.Warn("note write failed, retrying", "id", id, "attempt", attempt, "error", err)
		return err
	}
	if err := backoff.Retry(op, backoff.WithContext(s.cfg.Backoff(), ctx)); err != nil {
		return fmt.Errorf("write %s: %w", id, err)
	}
	return nil
}

func isPermanent(err error) bool {
	return errors.Is(err, core.ErrEmptyID) ||
		errors.Is(err, core.ErrReadOnly) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// DailyID returns the note id of the daily note called name.
func (s *Store) DailyID(name string) string {
	folder := strings.Trim(s.cfg.Daily.Folder, "/")
	if folder == "" {
		return name
	}
	return path.Join(folder, name)
}

// DailyName is the inverse of DailyID.
func (s *Store) DailyName(id string) string {
	return s.cfg.Daily.Name(id)
}

// RenderDaily returns the initial text of the daily note called name.
func (s *Store) RenderDaily(name string) string {
	return strings.NewReplacer("{{date}}", name, "{{header}}", s.cfg.Header).Replace(s.cfg.Template)
}

// CreateNote creates the daily note called name from the template and returns its id.
// An existing note is left untouched.
func (s *Store) CreateNote(ctx context.Context, name string) (string, error) {
	id := s.DailyID(name)
	exists, err := s.svc.NoteExists(ctx, id)
	if err != nil {
		return "", err
	}
	if exists {
		return id, nil
	}

	s.cfg.Logger.Info("creating daily note", "id", id)
	if err := s.WriteNote(ctx, id, s.RenderDaily(name)); err != nil {
		return "", fmt.Errorf("create %s: %w", id, err)
	}
	return id, nil
}
