package remindme

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/remindme/internal/platform"
	"github.com/aretw0/remindme/pkg/core"
	"github.com/aretw0/remindme/pkg/dates"
	"github.com/aretw0/remindme/pkg/pipeline"
	"github.com/aretw0/remindme/pkg/reminder"
)

// --- Types ---

// Vault is a note vault wired with the reminder pipeline.
type Vault = platform.Vault

// Report is the outcome of one run.
type Report = pipeline.Report

// Preview is the outcome of a dry run.
type Preview = pipeline.Preview

// Config holds the reminder syntax and the anchor header.
type Config = reminder.Config

// --- Configuration ---

// Option defines a functional option for configuring a vault.
type Option = platform.Option

// WithAutoInit creates the vault directory and Git repository when missing.
func WithAutoInit(auto bool) Option {
	return platform.WithAutoInit(auto)
}

// WithVersioning enables or disables Git.
func WithVersioning(enabled bool) Option {
	return platform.WithVersioning(enabled)
}

// WithMustExist fails when the vault directory is missing.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithReadOnly rejects every write.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithRepository injects a custom storage adapter.
func WithRepository(repo core.Repository) Option {
	return platform.WithRepository(repo)
}

// WithSystemDir sets the hidden directory name (default ".remindme").
func WithSystemDir(name string) Option {
	return platform.WithSystemDir(name)
}

// WithReminderConfig sets the reminder syntax.
func WithReminderConfig(cfg Config) Option {
	return platform.WithReminderConfig(cfg)
}

// WithDailyNotes sets the folder and Go time layout of daily notes.
func WithDailyNotes(folder, layout string) Option {
	return platform.WithDailyNotes(folder, layout)
}

// WithDailyTemplate sets the text of new daily notes ({{date}} and {{header}} are substituted).
func WithDailyTemplate(tmpl string) Option {
	return platform.WithDailyTemplate(tmpl)
}

// WithActiveNote selects the note processed when a run names no source.
func WithActiveNote(id string) Option {
	return platform.WithActiveNote(id)
}

// WithCommit records each run in Git.
func WithCommit(enabled bool) Option {
	return platform.WithCommit(enabled)
}

// WithDateParser replaces the date parser.
func WithDateParser(p dates.Parser) Option {
	return platform.WithDateParser(p)
}

// WithClock sets the reference time of relative date expressions.
func WithClock(now func() time.Time) Option {
	return platform.WithClock(now)
}

// WithWatcherErrorHandler receives runtime watcher failures.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// WithWatchDebounce sets the quiet period before a changed note is reported by Watch.
func WithWatchDebounce(d time.Duration) Option {
	return platform.WithWatchDebounce(d)
}

// WithConcurrency bounds parallel destination writes.
func WithConcurrency(n int) Option {
	return platform.WithConcurrency(n)
}

// --- Factory ---

// FindRoot walks upwards from dir to the vault root.
func FindRoot(dir string) (string, error) {
	return platform.FindRoot(dir)
}

// New opens the vault at path.
func New(ctx context.Context, path string, opts ...Option) (*Vault, error) {
	return platform.New(ctx, path, opts...)
}

// Save routes the reminders of one note (the active note when id is empty).
func Save(ctx context.Context, path, id string, opts ...Option) (Report, error) {
	v, err := New(ctx, path, opts...)
	if err != nil {
		return Report{}, err
	}
	return v.Runner.Run(ctx, id)
}
