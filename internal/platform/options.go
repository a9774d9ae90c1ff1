package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/remindme/pkg/core"
	"github.com/aretw0/remindme/pkg/dates"
	"github.com/aretw0/remindme/pkg/reminder"
)

// options holds the internal configuration of a vault.
type options struct {
	repository core.Repository
	logger     *slog.Logger

	// filesystem adapter
	autoInit     bool
	gitless      *bool
	mustExist    bool
	readOnly     bool
	systemDir    string
	errorHandler func(error)
	debounce     time.Duration

	// reminder routing
	reminder    reminder.Config
	daily       dates.Formatter
	template    string
	active      string
	commit      bool
	parser      dates.Parser
	clock       func() time.Time
	noResolver  bool
	concurrency int
}

// Option defines a functional option for configuring a vault.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		systemDir: DefaultSystemDir,
		reminder:  reminder.DefaultConfig(),
		daily:     dates.Formatter{Layout: dates.DefaultLayout},
		commit:    true,
	}
}

// WithRepository injects a storage adapter (e.g. the in-memory one).
// The filesystem adapter and its options are then skipped.
func WithRepository(repo core.Repository) Option {
	return func(o *options) {
		o.repository = repo
	}
}

// WithLogger sets the logger of every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithAutoInit creates the vault directory and Git repository when missing.
func WithAutoInit(auto bool) Option {
	return func(o *options) {
		o.autoInit = auto
	}
}

// WithVersioning enables or disables Git. When not set, Git is used if the
// vault already is a repository.
func WithVersioning(enabled bool) Option {
	return func(o *options) {
		gitless := !enabled
		o.gitless = &gitless
	}
}

// WithMustExist fails initialization when the vault directory is missing.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithReadOnly rejects every write. Useful together with dry runs.
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.readOnly = enabled
	}
}

// WithSystemDir sets the hidden directory holding locks. Defaults to ".remindme".
func WithSystemDir(name string) Option {
	return func(o *options) {
		if name != "" {
			o.systemDir = name
		}
	}
}

// WithWatcherErrorHandler receives runtime watcher failures that are otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}

// WithWatchDebounce sets how long a note must stay unchanged before the watcher
// reports it. Editors that autosave mid-sentence need a few seconds.
func WithWatchDebounce(d time.Duration) Option {
	return func(o *options) {
		o.debounce = d
	}
}

// WithReminderConfig sets triggers, markers, separator, default expression and header.
// Zero fields keep their defaults.
func WithReminderConfig(cfg reminder.Config) Option {
	return func(o *options) {
		o.reminder = cfg.WithDefaults()
	}
}

// WithDailyNotes sets the folder and Go time layout of daily notes.
func WithDailyNotes(folder, layout string) Option {
	return func(o *options) {
		if layout == "" {
			layout = dates.DefaultLayout
		}
		o.daily = dates.Formatter{Folder: folder, Layout: layout}
	}
}

// WithDailyTemplate sets the text of newly created daily notes.
func WithDailyTemplate(tmpl string) Option {
	return func(o *options) {
		o.template = tmpl
	}
}

// WithActiveNote selects the note processed when a run names no source.
func WithActiveNote(id string) Option {
	return func(o *options) {
		o.active = id
	}
}

// WithCommit records each run in Git. Enabled by default; ignored without versioning.
func WithCommit(enabled bool) Option {
	return func(o *options) {
		o.commit = enabled
	}
}

// WithDateParser replaces the default phrase and natural-language parser chain.
func WithDateParser(p dates.Parser) Option {
	return func(o *options) {
		o.parser = p
	}
}

// WithClock sets the reference time of relative date expressions.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.clock = now
	}
}

// WithoutDateResolver builds a vault with no date capability; every run is rejected.
func WithoutDateResolver() Option {
	return func(o *options) {
		o.noResolver = true
	}
}

// WithConcurrency bounds parallel destination writes.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}
