// Package pipeline runs reminder routing against a note store.
//
// One run reads the source note, extracts its reminders, appends them to
// their destination notes and finally negates them in the source. Destination
// writes are independent of each other and run in parallel; the source is
// only written after all of them finished, and only the reminders whose
// destination succeeded are negated, so a failed destination is retried by
// the next run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/remindme/pkg/git"
	"github.com/aretw0/remindme/pkg/notes"
	"github.com/aretw0/remindme/pkg/reminder"
)

// DefaultConcurrency bounds parallel destination writes.
const DefaultConcurrency = 4

// Options configures a Runner.
type Options struct {
	Config   reminder.Config
	Resolver reminder.DateResolver
	Logger   *slog.Logger
	// Commit records each run that changed notes in version control.
	Commit      bool
	Concurrency int
}

// Runner executes reminder runs. It is safe for concurrent use, but runs over
// the same notes should not overlap.
type Runner struct {
	store    *notes.Store
	cfg      reminder.Config
	resolver reminder.DateResolver
	logger   *slog.Logger
	commit   bool
	limit    int

	mu       sync.Mutex
	runs     int
	routed   int
	failures int
	lastRun  *time.Time
}

// NewRunner validates the reminder configuration and creates a Runner.
// A nil resolver is accepted; every run is then rejected with
// reminder.ErrMissingDateCapability.
func NewRunner(store *notes.Store, opts Options) (*Runner, error) {
	cfg := opts.Config.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid reminder config: %w", err)
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	return &Runner{
		store:    store,
		cfg:      cfg,
		resolver: opts.Resolver,
		logger:   opts.Logger,
		commit:   opts.Commit,
		limit:    opts.Concurrency,
	}, nil
}

// Config returns the effective reminder configuration.
func (r *Runner) Config() reminder.Config {
	return r.cfg
}

// Run processes the note sourceID, or the active note when sourceID is empty.
// The returned error is set only when the run could not start; partial
// failures are reported through Report.Failures.
func (r *Runner) Run(ctx context.Context, sourceID string) (Report, error) {
	report := Report{RunID: uuid.NewString()}
	log := r.logger.With("run_id", report.RunID)

	if r.resolver == nil {
		return report, reminder.ErrMissingDateCapability
	}

	source, text, err := r.readSource(ctx, sourceID)
	if err != nil {
		return report, err
	}
	report.Source = source
	log = log.With("source", source)

	extraction, err := reminder.Extract(text, r.cfg, r.resolver)
	if err != nil {
		return report, err
	}
	report.Extracted = len(extraction.Reminders)
	for _, f := range extraction.Failures {
		log.Warn("reminder skipped", "line", f.Line, "raw", f.Raw, "expression", f.Expression, "error", f.Err)
		report.Failures = append(report.Failures, f)
	}
	if len(extraction.Reminders) == 0 {
		log.Debug("no reminders to route")
		r.record(report)
		return report, nil
	}

	plan := reminder.Route(extraction.Reminders, r.cfg)
	results := r.writeDestinations(ctx, log, plan.Destinations)

	ok := make(map[string]bool, len(results))
	for i, res := range results {
		dest := plan.Destinations[i].Destination
		if res.created {
			report.Created = append(report.Created, dest)
		}
		if res.err != nil {
			log.Warn("destination failed", "destination", dest, "error", res.err)
			report.Failures = append(report.Failures, res.err)
			continue
		}
		ok[dest] = true
		report.Written = append(report.Written, dest)
	}

	negation := plan.NegationFor(func(dest string) bool { return ok[dest] })
	if !negation.Empty() {
		routed, errs := r.negateSource(ctx, source, negation)
		report.Routed = routed
		for _, err := range errs {
			log.Warn("negation failed", "error", err)
		}
		report.Failures = append(report.Failures, errs...)
	}

	if r.commit && report.Changed() {
		msg := git.RouteMessage(len(report.Routed), source, report.Written, report.RunID)
		if err := r.store.Service().Commit(ctx, msg); err != nil {
			report.Failures = append(report.Failures, err)
		} else {
			report.Committed = true
		}
	}

	log.Info("run finished",
		"extracted", report.Extracted,
		"routed", len(report.Routed),
		"destinations", len(report.Written),
		"errors", len(report.Failures),
	)
	r.record(report)
	return report, nil
}

func (r *Runner) readSource(ctx context.Context, sourceID string) (string, string, error) {
	if sourceID == "" {
		id, text, err := r.store.ReadActiveNote(ctx)
		if err != nil {
			return "", "", fmt.Errorf("read active note: %w", err)
		}
		return id, text, nil
	}
	text, err := r.store.ReadNote(ctx, sourceID)
	if err != nil {
		return "", "", fmt.Errorf("read source: %w", err)
	}
	return sourceID, text, nil
}

type destinationResult struct {
	created bool
	err     error
}

// writeDestinations applies every append patch. A failing destination never
// cancels the others.
func (r *Runner) writeDestinations(ctx context.Context, log *slog.Logger, patches []reminder.AppendPatch) []destinationResult {
	results := make([]destinationResult, len(patches))

	var g errgroup.Group
	g.SetLimit(r.limit)
	for i, patch := range patches {
		g.Go(func() error {
			created, err := r.writeDestination(ctx, patch)
			results[i] = destinationResult{created: created, err: err}
			if err == nil {
				log.Debug("destination written", "destination", patch.Destination, "items", len(patch.Items))
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (r *Runner) writeDestination(ctx context.Context, patch reminder.AppendPatch) (bool, error) {
	wrap := func(err error) error {
		var de *reminder.DestinationError
		if errors.As(err, &de) {
			return err
		}
		return &reminder.DestinationError{Destination: patch.Destination, Err: err}
	}

	exists, err := r.store.NoteExists(ctx, patch.Destination)
	if err != nil {
		return false, wrap(err)
	}
	created := false
	if !exists {
		name := r.store.DailyName(patch.Destination)
		// A note created without the anchor could never receive the items.
		if !strings.Contains(r.store.RenderDaily(name), patch.Header) {
			return false, wrap(fmt.Errorf("daily note template lacks the header: %w", reminder.ErrMissingAppendAnchor))
		}
		id, err := r.store.CreateNote(ctx, name)
		if err != nil {
			return false, wrap(err)
		}
		if id != patch.Destination {
			return false, wrap(fmt.Errorf("daily note created as %s", id))
		}
		created = true
	}

	text, err := r.store.ReadNote(ctx, patch.Destination)
	if err != nil {
		return created, wrap(err)
	}
	updated, err := patch.Apply(text)
	if err != nil {
		return created, wrap(err)
	}
	if err := r.store.WriteNote(ctx, patch.Destination, updated); err != nil {
		return created, wrap(err)
	}
	return created, nil
}

// negateSource rereads the source, since it may itself have been a destination,
// and negates the routed reminders. It returns the reminders actually negated.
func (r *Runner) negateSource(ctx context.Context, source string, patch reminder.NegationPatch) ([]reminder.Reminder, []error) {
	text, err := r.store.ReadNote(ctx, source)
	if err != nil {
		return nil, []error{fmt.Errorf("reread source: %w", err)}
	}
	updated, errs := patch.Apply(text)

	missing := make(map[int]bool, len(errs))
	for _, e := range errs {
		var re *reminder.ReminderError
		if errors.As(e, &re) {
			missing[re.Line] = true
		}
	}
	var routed []reminder.Reminder
	for _, rem := range patch.Reminders {
		if !missing[rem.Line] {
			routed = append(routed, rem)
		}
	}

	if len(routed) > 0 {
		if err := r.store.WriteNote(ctx, source, updated); err != nil {
			return nil, append(errs, fmt.Errorf("write source: %w", err))
		}
	}
	return routed, errs
}

func (r *Runner) record(rep Report) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.runs++
	r.routed += len(rep.Routed)
	r.failures += len(rep.Failures)
	r.lastRun = &now
}
