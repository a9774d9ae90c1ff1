package platform

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/remindme/pkg/core"
	"github.com/aretw0/remindme/pkg/dates"
	"github.com/aretw0/remindme/pkg/notes"
	"github.com/aretw0/remindme/pkg/pipeline"
)

// Vault bundles the wired components of one note vault.
type Vault struct {
	Service  *core.Service
	Store    *notes.Store
	Runner   *pipeline.Runner
	Resolver *dates.Resolver // nil when built WithoutDateResolver
}

// New initializes the vault at path and wires the reminder pipeline over it.
//
//	v, err := platform.New(ctx, "./notes", platform.WithDailyNotes("daily", ""))
//	report, err := v.Runner.Run(ctx, "inbox")
func New(ctx context.Context, path string, opts ...Option) (*Vault, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	repo, err := initRepository(ctx, path, o)
	if err != nil {
		return nil, err
	}
	svc := core.NewService(repo)

	v := &Vault{Service: svc}
	v.Store = notes.NewStore(svc, notes.Config{
		Daily:    o.daily,
		Template: o.template,
		Header:   o.reminder.Header,
		Active:   o.active,
		Logger:   logger,
	})

	runOpts := pipeline.Options{
		Config:      o.reminder,
		Logger:      logger,
		Commit:      o.commit,
		Concurrency: o.concurrency,
	}
	if !o.noResolver {
		ropts := []dates.Option{dates.WithFormatter(o.daily)}
		if o.clock != nil {
			ropts = append(ropts, dates.WithClock(o.clock))
		}
		v.Resolver, err = dates.NewResolver(o.parser, ropts...)
		if err != nil {
			return nil, err
		}
		runOpts.Resolver = v.Resolver
	}

	v.Runner, err = pipeline.NewRunner(v.Store, runOpts)
	if err != nil {
		return nil, fmt.Errorf("configure runner: %w", err)
	}
	return v, nil
}
