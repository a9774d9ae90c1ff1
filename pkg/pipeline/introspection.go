package pipeline

import (
	"time"

	"github.com/aretw0/introspection"
)

// RunnerState exposes run statistics for observability.
type RunnerState struct {
	Runs     int        `json:"runs"`
	Routed   int        `json:"routed"`
	Failures int        `json:"failures"`
	LastRun  *time.Time `json:"last_run,omitempty"`
	Commit   bool       `json:"commit"`
	Resolver string     `json:"resolver"`
}

// State implements introspection.Introspectable.
func (r *Runner) State() any {
	r.mu.Lock()
	defer r.mu.Unlock()

	resolver := "none"
	if r.resolver != nil {
		resolver = "custom"
		if c, ok := r.resolver.(introspection.Component); ok {
			resolver = c.ComponentType()
		}
	}
	return RunnerState{
		Runs:     r.runs,
		Routed:   r.routed,
		Failures: r.failures,
		LastRun:  r.lastRun,
		Commit:   r.commit,
		Resolver: resolver,
	}
}

// ComponentType implements introspection.Component.
func (r *Runner) ComponentType() string {
	return "reminder-runner"
}

var _ introspection.Introspectable = (*Runner)(nil)
var _ introspection.Component = (*Runner)(nil)
