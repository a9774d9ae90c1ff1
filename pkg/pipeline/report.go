package pipeline

import (
	"errors"

	"github.com/aretw0/remindme/pkg/reminder"
)

// Report describes the outcome of one run over a source note.
type Report struct {
	RunID  string
	Source string
	// Extracted counts resolved reminders found in the source.
	Extracted int
	// Routed holds reminders appended to their destination and negated in the source.
	Routed []reminder.Reminder
	// Written lists destinations that received their items, in first-seen order.
	Written []string
	// Created lists daily notes created for this run.
	Created []string
	// Committed is set when the run was recorded in version control.
	Committed bool
	// Failures holds per-reminder and per-destination errors. The run continued past them.
	Failures []error
}

// Err joins all failures, or returns nil when the run fully succeeded.
func (r Report) Err() error {
	return errors.Join(r.Failures...)
}

// Changed reports whether the run modified any note.
func (r Report) Changed() bool {
	return len(r.Written) > 0 || len(r.Routed) > 0
}
