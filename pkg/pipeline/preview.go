package pipeline

import (
	"context"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/aretw0/remindme/pkg/reminder"
)

// Change is the planned new text of one note.
type Change struct {
	ID     string
	Before string
	After  string
	// Create is set when the note does not exist yet and would be created from the template.
	Create bool
}

// Preview is the outcome of a dry run.
type Preview struct {
	Source    string
	Extracted int
	// Changes lists destinations first, in first-seen order, then the source.
	Changes  []Change
	Failures []error
}

// Preview computes what Run would write for sourceID without writing anything.
func (r *Runner) Preview(ctx context.Context, sourceID string) (Preview, error) {
	var p Preview
	if r.resolver == nil {
		return p, reminder.ErrMissingDateCapability
	}
	source, text, err := r.readSource(ctx, sourceID)
	if err != nil {
		return p, err
	}
	p.Source = source

	extraction, err := reminder.Extract(text, r.cfg, r.resolver)
	if err != nil {
		return p, err
	}
	p.Extracted = len(extraction.Reminders)
	for _, f := range extraction.Failures {
		p.Failures = append(p.Failures, f)
	}
	if len(extraction.Reminders) == 0 {
		return p, nil
	}

	plan := reminder.Route(extraction.Reminders, r.cfg)
	ok := make(map[string]bool, len(plan.Destinations))
	pending := make(map[string]string, len(plan.Destinations))
	for _, patch := range plan.Destinations {
		c := Change{ID: patch.Destination}
		exists, err := r.store.NoteExists(ctx, patch.Destination)
		if err != nil {
			p.Failures = append(p.Failures, &reminder.DestinationError{Destination: patch.Destination, Err: err})
			continue
		}
		if exists {
			if c.Before, err = r.store.ReadNote(ctx, patch.Destination); err != nil {
				p.Failures = append(p.Failures, &reminder.DestinationError{Destination: patch.Destination, Err: err})
				continue
			}
		} else {
			c.Create = true
			c.Before = r.store.RenderDaily(r.store.DailyName(patch.Destination))
		}
		if c.After, err = patch.Apply(c.Before); err != nil {
			p.Failures = append(p.Failures, err)
			continue
		}
		ok[patch.Destination] = true
		pending[patch.Destination] = c.After
		p.Changes = append(p.Changes, c)
	}

	negation := plan.NegationFor(func(dest string) bool { return ok[dest] })
	if negation.Empty() {
		return p, nil
	}
	before, isDest := pending[source]
	if !isDest {
		before = text
	}
	after, errs := negation.Apply(before)
	p.Failures = append(p.Failures, errs...)
	if after != before {
		if isDest {
			// The source is also a destination; fold both patches into one change.
			for i := range p.Changes {
				if p.Changes[i].ID == source {
					p.Changes[i].After = after
				}
			}
		} else {
			p.Changes = append(p.Changes, Change{ID: source, Before: text, After: after})
		}
	}
	return p, nil
}

// Diff renders the change as a line diff: "+" added, "-" removed, " " unchanged.
func (c Change) Diff() string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(c.Before, c.After)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			sb.WriteString(prefix)
			sb.WriteString(line)
			if !strings.HasSuffix(line, "\n") {
				sb.WriteString("\n")
			}
		}
	}
	return sb.String()
}
