package reminder

import (
	"strings"
)

// ChecklistPrefix starts every item appended to a destination note.
const ChecklistPrefix = "- [ ] "

// Plan holds the patches computed by Route.
type Plan struct {
	// Destinations holds one patch per destination in first-seen order.
	Destinations []AppendPatch
	// Source negates every routed reminder in the source note.
	Source NegationPatch
}

// Route groups resolved reminders by destination and computes the destination and source patches.
func Route(reminders []Reminder, cfg Config) Plan {
	cfg = cfg.WithDefaults()
	groups := GroupByDestination(reminders)

	plan := Plan{
		Destinations: make([]AppendPatch, 0, groups.Len()),
		Source:       NegationPatch{Marker: cfg.NegationMarker, Reminders: append([]Reminder(nil), reminders...)},
	}
	for _, dest := range groups.Keys() {
		group := groups.Get(dest)
		items := make([]string, 0, len(group))
		for _, r := range group {
			items = append(items, r.Content)
		}
		plan.Destinations = append(plan.Destinations, AppendPatch{
			Destination: dest,
			Header:      cfg.Header,
			Items:       items,
		})
	}
	return plan
}

// NegationFor returns the source patch restricted to reminders whose destination passes keep.
// Runs use it to avoid negating reminders whose destination write failed.
func (p Plan) NegationFor(keep func(destination string) bool) NegationPatch {
	out := NegationPatch{Marker: p.Source.Marker}
	for _, r := range p.Source.Reminders {
		if keep(r.Destination) {
			out.Reminders = append(out.Reminders, r)
		}
	}
	return out
}

// AppendPatch inserts checklist items right after the header of a destination note.
type AppendPatch struct {
	Destination string
	Header      string
	Items       []string
}

// Apply returns text with the items inserted after the first occurrence of the header.
// When the header is missing the text is returned unchanged together with a
// *DestinationError wrapping ErrMissingAppendAnchor.
func (p AppendPatch) Apply(text string) (string, error) {
	idx := -1
	if p.Header != "" {
		idx = strings.Index(text, p.Header)
	}
	if idx < 0 {
		return text, &DestinationError{Destination: p.Destination, Err: ErrMissingAppendAnchor}
	}
	at := idx + len(p.Header)

	var b strings.Builder
	b.Grow(len(text) + len(p.Items)*(len(ChecklistPrefix)+16))
	b.WriteString(text[:at])
	b.WriteString(p.Lines())
	b.WriteString(text[at:])
	return b.String(), nil
}

// Lines renders the inserted block: one newline-prefixed checklist line per item.
func (p AppendPatch) Lines() string {
	var b strings.Builder
	for _, item := range p.Items {
		b.WriteString("\n")
		b.WriteString(ChecklistPrefix)
		b.WriteString(item)
	}
	return b.String()
}

// NegationPatch wraps the source lines of processed reminders in the negation marker.
type NegationPatch struct {
	Marker    string
	Reminders []Reminder
}

// Empty reports whether the patch would change nothing.
func (p NegationPatch) Empty() bool {
	return len(p.Reminders) == 0
}

// Apply negates each reminder's raw line in extraction order. Every reminder consumes the
// first line equal to its raw text that no earlier reminder consumed, so identical lines
// are negated one by one. Reminders without a remaining match are reported as
// *ReminderError wrapping ErrAmbiguousRawMatch and skipped.
func (p NegationPatch) Apply(text string) (string, []error) {
	if p.Empty() {
		return text, nil
	}
	lines := strings.Split(text, "\n")
	consumed := make([]bool, len(lines))

	var errs []error
	for _, r := range p.Reminders {
		idx := -1
		for i, l := range lines {
			if !consumed[i] && strings.TrimSuffix(l, "\r") == r.Raw {
				idx = i
				break
			}
		}
		if idx < 0 {
			errs = append(errs, &ReminderError{Line: r.Line, Raw: r.Raw, Err: ErrAmbiguousRawMatch})
			continue
		}
		consumed[idx] = true
		suffix := ""
		if strings.HasSuffix(lines[idx], "\r") {
			suffix = "\r"
		}
		lines[idx] = p.Marker + r.Raw + p.Marker + suffix
	}
	return strings.Join(lines, "\n"), errs
}
