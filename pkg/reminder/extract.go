package reminder

import (
	"errors"
	"fmt"
	"strings"
)

// DateResolver turns a free-text date expression into a destination note id.
// Equal expressions must resolve to equal ids within one pass.
type DateResolver interface {
	Resolve(expression string) (string, error)
}

// ResolverFunc adapts a function to DateResolver.
type ResolverFunc func(expression string) (string, error)

func (f ResolverFunc) Resolve(expression string) (string, error) { return f(expression) }

// Extraction is the outcome of one pass over a source text.
type Extraction struct {
	// Reminders holds resolved reminders in source line order.
	Reminders []Reminder
	// Failures holds reminders whose date expression could not be resolved.
	Failures []*ReminderError
}

// Err joins the per-reminder failures, or returns nil.
func (e Extraction) Err() error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f)
	}
	return errors.Join(errs...)
}

// Extract scans text line by line and resolves every reminder it finds.
// Unresolvable reminders are reported in Failures and excluded from Reminders.
// The only whole-pass error is ErrMissingDateCapability.
func Extract(text string, cfg Config, resolver DateResolver) (Extraction, error) {
	if resolver == nil {
		return Extraction{}, ErrMissingDateCapability
	}
	cfg = cfg.WithDefaults()

	var out Extraction
	for i, line := range strings.Split(text, "\n") {
		r, ok := Parse(line, cfg)
		if !ok {
			continue
		}
		r.Line = i + 1

		dest, err := resolver.Resolve(r.DateExpression)
		if err == nil && strings.TrimSpace(dest) == "" {
			err = errors.New("resolver returned an empty destination")
		}
		if err != nil {
			out.Failures = append(out.Failures, &ReminderError{
				Line:       r.Line,
				Raw:        r.Raw,
				Expression: r.DateExpression,
				Err:        fmt.Errorf("%w: %w", ErrUnresolvedDateExpression, err),
			})
			continue
		}
		r.Destination = dest
		out.Reminders = append(out.Reminders, r)
	}
	return out, nil
}
