// Package reminder extracts reminder directives from note text and routes them to the
// notes of the dates they resolve to.
//
// A reminder is a line such as
//
//	- /remind buy milk @tomorrow
//
// Extraction turns it into a Reminder whose content ("buy milk ") is filed as an unchecked
// checklist item under the header of the destination note, and whose source line is then
// wrapped in the negation marker ("~~- /remind buy milk @tomorrow~~") so a later pass skips it.
//
// Everything in this package is pure: callers read and write notes themselves.
package reminder

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Reminder is one parsed reminder line.
type Reminder struct {
	// Line is the 1-based line number in the source text.
	Line int
	// Raw is the verbatim source line, list marker included, used for negation.
	Raw string
	// Trigger is the token that identified the line as a reminder.
	Trigger string
	// Content is the text filed as a checklist item.
	Content string
	// DateExpression is the text after the separator, or the configured default.
	DateExpression string
	// Destination is the resolved destination note id. Empty until resolved.
	Destination string
}

// Parse builds a Reminder from a single line. It reports false when the line is not a
// reminder: negated lines, and lines whose content does not start with a trigger followed
// by a word boundary. Destination is left empty.
func Parse(line string, cfg Config) (Reminder, bool) {
	cfg = cfg.WithDefaults()
	raw := strings.TrimSuffix(line, "\r")
	body := normalize(raw, cfg.ListMarkers)

	if IsNegated(body, cfg.NegationMarker) {
		return Reminder{}, false
	}

	trigger, ok := matchTrigger(body, cfg.Triggers)
	if !ok {
		return Reminder{}, false
	}

	rest := body[len(trigger):]
	content, expr, found := strings.Cut(rest, cfg.Separator)
	expr = strings.TrimSpace(expr)
	if !found || expr == "" {
		expr = cfg.DefaultWhen
	}

	return Reminder{
		Raw:            raw,
		Trigger:        trigger,
		Content:        strings.TrimLeft(content, " \t"),
		DateExpression: expr,
	}, true
}

// IsNegated reports whether a list-marker-stripped line starts with the negation marker.
func IsNegated(body, marker string) bool {
	return marker != "" && strings.HasPrefix(body, marker)
}

// normalize strips leading indentation and a single unordered-list marker.
func normalize(line string, markers []string) string {
	body := strings.TrimLeft(line, " \t")
	for _, m := range markers {
		if m != "" && strings.HasPrefix(body, m) {
			return body[len(m):]
		}
	}
	return body
}

// matchTrigger returns the first trigger, in declaration order, that prefixes body and is
// followed by a word boundary.
func matchTrigger(body string, triggers []string) (string, bool) {
	for _, t := range triggers {
		if t == "" || !strings.HasPrefix(body, t) {
			continue
		}
		if boundaryAt(body, len(t)) {
			return t, true
		}
	}
	return "", false
}

func boundaryAt(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
}
