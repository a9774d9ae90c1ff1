package reminder

import (
	"errors"
	"fmt"
	"strings"
)

// Defaults of a vault with no configuration.
const (
	DefaultTrigger        = "/remind"
	DefaultNegationMarker = "~~"
	DefaultSeparator      = "@"
	DefaultWhen           = "next week"
	DefaultHeader         = "### Reminder ###"
)

// Config is the immutable set of parameters for one extraction and routing pass.
// A zero field falls back to its default; see DefaultConfig.
type Config struct {
	// Triggers are tested in declaration order; the first that matches with a word boundary wins.
	Triggers []string `yaml:"triggers" mapstructure:"triggers"`
	// NegationMarker wraps processed lines on both ends.
	NegationMarker string `yaml:"negation_marker" mapstructure:"negation_marker"`
	// Separator splits the content from the date expression.
	Separator string `yaml:"separator" mapstructure:"separator"`
	// DefaultWhen is used when a reminder carries no date expression.
	DefaultWhen string `yaml:"default_when" mapstructure:"default_when"`
	// Header is the anchor after which checklist items are inserted.
	Header string `yaml:"header" mapstructure:"header"`
	// ListMarkers are unordered-list prefixes stripped before matching.
	ListMarkers []string `yaml:"list_markers" mapstructure:"list_markers"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Triggers:       []string{DefaultTrigger},
		NegationMarker: DefaultNegationMarker,
		Separator:      DefaultSeparator,
		DefaultWhen:    DefaultWhen,
		Header:         DefaultHeader,
		ListMarkers:    []string{"- ", "* ", "+ "},
	}
}

// WithDefaults returns a copy of c where every zero field is taken from DefaultConfig.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	out := c
	if len(c.Triggers) == 0 {
		out.Triggers = d.Triggers
	} else {
		out.Triggers = append([]string(nil), c.Triggers...)
	}
	if c.NegationMarker == "" {
		out.NegationMarker = d.NegationMarker
	}
	if c.Separator == "" {
		out.Separator = d.Separator
	}
	if strings.TrimSpace(c.DefaultWhen) == "" {
		out.DefaultWhen = d.DefaultWhen
	}
	if c.Header == "" {
		out.Header = d.Header
	}
	if c.ListMarkers == nil {
		out.ListMarkers = d.ListMarkers
	} else {
		out.ListMarkers = append([]string(nil), c.ListMarkers...)
	}
	return out
}

// Validate reports configuration values that would make extraction ambiguous.
func (c Config) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(c.Triggers))
	for _, t := range c.Triggers {
		switch {
		case strings.TrimSpace(t) == "":
			errs = append(errs, errors.New("trigger cannot be blank"))
		case strings.ContainsAny(t, " \t\n"):
			errs = append(errs, fmt.Errorf("trigger %q cannot contain whitespace", t))
		case seen[t]:
			errs = append(errs, fmt.Errorf("duplicate trigger %q", t))
		}
		seen[t] = true
	}
	if strings.Contains(c.NegationMarker, "\n") {
		errs = append(errs, errors.New("negation marker must be single-line"))
	}
	if c.Separator != "" && c.Separator == c.NegationMarker {
		errs = append(errs, errors.New("separator and negation marker must differ"))
	}
	return errors.Join(errs...)
}
