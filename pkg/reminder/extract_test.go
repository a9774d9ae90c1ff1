package reminder

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// mapResolver resolves only the expressions it knows.
func mapResolver(m map[string]string) DateResolver {
	return ResolverFunc(func(expr string) (string, error) {
		if dest, ok := m[expr]; ok {
			return dest, nil
		}
		return "", fmt.Errorf("cannot parse %q", expr)
	})
}

var testResolver = mapResolver(map[string]string{
	"tomorrow":  "2024-01-02",
	"next week": "2024-01-08",
	"friday":    "2024-01-05",
	"monday":    "2024-01-08",
})

func TestParse(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		name        string
		line        string
		wantOK      bool
		wantContent string
		wantWhen    string
		wantTrigger string
	}{
		{
			name:        "Content And Date",
			line:        "/remind buy milk @tomorrow",
			wantOK:      true,
			wantContent: "buy milk ",
			wantWhen:    "tomorrow",
			wantTrigger: "/remind",
		},
		{
			name:        "Default When",
			line:        "/remind call mom",
			wantOK:      true,
			wantContent: "call mom",
			wantWhen:    "next week",
			wantTrigger: "/remind",
		},
		{
			name:        "Empty Date Falls Back",
			line:        "/remind call mom @   ",
			wantOK:      true,
			wantContent: "call mom ",
			wantWhen:    "next week",
			wantTrigger: "/remind",
		},
		{
			name:        "List Marker Stripped",
			line:        "- /remind water plants @friday",
			wantOK:      true,
			wantContent: "water plants ",
			wantWhen:    "friday",
			wantTrigger: "/remind",
		},
		{
			name:        "Indented List Item",
			line:        "    * /remind nested @monday",
			wantOK:      true,
			wantContent: "nested ",
			wantWhen:    "monday",
			wantTrigger: "/remind",
		},
		{
			name:        "Separator Splits Once",
			line:        "/remind mail a@b.c",
			wantOK:      true,
			wantContent: "mail a",
			wantWhen:    "b.c",
			wantTrigger: "/remind",
		},
		{
			name:        "Trigger Alone",
			line:        "/remind",
			wantOK:      true,
			wantContent: "",
			wantWhen:    "next week",
			wantTrigger: "/remind",
		},
		{name: "Negated", line: "~~/remind buy milk @tomorrow~~"},
		{name: "Negated List Item", line: "- ~~/remind buy milk~~"},
		{name: "No Boundary", line: "/reminder"},
		{name: "No Boundary With Text", line: "/reminders are great"},
		{name: "Not At Start", line: "please /remind me"},
		{name: "Plain Text", line: "just a line"},
		{name: "Empty", line: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.line, cfg)
			if ok != tt.wantOK {
				t.Fatalf("Parse(%q) ok = %v, want %v", tt.line, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.Content != tt.wantContent {
				t.Errorf("Content = %q, want %q", got.Content, tt.wantContent)
			}
			if got.DateExpression != tt.wantWhen {
				t.Errorf("DateExpression = %q, want %q", got.DateExpression, tt.wantWhen)
			}
			if got.Trigger != tt.wantTrigger {
				t.Errorf("Trigger = %q, want %q", got.Trigger, tt.wantTrigger)
			}
			if got.Raw != tt.line {
				t.Errorf("Raw = %q, want verbatim %q", got.Raw, tt.line)
			}
		})
	}
}

func TestParse_OverlappingTriggers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Triggers = []string{"/remind", "/remindme", "!todo"}

	tests := []struct {
		line    string
		trigger string
		content string
	}{
		{"/remindme stretch", "/remindme", "stretch"},
		{"/remind stretch", "/remind", "stretch"},
		{"!todo file taxes @friday", "!todo", "file taxes "},
		{"/remind@tomorrow", "/remind", ""},
	}
	for _, tt := range tests {
		got, ok := Parse(tt.line, cfg)
		if !ok {
			t.Fatalf("Parse(%q) not a reminder", tt.line)
		}
		if got.Trigger != tt.trigger {
			t.Errorf("Parse(%q) trigger = %q, want %q", tt.line, got.Trigger, tt.trigger)
		}
		if got.Content != tt.content {
			t.Errorf("Parse(%q) content = %q, want %q", tt.line, got.Content, tt.content)
		}
		if strings.HasPrefix(got.Content, got.Trigger) {
			t.Errorf("content %q still carries trigger %q", got.Content, got.Trigger)
		}
	}

	if _, ok := Parse("/remindmeplease", cfg); ok {
		t.Error("expected no match without boundary for any trigger")
	}
}

func TestParse_CRLF(t *testing.T) {
	got, ok := Parse("/remind buy milk @tomorrow\r", DefaultConfig())
	if !ok {
		t.Fatal("expected reminder")
	}
	if got.Raw != "/remind buy milk @tomorrow" {
		t.Errorf("Raw = %q", got.Raw)
	}
	if got.DateExpression != "tomorrow" {
		t.Errorf("DateExpression = %q", got.DateExpression)
	}
}

func TestExtract_Scenarios(t *testing.T) {
	t.Run("Explicit Date", func(t *testing.T) {
		res, err := Extract("/remind buy milk @tomorrow", DefaultConfig(), testResolver)
		if err != nil {
			t.Fatalf("Extract failed: %v", err)
		}
		if len(res.Reminders) != 1 {
			t.Fatalf("expected 1 reminder, got %d", len(res.Reminders))
		}
		r := res.Reminders[0]
		if r.Content != "buy milk " || r.Destination != "2024-01-02" || r.Line != 1 {
			t.Errorf("unexpected reminder: %+v", r)
		}
	})

	t.Run("Default When", func(t *testing.T) {
		res, err := Extract("/remind call mom", DefaultConfig(), testResolver)
		if err != nil {
			t.Fatalf("Extract failed: %v", err)
		}
		if len(res.Reminders) != 1 {
			t.Fatalf("expected 1 reminder, got %d", len(res.Reminders))
		}
		r := res.Reminders[0]
		if r.Content != "call mom" || r.Destination != "2024-01-08" {
			t.Errorf("unexpected reminder: %+v", r)
		}
	})

	t.Run("Negated Source", func(t *testing.T) {
		res, err := Extract("~~/remind buy milk @tomorrow~~", DefaultConfig(), testResolver)
		if err != nil {
			t.Fatalf("Extract failed: %v", err)
		}
		if len(res.Reminders) != 0 || len(res.Failures) != 0 {
			t.Errorf("expected nothing, got %+v", res)
		}
	})
}

func TestExtract_OrderAndLines(t *testing.T) {
	src := strings.Join([]string{
		"# Journal",
		"- /remind a @friday",
		"some text",
		"/remind b @tomorrow",
		"~~/remind c @friday~~",
		"/remind d @friday",
	}, "\n")

	res, err := Extract(src, DefaultConfig(), testResolver)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	var got []string
	for _, r := range res.Reminders {
		got = append(got, fmt.Sprintf("%d:%s", r.Line, strings.TrimSpace(r.Content)))
	}
	want := "2:a 4:b 6:d"
	if strings.Join(got, " ") != want {
		t.Errorf("got %v, want %s", got, want)
	}
}

func TestExtract_UnresolvedExpression(t *testing.T) {
	src := "/remind a @someday\n/remind b @tomorrow"
	res, err := Extract(src, DefaultConfig(), testResolver)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(res.Reminders) != 1 || res.Reminders[0].Content != "b " {
		t.Fatalf("expected only b to resolve, got %+v", res.Reminders)
	}
	if len(res.Failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(res.Failures))
	}
	f := res.Failures[0]
	if f.Line != 1 || f.Expression != "someday" {
		t.Errorf("unexpected failure: %+v", f)
	}
	if !errors.Is(f, ErrUnresolvedDateExpression) {
		t.Errorf("expected ErrUnresolvedDateExpression, got %v", f)
	}
	if !errors.Is(res.Err(), ErrUnresolvedDateExpression) {
		t.Errorf("aggregate error should carry the failure, got %v", res.Err())
	}
}

func TestExtract_EmptyDestinationIsUnresolved(t *testing.T) {
	blank := ResolverFunc(func(string) (string, error) { return "  ", nil })
	res, err := Extract("/remind x", DefaultConfig(), blank)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(res.Reminders) != 0 || len(res.Failures) != 1 {
		t.Fatalf("expected a single failure, got %+v", res)
	}
}

func TestExtract_MissingResolver(t *testing.T) {
	_, err := Extract("/remind x", DefaultConfig(), nil)
	if !errors.Is(err, ErrMissingDateCapability) {
		t.Fatalf("expected ErrMissingDateCapability, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	cfg := DefaultConfig()
	cfg.Triggers = []string{"/remind", "/remind", " ", "two words"}
	cfg.Separator = "~~"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, want := range []string{"duplicate", "blank", "whitespace", "must differ"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestConfig_MultiLineHeader(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Header = "## Reminders\n<!-- below -->"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("multi-line header rejected: %v", err)
	}

	patch := AppendPatch{Destination: "d", Header: cfg.Header, Items: []string{"x"}}
	got, err := patch.Apply("# Day\n## Reminders\n<!-- below -->\n")
	if err != nil {
		t.Fatal(err)
	}
	if want := "# Day\n## Reminders\n<!-- below -->\n- [ ] x\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	cfg.NegationMarker = "~\n~"
	if err := cfg.Validate(); err == nil {
		t.Error("expected multi-line negation marker to be rejected")
	}
}

func TestConfig_WithDefaults(t *testing.T) {
	cfg := Config{Header: "## Todo"}.WithDefaults()
	if cfg.Header != "## Todo" {
		t.Errorf("header overwritten: %q", cfg.Header)
	}
	if cfg.NegationMarker != DefaultNegationMarker || cfg.Separator != DefaultSeparator || cfg.DefaultWhen != DefaultWhen {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if len(cfg.Triggers) != 1 || cfg.Triggers[0] != DefaultTrigger {
		t.Errorf("default trigger not applied: %v", cfg.Triggers)
	}
}
