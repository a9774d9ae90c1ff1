// Package dates resolves free-text date expressions ("tomorrow", "next friday",
// "in 3 days", "2024-01-05") into daily-note ids.
package dates

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// ErrUnrecognized is returned when no parser understands an expression.
var ErrUnrecognized = errors.New("unrecognized date expression")

// ErrOutOfRange is returned for a well-formed relative expression whose count
// is too large to name a date. It wraps ErrUnrecognized and stops a Chain.
var ErrOutOfRange = fmt.Errorf("count out of range: %w", ErrUnrecognized)

// MaxCount bounds N in "in N days" and "N weeks from now".
const MaxCount = 9999

// Parser turns an expression into a point in time relative to now.
type Parser interface {
	Parse(expr string, now time.Time) (time.Time, error)
}

// ParserFunc adapts a function to Parser.
type ParserFunc func(expr string, now time.Time) (time.Time, error)

func (f ParserFunc) Parse(expr string, now time.Time) (time.Time, error) { return f(expr, now) }

// Chain tries each parser in order and returns the first success.
type Chain []Parser

func (c Chain) Parse(expr string, now time.Time) (time.Time, error) {
	var errs []error
	for _, p := range c {
		t, err := p.Parse(expr, now)
		if err == nil {
			return t, nil
		}
		if errors.Is(err, ErrOutOfRange) {
			return time.Time{}, err
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return time.Time{}, fmt.Errorf("%q: %w", expr, ErrUnrecognized)
	}
	return time.Time{}, errors.Join(errs...)
}

// PhraseParser understands the common English phrases used in reminders:
// today, tomorrow, yesterday, next week/month/year, weekend, weekday names with an
// optional "this"/"on"/"next" prefix, "in N days|weeks|months|years",
// "N days|weeks|months|years from now" and ISO dates.
type PhraseParser struct{}

var (
	inRe      = regexp.MustCompile(`^in (\d+|an?|one|two|three) (day|week|month|year)s?$`)
	fromNowRe = regexp.MustCompile(`^(\d+|an?|one|two|three) (day|week|month|year)s? from now$`)
)

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "thurs": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

func (PhraseParser) Parse(expr string, now time.Time) (time.Time, error) {
	s := strings.Join(strings.Fields(strings.ToLower(expr)), " ")
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch s {
	case "":
		return time.Time{}, fmt.Errorf("empty expression: %w", ErrUnrecognized)
	case "today", "now", "tonight":
		return today, nil
	case "tomorrow", "tmr", "tmrw":
		return today.AddDate(0, 0, 1), nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	case "next week":
		return today.AddDate(0, 0, 7), nil
	case "next month":
		return today.AddDate(0, 1, 0), nil
	case "next year":
		return today.AddDate(1, 0, 0), nil
	case "weekend", "this weekend":
		if today.Weekday() == time.Saturday {
			return today, nil
		}
		return upcoming(today, time.Saturday), nil
	}

	if t, err := time.ParseInLocation("2006-01-02", s, now.Location()); err == nil {
		return t, nil
	}

	if m := inRe.FindStringSubmatch(s); m != nil {
		return shift(today, m[1], m[2])
	}
	if m := fromNowRe.FindStringSubmatch(s); m != nil {
		return shift(today, m[1], m[2])
	}

	if rest, ok := strings.CutPrefix(s, "next "); ok {
		if wd, ok := weekdays[rest]; ok {
			return nextWeek(today, wd), nil
		}
	}
	rest := strings.TrimPrefix(strings.TrimPrefix(s, "this "), "on ")
	if wd, ok := weekdays[rest]; ok {
		return upcoming(today, wd), nil
	}

	return time.Time{}, fmt.Errorf("%q: %w", expr, ErrUnrecognized)
}

// upcoming returns the next occurrence of wd strictly after today.
func upcoming(today time.Time, wd time.Weekday) time.Time {
	days := (int(wd) - int(today.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return today.AddDate(0, 0, days)
}

// nextWeek returns wd in the Monday-based week following today's.
func nextWeek(today time.Time, wd time.Weekday) time.Time {
	monday := today.AddDate(0, 0, 8-isoWeekday(today.Weekday()))
	return monday.AddDate(0, 0, isoWeekday(wd)-1)
}

func isoWeekday(wd time.Weekday) int {
	if wd == time.Sunday {
		return 7
	}
	return int(wd)
}

func shift(today time.Time, amount, unit string) (time.Time, error) {
	n := 1
	switch amount {
	case "a", "an", "one":
	case "two":
		n = 2
	case "three":
		n = 3
	default:
		var err error
		if n, err = strconv.Atoi(amount); err != nil || n > MaxCount {
			return time.Time{}, fmt.Errorf("%s %ss: %w", amount, unit, ErrOutOfRange)
		}
	}
	switch unit {
	case "week":
		return today.AddDate(0, 0, 7*n), nil
	case "month":
		return today.AddDate(0, n, 0), nil
	case "year":
		return today.AddDate(n, 0, 0), nil
	default:
		return today.AddDate(0, 0, n), nil
	}
}

// WhenParser delegates to github.com/olebedev/when with the English and common rule sets.
// It catches phrasings PhraseParser does not know, such as "next wednesday at 2pm" or
// "in two weeks".
type WhenParser struct {
	w *when.Parser
}

// NewWhenParser builds a WhenParser with the English and common rules loaded.
func NewWhenParser() *WhenParser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &WhenParser{w: w}
}

func (p *WhenParser) Parse(expr string, now time.Time) (time.Time, error) {
	res, err := p.w.Parse(expr, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q: %w", expr, err)
	}
	if res == nil {
		return time.Time{}, fmt.Errorf("%q: %w", expr, ErrUnrecognized)
	}
	return res.Time, nil
}

// DefaultParser is the phrase parser backed by the when library.
func DefaultParser() Parser {
	return Chain{PhraseParser{}, NewWhenParser()}
}
