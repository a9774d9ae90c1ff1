package dates

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2024-01-01 is a Monday.
var monday = time.Date(2024, 1, 1, 15, 4, 5, 0, time.UTC)

func TestPhraseParser(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"today", "2024-01-01"},
		{"Tomorrow", "2024-01-02"},
		{"  tmrw ", "2024-01-02"},
		{"yesterday", "2023-12-31"},
		{"next week", "2024-01-08"},
		{"next   Week", "2024-01-08"},
		{"next month", "2024-02-01"},
		{"next year", "2025-01-01"},
		{"friday", "2024-01-05"},
		{"fri", "2024-01-05"},
		{"on friday", "2024-01-05"},
		{"this friday", "2024-01-05"},
		{"monday", "2024-01-08"},
		{"next monday", "2024-01-08"},
		{"next friday", "2024-01-12"},
		{"next sunday", "2024-01-14"},
		{"weekend", "2024-01-06"},
		{"in 3 days", "2024-01-04"},
		{"in a week", "2024-01-08"},
		{"in two weeks", "2024-01-15"},
		{"in 1 month", "2024-02-01"},
		{"2 days from now", "2024-01-03"},
		{"2024-03-15", "2024-03-15"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := PhraseParser{}.Parse(tt.expr, monday)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Format(DefaultLayout))
		})
	}
}

func TestPhraseParser_Unrecognized(t *testing.T) {
	for _, expr := range []string{"", "someday", "next blursday", "in many days"} {
		_, err := PhraseParser{}.Parse(expr, monday)
		assert.ErrorIs(t, err, ErrUnrecognized, "expr %q", expr)
	}
}

func TestParser_CountOutOfRange(t *testing.T) {
	exprs := []string{
		"in 99999999999999999999 days",
		"99999999999999999999 weeks from now",
		"in 10000 years",
	}
	for _, expr := range exprs {
		t.Run(expr, func(t *testing.T) {
			_, err := PhraseParser{}.Parse(expr, monday)
			assert.ErrorIs(t, err, ErrOutOfRange)

			// The chain must not fall through to a parser that overflows.
			got, err := DefaultParser().Parse(expr, monday)
			assert.ErrorIs(t, err, ErrUnrecognized, "resolved to %s", got)
		})
	}

	got, err := PhraseParser{}.Parse("in 9999 days", monday)
	require.NoError(t, err)
	assert.Equal(t, "2051-05-18", got.Format(DefaultLayout))
}

func TestPhraseParser_SundayNextWeek(t *testing.T) {
	sunday := time.Date(2024, 1, 7, 9, 0, 0, 0, time.UTC)
	got, err := PhraseParser{}.Parse("next monday", sunday)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-08", got.Format(DefaultLayout))
}

func TestWhenParser(t *testing.T) {
	got, err := NewWhenParser().Parse("tomorrow", monday)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02", got.Format(DefaultLayout))

	_, err = NewWhenParser().Parse("zzz", monday)
	assert.Error(t, err)
}

func TestChain(t *testing.T) {
	failing := ParserFunc(func(string, time.Time) (time.Time, error) {
		return time.Time{}, errors.New("nope")
	})
	fixed := ParserFunc(func(string, time.Time) (time.Time, error) {
		return time.Date(2030, 5, 6, 0, 0, 0, 0, time.UTC), nil
	})

	got, err := Chain{failing, fixed}.Parse("anything", monday)
	require.NoError(t, err)
	assert.Equal(t, 2030, got.Year())

	_, err = Chain{failing}.Parse("anything", monday)
	assert.EqualError(t, err, "nope")

	_, err = Chain{}.Parse("anything", monday)
	assert.ErrorIs(t, err, ErrUnrecognized)
}

func TestFormatter(t *testing.T) {
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "2024-01-02", Formatter{}.ID(day))
	assert.Equal(t, "journal/daily/2024-01-02", Formatter{Folder: "/journal/daily/"}.ID(day))
	assert.Equal(t, "02-01-2024", Formatter{Layout: "02-01-2006"}.ID(day))

	f := Formatter{Folder: "journal"}
	assert.Equal(t, "2024-01-02", f.Name("journal/2024-01-02"))
	assert.Equal(t, "other/2024-01-02", f.Name("other/2024-01-02"))
	assert.Equal(t, "2024-01-02", Formatter{}.Name("2024-01-02"))
}

func TestResolver(t *testing.T) {
	var calls atomic.Int32
	counting := ParserFunc(func(expr string, now time.Time) (time.Time, error) {
		calls.Add(1)
		return PhraseParser{}.Parse(expr, now)
	})

	now := monday
	r, err := NewResolver(counting,
		WithFormatter(Formatter{Folder: "daily"}),
		WithClock(func() time.Time { return now }),
	)
	require.NoError(t, err)

	id, err := r.Resolve("tomorrow")
	require.NoError(t, err)
	assert.Equal(t, "daily/2024-01-02", id)

	id, err = r.Resolve(" Tomorrow ")
	require.NoError(t, err)
	assert.Equal(t, "daily/2024-01-02", id)
	assert.Equal(t, int32(1), calls.Load(), "second lookup should hit the cache")

	// A new day invalidates relative answers.
	now = monday.AddDate(0, 0, 1)
	id, err = r.Resolve("tomorrow")
	require.NoError(t, err)
	assert.Equal(t, "daily/2024-01-03", id)
	assert.Equal(t, int32(2), calls.Load())

	_, err = r.Resolve("someday")
	assert.ErrorIs(t, err, ErrUnrecognized)

	state := r.State().(ResolverState)
	assert.Equal(t, 1, state.Hits)
	assert.Equal(t, 2, state.Cached)
}

func TestNewResolver_DefaultParser(t *testing.T) {
	r, err := NewResolver(nil, WithClock(func() time.Time { return monday }))
	require.NoError(t, err)

	id, err := r.Resolve("next week")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-08", id)
}
