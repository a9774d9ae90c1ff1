package dates

import (
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// DefaultLayout names daily notes like 2024-01-02.
	DefaultLayout = "2006-01-02"

	defaultCacheSize = 256
)

// Formatter maps a date to a daily-note id.
type Formatter struct {
	// Folder is the vault-relative folder holding daily notes. Empty means the vault root.
	Folder string
	// Layout is the Go time layout of daily-note names.
	Layout string
}

// ID returns the destination id for t, e.g. "journal/2024-01-02".
func (f Formatter) ID(t time.Time) string {
	layout := f.Layout
	if layout == "" {
		layout = DefaultLayout
	}
	name := t.Format(layout)
	folder := strings.Trim(f.Folder, "/")
	if folder == "" {
		return name
	}
	return path.Join(folder, name)
}

// Name strips the daily-notes folder from a destination id.
func (f Formatter) Name(id string) string {
	folder := strings.Trim(f.Folder, "/")
	if folder == "" {
		return id
	}
	return strings.TrimPrefix(id, folder+"/")
}

// Resolver implements reminder.DateResolver on top of a Parser and a Formatter.
// Results are memoized per expression and calendar day.
type Resolver struct {
	parser Parser
	format Formatter
	now    func() time.Time

	mu    sync.Mutex
	cache *lru.Cache[string, string]
	hits  int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithFormatter sets the folder and layout of destination ids.
func WithFormatter(f Formatter) Option {
	return func(r *Resolver) {
		r.format = f
	}
}

// WithClock sets the clock used as the reference point of relative expressions.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// NewResolver creates a Resolver. A nil parser selects DefaultParser.
func NewResolver(p Parser, opts ...Option) (*Resolver, error) {
	if p == nil {
		p = DefaultParser()
	}
	cache, err := lru.New[string, string](defaultCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create resolver cache: %w", err)
	}
	r := &Resolver{
		parser: p,
		format: Formatter{Layout: DefaultLayout},
		now:    time.Now,
		cache:  cache,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Resolve turns an expression into a destination id.
func (r *Resolver) Resolve(expression string) (string, error) {
	now := r.now()
	key := now.Format("2006-01-02") + "\x00" + strings.ToLower(strings.TrimSpace(expression))

	r.mu.Lock()
	if id, ok := r.cache.Get(key); ok {
		r.hits++
		r.mu.Unlock()
		return id, nil
	}
	r.mu.Unlock()

	t, err := r.parser.Parse(expression, now)
	if err != nil {
		return "", err
	}
	id := r.format.ID(t)

	r.mu.Lock()
	r.cache.Add(key, id)
	r.mu.Unlock()
	return id, nil
}

// Formatter returns the formatter used for destination ids.
func (r *Resolver) Formatter() Formatter {
	return r.format
}

// ResolverState exposes cache statistics for observability.
type ResolverState struct {
	Cached int `json:"cached"`
	Hits   int `json:"hits"`
}

// State implements introspection.Introspectable.
func (r *Resolver) State() any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return ResolverState{Cached: r.cache.Len(), Hits: r.hits}
}

// ComponentType implements introspection.Component.
func (r *Resolver) ComponentType() string {
	return "date-resolver"
}
