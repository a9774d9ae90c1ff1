package fs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/remindme/pkg/core"
	"github.com/aretw0/remindme/pkg/git"
)

const noteExt = ".md"

// Repository implements core.Repository for a directory of markdown notes,
// optionally versioned with Git.
type Repository struct {
	Path   string
	git    *git.Client
	config Config

	mu            sync.RWMutex
	watcherActive bool
	lastEvent     *time.Time
	writes        int
}

// Config holds the configuration for the filesystem repository.
type Config struct {
	Path      string
	AutoInit  bool
	Gitless   bool
	MustExist bool
	ReadOnly  bool
	Logger    *slog.Logger
	SystemDir string // e.g. ".remindme"
	// ErrorHandler receives runtime errors of the watcher that are otherwise only logged.
	ErrorHandler func(error)
	// Debounce is how long a note must stay quiet before its change is emitted.
	// Zero selects DefaultDebounce.
	Debounce time.Duration
}

// NewRepository creates a new filesystem-backed repository.
func NewRepository(config Config) *Repository {
	if config.SystemDir == "" {
		config.SystemDir = ".remindme"
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounce
	}
	return &Repository{
		Path:   config.Path,
		git:    git.NewClient(config.Path, filepath.Join(config.SystemDir, "git.lock"), config.Logger),
		config: config,
	}
}

// Initialize performs the necessary setup for the repository (mkdir, git init).
func (r *Repository) Initialize(ctx context.Context) error {
	if r.config.MustExist || r.config.ReadOnly {
		info, err := os.Stat(r.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("vault path does not exist: %s", r.Path)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("vault path is not a directory: %s", r.Path)
		}
	} else {
		if err := os.MkdirAll(r.Path, 0755); err != nil {
			return fmt.Errorf("failed to create vault directory: %w", err)
		}
	}

	if r.config.ReadOnly || r.config.Gitless {
		return nil
	}

	if !git.IsInstalled() {
		return fmt.Errorf("git is not installed")
	}

	if !r.git.IsRepo(ctx) {
		if !r.config.AutoInit {
			return fmt.Errorf("path is not a git repository: %s", r.Path)
		}
		if err := r.git.Init(ctx); err != nil {
			return fmt.Errorf("failed to git init: %w", err)
		}
	}

	if _, err := r.ensureIgnore(); err != nil {
		return fmt.Errorf("failed to ensure .gitignore: %w", err)
	}
	return nil
}

// ensureIgnore keeps the system directory (locks) out of version control.
func (r *Repository) ensureIgnore() (bool, error) {
	ignorePath := filepath.Join(r.Path, ".gitignore")
	ignoreEntry := r.config.SystemDir + "/"

	content, err := os.ReadFile(ignorePath)
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}

	for _, line := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(line) == ignoreEntry {
			return false, nil
		}
	}

	f, err := os.OpenFile(ignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return false, err
	}
	defer f.Close()

	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		if _, err := f.WriteString("\n"); err != nil {
			return false, err
		}
	}
	if _, err := f.WriteString(ignoreEntry + "\n"); err != nil {
		return false, err
	}
	return true, nil
}

// pathFor maps a note ID to its file, refusing IDs that escape the vault.
func (r *Repository) pathFor(id string) (string, string, error) {
	if strings.TrimSpace(id) == "" {
		return "", "", core.ErrEmptyID
	}
	rel := filepath.FromSlash(id)
	if filepath.Ext(rel) != noteExt {
		rel += noteExt
	}
	rel = filepath.Clean(rel)
	if filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", "", fmt.Errorf("note ID %q escapes the vault", id)
	}
	return filepath.Join(r.Path, rel), filepath.ToSlash(rel), nil
}

// idFor maps a vault-relative file path back to a note ID.
func idFor(relPath string) string {
	return strings.TrimSuffix(filepath.ToSlash(relPath), noteExt)
}

// Save writes a note atomically and, when versioning is enabled, stages it.
// Unchanged frontmatter is written back byte for byte.
//
// Workflow:
//  1. Resolve the file path and create parent directories.
//  2. Serialize the note, reusing the on-disk frontmatter when the metadata is unchanged.
//  3. Write atomically (temp file + rename).
//  4. (If Git enabled) 'git add' under the vault lock. Commits happen once per run.
func (r *Repository) Save(ctx context.Context, n core.Note) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	fullPath, relPath, err := r.pathFor(n.ID)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	var frontmatter []byte
	if existing, err := os.ReadFile(fullPath); err == nil {
		if old, raw, err := parseMarkdown(existing); err == nil && sameMetadata(old.Metadata, n.Metadata) {
			frontmatter = raw
		}
	}

	data, err := serializeMarkdown(n, frontmatter)
	if err != nil {
		return fmt.Errorf("failed to serialize note: %w", err)
	}

	r.config.Logger.Debug("writing note to disk", "id", n.ID, "path", fullPath)
	if err := writeFileAtomic(fullPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	r.mu.Lock()
	r.writes++
	r.mu.Unlock()

	if r.config.Gitless {
		return nil
	}

	unlock, err := r.git.Lock(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire git lock: %w", err)
	}
	defer unlock()

	if err := r.git.Add(ctx, relPath); err != nil {
		return fmt.Errorf("failed to git add: %w", err)
	}
	return nil
}

func sameMetadata(a, b core.Metadata) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}

// Get retrieves a note from the filesystem.
func (r *Repository) Get(ctx context.Context, id string) (core.Note, error) {
	fullPath, _, err := r.pathFor(id)
	if err != nil {
		return core.Note{}, err
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return core.Note{}, fmt.Errorf("%s: %w", id, core.ErrNotFound)
		}
		return core.Note{}, err
	}

	n, _, err := parseMarkdown(data)
	if err != nil {
		return core.Note{}, fmt.Errorf("failed to parse note %s: %w", id, err)
	}
	n.ID = idFor(strings.TrimSuffix(id, noteExt))
	return n, nil
}

// walk visits every markdown note, skipping .git and the system directory.
func (r *Repository) walk(fn func(relPath string, d fs.DirEntry) error) error {
	return filepath.WalkDir(r.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != r.Path && (d.Name() == ".git" || d.Name() == r.config.SystemDir) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(d.Name()) != noteExt || strings.HasPrefix(d.Name(), TempFilePrefix) {
			return nil
		}
		relPath, err := filepath.Rel(r.Path, path)
		if err != nil {
			return err
		}
		return fn(filepath.ToSlash(relPath), d)
	})
}

// IDs returns the sorted IDs of notes whose vault-relative path (with extension)
// matches the doublestar pattern. An empty pattern matches every note.
func (r *Repository) IDs(ctx context.Context, pattern string) ([]string, error) {
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}
	var ids []string
	err := r.walk(func(relPath string, d fs.DirEntry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if pattern != "" {
			ok, err := doublestar.Match(pattern, relPath)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
		}
		ids = append(ids, idFor(relPath))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk vault dir: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

// List scans the vault for all notes. Unparseable notes are logged and skipped.
func (r *Repository) List(ctx context.Context) ([]core.Note, error) {
	ids, err := r.IDs(ctx, "")
	if err != nil {
		return nil, err
	}
	notes := make([]core.Note, 0, len(ids))
	for _, id := range ids {
		n, err := r.Get(ctx, id)
		if err != nil {
			r.config.Logger.Warn("failed to parse note during list", "id", id, "error", err)
			continue
		}
		notes = append(notes, n)
	}
	return notes, nil
}

// Latest implements core.Recency by comparing file modification times.
func (r *Repository) Latest(ctx context.Context) (string, time.Time, error) {
	var (
		latestID string
		latest   time.Time
	)
	err := r.walk(func(relPath string, d fs.DirEntry) error {
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if latestID == "" || info.ModTime().After(latest) {
			latestID, latest = idFor(relPath), info.ModTime()
		}
		return nil
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to walk vault dir: %w", err)
	}
	if latestID == "" {
		return "", time.Time{}, fmt.Errorf("vault has no notes: %w", core.ErrNotFound)
	}
	return latestID, latest, nil
}

// Delete removes a note and, when versioning is enabled, stages the removal.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	fullPath, relPath, err := r.pathFor(id)
	if err != nil {
		return err
	}
	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		return fmt.Errorf("%s: %w", id, core.ErrNotFound)
	}

	if r.config.Gitless {
		if err := os.Remove(fullPath); err != nil {
			return fmt.Errorf("failed to remove file: %w", err)
		}
		return nil
	}

	unlock, err := r.git.Lock(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire git lock: %w", err)
	}
	defer unlock()

	if err := r.git.Rm(ctx, relPath); err != nil {
		return fmt.Errorf("failed to git rm: %w", err)
	}
	return nil
}

// Commit implements core.Versioned. Without versioning, or with nothing staged, it is a no-op.
func (r *Repository) Commit(ctx context.Context, msg string) error {
	if r.config.Gitless || r.config.ReadOnly {
		return nil
	}

	unlock, err := r.git.Lock(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire git lock: %w", err)
	}
	defer unlock()

	staged, err := r.git.HasStaged(ctx)
	if err != nil {
		return err
	}
	if !staged {
		return nil
	}
	return r.git.Commit(ctx, msg)
}

var (
	_ core.Repository = (*Repository)(nil)
	_ core.Recency    = (*Repository)(nil)
	_ core.Versioned  = (*Repository)(nil)
	_ core.Matcher    = (*Repository)(nil)
	_ core.Watchable  = (*Repository)(nil)
)
