package core

import (
	"context"
	"time"
)

// Repository defines the contract for storing and retrieving notes.
// Adhering to this interface allows the core to be independent of the
// underlying storage mechanism.
type Repository interface {
	// Save persists a note. It creates if not exists, or updates if it does.
	Save(ctx context.Context, n Note) error

	// Get retrieves a note by its ID. Missing notes yield an error wrapping ErrNotFound.
	Get(ctx context.Context, id string) (Note, error)

	// List returns all available notes.
	List(ctx context.Context) ([]Note, error)

	// Delete removes a note by its ID.
	Delete(ctx context.Context, id string) error

	// Initialize ensures the underlying storage is ready (e.g., create directories, git init).
	Initialize(ctx context.Context) error
}

// Recency is implemented by repositories that can report their most recently modified note.
type Recency interface {
	// Latest returns the ID and modification time of the most recently modified note.
	Latest(ctx context.Context) (string, time.Time, error)
}

// Watchable is implemented by repositories that can stream change events.
type Watchable interface {
	// Watch emits events for notes whose path matches the glob pattern until ctx is done.
	Watch(ctx context.Context, pattern string) (<-chan Event, error)
}

// Versioned is implemented by repositories that record history (e.g. Git).
type Versioned interface {
	// Commit records every pending change under the given message.
	Commit(ctx context.Context, msg string) error
}

// Matcher is implemented by repositories that can select notes by glob.
type Matcher interface {
	// IDs returns the sorted IDs of notes whose path (with extension) matches
	// the doublestar pattern. An empty pattern matches every note.
	IDs(ctx context.Context, pattern string) ([]string, error)
}
