// Package core holds the note domain shared by the reminder pipeline and its storage adapters.
package core

// Metadata represents the flexible key-value pairs associated with a note.
type Metadata map[string]any

// Note is the central entity of the domain.
// It represents a markdown note identified by an ID (its vault-relative path without extension).
type Note struct {
	ID       string
	Content  string
	Metadata Metadata
}

// EventType represents the type of change in the vault.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change in the vault.
type Event struct {
	Type      EventType
	ID        string
	Timestamp int64 // Unix timestamp
}

func (e Event) String() string {
	return string(e.Type) + " " + e.ID
}
