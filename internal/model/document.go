// Package model defines the core editing session data types.
package model

import (
	"path"
	"time"
)

// Identity names a document in the file store.
type Identity struct {
	Category string `json:"category"`
	Filename string `json:"filename"`
}

// Path returns the store path of the document, category/filename.
func (id Identity) Path() string {
	return path.Join(id.Category, id.Filename)
}

// Document is the in-memory state of the file being edited.
type Document struct {
	Identity
	Content         string     `json:"content"`
	Baseline        string     `json:"baseline"`
	Dirty           bool       `json:"dirty"`
	LastPersistedAt *time.Time `json:"last_persisted_at,omitempty"`
}

// SelectionSpan is a rune-offset range into a document's content.
type SelectionSpan struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Caret returns an empty span at offset.
func Caret(offset int) SelectionSpan {
	return SelectionSpan{Start: offset, End: offset}
}

// SaveKind distinguishes explicit saves from autosaves.
type SaveKind string

const (
	SaveManual SaveKind = "manual"
	SaveAuto   SaveKind = "auto"
)

// SaveRequest is the body persisted by a save.
type SaveRequest struct {
	Content  string   `json:"content"`
	Filename string   `json:"filename"`
	Kind     SaveKind `json:"-"`
}

// PersistResult reports the outcome of a save.
type PersistResult struct {
	Identity
	Content string    `json:"content"`
	SavedAt time.Time `json:"saved_at"`
	Kind    SaveKind  `json:"kind"`
	// Skipped is set when an autosave found nothing to persist.
	Skipped bool `json:"skipped,omitempty"`
}

// StoredFile is a file as returned by the file store.
type StoredFile struct {
	ID           string     `json:"id,omitempty"`
	Category     string     `json:"category"`
	Filename     string     `json:"filename"`
	Content      string     `json:"content"`
	Version      int        `json:"version,omitempty"`
	Supersedes   string     `json:"supersedes,omitempty"`
	LastModified time.Time  `json:"lastModified"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
	ChunkCount   int        `json:"chunks,omitempty"`
}
