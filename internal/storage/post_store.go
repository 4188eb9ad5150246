// ABOUTME: Interface definition for post storage and backend selection.
// ABOUTME: Defines the load/save/add/edit/delete contract shared by all backends.
package storage

import (
	"fmt"
	"log/slog"

	"github.com/2389-research/postboard/internal/models"
)

// LoadStatus describes how a Load call obtained its result.
type LoadStatus int

const (
	// LoadOK means the store was read and decoded cleanly.
	LoadOK LoadStatus = iota
	// LoadMissing means the store does not exist yet.
	LoadMissing
	// LoadRecovered means the store was unreadable or malformed, in whole or
	// in part, and the unusable data was treated as absent.
	LoadRecovered
)

// String implements fmt.Stringer.
func (s LoadStatus) String() string {
	switch s {
	case LoadOK:
		return "ok"
	case LoadMissing:
		return "missing"
	case LoadRecovered:
		return "recovered"
	default:
		return fmt.Sprintf("LoadStatus(%d)", int(s))
	}
}

// Backend names accepted by Open.
const (
	BackendJSON = "json"
	BackendBolt = "bolt"
)

// PostStore defines operations for post persistence. Every call reads the
// backing store, applies its change, and writes the result back; nothing is
// cached between calls. Implementations assume a single writer.
type PostStore interface {
	// Load returns every post in stored order. It never fails: a missing or
	// malformed store yields an empty slice and a non-OK status.
	Load() ([]models.Post, LoadStatus)

	// Save replaces the whole collection with posts.
	Save(posts []models.Post) error

	// Add appends a post. It returns false without writing when title or
	// content is empty.
	Add(title, content, imageURL, videoURL string) (bool, error)

	// DeleteByTitle removes every post whose title matches, ignoring case.
	// It returns true if at least one post was removed.
	DeleteByTitle(title string) (bool, error)

	// EditByTitle applies edit to the first post whose title matches,
	// ignoring case. It returns false without writing when nothing matches.
	EditByTitle(title string, edit models.PostEdit) (bool, error)

	// Close releases any resources held by the store.
	Close() error
}

// Open creates a PostStore for the named backend at path.
//
// Supported backends:
//
//	"json" - a single JSON array file (default)
//	"bolt" - a bbolt database file
func Open(backend, path string, logger *slog.Logger) (PostStore, error) {
	switch backend {
	case BackendJSON, "":
		return NewJSONFileStore(path, logger)
	case BackendBolt:
		return NewBoltStore(path, logger)
	default:
		return nil, fmt.Errorf("unknown store backend: %q (supported: json, bolt)", backend)
	}
}

// filterByTitle returns the posts whose title does not match title.
func filterByTitle(posts []models.Post, title string) []models.Post {
	kept := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if !p.MatchesTitle(title) {
			kept = append(kept, p)
		}
	}
	return kept
}

// validPosts drops entries that lack a title, reporting whether any were dropped.
func validPosts(posts []models.Post) ([]models.Post, bool) {
	kept := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if p.Title == "" {
			continue
		}
		kept = append(kept, p)
	}
	return kept, len(kept) != len(posts)
}
