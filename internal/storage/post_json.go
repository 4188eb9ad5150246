// ABOUTME: JSON-file post storage backing the board.
// ABOUTME: Reads and rewrites one formatted JSON array per operation, self-healing on corruption.
package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/renameio/v2"

	"github.com/2389-research/postboard/internal/models"
)

// JSONFileStore stores the post collection as a JSON array in a single file.
// Writes within one process are serialized; separate processes are not.
type JSONFileStore struct {
	path string
	log  *slog.Logger

	// mu is held across each load, change and save.
	mu sync.Mutex
}

// NewJSONFileStore creates a store backed by the file at path. The file is
// created on the first write.
func NewJSONFileStore(path string, logger *slog.Logger) (*JSONFileStore, error) {
	if path == "" {
		return nil, errors.New("data file path is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &JSONFileStore{path: path, log: logger}, nil
}

// Path returns the backing file path.
func (s *JSONFileStore) Path() string {
	return s.path
}

// Load returns every post in the file.
func (s *JSONFileStore) Load() ([]models.Post, LoadStatus) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.Post{}, LoadMissing
		}
		s.log.Warn("post store unreadable, treating as empty", "path", s.path, "error", err)
		return []models.Post{}, LoadRecovered
	}

	posts, err := decodePosts(data)
	if err != nil {
		s.log.Warn("post store malformed, treating as empty", "path", s.path, "error", err)
		return []models.Post{}, LoadRecovered
	}

	posts, dropped := validPosts(posts)
	if dropped {
		s.log.Warn("post store contained entries without a title, skipped them", "path", s.path)
		return posts, LoadRecovered
	}
	return posts, LoadOK
}

// Save rewrites the file with posts.
func (s *JSONFileStore) Save(posts []models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(posts)
}

func (s *JSONFileStore) save(posts []models.Post) error {
	if posts == nil {
		posts = []models.Post{}
	}
	data, err := json.MarshalIndent(posts, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode posts: %w", err)
	}
	if err := atomicWrite(s.path, data); err != nil {
		return fmt.Errorf("failed to save posts: %w", err)
	}
	return nil
}

// Add appends a new post.
func (s *JSONFileStore) Add(title, content, imageURL, videoURL string) (bool, error) {
	post := models.NewPost(title, content, imageURL, videoURL)
	if !post.IsValid() {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	posts, _ := s.Load()
	posts = append(posts, post)
	if err := s.save(posts); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteByTitle removes every post whose title matches.
func (s *JSONFileStore) DeleteByTitle(title string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, _ := s.Load()
	kept := filterByTitle(posts, title)
	if len(kept) == len(posts) {
		return false, nil
	}
	if err := s.save(kept); err != nil {
		return false, err
	}
	return true, nil
}

// EditByTitle updates the first post whose title matches.
func (s *JSONFileStore) EditByTitle(title string, edit models.PostEdit) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, _ := s.Load()
	for i := range posts {
		if !posts[i].MatchesTitle(title) {
			continue
		}
		posts[i].Apply(edit)
		if err := s.save(posts); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// Close releases any resources held by the store.
func (s *JSONFileStore) Close() error {
	return nil
}

// decodePosts parses data as a JSON array of posts.
func decodePosts(data []byte) ([]models.Post, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("empty file")
	}
	if trimmed[0] != '[' {
		return nil, errors.New("not a JSON array")
	}
	var posts []models.Post
	if err := json.Unmarshal(trimmed, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// atomicWrite replaces path with data so readers never see a partial file.
func atomicWrite(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return renameio.WriteFile(path, data, 0644)
}
