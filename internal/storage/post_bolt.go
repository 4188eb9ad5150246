// ABOUTME: bbolt-backed post storage, an embedded-database alternative to the JSON file.
// ABOUTME: Keeps insertion order through bucket sequence keys and opens the file per operation.
package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.etcd.io/bbolt"

	"github.com/2389-research/postboard/internal/models"
)

const bucketPosts = "posts"

// boltOpenTimeout bounds how long an operation waits for another process
// holding the database lock.
const boltOpenTimeout = 2 * time.Second

// errCorruptDB marks a database file that bbolt refuses to open.
var errCorruptDB = errors.New("corrupt bbolt database")

// dbMode selects how withDB opens the database.
type dbMode int

const (
	dbRead dbMode = iota
	dbWrite
	// dbRewrite moves a corrupt file aside and starts a fresh database.
	dbRewrite
)

// BoltStore stores posts in a bbolt database. The database is opened for
// each operation so the web page and the bot process can share the file.
type BoltStore struct {
	path string
	log  *slog.Logger

	// mu serializes operations within this process; bbolt's file lock
	// covers other processes.
	mu sync.Mutex
}

// NewBoltStore creates a store backed by the bbolt database at path.
func NewBoltStore(path string, logger *slog.Logger) (*BoltStore, error) {
	if path == "" {
		return nil, errors.New("database path is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BoltStore{path: path, log: logger}, nil
}

// Load returns every post in insertion order. Records that fail to decode
// are skipped.
func (s *BoltStore) Load() ([]models.Post, LoadStatus) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return []models.Post{}, LoadMissing
	}

	posts := []models.Post{}
	status := LoadOK
	err := s.withDB(dbRead, func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketPosts))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var p models.Post
			if err := json.Unmarshal(v, &p); err != nil || p.Title == "" {
				s.log.Warn("skipping malformed post record", "path", s.path, "key", binary.BigEndian.Uint64(k))
				status = LoadRecovered
				return nil
			}
			posts = append(posts, p)
			return nil
		})
	})
	if err != nil {
		s.log.Warn("post database unreadable, treating as empty", "path", s.path, "error", err)
		return []models.Post{}, LoadRecovered
	}
	return posts, status
}

// Save replaces the bucket contents with posts.
func (s *BoltStore) Save(posts []models.Post) error {
	return s.withDB(dbRewrite, func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketPosts)); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
			return fmt.Errorf("failed to clear posts bucket: %w", err)
		}
		b, err := tx.CreateBucket([]byte(bucketPosts))
		if err != nil {
			return fmt.Errorf("failed to create posts bucket: %w", err)
		}
		for _, p := range posts {
			if err := putPost(b, p); err != nil {
				return err
			}
		}
		return nil
	})
}

// Add appends a new post.
func (s *BoltStore) Add(title, content, imageURL, videoURL string) (bool, error) {
	post := models.NewPost(title, content, imageURL, videoURL)
	if !post.IsValid() {
		return false, nil
	}

	err := s.withDB(dbRewrite, func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucketPosts))
		if err != nil {
			return fmt.Errorf("failed to create posts bucket: %w", err)
		}
		return putPost(b, post)
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// DeleteByTitle removes every post whose title matches.
func (s *BoltStore) DeleteByTitle(title string) (bool, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return false, nil
	}

	deleted := false
	err := s.withDB(dbWrite, func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketPosts))
		if b == nil {
			return nil
		}

		var keys [][]byte
		err := b.ForEach(func(k, v []byte) error {
			var p models.Post
			if err := json.Unmarshal(v, &p); err != nil || p.Title == "" {
				return nil
			}
			if p.MatchesTitle(title) {
				keys = append(keys, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}

		for _, k := range keys {
			if err := b.Delete(k); err != nil {
				return fmt.Errorf("failed to delete post: %w", err)
			}
		}
		deleted = len(keys) > 0
		return nil
	})
	if errors.Is(err, errCorruptDB) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// EditByTitle updates the first post whose title matches.
func (s *BoltStore) EditByTitle(title string, edit models.PostEdit) (bool, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return false, nil
	}

	edited := false
	err := s.withDB(dbWrite, func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketPosts))
		if b == nil {
			return nil
		}

		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var p models.Post
			if err := json.Unmarshal(v, &p); err != nil || p.Title == "" {
				continue
			}
			if !p.MatchesTitle(title) {
				continue
			}
			p.Apply(edit)
			data, err := json.Marshal(p)
			if err != nil {
				return fmt.Errorf("failed to encode post: %w", err)
			}
			edited = true
			return b.Put(append([]byte(nil), k...), data)
		}
		return nil
	})
	if errors.Is(err, errCorruptDB) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return edited, nil
}

// Close releases any resources held by the store.
func (s *BoltStore) Close() error {
	return nil
}

// withDB opens the database, runs fn in a transaction, and closes it again.
// A file bbolt cannot open is reported as errCorruptDB, except in dbRewrite
// mode where it is renamed to <path>.corrupt and replaced by an empty
// database, matching how the JSON store overwrites a corrupt file.
func (s *BoltStore) withDB(mode dbMode, fn func(tx *bbolt.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	readOnly := mode == dbRead
	if !readOnly {
		if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := s.open(readOnly)
	if err != nil && s.isCorrupt(err) {
		if mode != dbRewrite {
			return fmt.Errorf("%w: %v", errCorruptDB, err)
		}
		if err := s.quarantine(err); err != nil {
			return err
		}
		db, err = s.open(false)
	}
	if err != nil {
		return fmt.Errorf("failed to open bbolt database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if readOnly {
		return db.View(fn)
	}
	return db.Update(fn)
}

func (s *BoltStore) open(readOnly bool) (*bbolt.DB, error) {
	return bbolt.Open(s.path, 0600, &bbolt.Options{Timeout: boltOpenTimeout, ReadOnly: readOnly})
}

// isCorrupt reports whether err came from the contents of an existing
// regular file rather than from locking or permissions.
func (s *BoltStore) isCorrupt(err error) bool {
	if errors.Is(err, bbolt.ErrTimeout) || errors.Is(err, fs.ErrPermission) || errors.Is(err, fs.ErrNotExist) {
		return false
	}
	info, statErr := os.Stat(s.path)
	return statErr == nil && info.Mode().IsRegular()
}

func (s *BoltStore) quarantine(cause error) error {
	backup := s.path + ".corrupt"
	s.log.Warn("post database corrupt, starting a new one", "path", s.path, "backup", backup, "error", cause)
	if err := os.Rename(s.path, backup); err != nil {
		return fmt.Errorf("failed to move corrupt database aside: %w", err)
	}
	return nil
}

// putPost stores p under the bucket's next sequence key.
func putPost(b *bbolt.Bucket, p models.Post) error {
	seq, err := b.NextSequence()
	if err != nil {
		return fmt.Errorf("failed to allocate post key: %w", err)
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode post: %w", err)
	}
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return b.Put(key, data)
}
