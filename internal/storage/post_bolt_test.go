// ABOUTME: Tests for bbolt-backed post storage and backend selection.
// ABOUTME: Runs the shared store contract against the bolt backend.
package storage

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/2389-research/postboard/internal/models"
)

func newBoltStore(t *testing.T) *BoltStore {
	t.Helper()
	store, err := NewBoltStore(filepath.Join(t.TempDir(), "posts.db"), nil)
	require.NoError(t, err)
	return store
}

func TestBoltLoadMissing(t *testing.T) {
	store := newBoltStore(t)

	posts, status := store.Load()
	assert.Equal(t, LoadMissing, status)
	assert.Empty(t, posts)
	assert.NotNil(t, posts)
}

func TestBoltSaveLoadRoundtrip(t *testing.T) {
	store := newBoltStore(t)
	want := []models.Post{
		models.NewPost("First", "one", "img", ""),
		models.NewPost("Second", "two", "", "vid"),
	}

	require.NoError(t, store.Save(want))
	got, status := store.Load()
	assert.Equal(t, LoadOK, status)
	assert.Equal(t, want, got)

	// A second save fully replaces the first.
	require.NoError(t, store.Save(want[1:]))
	got, _ = store.Load()
	assert.Equal(t, want[1:], got)
}

func TestBoltAddDeleteEdit(t *testing.T) {
	store := newBoltStore(t)

	ok, err := store.Add("", "x", "", "")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.Add("Hello", "World", "", "")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Add("Other", "Post", "I", "V")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.EditByTitle("other", models.PostEdit{Content: "Edited"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.EditByTitle("Nonexistent", models.PostEdit{Content: "X"})
	require.NoError(t, err)
	assert.False(t, ok)

	posts, _ := store.Load()
	require.Len(t, posts, 2)
	assert.Equal(t, models.Post{Title: "Hello", Content: "World"}, posts[0])
	assert.Equal(t, models.Post{Title: "Other", Content: "Edited", ImageURL: "I", VideoURL: "V"}, posts[1])

	ok, err = store.DeleteByTitle("HELLO")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.DeleteByTitle("Nonexistent")
	require.NoError(t, err)
	assert.False(t, ok)

	posts, _ = store.Load()
	require.Len(t, posts, 1)
	assert.Equal(t, "Other", posts[0].Title)
}

func TestBoltMissesOnMissingFile(t *testing.T) {
	store := newBoltStore(t)

	ok, err := store.DeleteByTitle("x")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.EditByTitle("x", models.PostEdit{Content: "y"})
	require.NoError(t, err)
	assert.False(t, ok)

	_, status := store.Load()
	assert.Equal(t, LoadMissing, status)
}

func TestBoltSkipsMalformedRecords(t *testing.T) {
	store := newBoltStore(t)
	_, err := store.Add("Good", "post", "", "")
	require.NoError(t, err)

	db, err := bbolt.Open(store.path, 0600, nil)
	require.NoError(t, err)
	err = db.Update(func(tx *bbolt.Tx) error {
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, 99)
		return tx.Bucket([]byte(bucketPosts)).Put(key, []byte("{not json"))
	})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	posts, status := store.Load()
	assert.Equal(t, LoadRecovered, status)
	require.Len(t, posts, 1)
	assert.Equal(t, "Good", posts[0].Title)
}

// putRaw stores value under key, bypassing the store's encoding.
func putRaw(t *testing.T, store *BoltStore, key uint64, value string) {
	t.Helper()
	db, err := bbolt.Open(store.path, 0600, nil)
	require.NoError(t, err)
	err = db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucketPosts))
		if err != nil {
			return err
		}
		k := make([]byte, 8)
		binary.BigEndian.PutUint64(k, key)
		return b.Put(k, []byte(value))
	})
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestBoltUntitledRecordsNeverMatch(t *testing.T) {
	store := newBoltStore(t)
	_, err := store.Add("Kept", "post", "", "")
	require.NoError(t, err)
	putRaw(t, store, 99, `{"title":"","content":"hidden"}`)

	ok, err := store.DeleteByTitle("")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.EditByTitle("", models.PostEdit{Content: "changed"})
	require.NoError(t, err)
	assert.False(t, ok)

	posts, status := store.Load()
	assert.Equal(t, LoadRecovered, status)
	assert.Equal(t, []models.Post{models.NewPost("Kept", "post", "", "")}, posts)
}

func TestBoltAddRecoversCorruptFile(t *testing.T) {
	store := newBoltStore(t)
	garbage := bytes.Repeat([]byte("garbage!"), 2048)
	require.NoError(t, os.WriteFile(store.path, garbage, 0600))

	posts, status := store.Load()
	assert.Equal(t, LoadRecovered, status)
	assert.Empty(t, posts)

	ok, err := store.Add("Hello", "World", "", "")
	require.NoError(t, err)
	assert.True(t, ok)

	posts, status = store.Load()
	assert.Equal(t, LoadOK, status)
	assert.Equal(t, []models.Post{models.NewPost("Hello", "World", "", "")}, posts)

	backup, err := os.ReadFile(store.path + ".corrupt")
	require.NoError(t, err)
	assert.Equal(t, garbage, backup)
}

func TestBoltSaveRecoversCorruptFile(t *testing.T) {
	store := newBoltStore(t)
	require.NoError(t, os.WriteFile(store.path, []byte("not a database"), 0600))

	want := []models.Post{models.NewPost("A", "a", "", "")}
	require.NoError(t, store.Save(want))

	got, status := store.Load()
	assert.Equal(t, LoadOK, status)
	assert.Equal(t, want, got)
}

func TestBoltMissesOnCorruptFileLeaveItAlone(t *testing.T) {
	store := newBoltStore(t)
	garbage := bytes.Repeat([]byte("garbage!"), 2048)
	require.NoError(t, os.WriteFile(store.path, garbage, 0600))

	ok, err := store.DeleteByTitle("Hello")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.EditByTitle("Hello", models.PostEdit{Content: "x"})
	require.NoError(t, err)
	assert.False(t, ok)

	data, err := os.ReadFile(store.path)
	require.NoError(t, err)
	assert.Equal(t, garbage, data)
	assert.NoFileExists(t, store.path+".corrupt")
}

func TestBoltConcurrentAddsKeepEveryPost(t *testing.T) {
	store := newBoltStore(t)
	const writers = 20

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok, err := store.Add(fmt.Sprintf("t%d", i), "c", "", "")
			assert.NoError(t, err)
			assert.True(t, ok)
		}(i)
	}
	wg.Wait()

	posts, status := store.Load()
	assert.Equal(t, LoadOK, status)
	assert.Len(t, posts, writers)
}

func TestOpenBackends(t *testing.T) {
	dir := t.TempDir()

	s, err := Open("", filepath.Join(dir, "data.json"), nil)
	require.NoError(t, err)
	assert.IsType(t, &JSONFileStore{}, s)

	s, err = Open(BackendJSON, filepath.Join(dir, "data.json"), nil)
	require.NoError(t, err)
	assert.IsType(t, &JSONFileStore{}, s)

	s, err = Open(BackendBolt, filepath.Join(dir, "posts.db"), nil)
	require.NoError(t, err)
	assert.IsType(t, &BoltStore{}, s)

	_, err = Open("mongo", filepath.Join(dir, "x"), nil)
	assert.Error(t, err)
}
