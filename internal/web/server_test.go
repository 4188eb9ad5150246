// ABOUTME: Tests for the post board web page and bot control routes.
// ABOUTME: Uses httptest against a temp JSON store and a fake bot controller.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389-research/postboard/internal/models"
	"github.com/2389-research/postboard/internal/storage"
	"github.com/2389-research/postboard/internal/supervisor"
)

type fakeBot struct {
	current  *supervisor.Handle
	startErr error
	stopErr  error
}

func (f *fakeBot) Start(ctx context.Context) (*supervisor.Handle, error) {
	if f.startErr != nil {
		return f.current, f.startErr
	}
	if f.current != nil {
		return f.current, supervisor.ErrAlreadyRunning
	}
	f.current = &supervisor.Handle{PID: 42}
	return f.current, nil
}

func (f *fakeBot) Stop(ctx context.Context, h *supervisor.Handle) error {
	if f.stopErr != nil {
		return f.stopErr
	}
	if h == nil || h != f.current {
		return supervisor.ErrNotRunning
	}
	f.current = nil
	return nil
}

func (f *fakeBot) Current() *supervisor.Handle { return f.current }

func (f *fakeBot) State() supervisor.State {
	if f.current != nil {
		return supervisor.Running
	}
	return supervisor.Stopped
}

func setup(t *testing.T, bot BotControl) (*httptest.Server, *storage.JSONFileStore) {
	t.Helper()
	store, err := storage.NewJSONFileStore(filepath.Join(t.TempDir(), "data.json"), nil)
	require.NoError(t, err)
	srv, err := New(Config{Store: store, Bot: bot})
	require.NoError(t, err)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts, store
}

// noRedirect returns a client that surfaces redirects instead of following them.
func noRedirect() *http.Client {
	return &http.Client{CheckRedirect: func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}}
}

func getBody(t *testing.T, url string) string {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestNewRequiresStore(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestIndexEmpty(t *testing.T) {
	ts, _ := setup(t, nil)

	body := getBody(t, ts.URL+"/")
	assert.Contains(t, body, "Podcast and Information Sharing Platform")
	assert.Contains(t, body, "No posts yet. Use the Discord bot to add posts!")
	assert.NotContains(t, body, "Start Bot")
}

func TestIndexRendersPostsInOrder(t *testing.T) {
	ts, store := setup(t, nil)
	require.NoError(t, store.Save([]models.Post{
		{Title: "First Episode", Content: "Some **bold** words", ImageURL: "https://img.example/1.png"},
		{Title: "Second", Content: "<script>alert(1)</script>", VideoURL: "https://youtu.be/abc123"},
		{Title: "Third", Content: "plain", VideoURL: "https://cdn.example/clip.mp4"},
	}))

	body := getBody(t, ts.URL+"/")
	first := strings.Index(body, "First Episode")
	second := strings.Index(body, "Second")
	third := strings.Index(body, "Third")
	assert.True(t, first < second && second < third, "posts out of order")

	assert.Contains(t, body, `id="first-episode"`)
	assert.Contains(t, body, "<strong>bold</strong>")
	assert.Contains(t, body, `<img src="https://img.example/1.png"`)
	assert.Contains(t, body, `src="https://www.youtube.com/embed/abc123"`)
	assert.Contains(t, body, `<video src="https://cdn.example/clip.mp4"`)
	assert.NotContains(t, body, "<script>alert(1)</script>")
}

func TestIndexReloadsOnEveryRequest(t *testing.T) {
	ts, store := setup(t, nil)

	assert.Contains(t, getBody(t, ts.URL+"/"), "No posts yet")

	_, err := store.Add("Fresh", "content", "", "")
	require.NoError(t, err)
	assert.Contains(t, getBody(t, ts.URL+"/"), "Fresh")
}

func TestIndexShowsRecoveryBanner(t *testing.T) {
	ts, store := setup(t, nil)
	require.NoError(t, os.WriteFile(store.Path(), []byte("{corrupt"), 0644))

	body := getBody(t, ts.URL+"/")
	assert.Contains(t, body, "could not be read cleanly")
	assert.Contains(t, body, "No posts yet")
}

func TestIndexUnknownPath(t *testing.T) {
	ts, _ := setup(t, nil)

	resp, err := http.Get(ts.URL + "/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIPosts(t *testing.T) {
	ts, store := setup(t, nil)

	var empty postsResponse
	resp, err := http.Get(ts.URL + "/api/posts")
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&empty))
	resp.Body.Close()
	assert.NotNil(t, empty.Posts)
	assert.Empty(t, empty.Posts)
	assert.Equal(t, "missing", empty.Status)

	_, _ = store.Add("Hello", "World", "", "")
	var got postsResponse
	resp, err = http.Get(ts.URL + "/api/posts")
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	resp.Body.Close()
	assert.Equal(t, []models.Post{{Title: "Hello", Content: "World"}}, got.Posts)
	assert.Equal(t, "ok", got.Status)
}

func TestBotControlFlow(t *testing.T) {
	bot := &fakeBot{}
	ts, _ := setup(t, bot)
	client := noRedirect()

	post := func(path string) string {
		resp, err := client.Post(ts.URL+path, "", nil)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		return resp.Header.Get("Location")
	}

	assert.Equal(t, "/?flash=not-running", post("/bot/stop"))
	assert.Equal(t, "/?flash=started", post("/bot/start"))
	assert.Equal(t, "/?flash=already-running", post("/bot/start"))
	assert.Contains(t, getBody(t, ts.URL+"/"), "Bot is running.")
	assert.Equal(t, "/?flash=stopped", post("/bot/stop"))
	assert.Equal(t, supervisor.Stopped, bot.State())

	body := getBody(t, ts.URL+"/?flash=stopped")
	assert.Contains(t, body, "Bot stopped successfully!")
	assert.Contains(t, body, "Start Bot")
}

func TestBotControlFailures(t *testing.T) {
	bot := &fakeBot{startErr: errors.New("exec failed"), stopErr: errors.New("signal failed")}
	ts, _ := setup(t, bot)
	client := noRedirect()

	resp, err := client.Post(ts.URL+"/bot/start", "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "/?flash=start-failed", resp.Header.Get("Location"))

	resp, err = client.Post(ts.URL+"/bot/stop", "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "/?flash=stop-failed", resp.Header.Get("Location"))
}

func TestBotRoutesWithoutSupervisor(t *testing.T) {
	ts, _ := setup(t, nil)

	resp, err := noRedirect().Post(ts.URL+"/bot/start", "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUnknownFlashIgnored(t *testing.T) {
	ts, _ := setup(t, &fakeBot{})
	body := getBody(t, ts.URL+"/?flash=<b>injected</b>")
	assert.NotContains(t, body, "injected")
}
