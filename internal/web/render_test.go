// ABOUTME: Tests for post rendering helpers.
// ABOUTME: Covers Markdown output, YouTube link detection, and anchor uniqueness.
package web

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/2389-research/postboard/internal/models"
)

func TestYouTubeEmbed(t *testing.T) {
	tests := map[string]string{
		"https://youtu.be/abc123":                     "https://www.youtube.com/embed/abc123",
		"https://www.youtube.com/watch?v=abc123&t=10": "https://www.youtube.com/embed/abc123",
		"https://m.youtube.com/watch?v=xyz":           "https://www.youtube.com/embed/xyz",
		"https://youtube.com/shorts/short1":           "https://www.youtube.com/embed/short1",
		"https://www.youtube.com/embed/emb":           "https://www.youtube.com/embed/emb",
		"https://www.youtube.com/channel/foo":         "",
		"https://vimeo.com/123":                       "",
		"https://cdn.example/video.mp4":               "",
		"":                                            "",
		"::not a url":                                 "",
	}

	for input, want := range tests {
		assert.Equal(t, want, youTubeEmbed(input), "input %q", input)
	}
}

func TestBuildViewsUniqueAnchors(t *testing.T) {
	views := buildViews([]models.Post{
		{Title: "Hello World", Content: "a"},
		{Title: "hello world", Content: "b"},
		{Title: "!!!", Content: "c"},
	})

	assert.Equal(t, "hello-world", views[0].Anchor)
	assert.Equal(t, "hello-world-2", views[1].Anchor)
	assert.Equal(t, "post", views[2].Anchor)
}

func TestRenderMarkdown(t *testing.T) {
	assert.Equal(t, "<p>Hello <em>there</em></p>\n", string(renderMarkdown("Hello *there*")))
}
