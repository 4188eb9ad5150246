// ABOUTME: Post rendering helpers for the web page.
// ABOUTME: Converts Markdown content, builds anchors, and detects embeddable video links.
package web

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/gosimple/slug"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/2389-research/postboard/internal/models"
)

type postView struct {
	Title      string
	Anchor     string
	Content    template.HTML
	ImageURL   string
	VideoURL   string
	VideoEmbed string
}

var markdown = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Typographer,
	),
)

// renderMarkdown converts post content to HTML. Raw HTML in the source is
// not passed through.
func renderMarkdown(content string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(content), &buf); err != nil {
		return template.HTML("<p>" + template.HTMLEscapeString(content) + "</p>")
	}
	return template.HTML(buf.String())
}

// youTubeEmbed returns the embeddable player URL for a YouTube link, or "".
func youTubeEmbed(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	var id string
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	switch host {
	case "youtu.be":
		id = strings.Trim(u.Path, "/")
	case "youtube.com", "m.youtube.com":
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		switch {
		case len(parts) == 1 && parts[0] == "watch":
			id = u.Query().Get("v")
		case len(parts) == 2 && (parts[0] == "shorts" || parts[0] == "embed"):
			id = parts[1]
		}
	}

	if id == "" || strings.ContainsAny(id, "/?#") {
		return ""
	}
	return "https://www.youtube.com/embed/" + url.PathEscape(id)
}

// buildViews converts posts into template views with unique anchors.
func buildViews(posts []models.Post) []postView {
	views := make([]postView, 0, len(posts))
	seen := make(map[string]int, len(posts))

	for _, p := range posts {
		anchor := slug.Make(p.Title)
		if anchor == "" {
			anchor = "post"
		}
		seen[anchor]++
		if n := seen[anchor]; n > 1 {
			anchor = fmt.Sprintf("%s-%d", anchor, n)
		}

		views = append(views, postView{
			Title:      p.Title,
			Anchor:     anchor,
			Content:    renderMarkdown(p.Content),
			ImageURL:   p.ImageURL,
			VideoURL:   p.VideoURL,
			VideoEmbed: youTubeEmbed(p.VideoURL),
		})
	}
	return views
}
