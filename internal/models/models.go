// ABOUTME: Core data model for board posts and partial post edits.
// ABOUTME: Provides the fixed-shape Post record persisted in the JSON collection.
package models

import "strings"

// Post is a single board entry. Optional URLs are empty strings when absent.
type Post struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	ImageURL string `json:"image_url"`
	VideoURL string `json:"video_url"`
}

// PostEdit carries the fields of an edit. Empty fields are left untouched.
type PostEdit struct {
	Content  string
	ImageURL string
	VideoURL string
}

// NewPost creates a post with the given fields.
func NewPost(title, content, imageURL, videoURL string) Post {
	return Post{
		Title:    title,
		Content:  content,
		ImageURL: imageURL,
		VideoURL: videoURL,
	}
}

// IsValid returns true if the post has both a title and content.
func (p Post) IsValid() bool {
	return p.Title != "" && p.Content != ""
}

// HasImage returns true if the post has an image URL.
func (p Post) HasImage() bool {
	return p.ImageURL != ""
}

// HasVideo returns true if the post has a video URL.
func (p Post) HasVideo() bool {
	return p.VideoURL != ""
}

// MatchesTitle reports whether the post title equals title, ignoring case.
func (p Post) MatchesTitle(title string) bool {
	return strings.EqualFold(p.Title, title)
}

// Apply overwrites the fields of p that are set in edit.
func (p *Post) Apply(edit PostEdit) {
	if edit.Content != "" {
		p.Content = edit.Content
	}
	if edit.ImageURL != "" {
		p.ImageURL = edit.ImageURL
	}
	if edit.VideoURL != "" {
		p.VideoURL = edit.VideoURL
	}
}

// IsEmpty returns true if the edit changes nothing.
func (e PostEdit) IsEmpty() bool {
	return e.Content == "" && e.ImageURL == "" && e.VideoURL == ""
}
