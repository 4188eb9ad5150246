// ABOUTME: Tests for the post model helpers.
// ABOUTME: Covers validation, title matching, and partial edits.
package models

import "testing"

func TestPostIsValid(t *testing.T) {
	tests := []struct {
		name string
		post Post
		want bool
	}{
		{"complete", NewPost("T", "C", "", ""), true},
		{"missing title", NewPost("", "C", "", ""), false},
		{"missing content", NewPost("T", "", "", ""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.post.IsValid(); got != tt.want {
				t.Errorf("IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPostMatchesTitle(t *testing.T) {
	p := NewPost("Hello World", "C", "", "")
	if !p.MatchesTitle("hello world") {
		t.Error("expected case-insensitive match")
	}
	if !p.MatchesTitle("HELLO WORLD") {
		t.Error("expected upper-case match")
	}
	if p.MatchesTitle("hello") {
		t.Error("expected prefix not to match")
	}
}

func TestPostApplyPartial(t *testing.T) {
	p := NewPost("T", "C", "I", "V")
	p.Apply(PostEdit{Content: "C2"})

	if p.Content != "C2" {
		t.Errorf("Content: got %q, want %q", p.Content, "C2")
	}
	if p.ImageURL != "I" {
		t.Errorf("ImageURL: got %q, want %q", p.ImageURL, "I")
	}
	if p.VideoURL != "V" {
		t.Errorf("VideoURL: got %q, want %q", p.VideoURL, "V")
	}
}

func TestPostEditIsEmpty(t *testing.T) {
	if !(PostEdit{}).IsEmpty() {
		t.Error("expected zero edit to be empty")
	}
	if (PostEdit{VideoURL: "v"}).IsEmpty() {
		t.Error("expected edit with video to be non-empty")
	}
}
