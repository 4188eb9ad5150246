// ABOUTME: MCP tool implementations for post board operations.
// ABOUTME: Registers add_post, edit_post, delete_post, and list_posts tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/2389-research/postboard/internal/models"
	"github.com/2389-research/postboard/internal/storage"
)

func (s *Server) registerPostTools() {
	s.mcp.AddTool(&gomcp.Tool{
		Name:        "add_post",
		Description: "Add a post to the board. Title and content are required; image and video URLs are optional.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"title": {"type": "string", "description": "Post title. Titles are matched case-insensitively by edit and delete.", "minLength": 1},
				"content": {"type": "string", "description": "Post body, rendered as Markdown on the web page.", "minLength": 1},
				"image_url": {"type": "string", "description": "Optional image URL"},
				"video_url": {"type": "string", "description": "Optional video URL (YouTube links are embedded)"}
			},
			"required": ["title", "content"]
		}`),
	}, s.handleAddPost)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "edit_post",
		Description: "Edit the first post whose title matches case-insensitively. Only non-empty fields are changed.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"title": {"type": "string", "description": "Title of the post to edit", "minLength": 1},
				"content": {"type": "string", "description": "New content"},
				"image_url": {"type": "string", "description": "New image URL"},
				"video_url": {"type": "string", "description": "New video URL"}
			},
			"required": ["title"]
		}`),
	}, s.handleEditPost)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "delete_post",
		Description: "Delete every post whose title matches case-insensitively.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"title": {"type": "string", "description": "Title of the post(s) to delete", "minLength": 1}
			},
			"required": ["title"]
		}`),
	}, s.handleDeletePost)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "list_posts",
		Description: "List every post on the board in stored order.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {}
		}`),
	}, s.handleListPosts)
}

type postArgs struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	ImageURL string `json:"image_url"`
	VideoURL string `json:"video_url"`
}

func decodeArgs(req *gomcp.CallToolRequest) (postArgs, error) {
	var args postArgs
	if len(req.Params.Arguments) == 0 {
		return args, nil
	}
	err := json.Unmarshal(req.Params.Arguments, &args)
	return args, err
}

func (s *Server) handleAddPost(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	args, err := decodeArgs(req)
	if err != nil {
		return toolError("invalid arguments: %v", err), nil
	}

	if args.Title == "" || args.Content == "" {
		return toolError("title and content are required"), nil
	}

	added, err := s.store.Add(args.Title, args.Content, args.ImageURL, args.VideoURL)
	if err != nil {
		s.log.Error("add_post failed", "title", args.Title, "error", err)
		return toolError("failed to add post: %v", err), nil
	}
	if !added {
		return toolError("unable to add post"), nil
	}

	return textResult(fmt.Sprintf("Post added: %s", args.Title)), nil
}

func (s *Server) handleEditPost(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	args, err := decodeArgs(req)
	if err != nil {
		return toolError("invalid arguments: %v", err), nil
	}

	if args.Title == "" {
		return toolError("title is required"), nil
	}

	edit := models.PostEdit{Content: args.Content, ImageURL: args.ImageURL, VideoURL: args.VideoURL}
	edited, err := s.store.EditByTitle(args.Title, edit)
	if err != nil {
		s.log.Error("edit_post failed", "title", args.Title, "error", err)
		return toolError("failed to edit post: %v", err), nil
	}
	if !edited {
		return toolError("no post titled '%s' found", args.Title), nil
	}

	return textResult(fmt.Sprintf("Post edited: %s", args.Title)), nil
}

func (s *Server) handleDeletePost(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	args, err := decodeArgs(req)
	if err != nil {
		return toolError("invalid arguments: %v", err), nil
	}

	if args.Title == "" {
		return toolError("title is required"), nil
	}

	deleted, err := s.store.DeleteByTitle(args.Title)
	if err != nil {
		s.log.Error("delete_post failed", "title", args.Title, "error", err)
		return toolError("failed to delete post: %v", err), nil
	}
	if !deleted {
		return toolError("no post titled '%s' found", args.Title), nil
	}

	return textResult(fmt.Sprintf("Post titled '%s' has been deleted.", args.Title)), nil
}

func (s *Server) handleListPosts(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	posts, status := s.store.Load()

	var sb strings.Builder
	if status == storage.LoadRecovered {
		sb.WriteString("Warning: the post file could not be read cleanly; showing what was recovered.\n")
	}

	if len(posts) == 0 {
		sb.WriteString("No posts found.")
		return textResult(sb.String()), nil
	}

	for i, post := range posts {
		sb.WriteString(fmt.Sprintf("---\n%d. %s\n%s\n", i+1, post.Title, post.Content))
		if post.HasImage() {
			sb.WriteString(fmt.Sprintf("Image: %s\n", post.ImageURL))
		}
		if post.HasVideo() {
			sb.WriteString(fmt.Sprintf("Video: %s\n", post.VideoURL))
		}
	}

	return textResult(sb.String()), nil
}

func textResult(text string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: text}},
	}
}

// toolError creates an error result for MCP tool responses.
func toolError(format string, args ...interface{}) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}
