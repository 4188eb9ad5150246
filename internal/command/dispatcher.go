// ABOUTME: Chat command dispatcher translating bot messages into post store calls.
// ABOUTME: Implements the post, delpost, editpost, and help commands with usage replies.
package command

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/2389-research/postboard/internal/models"
	"github.com/2389-research/postboard/internal/storage"
)

// DefaultPrefix is the command prefix used when none is configured.
const DefaultPrefix = "!"

// Usage strings shown in error and help replies.
const (
	UsagePost     = "!post <title> <content> [image_url] [video_url]"
	UsageDelPost  = "!delpost <title>"
	UsageEditPost = "!editpost <title> [new_content] [new_image_url] [new_video_url]"
)

// Config configures a Dispatcher.
type Config struct {
	// Store receives the post mutations. Required.
	Store storage.PostStore

	// Prefix marks a message as a command. Defaults to DefaultPrefix.
	Prefix string

	// Logger for dispatch events. Falls back to slog.Default() if nil.
	Logger *slog.Logger
}

// Dispatcher parses chat messages and runs the matching command.
type Dispatcher struct {
	store  storage.PostStore
	prefix string
	log    *slog.Logger
}

// NewDispatcher creates a dispatcher from cfg.
func NewDispatcher(cfg Config) (*Dispatcher, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("post store is required")
	}
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Dispatcher{store: cfg.Store, prefix: cfg.Prefix, log: cfg.Logger}, nil
}

// Prefix returns the command prefix.
func (d *Dispatcher) Prefix() string {
	return d.prefix
}

// Handle runs the command in message and returns the reply to send. It
// returns nil for messages that are not commands.
func (d *Dispatcher) Handle(ctx context.Context, message string) *Reply {
	message = strings.TrimSpace(message)
	if !strings.HasPrefix(message, d.prefix) {
		return nil
	}

	args, err := Tokenize(strings.TrimPrefix(message, d.prefix))
	if err != nil {
		return errorReply("Could not parse the command: " + err.Error() + ".")
	}
	if len(args) == 0 {
		return nil
	}

	name, args := strings.ToLower(args[0]), args[1:]
	d.log.Debug("dispatching command", "command", name, "args", len(args))

	switch name {
	case "post":
		return d.post(args)
	case "delpost":
		return d.delpost(args)
	case "editpost":
		return d.editpost(args)
	case "commands", "help":
		return d.help()
	default:
		return errorReply(fmt.Sprintf("Command not found. Use `%shelp` to see the list of available commands.", d.prefix))
	}
}

func (d *Dispatcher) post(args []string) *Reply {
	title, content, imageURL, videoURL := arg(args, 0), arg(args, 1), arg(args, 2), arg(args, 3)
	if title == "" || content == "" {
		return errorReply("Both title and content are required for a post. Usage: `" + d.usage(UsagePost) + "`")
	}

	ok, err := d.store.Add(title, content, imageURL, videoURL)
	if err != nil {
		return d.unexpected("post", err)
	}
	if !ok {
		return errorReply("Unable to add post. Please try again.")
	}

	reply := &Reply{
		Kind:  KindSuccess,
		Title: "✅ Post Added",
		Fields: []Field{
			{Name: "Title", Value: title},
			{Name: "Content", Value: content},
		},
		ImageURL: imageURL,
	}
	if videoURL != "" {
		reply.Fields = append(reply.Fields, Field{Name: "Video", Value: videoURL})
	}
	return reply
}

func (d *Dispatcher) delpost(args []string) *Reply {
	title := arg(args, 0)
	if title == "" {
		return errorReply("Title is required to delete a post. Usage: `" + d.usage(UsageDelPost) + "`")
	}

	ok, err := d.store.DeleteByTitle(title)
	if err != nil {
		return d.unexpected("delpost", err)
	}
	if !ok {
		return notFound(title)
	}
	return &Reply{
		Kind:        KindDeleted,
		Title:       "🗑️ Post Deleted",
		Description: fmt.Sprintf("Post titled '%s' has been deleted.", title),
	}
}

func (d *Dispatcher) editpost(args []string) *Reply {
	title := arg(args, 0)
	if title == "" {
		return errorReply("Title is required to edit a post. Usage: `" + d.usage(UsageEditPost) + "`")
	}

	edit := models.PostEdit{Content: arg(args, 1), ImageURL: arg(args, 2), VideoURL: arg(args, 3)}
	ok, err := d.store.EditByTitle(title, edit)
	if err != nil {
		return d.unexpected("editpost", err)
	}
	if !ok {
		return notFound(title)
	}
	return &Reply{
		Kind:        KindInfo,
		Title:       "✏️ Post Edited",
		Description: fmt.Sprintf("Post titled '%s' has been updated.", title),
	}
}

func (d *Dispatcher) help() *Reply {
	return &Reply{
		Kind:  KindHelp,
		Title: "📜 Help - Available Commands",
		Fields: []Field{
			{Name: d.prefix + "post", Value: "Add a post. Usage: `" + d.usage(UsagePost) + "`"},
			{Name: d.prefix + "delpost", Value: "Delete a post by title. Usage: `" + d.usage(UsageDelPost) + "`"},
			{Name: d.prefix + "editpost", Value: "Edit a post. Usage: `" + d.usage(UsageEditPost) + "`"},
			{Name: d.prefix + "help", Value: "Show this help message."},
		},
	}
}

func (d *Dispatcher) unexpected(command string, err error) *Reply {
	d.log.Error("command failed", "command", command, "error", err)
	return &Reply{Kind: KindError, Title: "❌ **An unexpected error occurred. Please try again.**", Plain: true}
}

// usage rewrites a usage string for the configured prefix.
func (d *Dispatcher) usage(u string) string {
	return d.prefix + strings.TrimPrefix(u, DefaultPrefix)
}

func notFound(title string) *Reply {
	return &Reply{
		Kind:        KindWarning,
		Title:       "❌ Post Not Found",
		Description: fmt.Sprintf("Could not find a post titled '%s'.", title),
	}
}

// arg returns args[i], or "" when it was not supplied.
func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
