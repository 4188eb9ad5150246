// ABOUTME: Chat reply model produced by the command dispatcher.
// ABOUTME: Transports render replies as embeds or plain text.
package command

import (
	"fmt"
	"strings"
)

// Kind classifies a reply for colouring and prefixes.
type Kind int

const (
	KindSuccess Kind = iota
	KindInfo
	KindDeleted
	KindWarning
	KindError
	KindHelp
)

// Embed colours used by chat transports.
const (
	ColorGreen   = 0x2ecc71
	ColorBlue    = 0x3498db
	ColorRed     = 0xe74c3c
	ColorOrange  = 0xe67e22
	ColorBlurple = 0x5865f2
)

// Field is a named value shown in a reply.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Reply is the response to a single chat command.
type Reply struct {
	Kind        Kind    `json:"-"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Fields      []Field `json:"fields,omitempty"`
	ImageURL    string  `json:"image_url,omitempty"`
	// Plain marks replies that should be sent as a message rather than an embed.
	Plain bool `json:"plain,omitempty"`
}

// Color returns the embed colour for the reply kind.
func (r *Reply) Color() int {
	switch r.Kind {
	case KindSuccess:
		return ColorGreen
	case KindInfo:
		return ColorBlue
	case KindDeleted, KindError:
		return ColorRed
	case KindWarning:
		return ColorOrange
	default:
		return ColorBlurple
	}
}

// Text renders the reply as a plain-text message.
func (r *Reply) Text() string {
	var sb strings.Builder
	sb.WriteString(r.Title)
	if r.Description != "" {
		sb.WriteString("\n")
		sb.WriteString(r.Description)
	}
	for _, f := range r.Fields {
		sb.WriteString(fmt.Sprintf("\n%s: %s", f.Name, f.Value))
	}
	if r.ImageURL != "" {
		sb.WriteString(fmt.Sprintf("\nImage: %s", r.ImageURL))
	}
	return sb.String()
}

func errorReply(msg string) *Reply {
	return &Reply{Kind: KindError, Title: "❌ **Error:** " + msg, Plain: true}
}
