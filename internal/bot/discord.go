// ABOUTME: Discord transport for the chat bot built on discordgo.
// ABOUTME: Answers guild and direct messages with embeds mirroring command replies.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/2389-research/postboard/internal/command"
)

// DiscordTransport connects to the Discord gateway with a bot token.
type DiscordTransport struct {
	token string
	log   *slog.Logger
}

// NewDiscordTransport creates a Discord transport. The token is the raw bot
// token without the "Bot " prefix.
func NewDiscordTransport(token string, logger *slog.Logger) (*DiscordTransport, error) {
	if token == "" {
		return nil, errors.New("discord token is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DiscordTransport{token: token, log: logger}, nil
}

// Name implements Transport.
func (t *DiscordTransport) Name() string {
	return "discord"
}

// Run implements Transport.
func (t *DiscordTransport) Run(ctx context.Context, h Handler) error {
	dg, err := discordgo.New("Bot " + t.token)
	if err != nil {
		return fmt.Errorf("failed to create discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentsMessageContent

	dg.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		t.log.Info("logged in to discord", "user", r.User.String())
	})
	dg.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author == nil || m.Author.Bot {
			return
		}
		reply := h.Handle(ctx, m.Content)
		if reply == nil {
			return
		}

		var sendErr error
		if reply.Plain {
			_, sendErr = s.ChannelMessageSend(m.ChannelID, reply.Text())
		} else {
			_, sendErr = s.ChannelMessageSendEmbed(m.ChannelID, toEmbed(reply))
		}
		if sendErr != nil {
			t.log.Error("failed to send discord reply", "channel", m.ChannelID, "error", sendErr)
		}
	})

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	defer func() { _ = dg.Close() }()

	<-ctx.Done()
	return nil
}

// toEmbed converts a reply into a Discord embed.
func toEmbed(r *command.Reply) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       r.Title,
		Description: r.Description,
		Color:       r.Color(),
	}
	for _, f := range r.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: false,
		})
	}
	if r.ImageURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: r.ImageURL}
	}
	return embed
}
