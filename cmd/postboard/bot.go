// ABOUTME: Cobra command that runs the chat bot host.
// ABOUTME: Connects the command dispatcher to the Discord, webhook, or console transport.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/2389-research/postboard/internal/bot"
	"github.com/2389-research/postboard/internal/command"
	"github.com/2389-research/postboard/internal/config"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the chat bot",
	Long: `Run the bot host that answers !post, !delpost, !editpost and !commands.

Transports:
  discord  connect to Discord using DISCORD_TOKEN
  webhook  accept POST /messages with {"content": "..."}
  console  read commands from stdin`,
	RunE: runBot,
}

// Flags
var (
	botTransport string
	botListen    string
	botPrefix    string
)

func init() {
	rootCmd.AddCommand(botCmd)

	botCmd.Flags().StringVar(&botTransport, "transport", "", "Transport: discord, webhook or console (overrides config)")
	botCmd.Flags().StringVar(&botListen, "listen", "", "Webhook listen address (overrides config)")
	botCmd.Flags().StringVar(&botPrefix, "prefix", "", "Command prefix (overrides config)")
}

func runBot(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	transport, err := newTransport()
	if err != nil {
		return err
	}

	prefix := botPrefix
	if prefix == "" {
		prefix = globalConfig.GetBotPrefix()
	}
	dispatcher, err := command.NewDispatcher(command.Config{Store: globalStore, Prefix: prefix, Logger: logger})
	if err != nil {
		return err
	}

	b, err := bot.New(bot.Config{Transport: transport, Handler: dispatcher, Logger: logger})
	if err != nil {
		return err
	}
	return b.Run(ctx)
}

func newTransport() (bot.Transport, error) {
	name := botTransport
	if name == "" {
		name = globalConfig.GetBotTransport()
	}

	switch name {
	case config.TransportDiscord:
		t, err := bot.NewDiscordTransport(globalConfig.Bot.Token, logger)
		if err != nil {
			return nil, fmt.Errorf("discord transport: %w (set DISCORD_TOKEN)", err)
		}
		return t, nil
	case config.TransportWebhook:
		listen := botListen
		if listen == "" {
			listen = globalConfig.GetBotListen()
		}
		return bot.NewWebhookTransport(listen, logger), nil
	case config.TransportConsole:
		return bot.NewConsoleTransport(os.Stdin, os.Stdout), nil
	default:
		return nil, fmt.Errorf("unknown bot transport %q", name)
	}
}
