// ABOUTME: MCP server initialization and configuration for postboard.
// ABOUTME: Sets up the server with post tools backed by a PostStore.
package mcp

import (
	"context"
	"fmt"
	"log/slog"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/2389-research/postboard/internal/storage"
)

// Server wraps the MCP server with post storage.
type Server struct {
	mcp   *gomcp.Server
	store storage.PostStore
	log   *slog.Logger
}

// ServerOption configures optional Server dependencies.
type ServerOption func(*Server)

// WithLogger sets the logger used for store failures.
func WithLogger(l *slog.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// NewServer creates an MCP server exposing the post board tools.
func NewServer(store storage.PostStore, opts ...ServerOption) (*Server, error) {
	if store == nil {
		return nil, fmt.Errorf("post store is required")
	}

	mcpServer := gomcp.NewServer(
		&gomcp.Implementation{
			Name:    "postboard",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcp:   mcpServer,
		store: store,
		log:   slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.registerPostTools()

	return s, nil
}

// Serve starts the MCP server in stdio mode.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcp.Run(ctx, &gomcp.StdioTransport{})
}
