// ABOUTME: Validation of setup wizard answers before they are saved.
// ABOUTME: Checks the data file is loadable and writable, the address parses, and the transport is usable or left to auto.
package tui

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/2389-research/postboard/internal/config"
	"github.com/2389-research/postboard/internal/storage"
)

// ValidateSetup returns a ValidateFn for the given storage backend.
func ValidateSetup(backend string) ValidateFn {
	return func(ctx context.Context, dataFile, webAddr, transport string) error {
		if err := checkDataFile(backend, dataFile); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, _, err := net.SplitHostPort(webAddr); err != nil {
			return fmt.Errorf("invalid web address %q: %w", webAddr, err)
		}
		if transport != "" && !isTransport(transport) {
			return fmt.Errorf("unknown bot transport %q", transport)
		}
		if transport == config.TransportDiscord && os.Getenv(config.EnvDiscordToken) == "" {
			return fmt.Errorf("%s is not set", config.EnvDiscordToken)
		}
		return nil
	}
}

func checkDataFile(backend, dataFile string) error {
	path, err := config.ExpandPath(dataFile)
	if err != nil {
		return err
	}
	if path == "" {
		return fmt.Errorf("data file is required")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("cannot create %s: %w", dir, err)
	}
	probe, err := os.CreateTemp(dir, ".postboard-probe-*")
	if err != nil {
		return fmt.Errorf("data directory %s is not writable: %w", dir, err)
	}
	_ = probe.Close()
	_ = os.Remove(probe.Name())

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	store, err := storage.Open(backend, path, nil)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if _, status := store.Load(); status == storage.LoadRecovered {
		return fmt.Errorf("%s exists but is not a valid post list", path)
	}
	return nil
}
