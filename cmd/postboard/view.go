// ABOUTME: Cobra command for the terminal post viewer.
// ABOUTME: Runs the bubbletea viewer over the configured store.
package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/2389-research/postboard/internal/tui"
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Browse posts in the terminal",
	Long:  "Open a scrollable, read-only view of the posts. Press r to reload and q to quit.",
	RunE:  runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, args []string) error {
	p := tea.NewProgram(tui.NewViewerModel(globalStore), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
