// ABOUTME: Cobra command for interactive postboard configuration.
// ABOUTME: Launches a bubbletea TUI wizard to collect and validate settings.
package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/2389-research/postboard/internal/config"
	"github.com/2389-research/postboard/internal/tui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Configure postboard",
	Long:  "Interactive wizard to choose the data file, web address and bot transport.",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	model := tui.NewSetupModel(
		cfg.Storage.DataFile,
		cfg.Web.Addr,
		cfg.Bot.Transport,
	).WithValidator(tui.ValidateSetup(cfg.GetBackend()))

	p := tea.NewProgram(model)
	result, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	final := result.(tui.SetupModel)
	if !final.ShouldSave() {
		fmt.Println("Setup cancelled.")
		return nil
	}

	dataFile, webAddr, transport := final.Result()
	cfg.Storage.DataFile = dataFile
	cfg.Web.Addr = webAddr
	cfg.Bot.Transport = transport

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	configPath, err := config.GetConfigPath()
	if err != nil {
		fmt.Println("Config saved successfully.")
	} else {
		fmt.Printf("Config saved to %s\n", configPath)
	}
	return nil
}
