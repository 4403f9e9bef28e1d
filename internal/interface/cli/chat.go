package cli

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"deskchat/internal/core/api"
	"deskchat/internal/core/cache"
	"deskchat/internal/interface/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Launch the interactive chat UI",
	Long:  "Launch the interactive terminal UI: composer, transcript, and conversation-history panel",
	RunE:  runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	store, err := cache.New(filepath.Join(configDir, "sessions.db"))
	if err != nil {
		return fmt.Errorf("failed to open session cache: %w", err)
	}
	defer func() { _ = store.Close() }()

	user, loggedIn := users.CurrentUser()

	model := tui.New(tui.Options{
		Client:   api.NewClient(cfg.APIBaseURL, cfg.RequestTimeout()),
		Users:    users,
		Store:    store,
		Config:   cfg,
		User:     user,
		LoggedIn: loggedIn,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running UI: %v\n", err)
		os.Exit(1)
	}
	return nil
}
