package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"deskchat/internal/core/auth"
	"deskchat/internal/core/config"
)

var (
	versionInfo string

	cfg       *config.Config
	configDir string
	users     *auth.Manager
)

// SetVersion sets the version information from build-time ldflags
func SetVersion(version, commit, date string) {
	versionInfo = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
	rootCmd.Version = versionInfo
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "deskchat",
	Short: "Terminal client for the helpdesk chat service",
	Long: `deskchat - chat with the helpdesk assistant from your terminal

Sign in with your work email, ask questions, and browse or resume
previous conversations. Sessions are stored server-side; deskchat keeps
a small local cache so the history panel renders instantly.`,
	PersistentPreRunE: initApp,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default to the chat UI if no subcommand specified
		return chatCmd.RunE(cmd, args)
	},
}

func initApp(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load(".env")

	var err error
	cfg, err = config.Load()
	if err != nil {
		return err
	}

	configDir, err = config.Dir()
	if err != nil {
		return fmt.Errorf("failed to locate config directory: %w", err)
	}
	users = auth.NewManager(configDir)

	setupLogging(configDir, cfg.LogLevel)
	return nil
}

// setupLogging sends slog output to a rotating file so the TUI screen
// stays clean.
func setupLogging(dir, level string) {
	logger := &lumberjack.Logger{
		Filename:   filepath.Join(dir, "deskchat.log"),
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}

	lvl := slog.LevelInfo
	if level == "debug" {
		lvl = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(logger, &slog.HandlerOptions{Level: lvl})))
}

// currentUser resolves the signed-in user for commands that need one.
func currentUser() (auth.User, error) {
	user, ok := users.CurrentUser()
	if !ok {
		return auth.User{}, fmt.Errorf("not signed in. Run 'deskchat login <email>' first")
	}
	return user, nil
}
