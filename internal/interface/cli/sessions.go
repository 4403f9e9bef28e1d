package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/spf13/cobra"

	"deskchat/internal/core/api"
	"deskchat/internal/core/cache"
	"deskchat/internal/core/chat"
	"deskchat/internal/core/models"
)

var (
	listLimit  int
	listSince  string
	listCached bool
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage stored conversations",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your conversations",
	Long: `List your stored conversations in reverse chronological order.

Examples:
  deskchat sessions list
  deskchat sessions list --limit 10
  deskchat sessions list --since "last week"
  deskchat sessions list --cached`,
	RunE: runSessionsList,
}

var showCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Print a conversation transcript",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsShow,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a stored conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsDelete,
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(listCmd)
	sessionsCmd.AddCommand(showCmd)
	sessionsCmd.AddCommand(deleteCmd)

	listCmd.Flags().IntVar(&listLimit, "limit", 20, "Maximum number of conversations to display")
	listCmd.Flags().StringVar(&listSince, "since", "", `Only conversations updated since (e.g. "3 days ago", "last monday")`)
	listCmd.Flags().BoolVar(&listCached, "cached", false, "Read the local cache instead of the server")
}

func openStore() (*cache.Store, error) {
	return cache.New(filepath.Join(configDir, "sessions.db"))
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	user, err := currentUser()
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open session cache: %w", err)
	}
	defer func() { _ = store.Close() }()

	var sessions []models.Session
	if listCached {
		sessions, err = store.Sessions(user.Email)
		if err != nil {
			return err
		}
	} else {
		client := api.NewClient(cfg.APIBaseURL, cfg.RequestTimeout())
		sessions, err = client.ListSessions(context.Background(), user.Email)
		if err != nil {
			return err
		}
		// Keep the cache current for the TUI and offline listing.
		panel := chat.NewPanel(user.Email, store)
		panel.SetSessions(sessions)
	}

	if listSince != "" {
		cutoff, err := parseSince(listSince)
		if err != nil {
			return err
		}
		filtered := sessions[:0]
		for _, s := range sessions {
			if s.LastUpdated.After(cutoff) {
				filtered = append(filtered, s)
			}
		}
		sessions = filtered
	}

	if len(sessions) > listLimit {
		sessions = sessions[:listLimit]
	}

	if len(sessions) == 0 {
		fmt.Println("No conversations found. Start one with 'deskchat'.")
		return nil
	}

	for _, s := range sessions {
		title := s.Title
		if title == "" {
			title = s.SessionID
		}
		fmt.Printf("%-40s  %2d/%d turns  %s\n",
			chat.TruncateTitle(title, 40),
			s.ConversationCount, models.MaxConversations,
			humanize.Time(s.LastUpdated))
		fmt.Printf("  id: %s\n", s.SessionID)
	}
	return nil
}

// parseSince turns a natural-language phrase into a cutoff time.
func parseSince(phrase string) (time.Time, error) {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	r, err := w.Parse(phrase, time.Now())
	if err != nil || r == nil {
		return time.Time{}, fmt.Errorf("could not parse --since value %q", phrase)
	}
	return r.Time, nil
}

func runSessionsShow(cmd *cobra.Command, args []string) error {
	user, err := currentUser()
	if err != nil {
		return err
	}

	client := api.NewClient(cfg.APIBaseURL, cfg.RequestTimeout())
	history, err := client.GetHistory(context.Background(), user.Email, args[0])
	if errors.Is(err, api.ErrHistoryNotFound) {
		return fmt.Errorf("no history for session %s", args[0])
	}
	if err != nil {
		return err
	}

	if history.SessionTitle != "" {
		fmt.Printf("%s\n", history.SessionTitle)
		fmt.Printf("%d/%d turns, last updated %s\n\n",
			history.ConversationCount, models.MaxConversations, humanize.Time(history.LastUpdated))
	}
	for _, turn := range history.Turns {
		stamp := turn.Timestamp.Format("Jan 2 15:04")
		fmt.Printf("[%s] you: %s\n", stamp, turn.Question)
		fmt.Printf("[%s] bot: %s\n\n", stamp, turn.Answer)
	}
	return nil
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	user, err := currentUser()
	if err != nil {
		return err
	}

	client := api.NewClient(cfg.APIBaseURL, cfg.RequestTimeout())
	if err := client.DeleteSession(context.Background(), user.Email, args[0]); err != nil {
		return err
	}

	if store, err := openStore(); err == nil {
		_ = store.DeleteSession(user.Email, args[0])
		_ = store.Close()
	}

	fmt.Printf("Deleted conversation %s\n", args[0])
	return nil
}
