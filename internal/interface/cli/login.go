package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Sign in with your work email",
	Long: `Sign in with your work email address.

The email identifies you to the chat service; which domains are allowed
is enforced server-side. Login state persists until 'deskchat logout'.`,
	Args: cobra.ExactArgs(1),
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear local login state",
	RunE:  runLogout,
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	user, err := users.Login(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Signed in as %s\n", user.Email)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	if err := users.Logout(); err != nil {
		return err
	}
	fmt.Println("Signed out")
	return nil
}
