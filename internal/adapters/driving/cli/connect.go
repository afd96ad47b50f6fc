package cli

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	connectEmail string
	connectOpen  bool
)

var connectCmd = &cobra.Command{
	Use:   "connect [user-id]",
	Short: "Print the Google consent URL for a user",
	Long: `Print the URL that starts the Google Sheets connection for a user.

Google redirects back to GOOGLE_REDIRECT_URI after consent, so a running
'habitsync serve' must be reachable there to finish the connection.

Examples:
  habitsync connect user-123
  habitsync connect user-123 --email me@example.com --open`,
	Args: cobra.ExactArgs(1),
	RunE: runConnect,
}

func init() {
	connectCmd.Flags().StringVar(&connectEmail, "email", "", "Google account to preselect")
	connectCmd.Flags().BoolVar(&connectOpen, "open", false, "open the URL in the default browser")
	rootCmd.AddCommand(connectCmd)
}

func runConnect(cmd *cobra.Command, args []string) error {
	ensureServices()
	defer closeServices()

	consentURL, err := connectionService.AuthorizeURL(args[0], connectEmail)
	if err != nil {
		return fmt.Errorf("building consent URL: %w", err)
	}

	cmd.Println(consentURL)
	if connectOpen {
		if err := openBrowser(consentURL); err != nil {
			cmd.PrintErrf("Could not open browser: %v\n", err)
		}
	}
	return nil
}

// openBrowser is replaced in tests.
var openBrowser = func(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
