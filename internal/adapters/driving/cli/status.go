package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status [user-id]",
	Short: "Show a user's Google Sheets connection",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

var disconnectCmd = &cobra.Command{
	Use:   "disconnect [user-id]",
	Short: "Delete a user's stored tokens and sheet link",
	Long: `Delete everything stored for a user. The spreadsheet stays in the
user's Google Drive. Connecting again creates a new one.`,
	Args: cobra.ExactArgs(1),
	RunE: runDisconnect,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output status as JSON")
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(disconnectCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ensureServices()
	defer closeServices()

	status, err := connectionService.Status(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("checking status: %w", err)
	}

	if statusJSON {
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding status: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if !status.Connected {
		cmd.Printf("%s is not connected\n", args[0])
		return nil
	}
	cmd.Printf("%s is connected\n", args[0])
	cmd.Printf("  Sheet:     %s\n", status.SheetURL)
	if status.ConnectedAt != "" {
		cmd.Printf("  Connected: %s\n", status.ConnectedAt)
	}
	return nil
}

func runDisconnect(cmd *cobra.Command, args []string) error {
	ensureServices()
	defer closeServices()

	existed, err := connectionService.Disconnect(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("disconnect failed: %w", err)
	}

	if existed {
		cmd.Printf("Disconnected %s\n", args[0])
	} else {
		cmd.Printf("%s was not connected\n", args[0])
	}
	return nil
}
