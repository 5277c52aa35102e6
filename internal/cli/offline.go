package cli

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

var offlineCmd = &cobra.Command{
	Use:   "offline",
	Short: "Force the watched service to be treated as offline",
	Run:   runOffline,
}

func init() {
	rootCmd.AddCommand(offlineCmd)
}

func runOffline(cmd *cobra.Command, args []string) {
	st, err := callServer(http.MethodPost, "/offline")
	if err != nil {
		slog.Error("Failed to force offline", "error", err)
		os.Exit(1)
	}
	printStatus(st, false)
}
