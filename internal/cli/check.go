package cli

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Trigger an immediate health check",
	Run:   runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) {
	st, err := callServer(http.MethodPost, "/check")
	if err != nil {
		slog.Error("Failed to trigger check", "error", err)
		os.Exit(1)
	}
	printStatus(st, false)
}
