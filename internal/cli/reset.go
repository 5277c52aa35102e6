package cli

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear failure bookkeeping and probe again right away",
	Run:   runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) {
	st, err := callServer(http.MethodPost, "/reset")
	if err != nil {
		slog.Error("Failed to reset", "error", err)
		os.Exit(1)
	}
	printStatus(st, false)
}
