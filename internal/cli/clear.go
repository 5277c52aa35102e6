package cli

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear error state without probing",
	Run:   runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) {
	st, err := callServer(http.MethodPost, "/clear")
	if err != nil {
		slog.Error("Failed to clear errors", "error", err)
		os.Exit(1)
	}
	printStatus(st, false)
}
