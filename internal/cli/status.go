package cli

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current health of the watched service",
	Run:   runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "print raw JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	st, err := callServer(http.MethodGet, "/status")
	if err != nil {
		slog.Error("Failed to fetch status", "error", err)
		os.Exit(1)
	}
	printStatus(st, statusJSON)
}
