package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/vietddude/apiwatch/internal/monitor"
)

// callServer hits the status server of a running daemon.
func callServer(method, path string) (*monitor.StatusResponse, error) {
	client := &http.Client{Timeout: 10 * time.Second}

	req, err := http.NewRequest(method, serverAddr+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("is apiwatch running? %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned http %d", resp.StatusCode)
	}

	var out monitor.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

func printStatus(st *monitor.StatusResponse, asJSON bool) {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(st)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintf(w, "STATE\t%s\n", st.Summary.State)
	_, _ = fmt.Fprintf(w, "MESSAGE\t%s\n", st.Summary.Message)
	if st.Status.ResponseTimeMS != nil {
		_, _ = fmt.Fprintf(w, "QUALITY\t%s (%dms)\n", st.Quality, *st.Status.ResponseTimeMS)
	} else {
		_, _ = fmt.Fprintf(w, "QUALITY\t%s\n", st.Quality)
	}
	_, _ = fmt.Fprintf(w, "CHECKED\t%s\n", st.LastChecked)
	_, _ = fmt.Fprintf(w, "FAILURES\t%d\n", st.Status.ConsecutiveFailures)
	if st.Status.Error != "" {
		_, _ = fmt.Fprintf(w, "ERROR\t%s (%s)\n", st.Status.Error, st.Status.ErrorKind)
	}
	if st.Status.Retrying && st.Status.NextRetryAt != nil {
		_, _ = fmt.Fprintf(w, "NEXT RETRY\t%s\n", st.Status.NextRetryAt.Format(time.RFC3339))
		_, _ = fmt.Fprintf(w, "RETRIES\t%d\n", st.Status.RetryCount)
	}
	_ = w.Flush()
}
