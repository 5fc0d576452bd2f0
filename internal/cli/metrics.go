package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	metricsJSON  bool
	metricsSince string
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Summarise recorded task activity",
	Long: `Display counts derived from .tasks/events.jsonl: tasks created,
closed, cancelled and reopened, status transitions, updates, log entries and
reported dependency cycles. Requires events.enabled in the configuration.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if MetricsCalc == nil {
			return fmt.Errorf("metrics unavailable: event log is disabled (set events.enabled in .tasks/config.yaml or BT_EVENTS_ENABLED=true)")
		}

		sinceTime, err := parseSinceDuration(metricsSince)
		if err != nil {
			return fmt.Errorf("parsing --since: %w", err)
		}
		metrics, err := MetricsCalc.Calculate(sinceTime)
		if err != nil {
			return fmt.Errorf("calculating metrics: %w", err)
		}

		out := cmd.OutOrStdout()
		if metricsJSON {
			return writeJSON(out, metrics)
		}

		fmt.Fprintf(out, "Metrics (since %s)\n\n", sinceTime.Format("2006-01-02"))
		fmt.Fprintf(out, "  %-20s %d\n", "Events recorded:", metrics.EventCount)
		fmt.Fprintf(out, "  %-20s %d\n", "Tasks created:", metrics.TasksCreated)
		fmt.Fprintf(out, "  %-20s %d\n", "Tasks closed:", metrics.TasksClosed)
		fmt.Fprintf(out, "  %-20s %d\n", "Tasks cancelled:", metrics.TasksCancelled)
		fmt.Fprintf(out, "  %-20s %d\n", "Tasks reopened:", metrics.TasksReopened)
		fmt.Fprintf(out, "  %-20s %d\n", "Updates:", metrics.Updates)
		fmt.Fprintf(out, "  %-20s %d\n", "Log entries:", metrics.LogEntries)
		fmt.Fprintf(out, "  %-20s %d\n", "Cycles reported:", metrics.CyclesReported)

		if len(metrics.Transitions) > 0 {
			keys := make([]string, 0, len(metrics.Transitions))
			for k := range metrics.Transitions {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintln(out, "\n  Status transitions:")
			for _, k := range keys {
				fmt.Fprintf(out, "    %-26s %d\n", k+":", metrics.Transitions[k])
			}
		}

		if metrics.OldestEvent != nil {
			fmt.Fprintf(out, "\n  %-20s %s\n", "Oldest event:", metrics.OldestEvent.Format(time.RFC3339))
		}
		if metrics.NewestEvent != nil {
			fmt.Fprintf(out, "  %-20s %s\n", "Newest event:", metrics.NewestEvent.Format(time.RFC3339))
		}
		return nil
	},
}

// parseSinceDuration parses a window such as "7d" or "24h" and returns the
// time that far in the past. An empty string means seven days.
func parseSinceDuration(s string) (time.Time, error) {
	now := time.Now().UTC()
	s = strings.TrimSpace(s)
	if s == "" {
		return now.AddDate(0, 0, -7), nil
	}

	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil || days < 0 {
			return time.Time{}, fmt.Errorf("invalid day duration %q", s)
		}
		return now.AddDate(0, 0, -days), nil
	}

	if strings.HasSuffix(s, "h") {
		hours, err := strconv.Atoi(strings.TrimSuffix(s, "h"))
		if err != nil || hours < 0 {
			return time.Time{}, fmt.Errorf("invalid hour duration %q", s)
		}
		return now.Add(-time.Duration(hours) * time.Hour), nil
	}

	return time.Time{}, fmt.Errorf("unsupported duration format %q (use e.g. 7d, 30d, 24h)", s)
}

func init() {
	metricsCmd.Flags().BoolVar(&metricsJSON, "json", false, "Output metrics as JSON")
	metricsCmd.Flags().StringVar(&metricsSince, "since", "7d", "Time window (e.g. 7d, 30d, 24h)")
	rootCmd.AddCommand(metricsCmd)
}
