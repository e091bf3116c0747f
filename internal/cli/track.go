package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"infinite-experiment/airtrack/internal/services"
)

var (
	trackInterval time.Duration
	trackCount    int
)

var trackCmd = &cobra.Command{
	Use:   "track [flight-id]",
	Short: "Follow a flight's live position",
	Long: `Polls the flight detail and prints the latest position on every tick.
Runs until interrupted unless --count is set.`,
	Args: cobra.ExactArgs(1),
	RunE: runTrack,
}

func init() {
	trackCmd.Flags().DurationVarP(&trackInterval, "interval", "i", 30*time.Second, "time between updates")
	trackCmd.Flags().IntVarP(&trackCount, "count", "c", 0, "stop after this many updates (0 runs forever)")
	rootCmd.AddCommand(trackCmd)
}

func runTrack(cmd *cobra.Command, args []string) error {
	if flightResolver == nil {
		return errors.New("flight resolver not configured")
	}
	if trackInterval <= 0 {
		return errors.New("interval must be positive")
	}

	ctx := cmd.Context()
	ticker := time.NewTicker(trackInterval)
	defer ticker.Stop()

	for n := 1; ; n++ {
		trackOnce(cmd, args[0])
		if trackCount > 0 && n >= trackCount {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// trackOnce prints one update. Errors are reported and tracking continues.
func trackOnce(cmd *cobra.Command, flightID string) {
	detail, err := flightResolver.FlightDetails(cmd.Context(), flightID)
	if err != nil {
		cmd.PrintErrf("%s  update failed: %s\n", time.Now().Format("15:04:05"), services.ErrorCode(err))
		return
	}

	view := services.BuildMapView(detail)
	if view.Live == nil {
		cmd.Printf("%s  %s  %s  no position\n", time.Now().Format("15:04:05"), detail.Identification.Number.Default, detail.Status.Text)
		return
	}
	pos, _ := detail.CurrentPosition()
	cmd.Printf("%s  %s  %s\n", time.Now().Format("15:04:05"), detail.Identification.Number.Default, formatPosition(pos))
}
