package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"infinite-experiment/airtrack/internal/models/dtos"
)

var detailJSON bool

var detailCmd = &cobra.Command{
	Use:   "detail [flight-id]",
	Short: "Show the full record for one flight",
	Args:  cobra.ExactArgs(1),
	RunE:  runDetail,
}

func init() {
	detailCmd.Flags().BoolVar(&detailJSON, "json", false, "output the detail as JSON")
	rootCmd.AddCommand(detailCmd)
}

func runDetail(cmd *cobra.Command, args []string) error {
	if flightResolver == nil {
		return errors.New("flight resolver not configured")
	}

	detail, err := flightResolver.FlightDetails(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("detail failed: %w", err)
	}

	if detailJSON {
		return printJSON(cmd, detail)
	}
	printDetail(cmd, detail)
	return nil
}

func printDetail(cmd *cobra.Command, d *dtos.FlightDetail) {
	cmd.Printf("%s  %s\n", d.Identification.Number.Default, d.Airline.Name)
	cmd.Printf("  Status:   %s\n", d.Status.Text)
	cmd.Printf("  Aircraft: %s (%s)\n", d.Aircraft.Model.Text, d.Aircraft.Registration)
	cmd.Printf("  Route:    %s %s -> %s %s\n",
		d.Airport.Origin.Code.IATA, d.Airport.Origin.Position.Region.City,
		d.Airport.Destination.Code.IATA, d.Airport.Destination.Position.Region.City,
	)
	cmd.Printf("  Departs:  %s\n", formatEpoch(d.Time.Scheduled.Departure))
	cmd.Printf("  Arrives:  %s\n", formatEpoch(d.Time.Scheduled.Arrival))
	if pos, ok := d.CurrentPosition(); ok {
		cmd.Printf("  Position: %s\n", formatPosition(pos))
	}
}

func formatEpoch(ts *int64) string {
	if ts == nil {
		return "unknown"
	}
	return time.Unix(*ts, 0).UTC().Format("2006-01-02 15:04 MST")
}

func formatPosition(p dtos.TrailPoint) string {
	return fmt.Sprintf("%.4f, %.4f  alt %gft  spd %gkts  hdg %g", p.Lat, p.Lng, p.Alt, p.Spd, p.Hd)
}
