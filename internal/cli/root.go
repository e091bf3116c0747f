// Package cli is the airtrack command line client.
package cli

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"infinite-experiment/airtrack/internal/logging"
	"infinite-experiment/airtrack/internal/models/dtos"
)

// FlightResolver is what the commands need from the flight services.
type FlightResolver interface {
	SearchFlights(ctx context.Context, q string) ([]dtos.FlightSummary, error)
	FlightDetails(ctx context.Context, flightID string) (*dtos.FlightDetail, error)
}

var (
	flightResolver   FlightResolver
	apiKeyConfigured = true
)

// SetFlightResolver wires the resolver used by every command.
func SetFlightResolver(r FlightResolver) {
	flightResolver = r
}

// SetAPIKeyConfigured records whether RAPID_API_KEY was set. A missing key is
// only reported in verbose mode; requests still go out and fail upstream.
func SetAPIKeyConfigured(ok bool) {
	apiKeyConfigured = ok
}

var verbose bool

var rootCmd = &cobra.Command{
	Use:           "airtrack",
	Short:         "Search and track flights",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if verbose {
			if err := logging.Init("development"); err != nil {
				return err
			}
			if !apiKeyConfigured {
				logging.Warn("RAPID_API_KEY is not set; flight data requests will be rejected upstream")
			}
			return nil
		}
		logging.SetLogger(zap.NewNop().Sugar())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log upstream requests to stderr")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
