package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"infinite-experiment/airtrack/internal/models/dtos"
)

var searchJSON bool

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search flights, airlines and airports",
	Long: `Looks up flights by number, callsign, operator or airport.
Only schedule and live results can be tracked.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if flightResolver == nil {
		return errors.New("flight resolver not configured")
	}

	results, err := flightResolver.SearchFlights(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return printJSON(cmd, results)
	}
	printSearchTable(cmd, results)
	return nil
}

func printSearchTable(cmd *cobra.Command, results []dtos.FlightSummary) {
	if len(results) == 0 {
		cmd.Println("No flights found.")
		return
	}

	for i, r := range results {
		cmd.Printf("  [%d] %s (%s) id=%s\n", i+1, r.Label, r.Type, r.ID)
		if r.Detail.Callsign != nil {
			cmd.Printf("      Callsign: %s\n", *r.Detail.Callsign)
		}
		if r.Detail.Operator != nil {
			cmd.Printf("      Operator: %s\n", *r.Detail.Operator)
		}
		if !r.Selectable() {
			cmd.Println("      not trackable")
		}
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
