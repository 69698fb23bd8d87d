package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dharmasatrya/tripfares/internal/models"
	"github.com/dharmasatrya/tripfares/pkg/currency"
)

func searchCmd() *cobra.Command {
	var (
		q        models.SearchQuery
		asJSON   bool
		showDiag bool
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search round trips for one departure date",
		Long: `Search every configured destination and print the cheapest acceptable
round trips, the same list GET /flight-options returns.

Examples:
  tripctl search --origin BCN --dep 2025-11-10 --ret 2025-11-19 --pax 2
  tripctl search --origin MAD --dep 2025-12-01 --ret 2025-12-10 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Search.Search(cmd.Context(), q)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}

			if asJSON {
				resp := models.FlightOptionsResponse{OK: len(res.Options) > 0, Options: res.Options}
				if showDiag {
					resp.Diag = &res.Diagnostics
				}
				return printJSON(resp)
			}

			if len(res.Options) == 0 {
				fmt.Println("No acceptable options.")
			} else {
				w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
				fmt.Fprintln(w, "PRICE/PAX\tDEST\tCARRIERS\tOUT\tBACK\tSTOPS\tBAGGAGE")
				for _, o := range res.Options {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d/%d\t%t\n",
						currency.Format(float64(o.TotalAmountPerPerson), o.Currency),
						o.Destination,
						carrierCodes(o.Airlines),
						departs(o.Outbound),
						departs(o.Inbound),
						o.Outbound.Stops(), o.Inbound.Stops(),
						o.BaggageIncluded,
					)
				}
				w.Flush()
			}

			if showDiag {
				for dest, d := range res.Diagnostics.Destinations {
					if d.Error != "" {
						fmt.Fprintf(os.Stderr, "%s: %s\n", dest, d.Error)
					} else {
						fmt.Fprintf(os.Stderr, "%s: %d offers in %dms\n", dest, d.Count, d.DurationMs)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&q.Origin, "origin", "o", "", "origin IATA code")
	cmd.Flags().StringVar(&q.DepartureDate, "dep", "", "departure date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&q.ReturnDate, "ret", "", "return date (YYYY-MM-DD)")
	cmd.Flags().IntVarP(&q.Passengers, "pax", "p", 1, "passengers (1-6)")
	cmd.Flags().IntVarP(&q.Limit, "limit", "n", 10, "maximum results")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	cmd.Flags().BoolVar(&showDiag, "diag", false, "include per-destination diagnostics")
	_ = cmd.MarkFlagRequired("origin")

	return cmd
}

func carrierCodes(airlines []models.Airline) string {
	codes := make([]string, len(airlines))
	for i, a := range airlines {
		codes[i] = a.Code
	}
	return strings.Join(codes, ",")
}

func departs(s models.Slice) string {
	if len(s) == 0 {
		return "-"
	}
	return s[0].Departure.Format("2006-01-02 15:04")
}
