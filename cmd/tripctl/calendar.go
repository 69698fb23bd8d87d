package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dharmasatrya/tripfares/internal/models"
	"github.com/dharmasatrya/tripfares/pkg/currency"
)

func calendarCmd() *cobra.Command {
	var (
		q      models.CalendarQuery
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Print the cheapest package price for every day of a month",
		Long: `Aggregate one calendar month. Month is 1-based (January = 1).

Examples:
  tripctl calendar --origin BCN --pax 2 --year 2025 --month 10
  tripctl calendar --origin MAD --month 12 --debug --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if q.Origin == "" {
				q.Origin = a.Config.Calendar.DefaultOrigin
			}
			if q.Passengers == 0 {
				q.Passengers = a.Config.Calendar.DefaultPax
			}
			if q.Year == 0 {
				q.Year = time.Now().UTC().Year()
			}
			q.NoCache = q.NoCache || noCache

			payload, err := a.Calendar.AggregateMonth(cmd.Context(), q)
			if err != nil {
				return fmt.Errorf("calendar failed: %w", err)
			}
			if asJSON {
				return printJSON(payload)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tBASE\tFROM")
			for _, d := range payload.Days {
				from := "-"
				if d.Show && d.PriceFrom != nil {
					from = currency.FormatEUR(float64(*d.PriceFrom))
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", d.Date, currency.FormatEUR(float64(d.BaseFare)), from)
			}
			w.Flush()

			if payload.Diag != nil {
				fmt.Fprintf(os.Stderr, "computed=%d cached=%d failed=%d skipped=%d month_cache_hit=%t\n",
					payload.Diag.DaysComputed, payload.Diag.DaysFromCache, payload.Diag.DaysFailed,
					payload.Diag.DaysSkipped, payload.Diag.MonthCacheHit)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&q.Origin, "origin", "o", "", "origin IATA code (default calendar.default_origin)")
	cmd.Flags().IntVarP(&q.Passengers, "pax", "p", 0, "passengers (default calendar.default_pax)")
	cmd.Flags().IntVarP(&q.Year, "year", "y", 0, "year (default current year)")
	cmd.Flags().IntVarP(&q.Month, "month", "m", 0, "month, 1-12")
	cmd.Flags().BoolVar(&q.Debug, "debug", false, "include diagnostics")
	cmd.Flags().BoolVar(&q.NoCache, "refresh", false, "skip cache reads and recompute")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	_ = cmd.MarkFlagRequired("month")

	return cmd
}
