package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dharmasatrya/tripfares/internal/prewarm"
)

func prewarmCmd() *cobra.Command {
	var (
		opts   prewarm.Options
		async  bool
		worker bool
	)

	cmd := &cobra.Command{
		Use:   "prewarm",
		Short: "Recompute calendar months ahead of traffic",
		Long: `Recompute origins × pax × months and refresh the cache.

By default jobs run in-process and a summary is printed. With --async the
jobs are published to the prewarm queue instead; --worker consumes that
queue until interrupted.

Examples:
  tripctl prewarm --origins BCN,MAD --pax 1-6 --months-ahead 3
  tripctl prewarm --months 10,11 --year 2025 --async
  tripctl prewarm --worker`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if worker {
				if !a.Config.Prewarm.QueueEnabled {
					return fmt.Errorf("--worker needs prewarm.queue_enabled")
				}
				if err := a.Consumer().Run(cmd.Context()); !errors.Is(err, context.Canceled) {
					return err
				}
				return nil
			}

			if opts.Origins == "" {
				opts.Origins = strings.Join(a.Config.Prewarm.Origins, ",")
			}
			if opts.MonthsAhead == "" {
				opts.MonthsAhead = strconv.Itoa(a.Config.Prewarm.MonthsAhead)
			}
			jobs := opts.Jobs(time.Now())
			if len(jobs) == 0 {
				return fmt.Errorf("no prewarm jobs for the given origins, pax and months")
			}

			if async {
				if a.Dispatcher == nil {
					return fmt.Errorf("--async needs prewarm.queue_enabled")
				}
				batchID := uuid.NewString()
				if err := a.Dispatcher.Dispatch(cmd.Context(), batchID, jobs); err != nil {
					return fmt.Errorf("dispatch failed: %w", err)
				}
				return printJSON(map[string]interface{}{"batch_id": batchID, "jobs": len(jobs)})
			}

			summary := a.Warmer.Run(cmd.Context(), jobs)
			if err := printJSON(summary); err != nil {
				return err
			}
			if summary.Fail > 0 {
				return fmt.Errorf("%d of %d prewarm jobs failed", summary.Fail, summary.TotalJobs)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Origins, "origins", "", "comma separated origins (default prewarm.origins)")
	cmd.Flags().StringVar(&opts.Pax, "pax", "", `passenger counts: "2", "1-6" or "1,2,3"`)
	cmd.Flags().StringVar(&opts.Months, "months", "", "comma separated 1-based months")
	cmd.Flags().StringVar(&opts.MonthsAhead, "months-ahead", "", "months after the current one (default prewarm.months_ahead)")
	cmd.Flags().StringVar(&opts.Year, "year", "", "year for --months")
	cmd.Flags().BoolVar(&async, "async", false, "publish jobs to the prewarm queue")
	cmd.Flags().BoolVar(&worker, "worker", false, "consume the prewarm queue")

	return cmd
}
