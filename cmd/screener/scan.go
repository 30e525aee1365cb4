package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"StockScreener/internal/model"
	"StockScreener/internal/recorder"
	"StockScreener/internal/scheduler"

	"github.com/spf13/cobra"
)

func newScanCmd() *cobra.Command {
	var (
		screen string
		record bool
	)
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run the configured screens once and print the matches",
		Long: `Load the snapshot, evaluate every configured screen (or just --screen)
and print the matched securities.

Example usage:
  screener scan                         # All screens
  screener scan --screen kd_golden_cross
  screener scan --record                # Also write the run to SQLite`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			var rec recorder.Recorder = recorder.NewNoopRecorder()
			if record {
				rec = openRecorder(cfg)
			}
			defer rec.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			sched := scheduler.NewScheduler(ctx, newCollector(cfg), cfg.BuildScreens(), nil, rec, cfg.Workers)
			results, err := sched.Scan(ctx, model.TriggerCLI, screen)
			if err != nil {
				return err
			}
			printResults(results)
			return nil
		},
	}
	cmd.Flags().StringVar(&screen, "screen", "", "Run only the named screen")
	cmd.Flags().BoolVar(&record, "record", false, "Record the run to the SQLite database")
	return cmd
}

func printResults(results []*model.ScreenResult) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()
	for _, res := range results {
		fmt.Fprintf(w, "== %s: %d/%d matched\n", res.Screen, len(res.Matches), res.Total)
		for _, c := range res.Conditions {
			fmt.Fprintf(w, "   %s\t%d passed\n", c.Name, c.Passed)
		}
		for _, m := range res.Matches {
			fmt.Fprintf(w, "   %s\t%s\t%.2f\n", m.Code, m.Name, m.Close)
		}
		fmt.Fprintln(w)
	}
}
