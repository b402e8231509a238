package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/app"
	"github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/constants"
	"github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/services"
)

func sweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run a scheduler sweep now",
	}
	cmd.AddCommand(
		sweepKindCmd("reminders", services.SweepKindReminder),
		sweepKindCmd("auto-send", services.SweepKindAutoSend),
	)
	return cmd
}

func sweepKindCmd(use, kind string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("Run the %s sweep", kind),
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := parseAt(cmd)
			if err != nil {
				return err
			}
			return withServices(func(svc *app.Services) error {
				ctx, cancel := context.WithTimeout(cmd.Context(), constants.SweepJobTimeout)
				defer cancel()

				run := svc.Scheduler.RunReminderSweep
				if kind == services.SweepKindAutoSend {
					run = svc.Scheduler.RunAutoSendSweep
				}
				results, err := run(ctx, at)
				if err != nil {
					return err
				}
				printSweep(results)
				return nil
			})
		},
	}
	cmd.Flags().String("at", "", "evaluate the sweep at this RFC3339 instant instead of now")
	return cmd
}

func parseAt(cmd *cobra.Command) (time.Time, error) {
	raw, _ := cmd.Flags().GetString("at")
	if raw == "" {
		return time.Now(), nil
	}
	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --at %q: %w", raw, err)
	}
	return at, nil
}

func printSweep(results []services.SweepResult) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LEASE\tPERIOD\tSTATUS\tREASON\tERROR")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.LeaseID, r.Period, r.Status, r.Reason, r.Error)
	}
	_ = tw.Flush()
}
