package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/app"
	"github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/constants"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-utils"
)

func actionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "actions",
		Short: "Inspect and recover confirmation actions",
	}

	listStuck := &cobra.Command{
		Use:   "list-stuck",
		Short: "List actions left in processing",
		RunE: func(cmd *cobra.Command, args []string) error {
			older, _ := cmd.Flags().GetDuration("older-than")
			return withServices(func(svc *app.Services) error {
				stuck, err := svc.Confirmation.ListStuck(cmd.Context(), older)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ACTION\tLEASE\tPERIOD\tPROCESSING SINCE")
				for _, a := range stuck {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", a.ID, a.LeaseID, a.Period().Key(), utils.Val(a.ProcessingAt).Format(time.RFC3339))
				}
				return tw.Flush()
			})
		},
	}
	listStuck.Flags().Duration("older-than", constants.StuckProcessingAfter, "minimum time spent in processing")

	reset := &cobra.Command{
		Use:   "reset <action-id>",
		Short: "Move a stuck processing action to error",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid action id: %w", err)
			}
			return withServices(func(svc *app.Services) error {
				if err := svc.Confirmation.ResetStuck(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Printf("action %s moved to error\n", id)
				return nil
			})
		},
	}

	cmd.AddCommand(listStuck, reset)
	return cmd
}
