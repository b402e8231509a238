package main

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/app"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-models"
)

var periodKeyRe = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

func leasesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leases",
		Short: "Lease automation maintenance",
	}

	setWatermark := &cobra.Command{
		Use:   "set-watermark <lease-id> [yyyy-mm]",
		Short: "Set or clear last_auto_sent_period so a month can be processed again",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid lease id: %w", err)
			}
			var period *string
			if len(args) == 2 {
				if !periodKeyRe.MatchString(args[1]) {
					return fmt.Errorf("period must be yyyy-mm, got %q", args[1])
				}
				period = &args[1]
			}
			return withServices(func(svc *app.Services) error {
				err := svc.Repos.Leases.UpdateWithRetry(cmd.Context(), id, func(l *models.Lease) error {
					l.LastAutoSentPeriod = period
					return nil
				})
				if err != nil {
					return err
				}
				if period == nil {
					fmt.Printf("lease %s watermark cleared\n", id)
				} else {
					fmt.Printf("lease %s watermark set to %s\n", id, *period)
				}
				return nil
			})
		},
	}

	cmd.AddCommand(setWatermark)
	return cmd
}
