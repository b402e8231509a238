package main

import (
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/spf13/cobra"

	"github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/app"
	"github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/config"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-utils"
)

// receiptsctl is the operator CLI: replay sweeps, recover stuck
// confirmations and move lease watermarks.
func main() {
	utils.InitLogger(config.AppName + "-ctl")

	rootCmd := &cobra.Command{
		Use:          "receiptsctl",
		Short:        "Operate the receipts-service",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(sweepCmd(), actionsCmd(), leasesCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withServices connects to the database and hands the wired services to fn.
func withServices(fn func(svc *app.Services) error) error {
	cfg := config.LoadConfig()
	defer cfg.Close()

	a, err := app.NewApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	svc, err := a.BuildServices()
	if err != nil {
		return err
	}
	return fn(svc)
}
