package main

import (
	"context"
	"net/http"
	"time"
	_ "time/tzdata"

	"github.com/gorilla/mux"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-middleware"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-utils"
	cron "github.com/robfig/cron/v3"
	"github.com/rs/cors"

	"github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/app"
	"github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/config"
	"github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/constants"
	"github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/controllers"
	"github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/routes"
	"github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/services"
)

func main() {
	utils.InitLogger(config.AppName)
	cfg := config.LoadConfig()
	defer cfg.Close()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize receipts-service:", err)
	}
	defer application.Close()

	svc, err := application.BuildServices()
	if err != nil {
		utils.Logger.Fatal("Failed to build services:", err)
	}

	if err := app.SeedTestData(context.Background(), application, svc); err != nil {
		utils.Logger.WithError(err).Fatal("Failed to seed test data")
	}

	healthController := controllers.NewHealthController(application.DB)
	receiptsController := controllers.NewReceiptsController(cfg, svc.Receipts, svc.Tokens)
	confirmController := controllers.NewConfirmController(cfg, svc.Confirmation)
	cronController := controllers.NewCronController(svc.Scheduler)
	financeController := controllers.NewFinanceController()

	router := mux.NewRouter()

	// Public
	router.HandleFunc(routes.Health, healthController.HealthCheckHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.ReceiptsConfirm, confirmController.ConfirmHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.ReceiptsConfirmPaid, confirmController.ConfirmPaidHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.FinanceCapacity, financeController.CapacityHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.FinanceRentalYield, financeController.RentalYieldHandler).Methods(http.MethodPost)

	secured := router.NewRoute().Subrouter()
	secured.Use(middleware.AuthMiddleware(cfg.RSAPublicKey, cfg.JWTIssuer))

	secured.HandleFunc(routes.ReceiptsGenerate, receiptsController.GenerateHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.ReceiptsSend, receiptsController.SendHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.ReceiptsSignedURL, receiptsController.SignedURLHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.LeaseReceipts, receiptsController.ListForLeaseHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.LeaseConfirmToken, receiptsController.IssueConfirmTokenHandler).Methods(http.MethodPost)

	cronSecured := router.NewRoute().Subrouter()
	cronSecured.Use(middleware.CronSecretMiddleware(cfg.CronSecret))

	cronSecured.HandleFunc(routes.CronReminders, cronController.RemindersHandler).Methods(http.MethodPost)
	cronSecured.HandleFunc(routes.CronAutoSend, cronController.AutoSendHandler).Methods(http.MethodPost)

	// Leases are matched in their own timezone, so the schedules only need
	// to fire every hour.
	c := cron.New(cron.WithLocation(time.UTC))
	schedule(c, cfg.ReminderCronSpec, services.SweepKindReminder, svc.Scheduler.RunReminderSweep)
	schedule(c, cfg.AutoSendCronSpec, services.SweepKindAutoSend, svc.Scheduler.RunAutoSendSweep)
	c.Start()
	defer c.Stop()

	allowedOrigins := []string{cfg.FrontendUrl}
	if !cfg.LDFlag_CORSHighSecurity {
		allowedOrigins = append(allowedOrigins, utils.CORSLowSecurityAllowedOriginLocalhost)
	}

	co := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, co.Handler(router)); err != nil {
		utils.Logger.Fatal("receipts-service failed to start:", err)
	}
}

func schedule(
	c *cron.Cron,
	spec, kind string,
	sweep func(ctx context.Context, now time.Time) ([]services.SweepResult, error),
) {
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), constants.SweepJobTimeout)
		defer cancel()
		if _, e := sweep(ctx, time.Now()); e != nil {
			utils.Logger.WithError(e).Errorf("Scheduled %s sweep failed", kind)
		}
	})
	if err != nil {
		utils.Logger.WithError(err).Fatalf("Failed to schedule %s cron", kind)
	}
}
