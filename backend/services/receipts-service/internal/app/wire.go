package app

import (
	"fmt"

	"github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/services"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-repositories"
)

type Repositories struct {
	Leases     repositories.LeaseRepository
	Receipts   repositories.RentReceiptRepository
	Actions    repositories.ReceiptActionRepository
	Payments   repositories.RentPaymentRepository
	Landlords  repositories.LandlordRepository
	Tenants    repositories.TenantRepository
	Properties repositories.PropertyRepository
}

// Services is the dependency graph shared by the HTTP server and receiptsctl.
type Services struct {
	Repos        Repositories
	Receipts     services.ReceiptService
	Tokens       services.TokenService
	Confirmation services.ConfirmationService
	Scheduler    services.SchedulerService
}

func (a *App) BuildServices() (*Services, error) {
	cfg := a.Config
	repos := Repositories{
		Leases:     repositories.NewLeaseRepository(a.DB),
		Receipts:   repositories.NewRentReceiptRepository(a.DB),
		Actions:    repositories.NewReceiptActionRepository(a.DB),
		Payments:   repositories.NewRentPaymentRepository(a.DB),
		Landlords:  repositories.NewLandlordRepository(a.DB),
		Tenants:    repositories.NewTenantRepository(a.DB),
		Properties: repositories.NewPropertyRepository(a.DB),
	}

	store, err := services.NewObjectStore(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("object store: %w", err)
	}
	mailer := services.NewMailer(cfg)

	receipts := services.NewReceiptService(
		cfg,
		repos.Leases,
		repos.Receipts,
		repos.Landlords,
		repos.Tenants,
		repos.Properties,
		store,
		services.NewPDFRenderer(),
		mailer,
	)
	tokens := services.NewTokenService(cfg, repos.Leases, repos.Actions)
	confirmation := services.NewConfirmationService(cfg, repos.Actions, repos.Leases, repos.Payments, repos.Properties, receipts)
	scheduler := services.NewSchedulerService(
		cfg,
		repos.Leases,
		repos.Landlords,
		repos.Properties,
		services.NewPlanResolver(repos.Landlords),
		tokens,
		receipts,
		mailer,
		services.NewSMSSender(cfg),
		services.NewSweepLocker(a.Redis),
	)

	return &Services{
		Repos:        repos,
		Receipts:     receipts,
		Tokens:       tokens,
		Confirmation: confirmation,
		Scheduler:    scheduler,
	}, nil
}
