package seeding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-models"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-repositories"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-utils"
)

const (
	DefaultLandlordID = "22222222-2222-4222-8222-222222222222"
	DefaultTenantID   = "33333333-3333-4333-8333-333333333333"
	DefaultPropertyID = "44444444-4444-4444-8444-444444444444"
	DefaultLeaseID    = "55555555-5555-4555-8555-555555555555"
)

// Repos groups the repositories the demo seed writes to.
type Repos struct {
	Landlords  repositories.LandlordRepository
	Tenants    repositories.TenantRepository
	Properties repositories.PropertyRepository
	Leases     repositories.LeaseRepository
}

// SeedDemoLandlord creates a demo landlord with one tenant, one property and
// one active lease with reminders enabled. Safe to call repeatedly.
func SeedDemoLandlord(ctx context.Context, repos Repos, contactEmail string) error {
	leaseID := uuid.MustParse(DefaultLeaseID)

	if existing, err := repos.Leases.GetByID(ctx, leaseID); err != nil {
		return fmt.Errorf("check existing demo lease: %w", err)
	} else if existing != nil {
		utils.Logger.Info("seeding: demo lease already present; skipping")
		return nil
	}

	landlord := &models.Landlord{
		ID:       uuid.MustParse(DefaultLandlordID),
		Email:    contactEmail,
		FullName: "Demo Bailleur",
		Address:  "1 place de la République, 75003 Paris",
		Plan:     models.PlanEssential,
	}
	if err := ignoreDuplicate(repos.Landlords.Create(ctx, landlord)); err != nil {
		return fmt.Errorf("create demo landlord: %w", err)
	}

	tenant := &models.Tenant{
		ID:       uuid.MustParse(DefaultTenantID),
		UserID:   landlord.ID,
		FullName: "Demo Locataire",
		Email:    utils.Ptr(contactEmail),
	}
	if err := ignoreDuplicate(repos.Tenants.Create(ctx, tenant)); err != nil {
		return fmt.Errorf("create demo tenant: %w", err)
	}

	property := &models.Property{
		ID:        uuid.MustParse(DefaultPropertyID),
		UserID:    landlord.ID,
		Label:     "Studio Marais",
		Address:   "8 rue de Bretagne",
		City:      "Paris",
		ZipCode:   "75003",
		Latitude:  utils.Ptr(48.8634),
		Longitude: utils.Ptr(2.3610),
	}
	if err := ignoreDuplicate(repos.Properties.Create(ctx, property)); err != nil {
		return fmt.Errorf("create demo property: %w", err)
	}

	lease := &models.Lease{
		ID:                  leaseID,
		UserID:              landlord.ID,
		TenantID:            tenant.ID,
		PropertyID:          property.ID,
		RentCents:           80000,
		ChargesCents:        10000,
		PaymentDay:          5,
		Status:              models.LeaseStatusActive,
		AutoReminderEnabled: true,
		ScheduleHour:        9,
		ReminderEmail:       utils.Ptr(contactEmail),
		PaymentMethod:       "virement",
		StartDate:           time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := ignoreDuplicate(repos.Leases.Create(ctx, lease)); err != nil {
		return fmt.Errorf("create demo lease: %w", err)
	}

	utils.Logger.Infof("seeding: created demo landlord id=%s lease id=%s", landlord.ID, lease.ID)
	return nil
}

// ignoreDuplicate treats unique violations (another instance seeded first) as success.
func ignoreDuplicate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return nil
	}
	return err
}
