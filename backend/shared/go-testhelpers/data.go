// backend/shared/go-testhelpers/data.go

package testhelpers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-models"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-utils"
	"github.com/stretchr/testify/require"
)

// UniqueEmail generates a unique email for testing.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.test", prefix, time.Now().UnixNano())
}

// CreateTestLandlord creates and persists a landlord on the given plan.
func (h *TestHelper) CreateTestLandlord(ctx context.Context, plan models.PlanTier) *models.Landlord {
	l := &models.Landlord{
		ID:       uuid.New(),
		Email:    UniqueEmail("landlord"),
		FullName: "Camille Bailleur",
		Address:  "3 rue des Lilas, 75011 Paris",
		Plan:     plan,
	}
	require.NoError(h.T, h.LandlordRepo.Create(ctx, l), "Failed to create test landlord")
	return l
}

// LeaseFixture is everything a receipt needs, persisted together.
type LeaseFixture struct {
	Landlord *models.Landlord
	Tenant   *models.Tenant
	Property *models.Property
	Lease    *models.Lease
}

// CreateTestLease persists a landlord, tenant, property and an active lease
// (rent 800, charges 100, payment day 5, Europe/Paris). mutate may tweak the
// lease before insert.
func (h *TestHelper) CreateTestLease(ctx context.Context, plan models.PlanTier, mutate func(*models.Lease)) *LeaseFixture {
	landlord := h.CreateTestLandlord(ctx, plan)

	tenant := &models.Tenant{
		ID:       uuid.New(),
		UserID:   landlord.ID,
		FullName: "Alex Locataire",
		Email:    utils.Ptr(UniqueEmail("tenant")),
	}
	require.NoError(h.T, h.TenantRepo.Create(ctx, tenant), "Failed to create test tenant")

	property := &models.Property{
		ID:       uuid.New(),
		UserID:   landlord.ID,
		Label:    "T2 Oberkampf",
		Address:  "12 rue Oberkampf",
		City:     "Paris",
		ZipCode:  "75011",
		TimeZone: utils.Ptr("Europe/Paris"),
	}
	require.NoError(h.T, h.PropertyRepo.Create(ctx, property), "Failed to create test property")

	lease := &models.Lease{
		ID:            uuid.New(),
		UserID:        landlord.ID,
		TenantID:      tenant.ID,
		PropertyID:    property.ID,
		RentCents:     80000,
		ChargesCents:  10000,
		PaymentDay:    5,
		TimeZone:      utils.Ptr("Europe/Paris"),
		Status:        models.LeaseStatusActive,
		ScheduleHour:  9,
		ReminderEmail: utils.Ptr(landlord.Email),
		PaymentMethod: "virement",
		StartDate:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if mutate != nil {
		mutate(lease)
	}
	require.NoError(h.T, h.LeaseRepo.Create(ctx, lease), "Failed to create test lease")

	stored, err := h.LeaseRepo.GetByID(ctx, lease.ID)
	require.NoError(h.T, err)
	require.NotNil(h.T, stored, "Failed to fetch lease immediately after creation")

	return &LeaseFixture{Landlord: landlord, Tenant: tenant, Property: property, Lease: stored}
}
