package services

import (
	"context"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/config"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-models"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-utils"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	cfg        *config.Config
	leases     *fakeLeaseRepo
	receiptsDB *fakeReceiptRepo
	actions    *fakeActionRepo
	payments   *fakePaymentRepo
	landlords  *fakeLandlordRepo
	tenants    *fakeTenantRepo
	properties *fakePropertyRepo
	mailer     *fakeMailer
	store      *fakeStore
	sms        *fakeSMS
	locker     *fakeLocker

	receipts  *receiptService
	tokens    *tokenService
	confirm   *confirmationService
	scheduler *schedulerService

	clock time.Time
}

func testConfig() *config.Config {
	return &config.Config{
		OrganizationName: utils.OrganizationName,
		AppName:          "receipts-service",
		AppUrl:           "https://api.mt-courtage.test",
		FrontendUrl:      "https://app.mt-courtage.test",
		LandlordUIPath:   "/landlord/quittances",
		DefaultTimezone:  "Europe/Paris",
		SignedURLTTL:     600 * time.Second,
		ConfirmTokenTTL:  7 * 24 * time.Hour,
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	e := &testEnv{
		cfg:        testConfig(),
		leases:     newFakeLeaseRepo(),
		receiptsDB: newFakeReceiptRepo(),
		actions:    newFakeActionRepo(),
		payments:   newFakePaymentRepo(),
		landlords:  &fakeLandlordRepo{byID: map[uuid.UUID]*models.Landlord{}},
		tenants:    &fakeTenantRepo{byID: map[uuid.UUID]*models.Tenant{}},
		properties: &fakePropertyRepo{byID: map[uuid.UUID]*models.Property{}},
		mailer:     &fakeMailer{failFor: map[string]error{}},
		store:      newFakeStore(),
		sms:        &fakeSMS{},
		locker:     &fakeLocker{},
		clock:      time.Date(2024, 6, 7, 7, 0, 0, 0, time.UTC),
	}
	now := func() time.Time { return e.clock }

	e.receipts = NewReceiptService(e.cfg, e.leases, e.receiptsDB, e.landlords, e.tenants, e.properties,
		e.store, NewPDFRenderer(), e.mailer).(*receiptService)
	e.receipts.now = now
	e.tokens = NewTokenService(e.cfg, e.leases, e.actions).(*tokenService)
	e.tokens.now = now
	e.confirm = NewConfirmationService(e.cfg, e.actions, e.leases, e.payments, e.properties, e.receipts).(*confirmationService)
	e.confirm.now = now
	e.scheduler = NewSchedulerService(e.cfg, e.leases, e.landlords, e.properties,
		NewPlanResolver(e.landlords), e.tokens, e.receipts, e.mailer, e.sms, e.locker).(*schedulerService)
	return e
}

// withoutStorage rebuilds the receipt service as if OSS were not configured.
func (e *testEnv) withoutStorage() {
	rs := NewReceiptService(e.cfg, e.leases, e.receiptsDB, e.landlords, e.tenants, e.properties,
		nil, NewPDFRenderer(), e.mailer).(*receiptService)
	rs.now = e.receipts.now
	e.receipts = rs
	e.confirm.receipts = rs
	e.scheduler.receipts = rs
}

type leaseFixture struct {
	landlord *models.Landlord
	tenant   *models.Tenant
	property *models.Property
	lease    *models.Lease
}

// seedLease creates the reference lease: 800 + 100 EUR, paid on the 5th,
// Europe/Paris, automation at 09:00.
func (e *testEnv) seedLease(t *testing.T, plan models.PlanTier, mutate func(*models.Lease)) *leaseFixture {
	t.Helper()
	ctx := context.Background()
	landlordID := uuid.New()
	f := &leaseFixture{
		landlord: &models.Landlord{
			ID: landlordID, Email: "bailleur-" + landlordID.String()[:8] + "@example.test",
			FullName: "Claire Martin", Address: "3 rue des Lilas, 69003 Lyon", Plan: plan,
		},
		tenant: &models.Tenant{
			ID: uuid.New(), UserID: landlordID, FullName: "Hugo Bernard",
			Email: utils.Ptr("locataire-" + landlordID.String()[:8] + "@example.test"),
		},
		property: &models.Property{
			ID: uuid.New(), UserID: landlordID, Label: "T2 Croix-Rousse",
			Address: "12 rue d'Austerlitz", City: "Lyon", ZipCode: "69004",
		},
	}
	f.lease = &models.Lease{
		ID:                  uuid.New(),
		UserID:              landlordID,
		TenantID:            f.tenant.ID,
		PropertyID:          f.property.ID,
		RentCents:           80000,
		ChargesCents:        10000,
		PaymentDay:          5,
		TimeZone:            utils.Ptr("Europe/Paris"),
		Status:              models.LeaseStatusActive,
		AutoReminderEnabled: true,
		ScheduleHour:        9,
		PaymentMethod:       "virement",
		StartDate:           time.Date(2023, 9, 1, 0, 0, 0, 0, time.UTC),
	}
	if mutate != nil {
		mutate(f.lease)
	}
	require.NoError(t, e.landlords.Create(ctx, f.landlord))
	require.NoError(t, e.tenants.Create(ctx, f.tenant))
	require.NoError(t, e.properties.Create(ctx, f.property))
	require.NoError(t, e.leases.Create(ctx, f.lease))
	return f
}

var june2024 = models.MonthPeriod(2024, time.June)
