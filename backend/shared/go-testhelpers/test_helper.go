package testhelpers

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"log"
	"os"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-repositories"
	"github.com/stretchr/testify/require"
)

// TestHelper bundles what the integration suites need: a DB pool on the
// service schema, repositories, the public base URL and signing material.
type TestHelper struct {
	T          *testing.T
	Ctx        context.Context
	BaseURL    string
	DB         *pgxpool.Pool
	PrivateKey *rsa.PrivateKey
	JWTIssuer  string
	CronSecret string
	AppName    string

	LandlordRepo repositories.LandlordRepository
	TenantRepo   repositories.TenantRepository
	PropertyRepo repositories.PropertyRepository
	LeaseRepo    repositories.LeaseRepository
	ReceiptRepo  repositories.RentReceiptRepository
	ActionRepo   repositories.ReceiptActionRepository
	PaymentRepo  repositories.RentPaymentRepository
}

// NewTestHelper reads the environment, connects to the DB and initialises
// repositories. It is meant to be called once from TestMain.
func NewTestHelper(t *testing.T, appName string) *TestHelper {
	baseURL := os.Getenv("APP_URL_FROM_ANYWHERE")
	if baseURL == "" {
		log.Fatal("APP_URL_FROM_ANYWHERE env var is missing")
	}
	dbURL := os.Getenv("DB_URL")
	require.NotEmpty(t, dbURL, "DB_URL env var is missing")

	privB64 := os.Getenv("RSA_PRIVATE_KEY_BASE64")
	require.NotEmpty(t, privB64, "RSA_PRIVATE_KEY_BASE64 env var is missing")
	privPEM, err := base64.StdEncoding.DecodeString(privB64)
	require.NoError(t, err)
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privPEM)
	require.NoError(t, err)

	ctx := context.Background()
	dbPool, err := pgxpool.Connect(ctx, dbURL)
	require.NoError(t, err)
	t.Cleanup(func() { dbPool.Close() })

	return &TestHelper{
		T:            t,
		Ctx:          ctx,
		BaseURL:      baseURL,
		DB:           dbPool,
		PrivateKey:   privateKey,
		JWTIssuer:    os.Getenv("JWT_ISSUER"),
		CronSecret:   os.Getenv("CRON_SECRET"),
		AppName:      appName,
		LandlordRepo: repositories.NewLandlordRepository(dbPool),
		TenantRepo:   repositories.NewTenantRepository(dbPool),
		PropertyRepo: repositories.NewPropertyRepository(dbPool),
		LeaseRepo:    repositories.NewLeaseRepository(dbPool),
		ReceiptRepo:  repositories.NewRentReceiptRepository(dbPool),
		ActionRepo:   repositories.NewReceiptActionRepository(dbPool),
		PaymentRepo:  repositories.NewRentPaymentRepository(dbPool),
	}
}
