package app

import (
	"context"

	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-seeding"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-utils"
)

// SeedTestData inserts the demo landlord when the seed flag is on.
func SeedTestData(ctx context.Context, a *App, svc *Services) error {
	if !a.Config.LDFlag_SeedDbWithTestData {
		return nil
	}
	contact := utils.FirstNonEmpty(a.Config.SendGridFromEmail, "demo@mt-courtage.test")
	return seeding.SeedDemoLandlord(ctx, seeding.Repos{
		Landlords:  svc.Repos.Landlords,
		Tenants:    svc.Repos.Tenants,
		Properties: svc.Repos.Properties,
		Leases:     svc.Repos.Leases,
	}, contact)
}
