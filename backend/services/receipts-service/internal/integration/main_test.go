//go:build (dev_test || staging_test) && integration

package integration

import (
	"log"
	"os"
	"testing"
	"time"

	"github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/config"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-testhelpers"
)

var h *testhelpers.TestHelper

// TestMain sets up a single TestHelper for all integration tests in this package.
func TestMain(m *testing.M) {
	if config.AppName == "" {
		log.Fatal("AppName ldflag is missing")
	}

	t := &testing.T{}
	h = testhelpers.NewTestHelper(t, config.AppName)

	// Give DB a moment to be fully ready
	time.Sleep(100 * time.Millisecond)

	os.Exit(m.Run())
}
