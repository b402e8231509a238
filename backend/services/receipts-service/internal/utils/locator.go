package utils

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-models"
)

// StorageLocator addresses one object in the blob store. It is persisted as
// "{container}:{key}" on receipt rows.
type StorageLocator struct {
	Container string
	Key       string
}

// ParseLocator splits a persisted locator on its first colon.
func ParseLocator(s string) (StorageLocator, error) {
	container, key, ok := strings.Cut(s, ":")
	if !ok || container == "" || key == "" {
		return StorageLocator{}, fmt.Errorf("%w: %q", ErrInvalidLocator, s)
	}
	return StorageLocator{Container: container, Key: key}, nil
}

func (l StorageLocator) String() string {
	return l.Container + ":" + l.Key
}

// ReceiptObjectKey is {userId}/{leaseId}/{receiptId}/quittance-{yyyy-mm}.pdf.
func ReceiptObjectKey(userID, leaseID, receiptID uuid.UUID, period models.Period) string {
	return fmt.Sprintf("%s/%s/%s/quittance-%s.pdf", userID, leaseID, receiptID, period.Key())
}

// ReceiptFileName is the attachment name shown to the tenant.
func ReceiptFileName(period models.Period) string {
	return "quittance-" + period.Key() + ".pdf"
}
