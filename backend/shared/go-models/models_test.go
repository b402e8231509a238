package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionTransitions(t *testing.T) {
	assert.NoError(t, ValidateActionTransition(ActionStatusPending, ActionStatusProcessing))
	assert.NoError(t, ValidateActionTransition(ActionStatusPending, ActionStatusExpired))
	assert.NoError(t, ValidateActionTransition(ActionStatusProcessing, ActionStatusConsumed))
	assert.NoError(t, ValidateActionTransition(ActionStatusProcessing, ActionStatusError))

	assert.Error(t, ValidateActionTransition(ActionStatusPending, ActionStatusConsumed))
	assert.Error(t, ValidateActionTransition(ActionStatusConsumed, ActionStatusProcessing))
	assert.Error(t, ValidateActionTransition(ActionStatusError, ActionStatusPending))
	assert.Error(t, ValidateActionTransition(ActionStatusExpired, ActionStatusPending))
	assert.Error(t, ValidateActionTransition("bogus", ActionStatusPending))
}

func TestReceiptTransitions(t *testing.T) {
	assert.NoError(t, ValidateReceiptTransition(ReceiptStatusGenerated, ReceiptStatusSent))
	assert.NoError(t, ValidateReceiptTransition(ReceiptStatusError, ReceiptStatusGenerated))
	assert.NoError(t, ValidateReceiptTransition(ReceiptStatusSent, ReceiptStatusSent))
	assert.Error(t, ValidateReceiptTransition(ReceiptStatusSent, ReceiptStatusGenerated))
}

func TestMonthPeriod(t *testing.T) {
	p := MonthPeriod(2024, time.June)
	assert.Equal(t, "2024-06-01", p.Start.Format(time.DateOnly))
	assert.Equal(t, "2024-06-30", p.End.Format(time.DateOnly))
	assert.Equal(t, "2024-06", p.Key())

	feb := MonthPeriod(2024, time.February)
	assert.Equal(t, "2024-02-29", feb.End.Format(time.DateOnly))
}

func TestNewPeriodRejectsReversedBounds(t *testing.T) {
	_, err := NewPeriod(time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
}

func TestLeaseWatermark(t *testing.T) {
	l := &Lease{RentCents: 80000, ChargesCents: 10000}
	assert.Equal(t, int64(90000), l.TotalCents())
	assert.False(t, l.AlreadySent("2024-05"))

	may := "2024-05"
	l.LastAutoSentPeriod = &may
	assert.True(t, l.AlreadySent("2024-05"))
	assert.True(t, l.AlreadySent("2024-04"))
	assert.False(t, l.AlreadySent("2024-06"))
}

func TestActionExpiry(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	a := &ReceiptAction{CreatedAt: now.AddDate(0, 0, -8)}
	assert.True(t, a.IsExpired(now, 7*24*time.Hour))

	a.CreatedAt = now.AddDate(0, 0, -6)
	assert.False(t, a.IsExpired(now, 7*24*time.Hour))
}
