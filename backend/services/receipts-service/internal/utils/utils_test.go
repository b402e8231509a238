package utils

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "time/tzdata"
)

func strPtr(s string) *string { return &s }

func TestParseLocatorSplitsOnFirstColon(t *testing.T) {
	loc, err := ParseLocator("receipts:u/l/r/quittance-2024-06.pdf")
	require.NoError(t, err)
	assert.Equal(t, "receipts", loc.Container)
	assert.Equal(t, "u/l/r/quittance-2024-06.pdf", loc.Key)

	loc, err = ParseLocator("bucket:a:b")
	require.NoError(t, err)
	assert.Equal(t, "a:b", loc.Key)
	assert.Equal(t, "bucket:a:b", loc.String())

	for _, bad := range []string{"", "nocolon", ":key", "bucket:"} {
		_, err := ParseLocator(bad)
		assert.True(t, errors.Is(err, ErrInvalidLocator), bad)
	}
}

func TestReceiptObjectKey(t *testing.T) {
	u, l, r := uuid.New(), uuid.New(), uuid.New()
	key := ReceiptObjectKey(u, l, r, models.MonthPeriod(2024, time.June))
	assert.Equal(t, fmt.Sprintf("%s/%s/%s/quittance-2024-06.pdf", u, l, r), key)
}

func TestResolveLocation(t *testing.T) {
	paris := ResolveLocation([]*string{strPtr("Europe/Paris")}, nil, nil, "UTC")
	assert.Equal(t, "Europe/Paris", paris.String())

	next := ResolveLocation([]*string{strPtr("Not/AZone"), strPtr("America/New_York")}, nil, nil, "UTC")
	assert.Equal(t, "America/New_York", next.String())

	lat, lng := 45.764, 4.8357 // Lyon
	fromCoords := ResolveLocation([]*string{nil}, &lat, &lng, "UTC")
	assert.Equal(t, "Europe/Paris", fromCoords.String())

	fallback := ResolveLocation(nil, nil, nil, "Europe/Paris")
	assert.Equal(t, "Europe/Paris", fallback.String())

	assert.Equal(t, time.UTC, ResolveLocation(nil, nil, nil, "bogus"))
}

func TestTargetDayClampsToMonthEnd(t *testing.T) {
	lease := &models.Lease{PaymentDay: 5}
	assert.Equal(t, 7, TargetDay(lease, 2024, time.June))

	lease.PaymentDay = 30
	assert.Equal(t, 29, TargetDay(lease, 2024, time.February))
	assert.Equal(t, 31, TargetDay(lease, 2024, time.January))

	override := 15
	lease.ScheduleDay = &override
	assert.Equal(t, 15, TargetDay(lease, 2024, time.June))
}

func TestMatchScheduleUsesLeaseTimezone(t *testing.T) {
	paris, _ := time.LoadLocation("Europe/Paris")
	lease := &models.Lease{PaymentDay: 5, ScheduleHour: 9}

	// 2024-06-07 07:00 UTC is 09:00 in Paris (CEST).
	m := MatchSchedule(lease, paris, time.Date(2024, 6, 7, 7, 0, 0, 0, time.UTC))
	require.True(t, m.Due, m.Reason)
	assert.Equal(t, "2024-06-01..2024-06-30", m.Period.String())

	m = MatchSchedule(lease, paris, time.Date(2024, 6, 7, 9, 0, 0, 0, time.UTC))
	assert.False(t, m.Due)
	assert.Equal(t, SkipNotTargetHour, m.Reason)

	m = MatchSchedule(lease, paris, time.Date(2024, 6, 6, 7, 0, 0, 0, time.UTC))
	assert.Equal(t, SkipNotTargetDay, m.Reason)

	// 23:30 UTC on June 30 is already July 1st in Paris.
	m = MatchSchedule(&models.Lease{PaymentDay: 30, ScheduleHour: 1}, paris, time.Date(2024, 6, 30, 23, 30, 0, 0, time.UTC))
	assert.Equal(t, "2024-07", m.Period.Key())
}

func TestMatchScheduleWatermark(t *testing.T) {
	paris, _ := time.LoadLocation("Europe/Paris")
	lease := &models.Lease{PaymentDay: 5, ScheduleHour: 9, LastAutoSentPeriod: strPtr("2024-05")}

	m := MatchSchedule(lease, paris, time.Date(2024, 5, 7, 7, 0, 0, 0, time.UTC))
	assert.False(t, m.Due)
	assert.Equal(t, SkipAlreadySent, m.Reason)

	m = MatchSchedule(lease, paris, time.Date(2024, 6, 7, 7, 0, 0, 0, time.UTC))
	assert.True(t, m.Due)
}

func TestExpectedPaymentDateRollsOverHolidays(t *testing.T) {
	paris, _ := time.LoadLocation("Europe/Paris")

	// 2024-05-01 is Fête du Travail (Wednesday): next workday is May 2.
	d := ExpectedPaymentDate(1, 2024, time.May, paris)
	assert.Equal(t, "2024-05-02", d.Format(time.DateOnly))

	// 2024-06-01 is a Saturday: rolls to Monday June 3.
	d = ExpectedPaymentDate(1, 2024, time.June, paris)
	assert.Equal(t, "2024-06-03", d.Format(time.DateOnly))

	d = ExpectedPaymentDate(5, 2024, time.June, paris)
	assert.Equal(t, "2024-06-05", d.Format(time.DateOnly))
	assert.True(t, IsFrenchHoliday(time.Date(2024, 12, 25, 12, 0, 0, 0, paris)))
}

func TestConfirmReason(t *testing.T) {
	assert.Equal(t, ReasonInvalidToken, ConfirmReason(ErrInvalidToken))
	assert.Equal(t, ReasonAlreadyUsed, ConfirmReason(fmt.Errorf("wrap: %w", ErrTokenAlreadyUsed)))
	assert.Equal(t, ReasonExpired, ConfirmReason(ErrTokenExpired))
	assert.Equal(t, ReasonLockFailed, ConfirmReason(ErrLockFailed))
	assert.Equal(t, ReasonSendFailed, ConfirmReason(ErrSendFailed))
	assert.Equal(t, ReasonSendFailed, ConfirmReason(errors.New("db down")))
}
