package utils

import (
	"time"

	cal "github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/fr"
)

// create once at init
var frBusiness = cal.NewBusinessCalendar()

func init() {
	frBusiness.AddHoliday(
		fr.NouvelAn,
		fr.LundiDePâques,
		fr.FêteDuTravail,
		fr.FêteDeLaVictoire,
		fr.Ascension,
		fr.LundiDePentecôte,
		fr.FêteNationale,
		fr.Assomption,
		fr.Toussaint,
		fr.Armistice1918,
		fr.Noël,
	)
}

func IsFrenchHoliday(t time.Time) bool {
	ok, _, _ := frBusiness.IsHoliday(t)
	return ok
}

// NextBusinessDay returns t when it is a French working day, otherwise the
// next one.
func NextBusinessDay(t time.Time) time.Time {
	for i := 0; i < 14 && !frBusiness.IsWorkday(t); i++ {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// ExpectedPaymentDate is the payment day of the period's month rolled to a
// business day; it is what reminder emails quote to the landlord.
func ExpectedPaymentDate(paymentDay int, year int, month time.Month, loc *time.Location) time.Time {
	day := paymentDay
	if day < 1 {
		day = 1
	}
	if last := DaysInMonth(year, month); day > last {
		day = last
	}
	return NextBusinessDay(time.Date(year, month, day, 12, 0, 0, 0, loc))
}
