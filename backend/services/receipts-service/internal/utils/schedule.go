package utils

import (
	"time"

	"github.com/bradfitz/latlong"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-models"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-utils"
)

// TargetDayOffset is how many days after the payment day the sweep fires.
const TargetDayOffset = 2

// ResolveLocation returns the first loadable zone among tzNames, then the
// zone at (lat, lng), then fallback, then UTC.
func ResolveLocation(tzNames []*string, lat, lng *float64, fallback string) *time.Location {
	for _, name := range tzNames {
		if name == nil || *name == "" {
			continue
		}
		if loc, err := time.LoadLocation(*name); err == nil {
			return loc
		}
		utils.Logger.Warnf("Unknown timezone %q, trying next candidate", *name)
	}
	if lat != nil && lng != nil {
		if zone := latlong.LookupZoneName(*lat, *lng); zone != "" {
			if loc, err := time.LoadLocation(zone); err == nil {
				return loc
			}
		}
	}
	if loc, err := time.LoadLocation(fallback); err == nil {
		return loc
	}
	return time.UTC
}

// DaysInMonth returns the number of days of month in year.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// TargetDay is the day of month the automation fires for lease in the given
// month: ScheduleDay when set, else PaymentDay + 2, clamped to the month length.
func TargetDay(lease *models.Lease, year int, month time.Month) int {
	day := lease.PaymentDay + TargetDayOffset
	if lease.ScheduleDay != nil && *lease.ScheduleDay > 0 {
		day = *lease.ScheduleDay
	}
	if day < 1 {
		day = 1
	}
	if last := DaysInMonth(year, month); day > last {
		day = last
	}
	return day
}

// CurrentPeriod is the calendar month containing the local date of now.
func CurrentPeriod(localNow time.Time) models.Period {
	return models.MonthPeriod(localNow.Year(), localNow.Month())
}

// ScheduleMatch describes whether a lease is due at a given instant.
type ScheduleMatch struct {
	Due       bool
	Period    models.Period
	LocalDate time.Time
	Reason    string
}

// Skip reasons reported by sweeps.
const (
	SkipNotTargetDay   = "not_target_day"
	SkipNotTargetHour  = "not_target_hour"
	SkipAlreadySent    = "already_processed"
	SkipPlanIneligible = "plan_not_eligible"
	SkipAutoSendActive = "auto_send_enabled"
	SkipAutoSendOff    = "auto_send_disabled"
	SkipReminderOff    = "reminder_disabled"
	SkipLocked         = "locked_by_other_run"
	SkipNoRecipient    = "no_recipient"
	SkipLeaseNotActive = "lease_not_active"

	// FailedAfterClaim marks a failed lease whose period watermark was
	// already written; it needs `receiptsctl leases set-watermark` to replay.
	FailedAfterClaim = "watermark_claimed_dispatch_failed"
)

// MatchSchedule checks the target day, the configured hour and the watermark
// for lease at now, evaluated in loc.
func MatchSchedule(lease *models.Lease, loc *time.Location, now time.Time) ScheduleMatch {
	local := now.In(loc)
	m := ScheduleMatch{Period: CurrentPeriod(local), LocalDate: local}

	if local.Day() != TargetDay(lease, local.Year(), local.Month()) {
		m.Reason = SkipNotTargetDay
		return m
	}
	if local.Hour() != lease.ScheduleHour {
		m.Reason = SkipNotTargetHour
		return m
	}
	if lease.AlreadySent(m.Period.Key()) {
		m.Reason = SkipAlreadySent
		return m
	}
	m.Due = true
	return m
}
