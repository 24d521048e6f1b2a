package recurring

import (
	"time"
)

// NextOccurrence returns the smallest timestamp strictly after ref that
// satisfies the template's cadence rule, or nil when that timestamp would
// fall at or after the template's end date. A nil result is the signal to
// deactivate the template, not an error.
//
// The function is pure: no clock reads, no I/O. Re-running a cycle with the
// same inputs always yields the same schedule.
func NextOccurrence(t *Template, ref time.Time) *time.Time {
	var next time.Time

	switch t.Frequency {
	case FrequencyDaily:
		next = ref.AddDate(0, 0, 1)

	case FrequencyWeekly:
		// Advance to the next date on the target weekday. A reference
		// already on that weekday moves a full seven days; the calculator
		// never returns the reference day itself.
		delta := (*t.DayOfWeek - int(ref.Weekday()) + 7) % 7
		if delta == 0 {
			delta = 7
		}

		next = ref.AddDate(0, 0, delta)

	case FrequencyMonthly:
		// First day of the following month, then clamp the target day to
		// the month's length (day 31 in February yields the 28th/29th).
		year, month := ref.Year(), ref.Month()+1
		day := min(*t.DayOfMonth, daysInMonth(year, month))
		next = time.Date(year, month, day,
			ref.Hour(), ref.Minute(), ref.Second(), ref.Nanosecond(), ref.Location())

	case FrequencyYearly:
		// Next year in the target month; the day is inherited from the
		// reference and clamped to the month's length.
		year := ref.Year() + 1
		month := time.Month(*t.Month + 1)
		day := min(ref.Day(), daysInMonth(year, month))
		next = time.Date(year, month, day,
			ref.Hour(), ref.Minute(), ref.Second(), ref.Nanosecond(), ref.Location())

	default:
		return nil
	}

	if t.EndDate != nil && !next.Before(*t.EndDate) {
		return nil
	}

	return &next
}

// InitialOccurrence computes the first due timestamp for a template at
// creation or reactivation time. A start date today or in the future is
// itself the first occurrence; a start date already in the past triggers a
// catch-up calculation from now, so no retroactive entries are produced.
func InitialOccurrence(t *Template, now time.Time) *time.Time {
	if t.StartDate.After(now) || sameDay(t.StartDate, now) {
		if t.EndDate != nil && !t.StartDate.Before(*t.EndDate) {
			return nil
		}

		start := t.StartDate

		return &start
	}

	return NextOccurrence(t, now)
}

// daysInMonth relies on time.Date normalizing day zero of the following
// month to the last day of the given one. The month may itself be
// out of range (e.g. January + 1 year worth of months); time.Date
// normalizes that too.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func sameDay(a, b time.Time) bool {
	a, b = a.UTC(), b.UTC()

	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
