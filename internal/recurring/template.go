package recurring

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rahulk736694/typeface-finance-app/internal/ledger"
)

var (
	ErrNotFound        = errors.New("recurring template not found")
	ErrInvalidTemplate = errors.New("invalid recurring template")

	// ErrExpired is returned when a template cannot yield any future
	// occurrence, e.g. reactivating one whose end date has passed.
	ErrExpired = errors.New("recurring template has no future occurrence")

	// ErrCycleConflict is reported by the store when a template's
	// next_occurrence changed between selection and commit. It means a
	// concurrent cycle already processed the template.
	ErrCycleConflict = errors.New("recurring template was processed concurrently")
)

// Frequency is the cadence of a recurring template.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}

	return false
}

// Template is a persisted recurrence rule. It is not itself a ledger entry;
// the batch processor materializes entries from it, one per due cycle.
//
// Exactly one of DayOfMonth, DayOfWeek and Month is meaningful, selected by
// Frequency. The other two stay nil.
type Template struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Type        ledger.Type
	Amount      decimal.Decimal
	Category    ledger.Category
	Description string
	StartDate   time.Time
	EndDate     *time.Time
	Frequency   Frequency
	DayOfMonth  *int // 1-31, monthly only; clamped to shorter months
	DayOfWeek   *int // 0-6, Sunday = 0, weekly only
	Month       *int // 0-11, yearly only

	IsActive       bool
	LastProcessed  *time.Time
	NextOccurrence time.Time

	CreatedAt time.Time
	UpdatedAt *time.Time
}

// validateCadence checks the frequency-specific field requirements and the
// start/end date ordering. Amount and category rules are checked by the
// service, which knows the configured ceiling.
func (t *Template) validateCadence() error {
	if !t.Frequency.Valid() {
		return fmt.Errorf("%w: unknown frequency %q", ErrInvalidTemplate, t.Frequency)
	}

	switch t.Frequency {
	case FrequencyDaily:
	case FrequencyWeekly:
		if t.DayOfWeek == nil {
			return fmt.Errorf("%w: day_of_week is required for weekly templates", ErrInvalidTemplate)
		}

		if *t.DayOfWeek < 0 || *t.DayOfWeek > 6 {
			return fmt.Errorf("%w: day_of_week must be between 0 and 6", ErrInvalidTemplate)
		}
	case FrequencyMonthly:
		if t.DayOfMonth == nil {
			return fmt.Errorf("%w: day_of_month is required for monthly templates", ErrInvalidTemplate)
		}

		if *t.DayOfMonth < 1 || *t.DayOfMonth > 31 {
			return fmt.Errorf("%w: day_of_month must be between 1 and 31", ErrInvalidTemplate)
		}
	case FrequencyYearly:
		if t.Month == nil {
			return fmt.Errorf("%w: month is required for yearly templates", ErrInvalidTemplate)
		}

		if *t.Month < 0 || *t.Month > 11 {
			return fmt.Errorf("%w: month must be between 0 and 11", ErrInvalidTemplate)
		}
	}

	if t.StartDate.IsZero() {
		return fmt.Errorf("%w: start_date is required", ErrInvalidTemplate)
	}

	if t.EndDate != nil && !t.EndDate.After(t.StartDate) {
		return fmt.Errorf("%w: end_date must be after start_date", ErrInvalidTemplate)
	}

	return nil
}

// clearUnusedCadenceFields drops the fields not selected by Frequency so a
// frequency change cannot leave a stale day_of_week on a monthly template.
func (t *Template) clearUnusedCadenceFields() {
	switch t.Frequency {
	case FrequencyDaily:
		t.DayOfMonth, t.DayOfWeek, t.Month = nil, nil, nil
	case FrequencyWeekly:
		t.DayOfMonth, t.Month = nil, nil
	case FrequencyMonthly:
		t.DayOfWeek, t.Month = nil, nil
	case FrequencyYearly:
		t.DayOfMonth, t.DayOfWeek = nil, nil
	}
}
