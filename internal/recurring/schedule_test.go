package recurring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func intPtr(n int) *int { return &n }

func TestNextOccurrence(t *testing.T) {
	type testCase struct {
		name     string
		template Template
		ref      time.Time
		want     *time.Time
	}

	endJan16 := date(2024, time.January, 16)

	tests := []testCase{
		{
			name:     "DailyAdvancesOneDay",
			template: Template{Frequency: FrequencyDaily},
			ref:      date(2024, time.January, 15),
			want:     timePtr(date(2024, time.January, 16)),
		},
		{
			name:     "DailyStopsAtEndDate",
			template: Template{Frequency: FrequencyDaily, EndDate: &endJan16},
			ref:      time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC),
			want:     nil,
		},
		{
			name:     "WeeklySameWeekdayAdvancesFullWeek",
			template: Template{Frequency: FrequencyWeekly, DayOfWeek: intPtr(1)},
			// 2024-01-15 is a Monday.
			ref:  date(2024, time.January, 15),
			want: timePtr(date(2024, time.January, 22)),
		},
		{
			name:     "WeeklyAdvancesToTargetWeekday",
			template: Template{Frequency: FrequencyWeekly, DayOfWeek: intPtr(5)},
			ref:      date(2024, time.January, 15),
			want:     timePtr(date(2024, time.January, 19)),
		},
		{
			name:     "WeeklyWrapsToNextWeek",
			template: Template{Frequency: FrequencyWeekly, DayOfWeek: intPtr(0)},
			ref:      date(2024, time.January, 15),
			want:     timePtr(date(2024, time.January, 21)),
		},
		{
			name:     "MonthlyClampsToFebruaryNonLeap",
			template: Template{Frequency: FrequencyMonthly, DayOfMonth: intPtr(31)},
			ref:      date(2025, time.January, 31),
			want:     timePtr(date(2025, time.February, 28)),
		},
		{
			name:     "MonthlyClampsToFebruaryLeap",
			template: Template{Frequency: FrequencyMonthly, DayOfMonth: intPtr(31)},
			ref:      date(2024, time.January, 31),
			want:     timePtr(date(2024, time.February, 29)),
		},
		{
			name:     "MonthlyTargetsDayOfMonth",
			template: Template{Frequency: FrequencyMonthly, DayOfMonth: intPtr(5)},
			ref:      date(2024, time.January, 5),
			want:     timePtr(date(2024, time.February, 5)),
		},
		{
			name:     "MonthlyRollsIntoNextYear",
			template: Template{Frequency: FrequencyMonthly, DayOfMonth: intPtr(15)},
			ref:      date(2024, time.December, 15),
			want:     timePtr(date(2025, time.January, 15)),
		},
		{
			name:     "MonthlyPreservesClockTime",
			template: Template{Frequency: FrequencyMonthly, DayOfMonth: intPtr(5)},
			ref:      time.Date(2024, time.January, 5, 9, 30, 0, 0, time.UTC),
			want:     timePtr(time.Date(2024, time.February, 5, 9, 30, 0, 0, time.UTC)),
		},
		{
			name:     "YearlyKeepsTargetMonth",
			template: Template{Frequency: FrequencyYearly, Month: intPtr(2)}, // March
			ref:      date(2024, time.March, 10),
			want:     timePtr(date(2025, time.March, 10)),
		},
		{
			name:     "YearlyClampsLeapDay",
			template: Template{Frequency: FrequencyYearly, Month: intPtr(1)}, // February
			ref:      date(2024, time.February, 29),
			want:     timePtr(date(2025, time.February, 28)),
		},
		{
			name:     "EndDateBoundaryIsExclusive",
			template: Template{Frequency: FrequencyDaily, EndDate: timePtr(date(2024, time.January, 16))},
			ref:      date(2024, time.January, 15),
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextOccurrence(&tt.template, tt.ref)

			if tt.want == nil {
				assert.Nil(t, got)
				return
			}

			require.NotNil(t, got)
			assert.True(t, got.Equal(*tt.want), "want %s, got %s", tt.want, got)
			assert.True(t, got.After(tt.ref), "next occurrence must be strictly after the reference")
		})
	}
}

func TestNextOccurrenceIsPure(t *testing.T) {
	tpl := Template{Frequency: FrequencyMonthly, DayOfMonth: intPtr(31)}
	ref := date(2024, time.January, 31)

	first := NextOccurrence(&tpl, ref)
	second := NextOccurrence(&tpl, ref)

	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.True(t, first.Equal(*second))
}

func TestInitialOccurrence(t *testing.T) {
	now := time.Date(2024, time.January, 5, 3, 0, 0, 0, time.UTC)

	t.Run("FutureStartDateIsFirstOccurrence", func(t *testing.T) {
		tpl := Template{
			Frequency:  FrequencyMonthly,
			DayOfMonth: intPtr(5),
			StartDate:  date(2024, time.March, 5),
		}

		got := InitialOccurrence(&tpl, now)
		require.NotNil(t, got)
		assert.True(t, got.Equal(tpl.StartDate))
	})

	t.Run("StartDateTodayIsFirstOccurrence", func(t *testing.T) {
		tpl := Template{
			Frequency:  FrequencyMonthly,
			DayOfMonth: intPtr(5),
			StartDate:  date(2024, time.January, 5),
		}

		got := InitialOccurrence(&tpl, now)
		require.NotNil(t, got)
		assert.True(t, got.Equal(tpl.StartDate))
	})

	t.Run("PastStartDateCatchesUpFromNow", func(t *testing.T) {
		tpl := Template{
			Frequency:  FrequencyMonthly,
			DayOfMonth: intPtr(20),
			StartDate:  date(2023, time.June, 20),
		}

		got := InitialOccurrence(&tpl, now)
		require.NotNil(t, got)
		assert.True(t, got.After(now))
		assert.Equal(t, 20, got.Day())
		assert.Equal(t, time.February, got.Month())
	})

	t.Run("ClosedEndDateYieldsNothing", func(t *testing.T) {
		end := date(2023, time.December, 1)
		tpl := Template{
			Frequency: FrequencyDaily,
			StartDate: date(2023, time.November, 1),
			EndDate:   &end,
		}

		assert.Nil(t, InitialOccurrence(&tpl, now))
	})

	t.Run("FutureStartAtEndDateYieldsNothing", func(t *testing.T) {
		end := date(2024, time.March, 5)
		tpl := Template{
			Frequency:  FrequencyMonthly,
			DayOfMonth: intPtr(5),
			StartDate:  date(2024, time.March, 5),
			EndDate:    &end,
		}

		assert.Nil(t, InitialOccurrence(&tpl, now))
	})
}

func timePtr(t time.Time) *time.Time { return &t }
