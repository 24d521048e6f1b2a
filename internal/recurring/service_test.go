package recurring

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/rahulk736694/typeface-finance-app/internal/ledger"
)

func newTestService(t *testing.T, now time.Time) (*Service, *MockRepository) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	repo := NewMockRepository(ctrl)
	svc := NewService(repo, testCeiling())
	svc.now = func() time.Time { return now }

	return svc, repo
}

func validParams() CreateParams {
	return CreateParams{
		OwnerID:    uuid.New(),
		Type:       ledger.TypeExpense,
		Amount:     decimal.NewFromInt(1200),
		Category:   ledger.CategoryHousing,
		StartDate:  date(2024, time.March, 5),
		Frequency:  FrequencyMonthly,
		DayOfMonth: intPtr(5),
	}
}

func TestService_Create(t *testing.T) {
	now := time.Date(2024, time.January, 10, 12, 0, 0, 0, time.UTC)

	type testCase struct {
		name     string
		mutate   func(p *CreateParams)
		saved    bool
		wantErr  error
		wantNext *time.Time
	}

	tests := []testCase{
		{
			name:     "FutureStartBecomesNextOccurrence",
			mutate:   func(*CreateParams) {},
			saved:    true,
			wantNext: timePtr(date(2024, time.March, 5)),
		},
		{
			name: "PastStartCatchesUp",
			mutate: func(p *CreateParams) {
				p.StartDate = date(2023, time.June, 5)
			},
			saved: true,
			// Catch-up from now (Jan 10): next monthly slot is Feb 5.
			wantNext: timePtr(time.Date(2024, time.February, 5, 12, 0, 0, 0, time.UTC)),
		},
		{
			name: "MissingDayOfMonth",
			mutate: func(p *CreateParams) {
				p.DayOfMonth = nil
			},
			wantErr: ErrInvalidTemplate,
		},
		{
			name: "DayOfMonthOutOfRange",
			mutate: func(p *CreateParams) {
				p.DayOfMonth = intPtr(32)
			},
			wantErr: ErrInvalidTemplate,
		},
		{
			name: "WeeklyWithoutDayOfWeek",
			mutate: func(p *CreateParams) {
				p.Frequency = FrequencyWeekly
				p.DayOfMonth = nil
			},
			wantErr: ErrInvalidTemplate,
		},
		{
			name: "YearlyWithoutMonth",
			mutate: func(p *CreateParams) {
				p.Frequency = FrequencyYearly
				p.DayOfMonth = nil
			},
			wantErr: ErrInvalidTemplate,
		},
		{
			name: "EndDateBeforeStartDate",
			mutate: func(p *CreateParams) {
				p.EndDate = timePtr(date(2024, time.February, 1))
			},
			wantErr: ErrInvalidTemplate,
		},
		{
			name: "ZeroAmount",
			mutate: func(p *CreateParams) {
				p.Amount = decimal.Zero
			},
			wantErr: ledger.ErrInvalidAmount,
		},
		{
			name: "AmountAboveCeiling",
			mutate: func(p *CreateParams) {
				p.Amount = decimal.NewFromInt(2_000_000)
			},
			wantErr: ledger.ErrInvalidAmount,
		},
		{
			name: "UnknownCategory",
			mutate: func(p *CreateParams) {
				p.Category = "yachts"
			},
			wantErr: ErrInvalidTemplate,
		},
		{
			name: "UnknownType",
			mutate: func(p *CreateParams) {
				p.Type = "transfer"
			},
			wantErr: ledger.ErrInvalidType,
		},
		{
			name: "EndDateAlreadyClosed",
			mutate: func(p *CreateParams) {
				p.StartDate = date(2023, time.June, 5)
				p.EndDate = timePtr(date(2023, time.July, 1))
			},
			wantErr: ErrExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestService(t, now)

			params := validParams()
			tt.mutate(&params)

			if tt.saved {
				repo.EXPECT().
					CreateTemplate(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tpl *Template) error {
						tpl.ID = uuid.New()
						tpl.CreatedAt = now
						return nil
					})
			}

			tpl, err := svc.Create(context.Background(), params)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, tpl)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, tpl)
			assert.True(t, tpl.IsActive)
			assert.True(t, tpl.NextOccurrence.Equal(*tt.wantNext),
				"want next occurrence %s, got %s", tt.wantNext, tpl.NextOccurrence)
		})
	}
}

func TestService_CreateClearsUnusedCadenceFields(t *testing.T) {
	svc, repo := newTestService(t, time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC))

	params := validParams()
	params.DayOfWeek = intPtr(3)
	params.Month = intPtr(6)

	repo.EXPECT().CreateTemplate(gomock.Any(), gomock.Any()).Return(nil)

	tpl, err := svc.Create(context.Background(), params)
	require.NoError(t, err)
	require.NotNil(t, tpl.DayOfMonth)
	assert.Nil(t, tpl.DayOfWeek)
	assert.Nil(t, tpl.Month)
}

func TestService_Update(t *testing.T) {
	now := time.Date(2024, time.January, 10, 12, 0, 0, 0, time.UTC)
	ownerID := uuid.New()
	templateID := uuid.New()

	existing := func() *Template {
		return &Template{
			ID:             templateID,
			OwnerID:        ownerID,
			Type:           ledger.TypeExpense,
			Amount:         decimal.NewFromInt(40),
			Category:       ledger.CategoryFood,
			Frequency:      FrequencyWeekly,
			DayOfWeek:      intPtr(1),
			StartDate:      date(2023, time.December, 4),
			IsActive:       true,
			NextOccurrence: date(2024, time.January, 15),
		}
	}

	t.Run("AmountOnlyKeepsSchedule", func(t *testing.T) {
		svc, repo := newTestService(t, now)

		tpl := existing()
		repo.EXPECT().GetTemplate(gomock.Any(), ownerID, templateID).Return(tpl, nil)
		repo.EXPECT().UpdateTemplate(gomock.Any(), tpl).Return(nil)

		amount := decimal.NewFromInt(55)
		updated, err := svc.Update(context.Background(), ownerID, templateID, UpdateParams{Amount: &amount})
		require.NoError(t, err)
		assert.True(t, updated.Amount.Equal(amount))
		assert.True(t, updated.NextOccurrence.Equal(date(2024, time.January, 15)),
			"non-cadence updates must not move the schedule")
	})

	t.Run("FrequencyChangeRecomputes", func(t *testing.T) {
		svc, repo := newTestService(t, now)

		tpl := existing()
		repo.EXPECT().GetTemplate(gomock.Any(), ownerID, templateID).Return(tpl, nil)
		repo.EXPECT().UpdateTemplate(gomock.Any(), tpl).Return(nil)

		freq := FrequencyMonthly
		updated, err := svc.Update(context.Background(), ownerID, templateID, UpdateParams{
			Frequency:  &freq,
			DayOfMonth: intPtr(1),
		})
		require.NoError(t, err)
		assert.Equal(t, FrequencyMonthly, updated.Frequency)
		assert.Nil(t, updated.DayOfWeek)
		assert.True(t, updated.NextOccurrence.Equal(time.Date(2024, time.February, 1, 12, 0, 0, 0, time.UTC)),
			"got %s", updated.NextOccurrence)
	})

	t.Run("EndDateClosingScheduleIsRejected", func(t *testing.T) {
		svc, repo := newTestService(t, now)

		tpl := existing()
		repo.EXPECT().GetTemplate(gomock.Any(), ownerID, templateID).Return(tpl, nil)

		_, err := svc.Update(context.Background(), ownerID, templateID, UpdateParams{
			EndDate: timePtr(date(2024, time.January, 1)),
		})
		assert.ErrorIs(t, err, ErrExpired)
	})

	t.Run("NotFound", func(t *testing.T) {
		svc, repo := newTestService(t, now)

		repo.EXPECT().GetTemplate(gomock.Any(), ownerID, templateID).Return(nil, ErrNotFound)

		_, err := svc.Update(context.Background(), ownerID, templateID, UpdateParams{})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestService_Toggle(t *testing.T) {
	now := time.Date(2024, time.January, 10, 12, 0, 0, 0, time.UTC)
	ownerID := uuid.New()
	templateID := uuid.New()

	t.Run("Deactivate", func(t *testing.T) {
		svc, repo := newTestService(t, now)

		tpl := &Template{
			ID:             templateID,
			OwnerID:        ownerID,
			Frequency:      FrequencyDaily,
			StartDate:      date(2024, time.January, 1),
			IsActive:       true,
			NextOccurrence: date(2024, time.January, 11),
		}

		repo.EXPECT().GetTemplate(gomock.Any(), ownerID, templateID).Return(tpl, nil)
		repo.EXPECT().UpdateTemplate(gomock.Any(), tpl).Return(nil)

		updated, err := svc.Toggle(context.Background(), ownerID, templateID, false)
		require.NoError(t, err)
		assert.False(t, updated.IsActive)
	})

	t.Run("ReactivateWithStaleScheduleRecomputes", func(t *testing.T) {
		svc, repo := newTestService(t, now)

		tpl := &Template{
			ID:             templateID,
			OwnerID:        ownerID,
			Frequency:      FrequencyDaily,
			StartDate:      date(2023, time.November, 1),
			IsActive:       false,
			NextOccurrence: date(2023, time.December, 1),
		}

		repo.EXPECT().GetTemplate(gomock.Any(), ownerID, templateID).Return(tpl, nil)
		repo.EXPECT().UpdateTemplate(gomock.Any(), tpl).Return(nil)

		updated, err := svc.Toggle(context.Background(), ownerID, templateID, true)
		require.NoError(t, err)
		assert.True(t, updated.IsActive)
		assert.True(t, updated.NextOccurrence.After(now), "stale schedule must be recomputed forward")
	})

	t.Run("ReactivateDeadTemplateIsRejected", func(t *testing.T) {
		svc, repo := newTestService(t, now)

		end := date(2023, time.December, 15)
		tpl := &Template{
			ID:             templateID,
			OwnerID:        ownerID,
			Frequency:      FrequencyDaily,
			StartDate:      date(2023, time.November, 1),
			EndDate:        &end,
			IsActive:       false,
			NextOccurrence: date(2023, time.December, 10),
		}

		repo.EXPECT().GetTemplate(gomock.Any(), ownerID, templateID).Return(tpl, nil)

		_, err := svc.Toggle(context.Background(), ownerID, templateID, true)
		assert.ErrorIs(t, err, ErrExpired)
	})
}

func TestService_Delete(t *testing.T) {
	svc, repo := newTestService(t, time.Now().UTC())

	ownerID := uuid.New()
	templateID := uuid.New()

	repo.EXPECT().DeleteTemplate(gomock.Any(), ownerID, templateID).Return(nil)

	assert.NoError(t, svc.Delete(context.Background(), ownerID, templateID))
}
