package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/rahulk736694/typeface-finance-app/internal/ledger"
)

var testCeiling = decimal.NewFromInt(1_000_000)

func amt(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestService_Create(t *testing.T) {
	ownerID := uuid.New()

	validParams := func() ledger.CreateParams {
		return ledger.CreateParams{
			OwnerID:     ownerID,
			Type:        ledger.TypeExpense,
			Amount:      amt("42.50"),
			Category:    ledger.CategoryFood,
			Description: "Lunch",
			Date:        date(2024, 1, 5),
		}
	}

	type testCase struct {
		name      string
		params    func() ledger.CreateParams
		setupMock func(m *ledger.MockRepository)
		wantErr   bool
		wantErrIs error
	}

	tests := []testCase{
		{
			name:   "Success",
			params: validParams,
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().
					CreateEntry(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, e *ledger.Entry) error {
						e.ID = uuid.New()
						e.CreatedAt = time.Now()
						return nil
					})
			},
		},
		{
			name: "ZeroAmount",
			params: func() ledger.CreateParams {
				p := validParams()
				p.Amount = decimal.Zero
				return p
			},
			wantErr:   true,
			wantErrIs: ledger.ErrInvalidAmount,
		},
		{
			name: "NegativeAmount",
			params: func() ledger.CreateParams {
				p := validParams()
				p.Amount = amt("-5")
				return p
			},
			wantErr:   true,
			wantErrIs: ledger.ErrInvalidAmount,
		},
		{
			name: "AboveCeiling",
			params: func() ledger.CreateParams {
				p := validParams()
				p.Amount = amt("1000000.01")
				return p
			},
			wantErr:   true,
			wantErrIs: ledger.ErrInvalidAmount,
		},
		{
			name: "UnknownType",
			params: func() ledger.CreateParams {
				p := validParams()
				p.Type = "transfer"
				return p
			},
			wantErr:   true,
			wantErrIs: ledger.ErrInvalidType,
		},
		{
			name: "UnknownCategory",
			params: func() ledger.CreateParams {
				p := validParams()
				p.Category = "gadgets"
				return p
			},
			wantErr:   true,
			wantErrIs: ledger.ErrInvalidEntry,
		},
		{
			name:   "RepoError",
			params: validParams,
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().
					CreateEntry(gomock.Any(), gomock.Any()).
					Return(errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := ledger.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := ledger.NewService(repo, testCeiling)
			got, err := svc.Create(context.Background(), tt.params())

			if tt.wantErr {
				require.Error(t, err)

				if tt.wantErrIs != nil {
					assert.ErrorIs(t, err, tt.wantErrIs)
				}

				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
			assert.NotEmpty(t, got.ID)
			assert.Equal(t, ownerID, got.OwnerID)
		})
	}
}

func TestService_CreateTrimsDescription(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	repo.EXPECT().CreateEntry(gomock.Any(), gomock.Any()).Return(nil)

	svc := ledger.NewService(repo, testCeiling)

	got, err := svc.Create(context.Background(), ledger.CreateParams{
		OwnerID:     uuid.New(),
		Type:        ledger.TypeIncome,
		Amount:      amt("100"),
		Category:    ledger.CategorySalary,
		Description: "  Payroll  ",
		Date:        date(2024, 1, 31),
	})
	require.NoError(t, err)
	assert.Equal(t, "Payroll", got.Description)
}

func TestService_Update(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	svc := ledger.NewService(repo, testCeiling)

	entry := &ledger.Entry{
		ID:       uuid.New(),
		OwnerID:  uuid.New(),
		Type:     ledger.TypeExpense,
		Amount:   amt("10"),
		Category: ledger.CategoryFood,
		Date:     date(2024, 1, 5),
	}

	repo.EXPECT().UpdateEntry(gomock.Any(), entry).Return(nil)
	require.NoError(t, svc.Update(context.Background(), entry))

	entry.Amount = decimal.Zero
	assert.ErrorIs(t, svc.Update(context.Background(), entry), ledger.ErrInvalidAmount)
}

func TestService_ImportBatch(t *testing.T) {
	ownerID := uuid.New()

	rows := []ledger.CreateParams{
		{
			Type:        ledger.TypeExpense,
			Amount:      amt("588.74"),
			Category:    ledger.CategoryUtilities,
			Description: "Electricity",
			Date:        date(2024, 1, 30),
		},
		{
			Type:        ledger.TypeIncome,
			Amount:      amt("8608.52"),
			Category:    ledger.CategorySalary,
			Description: "Payroll",
			Date:        date(2024, 1, 9),
		},
	}

	t.Run("ImportsAllWhenNoDuplicates", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := ledger.NewMockRepository(ctrl)
		itx := ledger.NewMockImportTx(ctrl)

		repo.EXPECT().
			BeginImport(gomock.Any(), ownerID, date(2024, 1, 9), date(2024, 1, 30)).
			Return(itx, nil)
		itx.EXPECT().FindDuplicates(gomock.Any(), gomock.Any()).Return(nil, nil)
		itx.EXPECT().
			CreateEntries(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, entries []*ledger.Entry) error {
				for _, e := range entries {
					e.ID = uuid.New()
				}
				return nil
			})
		itx.EXPECT().Commit().Return(nil)
		itx.EXPECT().Rollback().Return(nil)

		svc := ledger.NewService(repo, testCeiling)

		result, err := svc.ImportBatch(context.Background(), ownerID, append([]ledger.CreateParams(nil), rows...))
		require.NoError(t, err)
		assert.Len(t, result.Imported, 2)
		assert.Empty(t, result.Conflicts)

		for _, e := range result.Imported {
			assert.Equal(t, ownerID, e.OwnerID)
		}
	})

	t.Run("ConflictWritesNothing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := ledger.NewMockRepository(ctrl)
		itx := ledger.NewMockImportTx(ctrl)

		existing := &ledger.Entry{
			ID:          uuid.New(),
			OwnerID:     ownerID,
			Type:        ledger.TypeExpense,
			Amount:      amt("588.74"),
			Category:    ledger.CategoryUtilities,
			Description: "Electricity",
			Date:        date(2024, 1, 30),
		}

		repo.EXPECT().
			BeginImport(gomock.Any(), ownerID, gomock.Any(), gomock.Any()).
			Return(itx, nil)
		itx.EXPECT().FindDuplicates(gomock.Any(), gomock.Any()).Return([]*ledger.Entry{existing}, nil)
		// No CreateEntries, no Commit: the rollback from the deferred cleanup
		// is the only write path touched.
		itx.EXPECT().Rollback().Return(nil)

		svc := ledger.NewService(repo, testCeiling)

		result, err := svc.ImportBatch(context.Background(), ownerID, append([]ledger.CreateParams(nil), rows...))
		require.NoError(t, err)
		assert.Empty(t, result.Imported)
		require.Len(t, result.Conflicts, 1)
		assert.Equal(t, existing.ID, result.Conflicts[0].Existing.ID)
		require.Len(t, result.New, 1)
		assert.Equal(t, "Payroll", result.New[0].Description)
	})

	t.Run("InvalidRowFailsBeforeTransaction", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := ledger.NewMockRepository(ctrl)
		svc := ledger.NewService(repo, testCeiling)

		bad := append([]ledger.CreateParams(nil), rows...)
		bad[1].Amount = decimal.Zero

		_, err := svc.ImportBatch(context.Background(), ownerID, bad)
		assert.ErrorIs(t, err, ledger.ErrInvalidAmount)
	})

	t.Run("EmptyBatchIsNoop", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := ledger.NewMockRepository(ctrl)
		svc := ledger.NewService(repo, testCeiling)

		result, err := svc.ImportBatch(context.Background(), ownerID, nil)
		require.NoError(t, err)
		assert.Empty(t, result.Imported)
	})
}

func TestService_ConfirmImport(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ownerID := uuid.New()
	repo := ledger.NewMockRepository(ctrl)
	itx := ledger.NewMockImportTx(ctrl)

	repo.EXPECT().
		BeginImport(gomock.Any(), ownerID, gomock.Any(), gomock.Any()).
		Return(itx, nil)
	itx.EXPECT().CreateEntries(gomock.Any(), gomock.Any()).Return(nil)
	itx.EXPECT().Commit().Return(nil)
	itx.EXPECT().Rollback().Return(nil)

	svc := ledger.NewService(repo, testCeiling)

	entries, err := svc.ConfirmImport(context.Background(), ownerID, []ledger.CreateParams{
		{
			Type:        ledger.TypeExpense,
			Amount:      amt("12.50"),
			Category:    ledger.CategoryFood,
			Description: "Coffee",
			Date:        date(2024, 1, 3),
		},
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ownerID, entries[0].OwnerID)
}
