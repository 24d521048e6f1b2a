package categorize_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rahulk736694/typeface-finance-app/internal/categorize"
	"github.com/rahulk736694/typeface-finance-app/internal/ledger"
)

type fakeRepo struct {
	rules map[string]ledger.Category

	learned map[string]ledger.Category
}

func newFakeRepo(rules map[string]ledger.Category) *fakeRepo {
	return &fakeRepo{rules: rules, learned: make(map[string]ledger.Category)}
}

func (f *fakeRepo) FindMatch(_ context.Context, _ uuid.UUID, description string) (ledger.Category, error) {
	if c, ok := f.rules[description]; ok {
		return c, nil
	}

	return "", nil
}

func (f *fakeRepo) CreateRule(_ context.Context, _ uuid.UUID, pattern string, category ledger.Category) error {
	f.learned[pattern] = category
	return nil
}

func TestService_Learn(t *testing.T) {
	repo := newFakeRepo(nil)
	svc := categorize.NewService(repo)
	ownerID := uuid.New()

	require.NoError(t, svc.Learn(context.Background(), ownerID, " LIDL ", ledger.CategoryFood))
	assert.Equal(t, ledger.CategoryFood, repo.learned["LIDL"])

	assert.Error(t, svc.Learn(context.Background(), ownerID, "", ledger.CategoryFood))
	assert.Error(t, svc.Learn(context.Background(), ownerID, "LIDL", "gadgets"))
}

func TestService_Apply(t *testing.T) {
	repo := newFakeRepo(map[string]ledger.Category{
		"SUPERMERCADO LIDL": ledger.CategoryFood,
	})
	svc := categorize.NewService(repo)

	entries := []ledger.CreateParams{
		{Description: "SUPERMERCADO LIDL", Category: ledger.CategoryOther, Amount: decimal.NewFromInt(45)},
		{Description: "FARMACIA CENTRAL", Category: ledger.CategoryHealthcare, Amount: decimal.NewFromInt(12)},
		{Description: "UNKNOWN SHOP", Category: ledger.CategoryOther, Amount: decimal.NewFromInt(9)},
	}

	require.NoError(t, svc.Apply(context.Background(), uuid.New(), entries))

	assert.Equal(t, ledger.CategoryFood, entries[0].Category)
	// Explicit categories are never overwritten.
	assert.Equal(t, ledger.CategoryHealthcare, entries[1].Category)
	assert.Equal(t, ledger.CategoryOther, entries[2].Category)
}
