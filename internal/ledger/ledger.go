package ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound      = errors.New("entry not found")
	ErrInvalidAmount = errors.New("amount must be positive and within the configured ceiling")
	ErrInvalidType   = errors.New("type must be income or expense")
	ErrInvalidEntry  = errors.New("invalid entry")
)

// Type represents the direction of an entry (income or expense).
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

func (t Type) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Category is one of the closed set of spending/income categories.
type Category string

const (
	CategoryFood          Category = "food"
	CategoryTransport     Category = "transport"
	CategoryHousing       Category = "housing"
	CategoryUtilities     Category = "utilities"
	CategoryEntertainment Category = "entertainment"
	CategoryHealthcare    Category = "healthcare"
	CategoryShopping      Category = "shopping"
	CategoryEducation     Category = "education"
	CategorySalary        Category = "salary"
	CategoryInvestment    Category = "investment"
	CategoryOther         Category = "other"
)

var categories = map[Category]struct{}{
	CategoryFood:          {},
	CategoryTransport:     {},
	CategoryHousing:       {},
	CategoryUtilities:     {},
	CategoryEntertainment: {},
	CategoryHealthcare:    {},
	CategoryShopping:      {},
	CategoryEducation:     {},
	CategorySalary:        {},
	CategoryInvestment:    {},
	CategoryOther:         {},
}

func (c Category) Valid() bool {
	_, ok := categories[c]
	return ok
}

// MaxDescriptionLen bounds free-text descriptions on entries and templates.
const MaxDescriptionLen = 255

// Entry represents a single ledger entry.
type Entry struct {
	ID                  uuid.UUID
	OwnerID             uuid.UUID
	Type                Type
	Amount              decimal.Decimal
	Category            Category
	Description         string
	Date                time.Time
	IsFromRecurring     bool
	RecurringTemplateID *uuid.UUID
	CreatedAt           time.Time
	UpdatedAt           *time.Time
	DeletedAt           *time.Time
}
