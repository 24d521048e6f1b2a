package recurring

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rahulk736694/typeface-finance-app/internal/ledger"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=recurring
type Repository interface {
	CreateTemplate(ctx context.Context, t *Template) error
	GetTemplate(ctx context.Context, ownerID, id uuid.UUID) (*Template, error)
	ListTemplates(ctx context.Context, ownerID uuid.UUID) ([]*Template, error)
	UpdateTemplate(ctx context.Context, t *Template) error
	DeleteTemplate(ctx context.Context, ownerID, id uuid.UUID) error

	// FindDue returns active templates with next_occurrence <= now,
	// across all owners.
	FindDue(ctx context.Context, now time.Time) ([]*Template, error)

	// BeginCycle opens the per-template consistency boundary. The entry
	// written through Materialize and the pointer moved by Advance become
	// durable together at Commit, or not at all. Advance must fail with
	// ErrCycleConflict if the template's next_occurrence no longer matches
	// the value it had at selection.
	BeginCycle(ctx context.Context, t *Template) (CycleTx, error)
}

type CycleTx interface {
	Materialize(ctx context.Context, params ledger.CreateParams) error
	Advance(ctx context.Context, lastProcessed time.Time, next *time.Time) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo      Repository
	maxAmount decimal.Decimal
	now       func() time.Time
}

func NewService(repo Repository, maxAmount decimal.Decimal) *Service {
	return &Service{
		repo:      repo,
		maxAmount: maxAmount,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type CreateParams struct {
	OwnerID     uuid.UUID
	Type        ledger.Type
	Amount      decimal.Decimal
	Category    ledger.Category
	Description string
	StartDate   time.Time
	EndDate     *time.Time
	Frequency   Frequency
	DayOfMonth  *int
	DayOfWeek   *int
	Month       *int
}

type UpdateParams struct {
	Type         *ledger.Type
	Amount       *decimal.Decimal
	Category     *ledger.Category
	Description  *string
	StartDate    *time.Time
	EndDate      *time.Time
	ClearEndDate bool
	Frequency    *Frequency
	DayOfMonth   *int
	DayOfWeek    *int
	Month        *int
}

func (s *Service) validate(t *Template) error {
	if !t.Type.Valid() {
		return ledger.ErrInvalidType
	}

	if !t.Amount.IsPositive() || t.Amount.GreaterThan(s.maxAmount) {
		return ledger.ErrInvalidAmount
	}

	if !t.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidTemplate, t.Category)
	}

	t.Description = strings.TrimSpace(t.Description)
	if len(t.Description) > ledger.MaxDescriptionLen {
		return fmt.Errorf("%w: description exceeds %d characters", ErrInvalidTemplate, ledger.MaxDescriptionLen)
	}

	return t.validateCadence()
}

// Create validates the template and computes its initial next occurrence.
// A start date in the past triggers a catch-up calculation from now; a
// template that can never fire again (end date already closed) is rejected.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Template, error) {
	t := &Template{
		OwnerID:     params.OwnerID,
		Type:        params.Type,
		Amount:      params.Amount,
		Category:    params.Category,
		Description: params.Description,
		StartDate:   params.StartDate,
		EndDate:     params.EndDate,
		Frequency:   params.Frequency,
		DayOfMonth:  params.DayOfMonth,
		DayOfWeek:   params.DayOfWeek,
		Month:       params.Month,
		IsActive:    true,
	}

	if err := s.validate(t); err != nil {
		return nil, err
	}

	t.clearUnusedCadenceFields()

	next := InitialOccurrence(t, s.now())
	if next == nil {
		return nil, ErrExpired
	}

	t.NextOccurrence = *next

	if err := s.repo.CreateTemplate(ctx, t); err != nil {
		return nil, err
	}

	return t, nil
}

func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*Template, error) {
	return s.repo.GetTemplate(ctx, ownerID, id)
}

func (s *Service) List(ctx context.Context, ownerID uuid.UUID) ([]*Template, error) {
	return s.repo.ListTemplates(ctx, ownerID)
}

// Update applies a partial update. Any change to the cadence parameters
// (frequency, frequency-specific field, start or end date) forces a
// recomputation of the next occurrence from the new parameters.
func (s *Service) Update(ctx context.Context, ownerID, id uuid.UUID, params UpdateParams) (*Template, error) {
	t, err := s.repo.GetTemplate(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if params.Type != nil {
		t.Type = *params.Type
	}

	if params.Amount != nil {
		t.Amount = *params.Amount
	}

	if params.Category != nil {
		t.Category = *params.Category
	}

	if params.Description != nil {
		t.Description = *params.Description
	}

	cadenceChanged := false

	if params.Frequency != nil && *params.Frequency != t.Frequency {
		t.Frequency = *params.Frequency
		cadenceChanged = true
	}

	if params.DayOfMonth != nil {
		t.DayOfMonth = params.DayOfMonth
		cadenceChanged = true
	}

	if params.DayOfWeek != nil {
		t.DayOfWeek = params.DayOfWeek
		cadenceChanged = true
	}

	if params.Month != nil {
		t.Month = params.Month
		cadenceChanged = true
	}

	if params.StartDate != nil {
		t.StartDate = *params.StartDate
		cadenceChanged = true
	}

	if params.ClearEndDate {
		t.EndDate = nil
		cadenceChanged = true
	} else if params.EndDate != nil {
		t.EndDate = params.EndDate
		cadenceChanged = true
	}

	if err := s.validate(t); err != nil {
		return nil, err
	}

	t.clearUnusedCadenceFields()

	if cadenceChanged {
		next := InitialOccurrence(t, s.now())
		if next == nil {
			return nil, ErrExpired
		}

		t.NextOccurrence = *next
	}

	if err := s.repo.UpdateTemplate(ctx, t); err != nil {
		return nil, err
	}

	return t, nil
}

// Toggle sets the template active or inactive. Reactivation with a stale
// next occurrence recomputes it; a template whose schedule is exhausted is
// rejected rather than silently reactivated broken.
func (s *Service) Toggle(ctx context.Context, ownerID, id uuid.UUID, active bool) (*Template, error) {
	t, err := s.repo.GetTemplate(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if active && t.NextOccurrence.Before(s.now()) {
		next := InitialOccurrence(t, s.now())
		if next == nil {
			return nil, ErrExpired
		}

		t.NextOccurrence = *next
	}

	t.IsActive = active

	if err := s.repo.UpdateTemplate(ctx, t); err != nil {
		return nil, err
	}

	return t, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.repo.DeleteTemplate(ctx, ownerID, id)
}
