package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	CreateEntry(ctx context.Context, e *Entry) error
	GetEntry(ctx context.Context, ownerID, id uuid.UUID) (*Entry, error)
	ListEntries(ctx context.Context, ownerID uuid.UUID, filter ListFilter) ([]*Entry, error)
	UpdateEntry(ctx context.Context, e *Entry) error
	DeleteEntry(ctx context.Context, ownerID, id uuid.UUID) error
	Summarize(ctx context.Context, ownerID uuid.UUID, from, to time.Time) (*Summary, error)

	BeginImport(ctx context.Context, ownerID uuid.UUID, minDate, maxDate time.Time) (ImportTx, error)
}

// ImportTx is a statement-import unit of work. Duplicate lookup and the
// inserts happen under the same database transaction so two concurrent
// uploads of the same file cannot both pass the duplicate check.
type ImportTx interface {
	FindDuplicates(ctx context.Context, params []CreateParams) ([]*Entry, error)
	CreateEntries(ctx context.Context, entries []*Entry) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo      Repository
	maxAmount decimal.Decimal
}

func NewService(repo Repository, maxAmount decimal.Decimal) *Service {
	return &Service{repo: repo, maxAmount: maxAmount}
}

type CreateParams struct {
	OwnerID             uuid.UUID
	Type                Type
	Amount              decimal.Decimal
	Category            Category
	Description         string
	Date                time.Time
	IsFromRecurring     bool
	RecurringTemplateID *uuid.UUID
}

type ListFilter struct {
	Type       *Type
	Category   *Category
	StartDate  *time.Time
	EndDate    *time.Time
	ManualOnly bool
}

// Summary aggregates entries for the dashboard.
type Summary struct {
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	ByCategory   []CategoryTotal
	ByDay        []DailyTotal
}

type CategoryTotal struct {
	Category Category
	Total    decimal.Decimal
}

type DailyTotal struct {
	Date  string
	Total decimal.Decimal
}

// ValidateAmount checks the shared positive-and-bounded amount rule.
func (s *Service) ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() || amount.GreaterThan(s.maxAmount) {
		return ErrInvalidAmount
	}

	return nil
}

func (s *Service) validate(p *CreateParams) error {
	if !p.Type.Valid() {
		return ErrInvalidType
	}

	if err := s.ValidateAmount(p.Amount); err != nil {
		return err
	}

	if !p.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidEntry, p.Category)
	}

	p.Description = strings.TrimSpace(p.Description)
	if len(p.Description) > MaxDescriptionLen {
		return fmt.Errorf("%w: description exceeds %d characters", ErrInvalidEntry, MaxDescriptionLen)
	}

	return nil
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Entry, error) {
	if err := s.validate(&params); err != nil {
		return nil, err
	}

	e := &Entry{
		OwnerID:             params.OwnerID,
		Type:                params.Type,
		Amount:              params.Amount,
		Category:            params.Category,
		Description:         params.Description,
		Date:                params.Date,
		IsFromRecurring:     params.IsFromRecurring,
		RecurringTemplateID: params.RecurringTemplateID,
	}
	if err := s.repo.CreateEntry(ctx, e); err != nil {
		return nil, err
	}

	return e, nil
}

func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*Entry, error) {
	return s.repo.GetEntry(ctx, ownerID, id)
}

func (s *Service) List(ctx context.Context, ownerID uuid.UUID, filter ListFilter) ([]*Entry, error) {
	return s.repo.ListEntries(ctx, ownerID, filter)
}

func (s *Service) Update(ctx context.Context, e *Entry) error {
	if !e.Type.Valid() {
		return ErrInvalidType
	}

	if err := s.ValidateAmount(e.Amount); err != nil {
		return err
	}

	if !e.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidEntry, e.Category)
	}

	return s.repo.UpdateEntry(ctx, e)
}

func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.repo.DeleteEntry(ctx, ownerID, id)
}

func (s *Service) Summarize(ctx context.Context, ownerID uuid.UUID, from, to time.Time) (*Summary, error) {
	return s.repo.Summarize(ctx, ownerID, from, to)
}

type ImportResult struct {
	Imported  []*Entry
	New       []CreateParams
	Conflicts []Conflict
}

type Conflict struct {
	Incoming CreateParams
	Existing *Entry
}

// ImportBatch inserts statement rows that are not already present.
// If any incoming row collides with an existing entry (same date, amount,
// type and description) nothing is written and the caller gets the split
// back to confirm.
func (s *Service) ImportBatch(ctx context.Context, ownerID uuid.UUID, params []CreateParams) (*ImportResult, error) {
	if len(params) == 0 {
		return &ImportResult{}, nil
	}

	for i := range params {
		params[i].OwnerID = ownerID
		if err := s.validate(&params[i]); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	minDate, maxDate := dateRange(params)

	itx, err := s.repo.BeginImport(ctx, ownerID, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	duplicates, err := itx.FindDuplicates(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("find duplicates: %w", err)
	}

	lookup := make(map[importKey]*Entry, len(duplicates))
	for _, d := range duplicates {
		lookup[keyOfEntry(d)] = d
	}

	var (
		newParams []CreateParams
		conflicts []Conflict
	)

	for _, p := range params {
		if existing, found := lookup[keyOfParams(p)]; found {
			conflicts = append(conflicts, Conflict{Incoming: p, Existing: existing})
			continue
		}

		newParams = append(newParams, p)
	}

	if len(conflicts) > 0 {
		return &ImportResult{New: newParams, Conflicts: conflicts}, nil
	}

	entries := paramsToEntries(newParams)
	if err := itx.CreateEntries(ctx, entries); err != nil {
		return nil, fmt.Errorf("create entries: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	return &ImportResult{Imported: entries}, nil
}

// ConfirmImport writes rows the user accepted after a conflict response.
func (s *Service) ConfirmImport(ctx context.Context, ownerID uuid.UUID, params []CreateParams) ([]*Entry, error) {
	if len(params) == 0 {
		return nil, nil
	}

	for i := range params {
		params[i].OwnerID = ownerID
		if err := s.validate(&params[i]); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	minDate, maxDate := dateRange(params)

	itx, err := s.repo.BeginImport(ctx, ownerID, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	entries := paramsToEntries(params)
	if err := itx.CreateEntries(ctx, entries); err != nil {
		return nil, fmt.Errorf("create entries: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	return entries, nil
}

type importKey struct {
	Date        string
	Amount      string
	Type        Type
	Description string
}

func keyOfParams(p CreateParams) importKey {
	return importKey{
		Date:        p.Date.Format(time.DateOnly),
		Amount:      p.Amount.String(),
		Type:        p.Type,
		Description: p.Description,
	}
}

func keyOfEntry(e *Entry) importKey {
	return importKey{
		Date:        e.Date.Format(time.DateOnly),
		Amount:      e.Amount.String(),
		Type:        e.Type,
		Description: e.Description,
	}
}

func dateRange(params []CreateParams) (time.Time, time.Time) {
	minDate := params[0].Date
	maxDate := params[0].Date

	for _, p := range params[1:] {
		if p.Date.Before(minDate) {
			minDate = p.Date
		}

		if p.Date.After(maxDate) {
			maxDate = p.Date
		}
	}

	return minDate, maxDate
}

func paramsToEntries(params []CreateParams) []*Entry {
	entries := make([]*Entry, len(params))
	for i, p := range params {
		entries[i] = &Entry{
			OwnerID:             p.OwnerID,
			Type:                p.Type,
			Amount:              p.Amount,
			Category:            p.Category,
			Description:         p.Description,
			Date:                p.Date,
			IsFromRecurring:     p.IsFromRecurring,
			RecurringTemplateID: p.RecurringTemplateID,
		}
	}

	return entries
}
