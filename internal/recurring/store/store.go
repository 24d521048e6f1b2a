package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rahulk736694/typeface-finance-app/internal/ledger"
	"github.com/rahulk736694/typeface-finance-app/internal/recurring"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectTemplateColumns = `
	t.id, t.owner_id, t.type, t.amount, t.category, t.description,
	t.start_date, t.end_date, t.frequency, t.day_of_month, t.day_of_week, t.month,
	t.is_active, t.last_processed, t.next_occurrence, t.created_at, t.updated_at
`

func scanTemplate(s scanner) (*recurring.Template, error) {
	var t recurring.Template

	var (
		typeStr, categoryStr, frequencyStr string
		description                        sql.NullString
	)

	if err := s.Scan(
		&t.ID, &t.OwnerID, &typeStr, &t.Amount, &categoryStr, &description,
		&t.StartDate, &t.EndDate, &frequencyStr, &t.DayOfMonth, &t.DayOfWeek, &t.Month,
		&t.IsActive, &t.LastProcessed, &t.NextOccurrence, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}

	t.Type = ledger.Type(typeStr)
	t.Category = ledger.Category(categoryStr)
	t.Frequency = recurring.Frequency(frequencyStr)
	t.Description = description.String

	return &t, nil
}

func (s *Store) CreateTemplate(ctx context.Context, t *recurring.Template) error {
	query := `
		INSERT INTO recurring_templates
			(owner_id, type, amount, category, description, start_date, end_date,
			 frequency, day_of_month, day_of_week, month, is_active, next_occurrence,
			 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		t.OwnerID,
		t.Type,
		t.Amount,
		t.Category,
		t.Description,
		t.StartDate,
		t.EndDate,
		t.Frequency,
		t.DayOfMonth,
		t.DayOfWeek,
		t.Month,
		t.IsActive,
		t.NextOccurrence,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating template: %w", err)
	}

	return nil
}

func (s *Store) GetTemplate(ctx context.Context, ownerID, id uuid.UUID) (*recurring.Template, error) {
	query := `SELECT ` + selectTemplateColumns + `
		FROM recurring_templates t
		WHERE t.id = $1 AND t.owner_id = $2`

	t, err := scanTemplate(s.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, recurring.ErrNotFound
		}

		return nil, fmt.Errorf("getting template: %w", err)
	}

	return t, nil
}

func (s *Store) ListTemplates(ctx context.Context, ownerID uuid.UUID) ([]*recurring.Template, error) {
	query := `SELECT ` + selectTemplateColumns + `
		FROM recurring_templates t
		WHERE t.owner_id = $1
		ORDER BY t.created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	defer rows.Close()

	return collectTemplates(rows)
}

func (s *Store) UpdateTemplate(ctx context.Context, t *recurring.Template) error {
	query := `
		UPDATE recurring_templates
		SET type = $1, amount = $2, category = $3, description = $4,
			start_date = $5, end_date = $6, frequency = $7,
			day_of_month = $8, day_of_week = $9, month = $10,
			is_active = $11, next_occurrence = $12, updated_at = NOW()
		WHERE id = $13 AND owner_id = $14
	`

	res, err := s.db.ExecContext(ctx, query,
		t.Type,
		t.Amount,
		t.Category,
		t.Description,
		t.StartDate,
		t.EndDate,
		t.Frequency,
		t.DayOfMonth,
		t.DayOfWeek,
		t.Month,
		t.IsActive,
		t.NextOccurrence,
		t.ID,
		t.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("updating template: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return recurring.ErrNotFound
	}

	return nil
}

func (s *Store) DeleteTemplate(ctx context.Context, ownerID, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM recurring_templates WHERE id = $1 AND owner_id = $2", id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting template: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return recurring.ErrNotFound
	}

	return nil
}

// FindDue relies on the partial index on (is_active, next_occurrence) for
// the scan. Templates past their end date are not filtered here: a prior
// cycle must already have deactivated them.
func (s *Store) FindDue(ctx context.Context, now time.Time) ([]*recurring.Template, error) {
	query := `SELECT ` + selectTemplateColumns + `
		FROM recurring_templates t
		WHERE t.is_active AND t.next_occurrence <= $1
		ORDER BY t.next_occurrence ASC`

	rows, err := s.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("finding due templates: %w", err)
	}
	defer rows.Close()

	return collectTemplates(rows)
}

func collectTemplates(rows *sql.Rows) ([]*recurring.Template, error) {
	var templates []*recurring.Template

	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning template: %w", err)
		}

		templates = append(templates, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating template rows: %w", err)
	}

	return templates, nil
}

// cycleTx couples one materialized entry with the template advance inside a
// single database transaction. expectedNext is the next_occurrence the
// template had when it was selected; the advance refuses to apply if the
// row has moved since.
type cycleTx struct {
	tx           *sql.Tx
	templateID   uuid.UUID
	expectedNext time.Time
}

func (s *Store) BeginCycle(ctx context.Context, t *recurring.Template) (recurring.CycleTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning cycle tx: %w", err)
	}

	return &cycleTx{tx: dbTx, templateID: t.ID, expectedNext: t.NextOccurrence}, nil
}

func (c *cycleTx) Commit() error   { return c.tx.Commit() }
func (c *cycleTx) Rollback() error { return c.tx.Rollback() }

func (c *cycleTx) Materialize(ctx context.Context, params ledger.CreateParams) error {
	query := `
		INSERT INTO entries (owner_id, type, amount, category, description, date, is_from_recurring, recurring_template_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`

	_, err := c.tx.ExecContext(ctx, query,
		params.OwnerID,
		params.Type,
		params.Amount,
		params.Category,
		params.Description,
		params.Date,
		params.IsFromRecurring,
		params.RecurringTemplateID,
	)
	if err != nil {
		return fmt.Errorf("inserting materialized entry: %w", err)
	}

	return nil
}

func (c *cycleTx) Advance(ctx context.Context, lastProcessed time.Time, next *time.Time) error {
	// A nil next deactivates the template and leaves next_occurrence at its
	// last value. The guard on next_occurrence makes the second of two
	// racing cycles fail here, rolling back its entry insert with it.
	query := `
		UPDATE recurring_templates
		SET last_processed = $2,
			next_occurrence = COALESCE($3::timestamptz, next_occurrence),
			is_active = $3::timestamptz IS NOT NULL,
			updated_at = NOW()
		WHERE id = $1 AND next_occurrence = $4
	`

	res, err := c.tx.ExecContext(ctx, query, c.templateID, lastProcessed, next, c.expectedNext)
	if err != nil {
		return fmt.Errorf("advancing template: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("advancing template: %w", err)
	}

	if n == 0 {
		return recurring.ErrCycleConflict
	}

	return nil
}
