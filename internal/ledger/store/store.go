package store

import (
	"context"
	"database/sql"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rahulk736694/typeface-finance-app/internal/ledger"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectEntryColumns = `
	e.id, e.owner_id, e.type, e.amount, e.category, e.description, e.date,
	e.is_from_recurring, e.recurring_template_id, e.created_at, e.updated_at, e.deleted_at
`

// scanEntry reads an entry row in selectEntryColumns order.
func scanEntry(s scanner) (*ledger.Entry, error) {
	var e ledger.Entry

	var (
		typeStr, categoryStr string
		description          sql.NullString
	)

	if err := s.Scan(
		&e.ID, &e.OwnerID, &typeStr, &e.Amount, &categoryStr, &description, &e.Date,
		&e.IsFromRecurring, &e.RecurringTemplateID,
		&e.CreatedAt, &e.UpdatedAt, &e.DeletedAt,
	); err != nil {
		return nil, err
	}

	e.Type = ledger.Type(typeStr)
	e.Category = ledger.Category(categoryStr)
	e.Description = description.String

	return &e, nil
}

func (s *Store) CreateEntry(ctx context.Context, e *ledger.Entry) error {
	query := `
		INSERT INTO entries (owner_id, type, amount, category, description, date, is_from_recurring, recurring_template_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		e.OwnerID,
		e.Type,
		e.Amount,
		e.Category,
		e.Description,
		e.Date,
		e.IsFromRecurring,
		e.RecurringTemplateID,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating entry: %w", err)
	}

	return nil
}

func (s *Store) GetEntry(ctx context.Context, ownerID, id uuid.UUID) (*ledger.Entry, error) {
	query := `SELECT ` + selectEntryColumns + `
		FROM entries e
		WHERE e.id = $1 AND e.owner_id = $2 AND e.deleted_at IS NULL`

	e, err := scanEntry(s.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ledger.ErrNotFound
		}

		return nil, fmt.Errorf("getting entry: %w", err)
	}

	return e, nil
}

func (s *Store) ListEntries(ctx context.Context, ownerID uuid.UUID, filter ledger.ListFilter) ([]*ledger.Entry, error) {
	query := `SELECT ` + selectEntryColumns + `
		FROM entries e
		WHERE e.owner_id = $1 AND e.deleted_at IS NULL`

	args := []any{ownerID}
	argIdx := 2

	if filter.Type != nil {
		query += fmt.Sprintf(" AND e.type = $%d", argIdx)

		args = append(args, *filter.Type)
		argIdx++
	}

	if filter.Category != nil {
		query += fmt.Sprintf(" AND e.category = $%d", argIdx)

		args = append(args, *filter.Category)
		argIdx++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND e.date >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND e.date <= $%d", argIdx)

		args = append(args, *filter.EndDate)
		argIdx++
	}

	if filter.ManualOnly {
		query += " AND e.is_from_recurring = FALSE"
	}

	query += " ORDER BY e.date DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	defer rows.Close()

	var entries []*ledger.Entry

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entry rows: %w", err)
	}

	return entries, nil
}

func (s *Store) UpdateEntry(ctx context.Context, e *ledger.Entry) error {
	query := `
		UPDATE entries
		SET type = $1, amount = $2, category = $3, description = $4, date = $5, updated_at = NOW()
		WHERE id = $6 AND owner_id = $7 AND deleted_at IS NULL
	`

	res, err := s.db.ExecContext(ctx, query,
		e.Type,
		e.Amount,
		e.Category,
		e.Description,
		e.Date,
		e.ID,
		e.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("updating entry: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ledger.ErrNotFound
	}

	return nil
}

func (s *Store) DeleteEntry(ctx context.Context, ownerID, id uuid.UUID) error {
	query := `
		UPDATE entries
		SET deleted_at = NOW()
		WHERE id = $1 AND owner_id = $2 AND deleted_at IS NULL
	`

	res, err := s.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ledger.ErrNotFound
	}

	return nil
}

func (s *Store) Summarize(ctx context.Context, ownerID uuid.UUID, from, to time.Time) (*ledger.Summary, error) {
	summary := &ledger.Summary{
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
	}

	query := `
		SELECT type, category, SUM(amount)
		FROM entries
		WHERE owner_id = $1 AND deleted_at IS NULL AND date >= $2 AND date <= $3
		GROUP BY type, category
		ORDER BY SUM(amount) DESC
	`

	rows, err := s.db.QueryContext(ctx, query, ownerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("summarizing by category: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			typeStr, categoryStr string
			total                decimal.Decimal
		)

		if err := rows.Scan(&typeStr, &categoryStr, &total); err != nil {
			return nil, fmt.Errorf("scanning category total: %w", err)
		}

		switch ledger.Type(typeStr) {
		case ledger.TypeIncome:
			summary.TotalIncome = summary.TotalIncome.Add(total)
		case ledger.TypeExpense:
			summary.TotalExpense = summary.TotalExpense.Add(total)
			summary.ByCategory = append(summary.ByCategory, ledger.CategoryTotal{
				Category: ledger.Category(categoryStr),
				Total:    total,
			})
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating category totals: %w", err)
	}

	dailyQuery := `
		SELECT TO_CHAR(date, 'YYYY-MM-DD'), SUM(amount)
		FROM entries
		WHERE owner_id = $1 AND deleted_at IS NULL AND type = 'expense' AND date >= $2 AND date <= $3
		GROUP BY 1
		ORDER BY 1 ASC
	`

	dailyRows, err := s.db.QueryContext(ctx, dailyQuery, ownerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("summarizing by day: %w", err)
	}
	defer dailyRows.Close()

	for dailyRows.Next() {
		var (
			day   string
			total decimal.Decimal
		)

		if err := dailyRows.Scan(&day, &total); err != nil {
			return nil, fmt.Errorf("scanning daily total: %w", err)
		}

		summary.ByDay = append(summary.ByDay, ledger.DailyTotal{Date: day, Total: total})
	}

	if err := dailyRows.Err(); err != nil {
		return nil, fmt.Errorf("iterating daily totals: %w", err)
	}

	return summary, nil
}

func importLockKey(ownerID uuid.UUID, minDate, maxDate time.Time) int64 {
	h := fnv.New64a()
	h.Write(ownerID[:])
	h.Write([]byte{0})
	h.Write([]byte(minDate.Format(time.DateOnly)))
	h.Write([]byte{0})
	h.Write([]byte(maxDate.Format(time.DateOnly)))

	return int64(h.Sum64())
}

type importTx struct {
	tx      *sql.Tx
	ownerID uuid.UUID
}

func (s *Store) BeginImport(ctx context.Context, ownerID uuid.UUID, minDate, maxDate time.Time) (ledger.ImportTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning import tx: %w", err)
	}

	lockKey := importLockKey(ownerID, minDate, maxDate)
	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", lockKey); err != nil {
		dbTx.Rollback()
		return nil, fmt.Errorf("acquiring import lock: %w", err)
	}

	return &importTx{tx: dbTx, ownerID: ownerID}, nil
}

func (itx *importTx) Commit() error   { return itx.tx.Commit() }
func (itx *importTx) Rollback() error { return itx.tx.Rollback() }

func (itx *importTx) FindDuplicates(ctx context.Context, params []ledger.CreateParams) ([]*ledger.Entry, error) {
	if len(params) == 0 {
		return nil, nil
	}

	type lookupKey struct {
		Date        string
		Amount      string
		Type        ledger.Type
		Description string
	}

	minDate := params[0].Date
	maxDate := params[0].Date
	keySet := make(map[lookupKey]struct{}, len(params))

	for _, p := range params {
		if p.Date.Before(minDate) {
			minDate = p.Date
		}

		if p.Date.After(maxDate) {
			maxDate = p.Date
		}

		keySet[lookupKey{
			Date:        p.Date.Format(time.DateOnly),
			Amount:      p.Amount.String(),
			Type:        p.Type,
			Description: p.Description,
		}] = struct{}{}
	}

	query := `SELECT ` + selectEntryColumns + `
		FROM entries e
		WHERE e.owner_id = $1 AND e.deleted_at IS NULL AND e.date >= $2 AND e.date <= $3
		ORDER BY e.date ASC`

	rows, err := itx.tx.QueryContext(ctx, query, itx.ownerID, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("finding duplicates: %w", err)
	}
	defer rows.Close()

	var duplicates []*ledger.Entry

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}

		k := lookupKey{
			Date:        e.Date.Format(time.DateOnly),
			Amount:      e.Amount.String(),
			Type:        e.Type,
			Description: e.Description,
		}

		if _, found := keySet[k]; !found {
			continue
		}

		duplicates = append(duplicates, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating duplicate rows: %w", err)
	}

	return duplicates, nil
}

func (itx *importTx) CreateEntries(ctx context.Context, entries []*ledger.Entry) error {
	query := `
		INSERT INTO entries (owner_id, type, amount, category, description, date, is_from_recurring, recurring_template_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	for _, e := range entries {
		err := itx.tx.QueryRowContext(ctx, query,
			e.OwnerID,
			e.Type,
			e.Amount,
			e.Category,
			e.Description,
			e.Date,
			e.IsFromRecurring,
			e.RecurringTemplateID,
		).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
		if err != nil {
			return fmt.Errorf("creating entry: %w", err)
		}
	}

	return nil
}
