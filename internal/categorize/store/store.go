package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/rahulk736694/typeface-finance-app/internal/ledger"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindMatch(ctx context.Context, ownerID uuid.UUID, description string) (ledger.Category, error) {
	query := `
		SELECT category
		FROM category_rules
		WHERE owner_id = $1 AND $2 ILIKE '%' || pattern || '%'
		ORDER BY LENGTH(pattern) DESC, created_at DESC
		LIMIT 1
	`

	var category ledger.Category

	err := s.db.QueryRowContext(ctx, query, ownerID, description).Scan(&category)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}

		return "", fmt.Errorf("finding category rule: %w", err)
	}

	return category, nil
}

func (s *Store) CreateRule(ctx context.Context, ownerID uuid.UUID, pattern string, category ledger.Category) error {
	query := `
		INSERT INTO category_rules (owner_id, pattern, category, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (owner_id, pattern) DO UPDATE SET category = EXCLUDED.category
	`

	_, err := s.db.ExecContext(ctx, query, ownerID, pattern, category)
	if err != nil {
		return fmt.Errorf("creating category rule: %w", err)
	}

	return nil
}
