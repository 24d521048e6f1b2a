package categorize

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/rahulk736694/typeface-finance-app/internal/ledger"
)

type Repository interface {
	FindMatch(ctx context.Context, ownerID uuid.UUID, description string) (ledger.Category, error)
	CreateRule(ctx context.Context, ownerID uuid.UUID, pattern string, category ledger.Category) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest tries to find a category for the given entry description based on
// the owner's learned rules. Returns empty category if no rule matches.
func (s *Service) Suggest(ctx context.Context, ownerID uuid.UUID, description string) (ledger.Category, error) {
	return s.repo.FindMatch(ctx, ownerID, description)
}

// Learn remembers that descriptions containing pattern belong to category.
func (s *Service) Learn(ctx context.Context, ownerID uuid.UUID, pattern string, category ledger.Category) error {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return fmt.Errorf("empty pattern")
	}

	if !category.Valid() {
		return fmt.Errorf("unknown category %q", category)
	}

	return s.repo.CreateRule(ctx, ownerID, pattern, category)
}

// Apply fills in categories on parsed statement entries that came in as
// "other", leaving explicit categories untouched.
func (s *Service) Apply(ctx context.Context, ownerID uuid.UUID, entries []ledger.CreateParams) error {
	for i := range entries {
		if entries[i].Category != ledger.CategoryOther {
			continue
		}

		category, err := s.Suggest(ctx, ownerID, entries[i].Description)
		if err != nil {
			return fmt.Errorf("suggesting category: %w", err)
		}

		if category != "" {
			entries[i].Category = category
		}
	}

	return nil
}
