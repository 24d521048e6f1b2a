package recurring

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rahulk736694/typeface-finance-app/internal/ledger"
)

// Result summarizes one processing cycle.
type Result struct {
	Processed int
	Errors    []ProcessError
}

type ProcessError struct {
	TemplateID uuid.UUID
	Err        error
}

func (e ProcessError) Error() string {
	return fmt.Sprintf("template %s: %v", e.TemplateID, e.Err)
}

// ProcessDue materializes one ledger entry for every active template whose
// next occurrence is at or before now, then advances (or deactivates) each
// template. Both trigger paths, the periodic scheduler and the manual admin
// endpoint, call this same function; the per-template commit carries an
// optimistic guard on next_occurrence, so concurrent invocations cannot
// double-materialize a template.
//
// Per-template failures are collected in the result and never abort the
// cycle; the failed template keeps its state and is retried on the next
// cycle. Only a selection failure returns an error.
//
// The cycle stops picking up templates once ctx is cancelled; an in-flight
// template finishes or aborts as a unit.
func (s *Service) ProcessDue(ctx context.Context, now time.Time) (*Result, error) {
	due, err := s.repo.FindDue(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("finding due templates: %w", err)
	}

	result := &Result{}

	for _, t := range due {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if err := s.processOne(ctx, t, now); err != nil {
			slog.Error("recurring template failed", "template_id", t.ID, "error", err)
			result.Errors = append(result.Errors, ProcessError{TemplateID: t.ID, Err: err})

			continue
		}

		result.Processed++
	}

	return result, nil
}

func (s *Service) processOne(ctx context.Context, t *Template, now time.Time) error {
	// Clamp the reference so the advanced pointer always lands strictly in
	// the future, even when the template is several periods stale or the
	// host clock moved backwards between cycles.
	reference := t.NextOccurrence
	if now.After(reference) {
		reference = now
	}

	next := NextOccurrence(t, reference)

	cycle, err := s.repo.BeginCycle(ctx, t)
	if err != nil {
		return fmt.Errorf("beginning cycle: %w", err)
	}
	defer cycle.Rollback()

	description := t.Description
	if description == "" {
		description = fmt.Sprintf("Recurring: %s", t.Category)
	}

	if err := cycle.Materialize(ctx, ledger.CreateParams{
		OwnerID:             t.OwnerID,
		Type:                t.Type,
		Amount:              t.Amount,
		Category:            t.Category,
		Description:         description,
		Date:                t.NextOccurrence,
		IsFromRecurring:     true,
		RecurringTemplateID: &t.ID,
	}); err != nil {
		return fmt.Errorf("materializing entry: %w", err)
	}

	if err := cycle.Advance(ctx, now, next); err != nil {
		return fmt.Errorf("advancing template: %w", err)
	}

	if err := cycle.Commit(); err != nil {
		return fmt.Errorf("committing cycle: %w", err)
	}

	t.LastProcessed = &now
	t.IsActive = next != nil

	if next != nil {
		t.NextOccurrence = *next
	}

	return nil
}
