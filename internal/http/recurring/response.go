package recurring

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rahulk736694/typeface-finance-app/internal/ledger"
	"github.com/rahulk736694/typeface-finance-app/internal/recurring"
)

type templateResponse struct {
	ID             uuid.UUID           `json:"id"`
	Type           ledger.Type         `json:"type"`
	Amount         decimal.Decimal     `json:"amount"`
	Category       ledger.Category     `json:"category"`
	Description    string              `json:"description,omitempty"`
	StartDate      time.Time           `json:"start_date"`
	EndDate        *time.Time          `json:"end_date,omitempty"`
	Frequency      recurring.Frequency `json:"frequency"`
	DayOfMonth     *int                `json:"day_of_month,omitempty"`
	DayOfWeek      *int                `json:"day_of_week,omitempty"`
	Month          *int                `json:"month,omitempty"`
	IsActive       bool                `json:"is_active"`
	LastProcessed  *time.Time          `json:"last_processed,omitempty"`
	NextOccurrence time.Time           `json:"next_occurrence"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      *time.Time          `json:"updated_at,omitempty"`
}

func toResponse(t *recurring.Template) templateResponse {
	return templateResponse{
		ID:             t.ID,
		Type:           t.Type,
		Amount:         t.Amount,
		Category:       t.Category,
		Description:    t.Description,
		StartDate:      t.StartDate,
		EndDate:        t.EndDate,
		Frequency:      t.Frequency,
		DayOfMonth:     t.DayOfMonth,
		DayOfWeek:      t.DayOfWeek,
		Month:          t.Month,
		IsActive:       t.IsActive,
		LastProcessed:  t.LastProcessed,
		NextOccurrence: t.NextOccurrence,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

func toResponseList(templates []*recurring.Template) []templateResponse {
	resp := make([]templateResponse, len(templates))
	for i, t := range templates {
		resp[i] = toResponse(t)
	}

	return resp
}

type processErrorResponse struct {
	TemplateID uuid.UUID `json:"template_id"`
	Error      string    `json:"error"`
}

type processResponse struct {
	ProcessedCount int                    `json:"processed_count"`
	Errors         []processErrorResponse `json:"errors"`
}

func toProcessResponse(r *recurring.Result) processResponse {
	resp := processResponse{
		ProcessedCount: r.Processed,
		Errors:         make([]processErrorResponse, len(r.Errors)),
	}

	for i, e := range r.Errors {
		resp.Errors[i] = processErrorResponse{
			TemplateID: e.TemplateID,
			Error:      e.Err.Error(),
		}
	}

	return resp
}
