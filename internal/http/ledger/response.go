package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rahulk736694/typeface-finance-app/internal/ledger"
)

type entryResponse struct {
	ID                  uuid.UUID       `json:"id"`
	Type                ledger.Type     `json:"type"`
	Amount              decimal.Decimal `json:"amount"`
	Category            ledger.Category `json:"category"`
	Description         string          `json:"description,omitempty"`
	Date                time.Time       `json:"date"`
	IsFromRecurring     bool            `json:"is_from_recurring"`
	RecurringTemplateID *uuid.UUID      `json:"recurring_template_id,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           *time.Time      `json:"updated_at,omitempty"`
}

func toResponse(e *ledger.Entry) entryResponse {
	return entryResponse{
		ID:                  e.ID,
		Type:                e.Type,
		Amount:              e.Amount,
		Category:            e.Category,
		Description:         e.Description,
		Date:                e.Date,
		IsFromRecurring:     e.IsFromRecurring,
		RecurringTemplateID: e.RecurringTemplateID,
		CreatedAt:           e.CreatedAt,
		UpdatedAt:           e.UpdatedAt,
	}
}

func toResponseList(entries []*ledger.Entry) []entryResponse {
	resp := make([]entryResponse, len(entries))
	for i, e := range entries {
		resp[i] = toResponse(e)
	}

	return resp
}

type categoryTotalResponse struct {
	Category ledger.Category `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

type dailyTotalResponse struct {
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total"`
}

type summaryResponse struct {
	TotalIncome  decimal.Decimal         `json:"total_income"`
	TotalExpense decimal.Decimal         `json:"total_expense"`
	Balance      decimal.Decimal         `json:"balance"`
	ByCategory   []categoryTotalResponse `json:"by_category"`
	ByDay        []dailyTotalResponse    `json:"by_day"`
}

func toSummaryResponse(s *ledger.Summary) summaryResponse {
	resp := summaryResponse{
		TotalIncome:  s.TotalIncome,
		TotalExpense: s.TotalExpense,
		Balance:      s.TotalIncome.Sub(s.TotalExpense),
		ByCategory:   make([]categoryTotalResponse, len(s.ByCategory)),
		ByDay:        make([]dailyTotalResponse, len(s.ByDay)),
	}

	for i, c := range s.ByCategory {
		resp.ByCategory[i] = categoryTotalResponse{Category: c.Category, Total: c.Total}
	}

	for i, d := range s.ByDay {
		resp.ByDay[i] = dailyTotalResponse{Date: d.Date, Total: d.Total}
	}

	return resp
}
