package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tally/internal/core"
	"tally/internal/service"
)

type transactionResponse struct {
	ID          string          `json:"id"`
	Kind        string          `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	OccurredAt  time.Time       `json:"occurredAt"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:          t.ID.String(),
		Kind:        string(t.Kind),
		Amount:      t.Amount,
		Category:    t.Category,
		Description: t.Description,
		OccurredAt:  t.OccurredAt,
		CreatedAt:   t.CreatedAt,
	}
}

// parseDate accepts a calendar date or a full RFC 3339 timestamp.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// pathID reads the {id} path segment. A malformed id is reported as
// not found, the same as an id that never existed.
func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, core.ErrNotFound
	}
	return id, nil
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.transactions.List(r.Context(), callerID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]transactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransactionResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind        string          `json:"kind"`
		Amount      decimal.Decimal `json:"amount"`
		Category    string          `json:"category"`
		Description string          `json:"description"`
		OccurredAt  string          `json:"occurredAt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	var occurredAt time.Time
	if req.OccurredAt != "" {
		parsed, err := parseDate(req.OccurredAt)
		if err != nil {
			verr := core.NewValidationError()
			verr.Add("occurredAt", "valid date is required")
			writeError(w, r, verr)
			return
		}
		occurredAt = parsed
	}

	caller := callerID(r.Context())
	created, err := s.transactions.Create(r.Context(), caller, service.CreateInput{
		Kind:        core.Kind(req.Kind),
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		OccurredAt:  occurredAt,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateAggregates(caller.String())
	writeJSON(w, http.StatusCreated, toTransactionResponse(*created))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req struct {
		Kind        *string          `json:"kind"`
		Amount      *decimal.Decimal `json:"amount"`
		Category    *string          `json:"category"`
		Description *string          `json:"description"`
		OccurredAt  *string          `json:"occurredAt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	in := service.UpdateInput{
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
	}
	if req.Kind != nil {
		kind := core.Kind(*req.Kind)
		in.Kind = &kind
	}
	if req.OccurredAt != nil {
		parsed, err := parseDate(*req.OccurredAt)
		if err != nil {
			verr := core.NewValidationError()
			verr.Add("occurredAt", "valid date is required")
			writeError(w, r, verr)
			return
		}
		in.OccurredAt = &parsed
	}

	caller := callerID(r.Context())
	updated, err := s.transactions.Update(r.Context(), caller, id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateAggregates(caller.String())
	writeJSON(w, http.StatusOK, toTransactionResponse(*updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	caller := callerID(r.Context())
	if err := s.transactions.Delete(r.Context(), caller, id); err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateAggregates(caller.String())
	writeJSON(w, http.StatusOK, map[string]string{"message": "transaction removed"})
}

type summaryResponse struct {
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	Balance      decimal.Decimal `json:"balance"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	caller := callerID(r.Context())
	key := caller.String()

	summary, hit := s.summaryCache.Get(key)
	if !hit {
		var err error
		summary, err = s.transactions.Summary(r.Context(), caller)
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.summaryCache.Set(key, summary)
	}

	writeJSON(w, http.StatusOK, summaryResponse{
		TotalIncome:  summary.TotalIncome,
		TotalExpense: summary.TotalExpense,
		Balance:      summary.Balance,
	})
}

type categoryTotalResponse struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

func (s *Server) handleCategoryChart(w http.ResponseWriter, r *http.Request) {
	caller := callerID(r.Context())
	key := caller.String()

	totals, hit := s.breakdownCache.Get(key)
	if !hit {
		var err error
		totals, err = s.transactions.CategoryBreakdown(r.Context(), caller)
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.breakdownCache.Set(key, totals)
	}

	out := make([]categoryTotalResponse, 0, len(totals))
	for _, t := range totals {
		out = append(out, categoryTotalResponse{Category: t.Category, Total: t.Total})
	}
	writeJSON(w, http.StatusOK, out)
}

type monthPointResponse struct {
	Label   string          `json:"label"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

func (s *Server) handleMonthlyChart(w http.ResponseWriter, r *http.Request) {
	series, err := s.transactions.MonthlySeries(r.Context(), callerID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]monthPointResponse, 0, len(series))
	for _, p := range series {
		out = append(out, monthPointResponse{Label: p.Label, Income: p.Income, Expense: p.Expense})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSuggestedCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{
		"expense": core.ExpenseCategories,
		"income":  core.IncomeCategories,
	})
}
