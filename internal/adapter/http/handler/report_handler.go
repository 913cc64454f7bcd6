package handler

import (
	"net/http"
	"sync/atomic"

	"github.com/go-chi/chi/v5"

	"github.com/iho/atmledger/internal/adapter/http/dto"
	"github.com/iho/atmledger/internal/domain"
	"github.com/iho/atmledger/internal/usecase"
)

// ReportHandler serves the result of a completed run. Until SetResult is
// called every endpoint answers 503.
type ReportHandler struct {
	result   atomic.Pointer[usecase.RunResult]
	currency string
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(currency string) *ReportHandler {
	if currency == "" {
		currency = usecase.DefaultCurrency
	}
	return &ReportHandler{currency: currency}
}

// SetResult publishes a completed run.
func (h *ReportHandler) SetResult(result *usecase.RunResult) {
	h.result.Store(result)
}

// Ready reports whether a run result is available.
func (h *ReportHandler) Ready() bool {
	return h.result.Load() != nil
}

func (h *ReportHandler) current(w http.ResponseWriter) (*usecase.RunResult, bool) {
	result := h.result.Load()
	if result == nil {
		writeError(w, http.StatusServiceUnavailable, "run in progress", "")
		return nil, false
	}
	return result, true
}

// Run returns the summary of the completed run.
func (h *ReportHandler) Run(w http.ResponseWriter, r *http.Request) {
	result, ok := h.current(w)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, dto.RunFromDomain(result))
}

// ListBalances returns the final balance of every account.
func (h *ReportHandler) ListBalances(w http.ResponseWriter, r *http.Request) {
	result, ok := h.current(w)
	if !ok {
		return
	}

	balances := result.Balances()
	limit := parseIntQuery(r, "limit", len(balances))
	offset := parseIntQuery(r, "offset", 0)
	balances = page(balances, offset, limit)

	writeJSON(w, http.StatusOK, dto.BalancesFromDomain(balances, h.currency))
}

// GetBalance returns the final balance of one account. An account no
// transaction referenced has a zero balance.
func (h *ReportHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	result, ok := h.current(w)
	if !ok {
		return
	}

	id, err := parseAccountID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, mapDomainError(err), "invalid account id", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromDomain(id, result.Balance(id), h.currency))
}

func page(balances []domain.AccountBalance, offset, limit int) []domain.AccountBalance {
	if offset < 0 {
		offset = 0
	}
	if offset > len(balances) {
		offset = len(balances)
	}
	end := len(balances)
	if limit >= 0 && offset+limit < end {
		end = offset + limit
	}
	return balances[offset:end]
}
