/*
handlers.go - HTTP API handlers for the bookkeeping engine

PURPOSE:
  Exposes the command pipeline and the aggregate read models via REST.
  Handlers decode a request into a command value and dispatch it; they
  contain no domain logic.

ENDPOINTS:
  Chart of accounts:
    GET    /api/chart-of-accounts                       Number → name, ascending
    POST   /api/chart-of-accounts                       DefineAccount
    GET    /api/chart-of-accounts/{number}              One account
    PUT    /api/chart-of-accounts/{number}              RenameAccount
    POST   /api/chart-of-accounts/{number}/deactivate   DeactivateAccount
    POST   /api/chart-of-accounts/{number}/reactivate   ReactivateAccount

  Accounting periods ({period} is MM-YYYY):
    GET    /api/accounting-periods/{period}             Period state
    POST   /api/accounting-periods/{period}/open        OpenAccountingPeriod
    POST   /api/accounting-periods/{period}/close       CloseAccountingPeriod

  General ledger:
    POST   /api/general-ledger-entries                  PostGeneralLedgerEntry
    GET    /api/general-ledger-entries/{id}             One entry

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid input
  - 404: Entity not found
  - 409: Duplicate, concurrency conflict, closed period
  - 500: Invariant violations and internal errors

  Successful commands answer 204 No Content. A command that was an
  idempotent no-op is still a success.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - ledger/handlers.go: The domain handlers behind Dispatch
*/
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/warp/bookkeeping-engine/factory"
	"github.com/warp/bookkeeping-engine/generic"
	"github.com/warp/bookkeeping-engine/ledger"
	"go.uber.org/zap"
)

// maxBodyBytes caps command bodies.
const maxBodyBytes = 1 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Dispatcher   *generic.Dispatcher
	Queries      ledger.Queries
	Transactions *factory.TransactionRegistry
	Logger       *zap.Logger
}

// NewHandler creates a new handler.
func NewHandler(d *generic.Dispatcher, q ledger.Queries, transactions *factory.TransactionRegistry, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Dispatcher:   d,
		Queries:      q,
		Transactions: transactions,
		Logger:       logger,
	}
}

// dispatch runs cmd and writes 204 or the mapped error.
func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request, cmd any) {
	if err := h.Dispatcher.Dispatch(r.Context(), cmd); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// CHART OF ACCOUNTS
// =============================================================================

// ListAccounts returns the chart of accounts as an object keyed by account
// number in ascending numeric order.
// GET /api/chart-of-accounts
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	chart, err := h.Queries.ChartOfAccounts(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AccountListDTO(chart.Accounts()))
}

// GetAccount returns one account.
// GET /api/chart-of-accounts/{number}
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	number, err := ledger.ParseAccountNumber(chi.URLParam(r, "number"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	chart, err := h.Queries.ChartOfAccounts(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	account, ok := chart.Account(number)
	if !ok {
		h.writeDomainError(w, &generic.NotFoundError{Kind: "account", ID: number.String()})
		return
	}
	writeJSON(w, http.StatusOK, toAccountDTO(account))
}

// DefineAccount defines a new account.
// POST /api/chart-of-accounts
func (h *Handler) DefineAccount(w http.ResponseWriter, r *http.Request) {
	var req DefineAccountRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.dispatch(w, r, ledger.DefineAccount{
		AccountNumber: ledger.AccountNumber(req.AccountNumber),
		AccountName:   req.AccountName,
	})
}

// RenameAccount renames an account.
// PUT /api/chart-of-accounts/{number}
func (h *Handler) RenameAccount(w http.ResponseWriter, r *http.Request) {
	number, err := ledger.ParseAccountNumber(chi.URLParam(r, "number"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	var req RenameAccountRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.dispatch(w, r, ledger.RenameAccount{AccountNumber: number, NewAccountName: req.NewAccountName})
}

// DeactivateAccount deactivates an account.
// POST /api/chart-of-accounts/{number}/deactivate
func (h *Handler) DeactivateAccount(w http.ResponseWriter, r *http.Request) {
	number, err := ledger.ParseAccountNumber(chi.URLParam(r, "number"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.dispatch(w, r, ledger.DeactivateAccount{AccountNumber: number})
}

// ReactivateAccount reactivates an account.
// POST /api/chart-of-accounts/{number}/reactivate
func (h *Handler) ReactivateAccount(w http.ResponseWriter, r *http.Request) {
	number, err := ledger.ParseAccountNumber(chi.URLParam(r, "number"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.dispatch(w, r, ledger.ReactivateAccount{AccountNumber: number})
}

// =============================================================================
// ACCOUNTING PERIODS
// =============================================================================

// GetAccountingPeriod returns a period's state. Unknown periods are "unopened".
// GET /api/accounting-periods/{period}
func (h *Handler) GetAccountingPeriod(w http.ResponseWriter, r *http.Request) {
	period, err := ledger.ParsePeriod(chi.URLParam(r, "period"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	p, err := h.Queries.AccountingPeriod(r.Context(), period)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountingPeriodDTO(period, p))
}

// OpenAccountingPeriod opens a period.
// POST /api/accounting-periods/{period}/open
func (h *Handler) OpenAccountingPeriod(w http.ResponseWriter, r *http.Request) {
	period, err := ledger.ParsePeriod(chi.URLParam(r, "period"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.dispatch(w, r, ledger.OpenAccountingPeriod{Period: period})
}

// CloseAccountingPeriod closes a period.
// POST /api/accounting-periods/{period}/close
func (h *Handler) CloseAccountingPeriod(w http.ResponseWriter, r *http.Request) {
	period, err := ledger.ParsePeriod(chi.URLParam(r, "period"))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.dispatch(w, r, ledger.CloseAccountingPeriod{Period: period})
}

// =============================================================================
// GENERAL LEDGER
// =============================================================================

// PostGeneralLedgerEntry posts a business transaction.
// POST /api/general-ledger-entries
func (h *Handler) PostGeneralLedgerEntry(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body", err)
		return
	}
	cmd, err := h.Transactions.DecodePostGeneralLedgerEntry(body)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.dispatch(w, r, cmd)
}

// GetGeneralLedgerEntry returns one entry.
// GET /api/general-ledger-entries/{id}
func (h *Handler) GetGeneralLedgerEntry(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid entry id", err)
		return
	}
	entry, err := h.Queries.GeneralLedgerEntry(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGeneralLedgerEntryDTO(entry))
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}

// statusFor maps an error kind to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrPeriodClosed),
		errors.Is(err, generic.ErrDuplicate),
		errors.Is(err, generic.ErrConcurrencyConflict):
		return http.StatusConflict
	case errors.Is(err, generic.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, generic.ErrInvalidArgument):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.Logger.Error("request failed", zap.Error(err))
		writeError(w, status, "Internal error", nil)
		return
	}
	writeError(w, status, generic.Outcome(err), err)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
