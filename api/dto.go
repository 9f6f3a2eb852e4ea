/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the aggregates from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Chart of accounts:
    AccountListDTO, AccountDTO, DefineAccountRequest, RenameAccountRequest

  Accounting periods:
    AccountingPeriodDTO

  General ledger:
    GeneralLedgerEntryDTO, LineDTO, TransactionReferenceDTO
    (PostGeneralLedgerEntry bodies are decoded by factory.TransactionRegistry)

VALIDATION:
  Validation is done by the domain, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/transaction.go: Business transaction wire format
*/
package api

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/warp/bookkeeping-engine/ledger"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// AccountDTO represents one account in API responses.
type AccountDTO struct {
	AccountNumber int    `json:"accountNumber"`
	AccountName   string `json:"accountName"`
	Active        bool   `json:"active"`
}

// DefineAccountRequest is the request to define an account.
type DefineAccountRequest struct {
	AccountNumber int    `json:"accountNumber"`
	AccountName   string `json:"accountName"`
}

// RenameAccountRequest is the request to rename an account.
type RenameAccountRequest struct {
	NewAccountName string `json:"newAccountName"`
}

// AccountingPeriodDTO represents an accounting period.
type AccountingPeriodDTO struct {
	Period string `json:"period"`
	Month  int    `json:"month"`
	Year   int    `json:"year"`
	State  string `json:"state"`
}

// LineDTO is one debit or credit line.
type LineDTO struct {
	AccountNumber int    `json:"accountNumber"`
	Amount        string `json:"amount"`
}

// TransactionReferenceDTO points at the originating business transaction.
type TransactionReferenceDTO struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// GeneralLedgerEntryDTO represents a posted entry.
type GeneralLedgerEntryDTO struct {
	ID          string                   `json:"id"`
	Number      string                   `json:"number"`
	Period      string                   `json:"period"`
	CreatedOn   time.Time                `json:"createdOn"`
	Debits      []LineDTO                `json:"debits"`
	Credits     []LineDTO                `json:"credits"`
	Transaction *TransactionReferenceDTO `json:"transaction,omitempty"`
	Posted      bool                     `json:"posted"`
	Version     int                      `json:"version"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toAccountDTO(a ledger.Account) AccountDTO {
	return AccountDTO{AccountNumber: int(a.Number), AccountName: string(a.Name), Active: a.Active}
}

func toAccountingPeriodDTO(period ledger.PeriodIdentifier, p *ledger.AccountingPeriod) AccountingPeriodDTO {
	return AccountingPeriodDTO{
		Period: period.String(),
		Month:  period.Month,
		Year:   period.Year,
		State:  p.State().String(),
	}
}

func toGeneralLedgerEntryDTO(e *ledger.GeneralLedgerEntry) GeneralLedgerEntryDTO {
	dto := GeneralLedgerEntryDTO{
		ID:        e.ID().String(),
		Number:    e.Number(),
		Period:    e.Period().String(),
		CreatedOn: e.CreatedOn(),
		Debits:    []LineDTO{},
		Credits:   []LineDTO{},
		Posted:    e.Posted(),
		Version:   e.Version(),
	}
	for _, d := range e.Debits() {
		dto.Debits = append(dto.Debits, LineDTO{AccountNumber: int(d.AccountNumber), Amount: d.Amount.String()})
	}
	for _, c := range e.Credits() {
		dto.Credits = append(dto.Credits, LineDTO{AccountNumber: int(c.AccountNumber), Amount: c.Amount.String()})
	}
	if ref, ok := e.Transaction(); ok {
		dto.Transaction = &TransactionReferenceDTO{Type: ref.Type, ID: ref.ID}
	}
	return dto
}

// AccountListDTO is the chart of accounts as an object keyed by account
// number. Go maps marshal keys in lexical order, so the object is built
// here to keep numeric order.
type AccountListDTO []ledger.Account

func (l AccountListDTO) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	buf.WriteByte('{')
	for i, a := range l {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(a.Number.String()); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := enc.Encode(string(a.Name)); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
