/*
Package ledger implements double-entry bookkeeping on top of the generic engine.

PURPOSE:
  Defines the bookkeeping aggregates (chart of accounts, accounting
  periods, general ledger entries), the commands that drive them and the
  events they record. Business transactions from other packages plug in
  through the BusinessTransaction interface.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: Decimal amount, never floating point
  - AccountNumber / AccountName: Chart of accounts identity
  - PeriodIdentifier: Month/year bucket, its String() is the stream key
  - Credit / Debit: One side of a posting line

INVARIANTS:
  1. A posted general ledger entry has sum(debits) == sum(credits)
  2. Account numbers are unique within the chart of accounts
  3. A closed accounting period stays closed

SEE ALSO:
  - entry.go: GeneralLedgerEntry aggregate
  - period.go: AccountingPeriod state machine
  - accounts.go: ChartOfAccounts aggregate
  - handlers.go: Command handlers and module registration
*/
package ledger

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/bookkeeping-engine/generic"
)

// =============================================================================
// MONEY - Decimal amount
// =============================================================================

// Money is a decimal amount. The zero value is zero.
type Money struct {
	value decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money { return Money{value: d} }

func NewMoneyFromInt(v int64) Money { return Money{value: decimal.NewFromInt(v)} }

// ParseMoney parses a decimal string such as "120.00".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("parse money %q: %w", s, generic.ErrInvalidArgument)
	}
	return Money{value: d}, nil
}

// MustParseMoney is ParseMoney for constants and tests.
func MustParseMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Add(o Money) Money        { return Money{value: m.value.Add(o.value)} }
func (m Money) Sub(o Money) Money        { return Money{value: m.value.Sub(o.value)} }
func (m Money) Equal(o Money) bool       { return m.value.Equal(o.value) }
func (m Money) IsZero() bool             { return m.value.IsZero() }
func (m Money) IsNegative() bool         { return m.value.IsNegative() }
func (m Money) Decimal() decimal.Decimal { return m.value }
func (m Money) String() string           { return m.value.StringFixed(2) }

var _ json.Marshaler = Money{}

// MarshalJSON writes a quoted decimal that keeps the scale it was given,
// so "120.00" decodes back to the same value and not just an equal one.
func (m Money) MarshalJSON() ([]byte, error) {
	places := int32(0)
	if exp := m.value.Exponent(); exp < 0 {
		places = -exp
	}
	return json.Marshal(m.value.StringFixed(places))
}

func (m *Money) UnmarshalJSON(data []byte) error {
	return m.value.UnmarshalJSON(data)
}

// =============================================================================
// ACCOUNTS
// =============================================================================

// AccountNumber identifies an account in the chart of accounts.
type AccountNumber int

func (n AccountNumber) String() string { return strconv.Itoa(int(n)) }

func (n AccountNumber) Validate() error {
	if n <= 0 {
		return fmt.Errorf("account number %d must be positive: %w", n, generic.ErrInvalidArgument)
	}
	return nil
}

// ParseAccountNumber parses the decimal form used in URLs.
func ParseAccountNumber(s string) (AccountNumber, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("account number %q: %w", s, generic.ErrInvalidArgument)
	}
	n := AccountNumber(v)
	return n, n.Validate()
}

// AccountName is a human readable account label.
type AccountName string

// NewAccountName trims and validates a name.
func NewAccountName(s string) (AccountName, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("account name is empty: %w", generic.ErrInvalidArgument)
	}
	return AccountName(s), nil
}

// =============================================================================
// PERIOD IDENTIFIER
// =============================================================================

// PeriodIdentifier is a month/year accounting bucket.
type PeriodIdentifier struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// PeriodFor returns the period containing t.
func PeriodFor(t time.Time) PeriodIdentifier {
	return PeriodIdentifier{Month: int(t.Month()), Year: t.Year()}
}

// ParsePeriod parses the MM-YYYY form produced by String.
func ParsePeriod(s string) (PeriodIdentifier, error) {
	month, year, ok := strings.Cut(s, "-")
	if !ok {
		return PeriodIdentifier{}, fmt.Errorf("period %q: want MM-YYYY: %w", s, generic.ErrInvalidArgument)
	}
	m, err1 := strconv.Atoi(month)
	y, err2 := strconv.Atoi(year)
	if err1 != nil || err2 != nil {
		return PeriodIdentifier{}, fmt.Errorf("period %q: want MM-YYYY: %w", s, generic.ErrInvalidArgument)
	}
	p := PeriodIdentifier{Month: m, Year: y}
	return p, p.Validate()
}

func (p PeriodIdentifier) Validate() error {
	if p.Month < 1 || p.Month > 12 || p.Year < 1 || p.Year > 9999 {
		return fmt.Errorf("period %d/%d out of range: %w", p.Month, p.Year, generic.ErrInvalidArgument)
	}
	return nil
}

// String is the canonical month-year form and the period's stream key.
// It must never change: it addresses stored history.
func (p PeriodIdentifier) String() string {
	return fmt.Sprintf("%02d-%04d", p.Month, p.Year)
}

// =============================================================================
// POSTING LINES
// =============================================================================

// Credit is a credit line: an amount against an account.
type Credit struct {
	AccountNumber AccountNumber `json:"accountNumber"`
	Amount        Money         `json:"amount"`
}

func NewCredit(account AccountNumber) Credit { return Credit{AccountNumber: account} }

// Add returns the credit increased by m.
func (c Credit) Add(m Money) Credit {
	return Credit{AccountNumber: c.AccountNumber, Amount: c.Amount.Add(m)}
}

// Debit is a debit line: an amount against an account.
type Debit struct {
	AccountNumber AccountNumber `json:"accountNumber"`
	Amount        Money         `json:"amount"`
}

func NewDebit(account AccountNumber) Debit { return Debit{AccountNumber: account} }

// Add returns the debit increased by m.
func (d Debit) Add(m Money) Debit {
	return Debit{AccountNumber: d.AccountNumber, Amount: d.Amount.Add(m)}
}
