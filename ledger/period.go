package ledger

import (
	"github.com/warp/bookkeeping-engine/generic"
)

// =============================================================================
// ACCOUNTING PERIOD - Unopened → Open → Closed
// =============================================================================

type PeriodState int

const (
	PeriodUnopened PeriodState = iota
	PeriodOpen
	PeriodClosed
)

func (s PeriodState) String() string {
	switch s {
	case PeriodOpen:
		return "open"
	case PeriodClosed:
		return "closed"
	default:
		return "unopened"
	}
}

// AccountingPeriod is keyed by its PeriodIdentifier's string form.
//
//	From      Command  To      Events
//	Unopened  Open     Open    AccountingPeriodOpened
//	Open      Close    Closed  AccountingPeriodClosed
//	Closed    Close    Closed  (none)
//	Open      Open     Open    (none)
//	Closed    Open     Closed  (none)
//	Unopened  Close    -       NotFoundError
type AccountingPeriod struct {
	generic.Aggregate

	period PeriodIdentifier
	state  PeriodState
}

func NewAccountingPeriod() *AccountingPeriod {
	p := &AccountingPeriod{}
	generic.On(&p.Aggregate, func(e AccountingPeriodOpened) {
		p.period = e.Period
		p.state = PeriodOpen
	})
	generic.On(&p.Aggregate, func(e AccountingPeriodClosed) {
		p.period = e.Period
		p.state = PeriodClosed
	})
	return p
}

func (p *AccountingPeriod) Period() PeriodIdentifier { return p.period }
func (p *AccountingPeriod) State() PeriodState       { return p.state }

// AcceptsPostings reports whether entries may still be posted to the period.
func (p *AccountingPeriod) AcceptsPostings() bool { return p.state != PeriodClosed }

// Open opens an unopened period. Opening an open or closed period records nothing.
func (p *AccountingPeriod) Open(period PeriodIdentifier) {
	if p.state != PeriodUnopened {
		return
	}
	p.Record(AccountingPeriodOpened{Period: period})
}

// Close closes an open period. Closing a closed period records nothing.
func (p *AccountingPeriod) Close(period PeriodIdentifier) error {
	switch p.state {
	case PeriodClosed:
		return nil
	case PeriodUnopened:
		return &generic.NotFoundError{Kind: "accounting period", ID: period.String()}
	}
	p.Record(AccountingPeriodClosed{Period: period})
	return nil
}
