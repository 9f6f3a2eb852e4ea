package ledger

import "time"

// Commands are plain values. The transport layer decodes them and hands
// them to generic.Dispatcher.Dispatch.

type OpenAccountingPeriod struct {
	Period PeriodIdentifier `json:"period"`
}

type CloseAccountingPeriod struct {
	Period PeriodIdentifier `json:"period"`
}

type DefineAccount struct {
	AccountNumber AccountNumber `json:"accountNumber"`
	AccountName   string        `json:"accountName"`
}

type RenameAccount struct {
	AccountNumber  AccountNumber `json:"accountNumber"`
	NewAccountName string        `json:"newAccountName"`
}

type DeactivateAccount struct {
	AccountNumber AccountNumber `json:"accountNumber"`
}

type ReactivateAccount struct {
	AccountNumber AccountNumber `json:"accountNumber"`
}

// PostGeneralLedgerEntry posts the entry produced by BusinessTransaction.
// Its JSON form is handled by the factory package, which knows the
// registered transaction kinds.
type PostGeneralLedgerEntry struct {
	BusinessTransaction BusinessTransaction
	Period              PeriodIdentifier
	CreatedOn           time.Time
}
