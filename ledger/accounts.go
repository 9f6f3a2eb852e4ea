package ledger

import (
	"sort"

	"github.com/warp/bookkeeping-engine/generic"
)

// ChartOfAccountsStream is the single stream holding the chart of accounts.
const ChartOfAccountsStream = "chartOfAccounts"

// Account is one line of the chart of accounts.
type Account struct {
	Number AccountNumber
	Name   AccountName
	Active bool
}

// ChartOfAccounts maps account numbers to accounts. Numbers are unique;
// rename, deactivate and reactivate only apply to defined accounts.
type ChartOfAccounts struct {
	generic.Aggregate

	accounts map[AccountNumber]*Account
}

func NewChartOfAccounts() *ChartOfAccounts {
	c := &ChartOfAccounts{accounts: make(map[AccountNumber]*Account)}
	generic.On(&c.Aggregate, func(e AccountDefined) {
		c.accounts[e.AccountNumber] = &Account{Number: e.AccountNumber, Name: e.AccountName, Active: true}
	})
	generic.On(&c.Aggregate, func(e AccountRenamed) {
		if a, ok := c.accounts[e.AccountNumber]; ok {
			a.Name = e.NewAccountName
		}
	})
	generic.On(&c.Aggregate, func(e AccountDeactivated) {
		if a, ok := c.accounts[e.AccountNumber]; ok {
			a.Active = false
		}
	})
	generic.On(&c.Aggregate, func(e AccountReactivated) {
		if a, ok := c.accounts[e.AccountNumber]; ok {
			a.Active = true
		}
	})
	return c
}

// Define adds a new active account.
func (c *ChartOfAccounts) Define(number AccountNumber, name AccountName) error {
	if _, ok := c.accounts[number]; ok {
		return &generic.DuplicateError{Kind: "account", ID: number.String()}
	}
	c.Record(AccountDefined{AccountNumber: number, AccountName: name})
	return nil
}

// Rename changes an account's name. Renaming to the current name records nothing.
func (c *ChartOfAccounts) Rename(number AccountNumber, name AccountName) error {
	a, err := c.mustGet(number)
	if err != nil {
		return err
	}
	if a.Name == name {
		return nil
	}
	c.Record(AccountRenamed{AccountNumber: number, NewAccountName: name})
	return nil
}

// Deactivate marks an account inactive; a no-op if it already is.
func (c *ChartOfAccounts) Deactivate(number AccountNumber) error {
	a, err := c.mustGet(number)
	if err != nil {
		return err
	}
	if !a.Active {
		return nil
	}
	c.Record(AccountDeactivated{AccountNumber: number})
	return nil
}

// Reactivate marks an account active; a no-op if it already is.
func (c *ChartOfAccounts) Reactivate(number AccountNumber) error {
	a, err := c.mustGet(number)
	if err != nil {
		return err
	}
	if a.Active {
		return nil
	}
	c.Record(AccountReactivated{AccountNumber: number})
	return nil
}

// Account returns a copy of the account with the given number.
func (c *ChartOfAccounts) Account(number AccountNumber) (Account, bool) {
	a, ok := c.accounts[number]
	if !ok {
		return Account{}, false
	}
	return *a, true
}

// Accounts returns every account ordered by number.
func (c *ChartOfAccounts) Accounts() []Account {
	out := make([]Account, 0, len(c.accounts))
	for _, a := range c.accounts {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

func (c *ChartOfAccounts) mustGet(number AccountNumber) (*Account, error) {
	a, ok := c.accounts[number]
	if !ok {
		return nil, &generic.NotFoundError{Kind: "account", ID: number.String()}
	}
	return a, nil
}
