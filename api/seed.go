/*
seed.go - Chart of accounts seeding from YAML

PURPOSE:
  Lets a deployment start with a predefined chart of accounts. Each
  account in the file is sent through the normal DefineAccount command
  chain, so seeding is event sourced like everything else.

FILE FORMAT:
  accounts:
    - number: 1000
      name: Bank Checking Account
    - number: 2150
      name: Accounts Payable

IDEMPOTENCY:
  Accounts that are already defined are skipped, so the same file can be
  applied on every start.

SEE ALSO:
  - cmd/server/main.go: Applies BOOKKEEPING_CHART_OF_ACCOUNTS at startup
*/
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/warp/bookkeeping-engine/generic"
	"github.com/warp/bookkeeping-engine/ledger"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ChartOfAccountsSeed is the YAML seed file.
type ChartOfAccountsSeed struct {
	Accounts []SeedAccount `yaml:"accounts"`
}

// SeedAccount is one account to define.
type SeedAccount struct {
	Number int    `yaml:"number"`
	Name   string `yaml:"name"`
}

// ParseChartOfAccountsSeed reads a seed document.
func ParseChartOfAccountsSeed(r io.Reader) (ChartOfAccountsSeed, error) {
	var seed ChartOfAccountsSeed
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil && !errors.Is(err, io.EOF) {
		return ChartOfAccountsSeed{}, fmt.Errorf("failed to parse chart of accounts: %w", err)
	}
	return seed, nil
}

// LoadChartOfAccountsSeed reads a seed file from disk.
func LoadChartOfAccountsSeed(path string) (ChartOfAccountsSeed, error) {
	f, err := os.Open(path)
	if err != nil {
		return ChartOfAccountsSeed{}, err
	}
	defer f.Close()
	return ParseChartOfAccountsSeed(f)
}

// Seed defines every account in seed that is not defined yet and returns
// how many were added.
func Seed(ctx context.Context, d *generic.Dispatcher, seed ChartOfAccountsSeed, logger *zap.Logger) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	added := 0
	for _, a := range seed.Accounts {
		err := d.Dispatch(ctx, ledger.DefineAccount{
			AccountNumber: ledger.AccountNumber(a.Number),
			AccountName:   a.Name,
		})
		switch {
		case err == nil:
			added++
		case errors.Is(err, generic.ErrDuplicate):
			logger.Debug("account already defined", zap.Int("account_number", a.Number))
		default:
			return added, fmt.Errorf("define account %d: %w", a.Number, err)
		}
	}
	return added, nil
}
