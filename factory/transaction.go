/*
Package factory provides JSON to Go conversion for business transactions.

PURPOSE:
  Commands that carry a business transaction cannot know its concrete Go
  type. The wire format names it instead, and a TransactionRegistry built
  at startup turns that name back into a value.

WIRE FORMAT:
  A business transaction is a single-key object. The key is the
  transaction's type name with its first character lower-cased (its
  discriminator name); the value is the transaction's own fields in
  lower camel case:

    {
      "businessTransaction": {
        "purchaseOrder": {
          "purchaseOrderId": "8c1d…",
          "purchaseOrderNumber": 17,
          "purchaseOrderItems": [{"itemNumber": "A-1", "quantity": 2, "total": "120.00"}]
        }
      },
      "period": {"month": 3, "year": 2025},
      "createdOn": "2025-03-14T09:30:00Z"
    }

  Reading:
  - field names are matched case-insensitively
  - an unknown discriminator decodes to no transaction, not an error
  - null or {} decode to no transaction
  Writing:
  - no transaction emits no "businessTransaction" key at all

REGISTRATION:
  Registries are explicit values; nothing is discovered by reflection:

    codec := factory.NewTransactionRegistry()
    purchaseorders.RegisterTransaction(codec)

SEE ALSO:
  - ledger/entry.go: BusinessTransaction interface
  - purchaseorders/purchase_order.go: A registered transaction
*/
package factory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/warp/bookkeeping-engine/generic"
	"github.com/warp/bookkeeping-engine/ledger"
)

// =============================================================================
// TRANSACTION REGISTRY
// =============================================================================

// TransactionRegistry maps discriminator names to transaction decoders.
type TransactionRegistry struct {
	decoders map[string]func(json.RawMessage) (ledger.BusinessTransaction, error)
}

// NewTransactionRegistry creates an empty registry.
func NewTransactionRegistry() *TransactionRegistry {
	return &TransactionRegistry{
		decoders: make(map[string]func(json.RawMessage) (ledger.BusinessTransaction, error)),
	}
}

// Register adds transaction kind T under its discriminator name.
func Register[T ledger.BusinessTransaction](r *TransactionRegistry) {
	var zero T
	r.decoders[DiscriminatorName(zero.TransactionType())] = func(data json.RawMessage) (ledger.BusinessTransaction, error) {
		var tx T
		if err := json.Unmarshal(data, &tx); err != nil {
			return nil, err
		}
		return tx, nil
	}
}

// DiscriminatorName lower-cases the first character of a type name.
func DiscriminatorName(typeName string) string {
	r, size := utf8.DecodeRuneInString(typeName)
	if r == utf8.RuneError {
		return typeName
	}
	return string(unicode.ToLower(r)) + typeName[size:]
}

// Names returns the registered discriminator names, sorted.
func (r *TransactionRegistry) Names() []string {
	names := make([]string, 0, len(r.decoders))
	for n := range r.decoders {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Encode writes tx as a single-key object. A nil tx encodes to nil.
func (r *TransactionRegistry) Encode(tx ledger.BusinessTransaction) (json.RawMessage, error) {
	if tx == nil {
		return nil, nil
	}
	body, err := json.Marshal(tx)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", tx.TransactionType(), err)
	}
	return json.Marshal(map[string]json.RawMessage{
		DiscriminatorName(tx.TransactionType()): body,
	})
}

// Decode reads a single-key object. Unknown discriminators, null and {}
// yield a nil transaction and no error; anything but an object is an error.
func (r *TransactionRegistry) Decode(data json.RawMessage) (ledger.BusinessTransaction, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}
	if data[0] != '{' {
		return nil, fmt.Errorf("business transaction must be an object: %w", generic.ErrInvalidArgument)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to parse business transaction: %w", generic.ErrInvalidArgument)
	}
	switch len(fields) {
	case 0:
		return nil, nil
	case 1:
	default:
		return nil, fmt.Errorf("business transaction must have exactly one key, got %d: %w",
			len(fields), generic.ErrInvalidArgument)
	}

	for name, body := range fields {
		decode, ok := r.decoders[name]
		if !ok {
			return nil, nil
		}
		tx, err := decode(body)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %v: %w", name, err, generic.ErrInvalidArgument)
		}
		return tx, nil
	}
	return nil, nil
}

// =============================================================================
// COMMAND CODEC
// =============================================================================

type postGeneralLedgerEntryJSON struct {
	BusinessTransaction json.RawMessage         `json:"businessTransaction,omitempty"`
	Period              ledger.PeriodIdentifier `json:"period"`
	CreatedOn           time.Time               `json:"createdOn"`
}

// EncodePostGeneralLedgerEntry writes the command in wire format.
func (r *TransactionRegistry) EncodePostGeneralLedgerEntry(cmd ledger.PostGeneralLedgerEntry) ([]byte, error) {
	tx, err := r.Encode(cmd.BusinessTransaction)
	if err != nil {
		return nil, err
	}
	return json.Marshal(postGeneralLedgerEntryJSON{
		BusinessTransaction: tx,
		Period:              cmd.Period,
		CreatedOn:           cmd.CreatedOn,
	})
}

// DecodePostGeneralLedgerEntry reads the command from wire format.
func (r *TransactionRegistry) DecodePostGeneralLedgerEntry(data []byte) (ledger.PostGeneralLedgerEntry, error) {
	var pj postGeneralLedgerEntryJSON
	if err := json.Unmarshal(data, &pj); err != nil {
		return ledger.PostGeneralLedgerEntry{}, fmt.Errorf("failed to parse command: %v: %w", err, generic.ErrInvalidArgument)
	}
	tx, err := r.Decode(pj.BusinessTransaction)
	if err != nil {
		return ledger.PostGeneralLedgerEntry{}, err
	}
	return ledger.PostGeneralLedgerEntry{
		BusinessTransaction: tx,
		Period:              pj.Period,
		CreatedOn:           pj.CreatedOn,
	}, nil
}
