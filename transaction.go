package folio

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind identifies what a transaction does to the ledger.
type Kind string

const (
	Buy     Kind = "buy"
	Sell    Kind = "sell"
	Deposit Kind = "deposit"
)

// ParseKind parses a transaction kind, case insensitive.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case Buy, Sell, Deposit:
		return k, nil
	default:
		return "", fmt.Errorf("unknown transaction kind %q", s)
	}
}

// TimestampFormat is the layout used to record new transactions.
const TimestampFormat = "2006-01-02 15:04:05"

// accepted layouts, tried in order.
var timestampLayouts = []string{
	TimestampFormat,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp parses a ledger timestamp. Timestamps without a zone are read as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, s)
}

// FormatTimestamp formats t the way new transactions are recorded.
func FormatTimestamp(t time.Time) string { return t.UTC().Format(TimestampFormat) }

// Transaction is an immutable ledger entry.
//
// Timestamp is kept as recorded: a transaction whose timestamp does not parse
// stays in the store and in listings but is ignored by every computation.
type Transaction struct {
	ID         uuid.UUID `json:"id"`
	Owner      string    `json:"owner"`
	Timestamp  string    `json:"date"`
	Kind       Kind      `json:"type"`
	Instrument string    `json:"instrument"`
	Quantity   Quantity  `json:"quantity"`
	UnitPrice  Money     `json:"price"`

	// Class is the asset class a deposit opened, empty for buys and sells.
	Class AssetClass `json:"class,omitempty"`
}

// NewTransaction creates a transaction with a fresh ID.
func NewTransaction(owner string, at time.Time, kind Kind, instrument string, quantity Quantity, unitPrice Money) Transaction {
	return Transaction{
		ID:         uuid.New(),
		Owner:      owner,
		Timestamp:  FormatTimestamp(at),
		Kind:       kind,
		Instrument: instrument,
		Quantity:   quantity,
		UnitPrice:  unitPrice,
	}
}

// Time returns the parsed timestamp, or an error wrapping ErrMalformedTimestamp.
func (t Transaction) Time() (time.Time, error) { return ParseTimestamp(t.Timestamp) }

// Amount is the total value of the transaction (quantity * unit price).
func (t Transaction) Amount() Money { return t.UnitPrice.Mul(t.Quantity) }

// Validate checks the fields every transaction must satisfy.
func (t Transaction) Validate() error {
	if t.Owner == "" {
		return fmt.Errorf("%w: owner is missing", ErrInvalidTransaction)
	}
	if t.Instrument == "" {
		return fmt.Errorf("%w: instrument is missing", ErrInvalidTransaction)
	}
	if _, err := ParseKind(string(t.Kind)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
	}
	if !t.Quantity.IsPositive() {
		return fmt.Errorf("%w: quantity must be positive, got %s", ErrInvalidTransaction, t.Quantity)
	}
	if t.UnitPrice.IsNegative() {
		return fmt.Errorf("%w: price must not be negative, got %s", ErrInvalidTransaction, t.UnitPrice)
	}
	return nil
}

// dated is a transaction whose timestamp parsed, with its ledger position.
type dated struct {
	Transaction
	at  time.Time
	seq int
}
