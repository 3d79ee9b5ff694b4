package folio

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Money is written as a bare amount; records carry its currency in a sibling
// "currency" field so the amount stays exact on disk.

// MarshalJSON writes the transaction with a stable field order.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", t.ID).
		Append("owner", t.Owner).
		Append("date", t.Timestamp).
		Append("type", t.Kind).
		Append("instrument", t.Instrument).
		Append("quantity", t.Quantity).
		Append("price", t.UnitPrice).
		Optional("currency", t.UnitPrice.Currency()).
		Optional("class", t.Class)
	return w.MarshalJSON()
}

// UnmarshalJSON reads a transaction. The timestamp is kept as written, even when
// it does not parse.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var j struct {
		ID         uuid.UUID       `json:"id"`
		Owner      string          `json:"owner"`
		Date       string          `json:"date"`
		Kind       Kind            `json:"type"`
		Instrument string          `json:"instrument"`
		Quantity   Quantity        `json:"quantity"`
		Price      decimal.Decimal `json:"price"`
		Currency   string          `json:"currency"`
		Class      AssetClass      `json:"class"`
	}
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	*t = Transaction{
		ID:         j.ID,
		Owner:      j.Owner,
		Timestamp:  j.Date,
		Kind:       j.Kind,
		Instrument: j.Instrument,
		Quantity:   j.Quantity,
		UnitPrice:  M(j.Price, j.Currency),
		Class:      j.Class,
	}
	return nil
}

// MarshalJSON writes the holding with a stable field order.
func (h Holding) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("owner", h.Owner).
		Append("symbol", h.Symbol).
		Append("instrument", h.Instrument).
		Append("quantity", h.Quantity).
		Append("avg_cost", h.AvgCost).
		Optional("currency", h.AvgCost.Currency()).
		Append("type", h.Class)
	return w.MarshalJSON()
}

func (h *Holding) UnmarshalJSON(data []byte) error {
	var j struct {
		Owner      string          `json:"owner"`
		Symbol     string          `json:"symbol"`
		Instrument string          `json:"instrument"`
		Quantity   Quantity        `json:"quantity"`
		AvgCost    decimal.Decimal `json:"avg_cost"`
		Currency   string          `json:"currency"`
		Class      AssetClass      `json:"type"`
	}
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	*h = Holding{
		Owner:      j.Owner,
		Symbol:     j.Symbol,
		Instrument: j.Instrument,
		Quantity:   j.Quantity,
		AvgCost:    M(j.AvgCost, j.Currency),
		Class:      j.Class,
	}
	if h.Class == "" {
		h.Class = Equity
	}
	return nil
}

// EncodeTransaction marshals a single transaction to JSON and writes it to the
// writer, followed by a newline, in JSONL format.
func EncodeTransaction(w io.Writer, tx Transaction) error {
	data, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write transaction: %w", err)
	}
	return nil
}

// EncodeTransactions writes transactions in JSONL format, in the given order.
func EncodeTransactions(w io.Writer, txs []Transaction) error {
	for _, tx := range txs {
		if err := EncodeTransaction(w, tx); err != nil {
			return err
		}
	}
	return nil
}

// DecodeTransactions reads a JSONL ledger. Empty lines are skipped and a missing
// id is replaced by a fresh one. Timestamps are not checked: a malformed one is
// reported by the replay, not here.
func DecodeTransactions(r io.Reader) ([]Transaction, error) {
	var txs []Transaction
	scanner := bufio.NewScanner(r)
	for n := 1; scanner.Scan(); n++ {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue // Skip empty lines
		}
		var tx Transaction
		if err := json.Unmarshal(line, &tx); err != nil {
			return nil, fmt.Errorf("could not decode transaction on line %d: %w", n, err)
		}
		if tx.ID == uuid.Nil {
			tx.ID = uuid.New()
		}
		txs = append(txs, tx)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not read ledger: %w", err)
	}
	return txs, nil
}
