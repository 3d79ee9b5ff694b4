package folio

import "errors"

// Error kinds surfaced by the engine and the service. Callers match them with errors.Is.
var (
	// ErrMalformedTimestamp marks a transaction whose timestamp cannot be parsed.
	// Such transactions are skipped by every computation, never rejected.
	ErrMalformedTimestamp = errors.New("malformed timestamp")

	// ErrInsufficientQuantity rejects a sell larger than the current holding.
	ErrInsufficientQuantity = errors.New("insufficient quantity")

	// ErrLedgerInconsistency is recorded when a sell drains more than the open lots.
	ErrLedgerInconsistency = errors.New("ledger inconsistency")

	// ErrQuoteUnavailable means the price source has no quote for one symbol.
	ErrQuoteUnavailable = errors.New("quote unavailable")

	// ErrUpstreamUnavailable means the price source could not be reached at all.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrCurrencyMismatch marks an amount in another currency than the holding or
	// ledger it applies to.
	ErrCurrencyMismatch = errors.New("currency mismatch")

	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrHoldingNotFound    = errors.New("holding not found")
	ErrHoldingExists      = errors.New("holding already exists")
)
