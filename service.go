package folio

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/etnz/folio/logger"
)

// Store persists the ledger and the holdings snapshot of every owner.
// Each call must be atomic on its own.
type Store interface {
	// LoadTransactions returns the owner's transactions in insertion order.
	LoadTransactions(ctx context.Context, owner string) ([]Transaction, error)
	// LoadHoldings returns the owner's holdings ordered by symbol.
	LoadHoldings(ctx context.Context, owner string) ([]Holding, error)
	SaveHolding(ctx context.Context, h Holding) error
	DeleteHolding(ctx context.Context, owner, symbol string) error
	AppendTransaction(ctx context.Context, tx Transaction) error
}

// ChangeApplier is implemented by stores that can apply holding changes and
// their transaction records in a single atomic write. Records are appended in
// the given order.
type ChangeApplier interface {
	ApplyChanges(ctx context.Context, changes ...Change) error
}

// QuoteSource resolves current market prices.
//
// A symbol missing from the result has no quote (ErrQuoteUnavailable). An error
// means the source could not be reached at all and should wrap
// ErrUpstreamUnavailable; the partial result, if any, is ignored.
type QuoteSource interface {
	QuotePrices(ctx context.Context, symbols []string) (map[string]decimal.Decimal, error)
}

// DefaultQuoteTimeout bounds a whole quote resolution.
const DefaultQuoteTimeout = 5 * time.Second

// Options configures a Service. Zero fields take their default, except
// InflationRate where zero means no inflation.
type Options struct {
	Currency      string
	InflationRate float64
	GrowthFactor  decimal.Decimal
	QuoteTimeout  time.Duration
	Now           func() time.Time
	// Logger receives engine warnings. When nil the logger of the call context is used.
	Logger *zap.SugaredLogger
}

// Service runs the portfolio actions and reports of owners over a Store and a
// QuoteSource.
type Service struct {
	store  Store
	quotes QuoteSource
	opts   Options
}

// NewService returns a Service. quotes may be nil, every equity is then valued
// at its average cost.
func NewService(store Store, quotes QuoteSource, opts Options) *Service {
	if opts.Currency == "" {
		opts.Currency = DefaultCurrency
	}
	if !opts.GrowthFactor.IsPositive() {
		opts.GrowthFactor = DefaultGrowthFactor
	}
	if opts.QuoteTimeout <= 0 {
		opts.QuoteTimeout = DefaultQuoteTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{store: store, quotes: quotes, opts: opts}
}

func (s *Service) log(ctx context.Context) *zap.SugaredLogger {
	if s.opts.Logger != nil {
		return s.opts.Logger
	}
	return logger.FromContext(ctx)
}

// money expresses an amount given without a currency in the service currency.
// Any other currency is rejected.
func (s *Service) money(m Money) (Money, error) {
	switch m.Currency() {
	case "":
		return m.In(s.opts.Currency), nil
	case s.opts.Currency:
		return m, nil
	}
	return Money{}, fmt.Errorf("%w: %w: %s amount, the portfolio is kept in %s", ErrInvalidTransaction, ErrCurrencyMismatch, m.Currency(), s.opts.Currency)
}

// foreign reports whether m is expressed in another currency than the service's.
func (s *Service) foreign(m Money) bool {
	return m.Currency() != "" && m.Currency() != s.opts.Currency
}

// loadHoldings returns the owner's holdings kept in the service currency. The
// others are left out of every report and logged.
func (s *Service) loadHoldings(ctx context.Context, owner string) ([]Holding, error) {
	holdings, err := s.store.LoadHoldings(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("could not load holdings of %s: %w", owner, err)
	}
	return slices.DeleteFunc(holdings, func(h Holding) bool {
		if !s.foreign(h.AvgCost) {
			return false
		}
		s.log(ctx).Warnw("ignoring holding", "owner", owner, "symbol", h.Symbol, "currency", h.AvgCost.Currency(), "err", ErrCurrencyMismatch)
		return true
	}), nil
}

// holding returns the owner's holding of symbol, nil when there is none.
func (s *Service) holding(ctx context.Context, owner, symbol string) (*Holding, error) {
	holdings, err := s.store.LoadHoldings(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("could not load holdings of %s: %w", owner, err)
	}
	i := slices.IndexFunc(holdings, func(h Holding) bool { return h.Symbol == symbol })
	if i < 0 {
		return nil, nil
	}
	return &holdings[i], nil
}

// apply persists changes, atomically when the store supports it. Otherwise each
// record is appended before its holding is updated, so that a failed write never
// leaves a holding without the transaction explaining it.
func (s *Service) apply(ctx context.Context, changes ...Change) error {
	if a, ok := s.store.(ChangeApplier); ok {
		return a.ApplyChanges(ctx, changes...)
	}
	for _, c := range changes {
		if c.Record.Owner != "" {
			if err := s.store.AppendTransaction(ctx, c.Record); err != nil {
				return fmt.Errorf("could not record transaction: %w", err)
			}
		}
		switch {
		case c.Save != nil:
			if err := s.store.SaveHolding(ctx, *c.Save); err != nil {
				return fmt.Errorf("could not save holding %s: %w", c.Save.Symbol, err)
			}
		case c.Delete != nil:
			if err := s.store.DeleteHolding(ctx, c.Delete.Owner, c.Delete.Symbol); err != nil {
				return fmt.Errorf("could not delete holding %s: %w", c.Delete.Symbol, err)
			}
		}
	}
	return nil
}

// Buy records a purchase and updates the owner's holding.
func (s *Service) Buy(ctx context.Context, owner, symbol string, quantity Quantity, price Money) (Transaction, error) {
	symbol = NormalizeSymbol(symbol)
	current, err := s.holding(ctx, owner, symbol)
	if err != nil {
		return Transaction{}, err
	}
	price, err = s.money(price)
	if err != nil {
		return Transaction{}, err
	}
	c, err := ApplyBuy(current, owner, symbol, quantity, price, s.opts.Now())
	if err != nil {
		return Transaction{}, err
	}
	return c.Record, s.apply(ctx, c)
}

// Sell records a sale. Nothing is written when the sale is rejected.
func (s *Service) Sell(ctx context.Context, owner, symbol string, quantity Quantity, price Money) (Transaction, error) {
	symbol = NormalizeSymbol(symbol)
	current, err := s.holding(ctx, owner, symbol)
	if err != nil {
		return Transaction{}, err
	}
	price, err = s.money(price)
	if err != nil {
		return Transaction{}, err
	}
	c, err := ApplySell(current, owner, symbol, quantity, price, s.opts.Now())
	if err != nil {
		return Transaction{}, err
	}
	return c.Record, s.apply(ctx, c)
}

// Deposit opens a fixed deposit or bond holding of principal.
func (s *Service) Deposit(ctx context.Context, owner, instrument string, principal Money, class AssetClass) (Transaction, error) {
	current, err := s.holding(ctx, owner, DepositSymbol(instrument))
	if err != nil {
		return Transaction{}, err
	}
	principal, err = s.money(principal)
	if err != nil {
		return Transaction{}, err
	}
	c, err := ApplyDeposit(current, owner, instrument, principal, class, s.opts.Now())
	if err != nil {
		return Transaction{}, err
	}
	return c.Record, s.apply(ctx, c)
}

// prices resolves quotes for the equity holdings. It never fails: an unreachable
// source or a missing quote leaves the symbol out, to be valued at average cost.
func (s *Service) prices(ctx context.Context, holdings []Holding) Prices {
	if s.quotes == nil {
		return nil
	}
	var symbols []string
	for _, h := range holdings {
		if !h.Class.synthetic() {
			symbols = append(symbols, h.Symbol)
		}
	}
	if len(symbols) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.QuoteTimeout)
	defer cancel()
	prices, err := s.quotes.QuotePrices(ctx, symbols)
	if err != nil {
		if !errors.Is(err, ErrUpstreamUnavailable) {
			err = fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
		}
		s.log(ctx).Warnw("valuing every holding at average cost", "symbols", symbols, "err", err)
		return nil
	}
	return prices
}

func (s *Service) valuate(ctx context.Context, owner string) (Valuation, error) {
	holdings, err := s.loadHoldings(ctx, owner)
	if err != nil {
		return Valuation{}, err
	}
	prices := s.prices(ctx, holdings)
	v := Valuate(holdings, prices, s.opts.GrowthFactor)
	if prices != nil {
		for _, symbol := range v.Fallbacks {
			s.log(ctx).Warnw("valued at average cost", "owner", owner, "symbol", symbol, "err", ErrQuoteUnavailable)
		}
	}
	return v, nil
}

// replay loads and replays the owner's ledger, logging what it had to skip.
// Transactions in another currency than the service's are skipped too.
func (s *Service) replay(ctx context.Context, owner string) ([]Transaction, *LedgerReplay, error) {
	txs, err := s.store.LoadTransactions(ctx, owner)
	if err != nil {
		return nil, nil, fmt.Errorf("could not load transactions of %s: %w", owner, err)
	}
	txs = slices.DeleteFunc(txs, func(tx Transaction) bool {
		if !s.foreign(tx.UnitPrice) {
			return false
		}
		s.log(ctx).Warnw("skipping transaction", "owner", owner, "instrument", tx.Instrument, "id", tx.ID, "currency", tx.UnitPrice.Currency(), "err", ErrCurrencyMismatch)
		return true
	})
	r := Replay(txs)
	for _, w := range r.Skipped {
		s.log(ctx).Warnw("skipping transaction", "owner", owner, "instrument", w.Transaction.Instrument, "id", w.Transaction.ID, "err", w.Err)
	}
	for _, w := range r.Inconsistencies {
		s.log(ctx).Warnw("sell exceeds open lots", "owner", owner, "instrument", w.Transaction.Instrument, "id", w.Transaction.ID, "err", w.Err)
	}
	return txs, r, nil
}

// Holdings returns the owner's holdings valued at current prices.
func (s *Service) Holdings(ctx context.Context, owner string) ([]Position, error) {
	v, err := s.valuate(ctx, owner)
	return v.Positions, err
}

// Valuation returns the owner's valued portfolio with its totals and allocation.
func (s *Service) Valuation(ctx context.Context, owner string) (Valuation, error) {
	return s.valuate(ctx, owner)
}

// Dashboard returns the owner's portfolio summary.
func (s *Service) Dashboard(ctx context.Context, owner string) (Dashboard, error) {
	v, err := s.valuate(ctx, owner)
	if err != nil {
		return Dashboard{}, err
	}
	_, r, err := s.replay(ctx, owner)
	if err != nil {
		return Dashboard{}, err
	}
	return NewDashboard(v, r), nil
}

// PnL returns the owner's realized profit statement.
func (s *Service) PnL(ctx context.Context, owner string) (PnLStatement, error) {
	_, r, err := s.replay(ctx, owner)
	if err != nil {
		return PnLStatement{}, err
	}
	return PnL(r), nil
}

// RealReturns returns the owner's inflation adjusted realized returns.
func (s *Service) RealReturns(ctx context.Context, owner string) (RealReturnStatement, error) {
	_, r, err := s.replay(ctx, owner)
	if err != nil {
		return RealReturnStatement{}, err
	}
	return RealReturns(r, s.opts.InflationRate), nil
}

// Score returns the owner's investor score.
func (s *Service) Score(ctx context.Context, owner string) (ScoreReport, error) {
	holdings, err := s.loadHoldings(ctx, owner)
	if err != nil {
		return ScoreReport{}, err
	}
	txs, _, err := s.replay(ctx, owner)
	if err != nil {
		return ScoreReport{}, err
	}
	return Score(holdings, txs, s.opts.Now()), nil
}

// Transactions returns the owner's ledger, newest first. Transactions with a
// malformed timestamp are listed last, in insertion order.
func (s *Service) Transactions(ctx context.Context, owner string) ([]Transaction, error) {
	txs, err := s.store.LoadTransactions(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("could not load transactions of %s: %w", owner, err)
	}
	return NewestFirst(txs), nil
}

// Ledger returns the owner's transactions in the order they were recorded.
func (s *Service) Ledger(ctx context.Context, owner string) ([]Transaction, error) {
	txs, err := s.store.LoadTransactions(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("could not load transactions of %s: %w", owner, err)
	}
	return txs, nil
}

// NewestFirst returns a copy of txs sorted by timestamp, newest first. Ties keep
// the reverse of their order in txs; malformed timestamps sort last.
func NewestFirst(txs []Transaction) []Transaction {
	ledger := make([]dated, 0, len(txs))
	var malformed []Transaction
	for i, tx := range txs {
		at, err := tx.Time()
		if err != nil {
			malformed = append(malformed, tx)
			continue
		}
		ledger = append(ledger, dated{Transaction: tx, at: at, seq: i})
	}
	slices.SortFunc(ledger, func(a, b dated) int {
		if c := b.at.Compare(a.at); c != 0 {
			return c
		}
		return cmp.Compare(b.seq, a.seq)
	})
	sorted := make([]Transaction, 0, len(txs))
	for _, tx := range ledger {
		sorted = append(sorted, tx.Transaction)
	}
	return append(sorted, malformed...)
}

// Import appends a ledger to the owner's transactions and updates the holdings
// as if every transaction had been entered in timestamp order. The whole ledger
// is checked before anything is written; it returns the number of transactions
// recorded.
//
// Every record gets a fresh ID, so one ledger can be imported for several owners.
// Amounts must be in the service currency. Transactions with a malformed
// timestamp are recorded but do not touch holdings. Deposits open a holding of
// their recorded class, a fixed deposit when they carry none.
func (s *Service) Import(ctx context.Context, owner string, txs []Transaction) (int, error) {
	current, err := s.store.LoadHoldings(ctx, owner)
	if err != nil {
		return 0, fmt.Errorf("could not load holdings of %s: %w", owner, err)
	}
	holdings := make(map[string]*Holding, len(current))
	for i := range current {
		holdings[current[i].Symbol] = &current[i]
	}
	touched := make(map[string]bool)

	records := make([]Change, 0, len(txs))
	ledger := make([]dated, 0, len(txs))
	for i, tx := range txs {
		tx.ID = uuid.New()
		tx.Owner = owner
		if tx.UnitPrice, err = s.money(tx.UnitPrice); err != nil {
			return 0, fmt.Errorf("transaction %d: %w", i+1, err)
		}
		if tx.Kind == Deposit {
			tx.Instrument = DepositSymbol(tx.Instrument)
			if tx.Class == "" {
				tx.Class = FixedDeposit
			}
		} else {
			tx.Instrument = NormalizeSymbol(tx.Instrument)
			tx.Class = ""
		}
		if err := tx.Validate(); err != nil {
			return 0, fmt.Errorf("transaction %d: %w", i+1, err)
		}
		records = append(records, Change{Record: tx})
		at, err := tx.Time()
		if err != nil {
			s.log(ctx).Warnw("importing without applying", "owner", owner, "instrument", tx.Instrument, "id", tx.ID, "err", err)
			continue
		}
		ledger = append(ledger, dated{Transaction: tx, at: at, seq: i})
	}
	slices.SortStableFunc(ledger, func(a, b dated) int { return a.at.Compare(b.at) })

	for _, tx := range ledger {
		var c Change
		switch tx.Kind {
		case Buy:
			c, err = ApplyBuy(holdings[tx.Instrument], owner, tx.Instrument, tx.Quantity, tx.UnitPrice, tx.at)
		case Sell:
			c, err = ApplySell(holdings[tx.Instrument], owner, tx.Instrument, tx.Quantity, tx.UnitPrice, tx.at)
		case Deposit:
			c, err = ApplyDeposit(holdings[tx.Instrument], owner, tx.Instrument, tx.Amount(), tx.Class, tx.at)
		}
		if err != nil {
			return 0, fmt.Errorf("transaction %d on %s: %w", tx.seq+1, tx.Timestamp, err)
		}
		switch {
		case c.Save != nil:
			holdings[c.Save.Symbol] = c.Save
			touched[c.Save.Symbol] = true
		case c.Delete != nil:
			holdings[c.Delete.Symbol] = nil
			touched[c.Delete.Symbol] = true
		}
	}

	// records first, then the final state of every touched holding.
	changes := records
	for _, symbol := range slices.Sorted(maps.Keys(touched)) {
		if h := holdings[symbol]; h != nil {
			changes = append(changes, Change{Save: h})
		} else {
			changes = append(changes, Change{Delete: &HoldingKey{Owner: owner, Symbol: symbol}})
		}
	}
	if err := s.apply(ctx, changes...); err != nil {
		return 0, fmt.Errorf("could not import the ledger of %s: %w", owner, err)
	}
	return len(records), nil
}
