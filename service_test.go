package folio

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// fakeStore is a Store without ChangeApplier, counting writes.
type fakeStore struct {
	txs      map[string][]Transaction
	holdings map[HoldingKey]Holding
	writes   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{txs: make(map[string][]Transaction), holdings: make(map[HoldingKey]Holding)}
}

func (f *fakeStore) LoadTransactions(ctx context.Context, owner string) ([]Transaction, error) {
	return slices.Clone(f.txs[owner]), nil
}

func (f *fakeStore) LoadHoldings(ctx context.Context, owner string) ([]Holding, error) {
	var hs []Holding
	for k, h := range f.holdings {
		if k.Owner == owner {
			hs = append(hs, h)
		}
	}
	slices.SortFunc(hs, func(a, b Holding) int { return strings.Compare(a.Symbol, b.Symbol) })
	return hs, nil
}

func (f *fakeStore) SaveHolding(ctx context.Context, h Holding) error {
	f.writes++
	f.holdings[h.Key()] = h
	return nil
}

func (f *fakeStore) DeleteHolding(ctx context.Context, owner, symbol string) error {
	f.writes++
	delete(f.holdings, HoldingKey{Owner: owner, Symbol: symbol})
	return nil
}

func (f *fakeStore) AppendTransaction(ctx context.Context, tx Transaction) error {
	f.writes++
	f.txs[tx.Owner] = append(f.txs[tx.Owner], tx)
	return nil
}

// quotes is a QuoteSource answering from a fixed map, or failing with err.
type quotes struct {
	prices map[string]decimal.Decimal
	err    error
}

func (q quotes) QuotePrices(ctx context.Context, symbols []string) (map[string]decimal.Decimal, error) {
	if q.err != nil {
		return nil, q.err
	}
	res := make(map[string]decimal.Decimal)
	for _, s := range symbols {
		if p, ok := q.prices[s]; ok {
			res[s] = p
		}
	}
	return res, nil
}

func newTestService(t *testing.T, store Store, q QuoteSource) (*Service, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.WarnLevel)
	clock := day0
	s := NewService(store, q, Options{
		InflationRate: DefaultInflationRate,
		Logger:        zap.New(core).Sugar(),
		Now: func() time.Time {
			clock = clock.Add(time.Hour)
			return clock
		},
	})
	return s, logs
}

func TestServiceEquityScenario(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, newFakeStore(), quotes{prices: map[string]decimal.Decimal{"TCS": decimal.NewFromInt(250)}})

	tx, err := s.Buy(ctx, "alice", "tcs", Q(5), M(200, ""))
	require.NoError(t, err)
	assert.Equal(t, "TCS", tx.Instrument)
	assert.Equal(t, "INR", tx.UnitPrice.Currency())

	d, err := s.Dashboard(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, d.UnrealizedPnL.Equal(M(250, "INR")), "UnrealizedPnL = %s", d.UnrealizedPnL)
	assert.True(t, d.RealizedPnL.IsZero(), "RealizedPnL = %s", d.RealizedPnL)
	require.Len(t, d.Allocation, 1)
	assert.Equal(t, Equity, d.Allocation[0].Class)
	assert.True(t, d.Allocation[0].Share.Equal(100))
	require.Len(t, d.History, 2)
	assert.True(t, d.History[1].Value.Equal(M(1250, "INR")))
}

func TestServiceEmptyOwner(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, newFakeStore(), nil)

	sc, err := s.Score(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, 300, sc.Total)
	assert.Equal(t, NoHistory, sc.Feedback.Discipline)

	d, err := s.Dashboard(ctx, "nobody")
	require.NoError(t, err)
	assert.True(t, d.TotalValue.IsZero())
	assert.Empty(t, d.Allocation)
}

func TestServiceOversellDoesNotMutate(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	s, _ := newTestService(t, store, nil)

	_, err := s.Buy(ctx, "alice", "TCS", Q(5), M(200, "INR"))
	require.NoError(t, err)
	writes := store.writes

	_, err = s.Sell(ctx, "alice", "TCS", Q(10), M(250, "INR"))
	assert.ErrorIs(t, err, ErrInsufficientQuantity)
	_, err = s.Sell(ctx, "alice", "INFY", Q(1), M(250, "INR"))
	assert.ErrorIs(t, err, ErrHoldingNotFound)

	assert.Equal(t, writes, store.writes)
	hs, _ := s.Holdings(ctx, "alice")
	require.Len(t, hs, 1)
	assert.True(t, hs[0].Quantity.Equal(Q(5)))
}

func TestServiceUpstreamFailure(t *testing.T) {
	ctx := context.Background()
	s, logs := newTestService(t, newFakeStore(), quotes{err: errors.New("connection refused")})

	_, err := s.Buy(ctx, "alice", "TCS", Q(2), M(100, "INR"))
	require.NoError(t, err)
	_, err = s.Deposit(ctx, "alice", "SBI", M(1000, "INR"), FixedDeposit)
	require.NoError(t, err)

	v, err := s.Valuation(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"TCS"}, v.Fallbacks)
	assert.True(t, v.TotalValue.Equal(M(1270, "INR")), "TotalValue = %s", v.TotalValue)

	warnings := logs.FilterMessage("valuing every holding at average cost").All()
	require.Len(t, warnings, 1)
	var logged error
	for _, f := range warnings[0].Context {
		if f.Key == "err" {
			logged, _ = f.Interface.(error)
		}
	}
	assert.ErrorIs(t, logged, ErrUpstreamUnavailable)
}

func TestServiceSellAndReports(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t, newFakeStore(), nil)

	for _, b := range []struct{ q, p float64 }{{10, 100}, {10, 120}} {
		_, err := s.Buy(ctx, "alice", "TCS", Q(b.q), M(b.p, "INR"))
		require.NoError(t, err)
	}
	_, err := s.Sell(ctx, "alice", "TCS", Q(12), M(150, "INR"))
	require.NoError(t, err)

	pnl, err := s.PnL(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, pnl.Lines, 1)
	assert.True(t, pnl.CostBasis.Equal(M(1240, "INR")), "CostBasis = %s", pnl.CostBasis)
	assert.True(t, pnl.RealizedPnL.Equal(M(560, "INR")), "RealizedPnL = %s", pnl.RealizedPnL)
	assert.True(t, pnl.Lines[0].Sold.Equal(Q(12)))

	rr, err := s.RealReturns(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, rr.RealPnL.LessThan(rr.NominalPnL))

	txs, err := s.Transactions(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, Sell, txs[0].Kind)

	// the holding keeps the weighted average of both buys.
	hs, err := s.Holdings(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, hs[0].AvgCost.Equal(M(110, "INR")), "AvgCost = %s", hs[0].AvgCost)
	assert.True(t, hs[0].Quantity.Equal(Q(8)))
}

func TestServiceImport(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	s, logs := newTestService(t, store, nil)

	malformed := tx(3, Buy, "INFY", 1, 1000)
	malformed.Timestamp = "soon"
	ledger := []Transaction{
		tx(2, Sell, "tcs", 4, 150), // recorded before its buy
		tx(0, Buy, "tcs", 10, 100),
		tx(1, Deposit, "HDFC bank", 50000, 1),
		malformed,
	}
	n, err := s.Import(ctx, "bob", ledger)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Len(t, logs.FilterMessage("importing without applying").All(), 1)

	hs, err := s.Holdings(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, hs, 2)
	assert.Equal(t, "HDFC-BANK", hs[0].Symbol)
	assert.Equal(t, FixedDeposit, hs[0].Class)
	assert.Equal(t, "TCS", hs[1].Symbol)
	assert.True(t, hs[1].Quantity.Equal(Q(6)))

	txs, _ := store.LoadTransactions(ctx, "bob")
	for _, tx := range txs {
		assert.Equal(t, "bob", tx.Owner)
	}

	// an oversell anywhere rejects the whole ledger.
	writes := store.writes
	_, err = s.Import(ctx, "carol", []Transaction{tx(0, Buy, "TCS", 1, 100), tx(1, Sell, "TCS", 2, 100)})
	assert.ErrorIs(t, err, ErrInsufficientQuantity)
	_, err = s.Import(ctx, "carol", []Transaction{tx(0, Buy, "TCS", -1, 100)})
	assert.ErrorIs(t, err, ErrInvalidTransaction)
	assert.Equal(t, writes, store.writes)
}

func TestNewestFirst(t *testing.T) {
	bad := tx(0, Buy, "BAD", 1, 1)
	bad.Timestamp = "?"
	a, b, c := tx(0, Buy, "A", 1, 1), tx(2, Buy, "B", 1, 1), tx(2, Buy, "C", 1, 1)
	txs := []Transaction{a, bad, b, c}

	got := NewestFirst(txs)
	var order []string
	for _, tx := range got {
		order = append(order, tx.Instrument)
	}
	assert.Equal(t, []string{"C", "B", "A", "BAD"}, order)
	assert.Equal(t, "A", txs[0].Instrument, "input must not be reordered")
}

func TestServiceRejectsForeignCurrency(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	s, _ := newTestService(t, store, nil)

	_, err := s.Buy(ctx, "alice", "TCS", Q(5), M(200, ""))
	require.NoError(t, err)
	writes := store.writes

	ledger, err := DecodeTransactions(strings.NewReader(`{"date":"2024-01-02 10:00:00","type":"buy","instrument":"INFY","quantity":10,"price":20,"currency":"USD"}
{"date":"2024-02-02 10:00:00","type":"sell","instrument":"INFY","quantity":5,"price":25,"currency":"USD"}
`))
	require.NoError(t, err)
	n, err := s.Import(ctx, "alice", ledger)
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
	assert.ErrorIs(t, err, ErrInvalidTransaction)
	assert.Zero(t, n)

	_, err = s.Buy(ctx, "alice", "INFY", Q(1), M(20, "USD"))
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
	_, err = s.Deposit(ctx, "alice", "SBI", M(1000, "USD"), Bond)
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
	assert.Equal(t, writes, store.writes)

	d, err := s.Dashboard(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, d.TotalValue.Equal(M(1000, "INR")), "TotalValue = %s", d.TotalValue)
}

func TestServiceCurrencyChange(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	inr, _ := newTestService(t, store, nil)
	_, err := inr.Buy(ctx, "alice", "TCS", Q(10), M(100, ""))
	require.NoError(t, err)
	_, err = inr.Sell(ctx, "alice", "TCS", Q(4), M(120, ""))
	require.NoError(t, err)

	// the same store read by a service configured in another currency.
	core, logs := observer.New(zap.WarnLevel)
	usd := NewService(store, nil, Options{Currency: "USD", Logger: zap.New(core).Sugar()})

	_, err = usd.Buy(ctx, "alice", "TCS", Q(1), M(2, ""))
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
	_, err = usd.Sell(ctx, "alice", "TCS", Q(1), M(2, ""))
	assert.ErrorIs(t, err, ErrCurrencyMismatch)

	_, err = usd.Buy(ctx, "alice", "AAPL", Q(2), M(150, ""))
	require.NoError(t, err)

	d, err := usd.Dashboard(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, d.TotalValue.Equal(M(300, "USD")), "TotalValue = %s", d.TotalValue)
	assert.True(t, d.RealizedPnL.IsZero(), "RealizedPnL = %s", d.RealizedPnL)

	sc, err := usd.Score(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, sc.Holdings)
	assert.NotEmpty(t, logs.FilterMessage("ignoring holding").All())
	assert.NotEmpty(t, logs.FilterMessage("skipping transaction").All())
}

func TestServiceImportKeepsDepositClassAndOwners(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	s, _ := newTestService(t, store, nil)

	_, err := s.Buy(ctx, "alice", "TCS", Q(10), M(100, ""))
	require.NoError(t, err)
	_, err = s.Deposit(ctx, "alice", "GOI 2033", M(5000, ""), Bond)
	require.NoError(t, err)

	ledger, err := s.Ledger(ctx, "alice")
	require.NoError(t, err)
	n, err := s.Import(ctx, "bob", ledger)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	hs, err := s.Holdings(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, hs, 2)
	assert.Equal(t, Bond, hs[0].Class)

	imported, err := s.Ledger(ctx, "bob")
	require.NoError(t, err)
	for i := range ledger {
		assert.NotEqual(t, ledger[i].ID, imported[i].ID, "imported records get their own ids")
	}
	assert.Equal(t, Bond, imported[1].Class)
}

// failingStore refuses to record transactions.
type failingStore struct{ *fakeStore }

func (failingStore) AppendTransaction(ctx context.Context, tx Transaction) error {
	return errors.New("disk full")
}

func TestServiceImportRecordsBeforeHoldings(t *testing.T) {
	ctx := context.Background()
	store := failingStore{newFakeStore()}
	s, _ := newTestService(t, store, nil)

	_, err := s.Import(ctx, "bob", []Transaction{tx(0, Buy, "TCS", 10, 100)})
	require.Error(t, err)
	hs, err := s.Holdings(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, hs, "no holding may be written without its ledger")
}
