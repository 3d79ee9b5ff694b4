// Package folio is a portfolio accounting engine. It turns an owner's
// transaction ledger and current market prices into cost basis correct profit
// and loss figures and a behavioural investor score.
//
// The core functionalities include:
//   - Ledger Replay: FIFO lot matching of every sell against earlier buys and
//     deposits, producing realized events (Replay).
//   - Holding Aggregation: incremental update of the holdings snapshot with a
//     quantity weighted average cost (ApplyBuy, ApplySell, ApplyDeposit).
//   - Valuation: current value, unrealized profit and asset allocation, with a
//     fallback to the average cost when no quote is available (Valuate).
//   - Real Returns: realized profit discounted by compounding inflation over
//     the holding period of every matched lot (RealReturns).
//   - Investor Score: a bounded composite of diversification, profitability
//     and discipline (Score).
//
// Every computation is a pure function of its inputs and keeps amounts exact;
// rounding only happens when values are printed. Service wires the engine to a
// Store and a QuoteSource and serves the `invest` command-line tool.
package folio
