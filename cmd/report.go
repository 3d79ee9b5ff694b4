package cmd

import (
	"context"
	"flag"
	"strings"

	"github.com/google/subcommands"

	"github.com/etnz/folio/quote"
	"github.com/etnz/folio/renderer"
)

// renderFunc computes a report of the current owner as markdown.
type renderFunc func(ctx context.Context, s *session) (string, error)

// report opens a session, renders a report and prints it.
func report(ctx context.Context, overrides quote.Static, render renderFunc) subcommands.ExitStatus {
	ctx, s, err := open(ctx, overrides)
	if err != nil {
		return fail("Error opening portfolio", err)
	}
	defer s.Close()

	md, err := render(ctx, s)
	if err != nil {
		return fail("Error computing report", err)
	}
	printMarkdown(md)
	return subcommands.ExitSuccess
}

// quoteFlags collects repeated -quote SYMBOL=PRICE flags.
type quoteFlags []string

func (q *quoteFlags) String() string     { return strings.Join(*q, ",") }
func (q *quoteFlags) Set(v string) error { *q = append(*q, v); return nil }

// register binds the flag to f, dropping values left by a previous parse.
func (q *quoteFlags) register(f *flag.FlagSet) {
	*q = nil
	f.Var(q, "quote", "Use this price instead of the live quote, as SYMBOL=PRICE. Repeatable.")
}

// holdingsCmd holds the flags for the 'holdings' subcommand.
type holdingsCmd struct {
	quotes quoteFlags
}

func (*holdingsCmd) Name() string     { return "holdings" }
func (*holdingsCmd) Synopsis() string { return "display current holdings at market value" }
func (*holdingsCmd) Usage() string {
	return `invest holdings [-quote SYMBOL=PRICE]...

  Displays the holdings valued with the latest quotes. Holdings without a quote
  are valued at their average cost and marked with a star.
`
}

func (c *holdingsCmd) SetFlags(f *flag.FlagSet) {
	c.quotes.register(f)
}

func (c *holdingsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	overrides, err := quote.ParseStatic(c.quotes)
	if err != nil {
		fail("Error parsing quotes", err)
		return subcommands.ExitUsageError
	}
	return report(ctx, overrides, func(ctx context.Context, s *session) (string, error) {
		v, err := s.Valuation(ctx, *owner)
		if err != nil {
			return "", err
		}
		return renderer.RenderHoldings(*owner, v), nil
	})
}

// summaryCmd holds the flags for the 'summary' subcommand.
type summaryCmd struct {
	quotes quoteFlags
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the portfolio dashboard" }
func (*summaryCmd) Usage() string {
	return `invest summary [-quote SYMBOL=PRICE]...

  Displays total value, invested amount, profit and allocation.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	c.quotes.register(f)
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	overrides, err := quote.ParseStatic(c.quotes)
	if err != nil {
		fail("Error parsing quotes", err)
		return subcommands.ExitUsageError
	}
	return report(ctx, overrides, func(ctx context.Context, s *session) (string, error) {
		d, err := s.Dashboard(ctx, *owner)
		if err != nil {
			return "", err
		}
		return renderer.RenderDashboard(*owner, d), nil
	})
}

type pnlCmd struct{}

func (*pnlCmd) Name() string     { return "pnl" }
func (*pnlCmd) Synopsis() string { return "display realized profit per instrument" }
func (*pnlCmd) Usage() string {
	return `invest pnl

  Displays sale value, FIFO cost basis and realized profit of every instrument
  that has been sold.
`
}
func (*pnlCmd) SetFlags(f *flag.FlagSet) {}

func (*pnlCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return report(ctx, nil, func(ctx context.Context, s *session) (string, error) {
		st, err := s.PnL(ctx, *owner)
		if err != nil {
			return "", err
		}
		return renderer.PnLMarkdown(st), nil
	})
}

type realReturnsCmd struct{}

func (*realReturnsCmd) Name() string     { return "real-returns" }
func (*realReturnsCmd) Synopsis() string { return "display inflation adjusted realized profit" }
func (*realReturnsCmd) Usage() string {
	return `invest real-returns

  Displays nominal profit, inflation adjustment and real profit of every
  instrument that has been sold. The rate is INFLATION_RATE.
`
}
func (*realReturnsCmd) SetFlags(f *flag.FlagSet) {}

func (*realReturnsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return report(ctx, nil, func(ctx context.Context, s *session) (string, error) {
		st, err := s.RealReturns(ctx, *owner)
		if err != nil {
			return "", err
		}
		return renderer.RealReturnsMarkdown(st), nil
	})
}

type scoreCmd struct{}

func (*scoreCmd) Name() string     { return "score" }
func (*scoreCmd) Synopsis() string { return "display the investor score" }
func (*scoreCmd) Usage() string {
	return `invest score

  Displays the investor score, between 300 and 900, and its factors.
`
}
func (*scoreCmd) SetFlags(f *flag.FlagSet) {}

func (*scoreCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return report(ctx, nil, func(ctx context.Context, s *session) (string, error) {
		sc, err := s.Score(ctx, *owner)
		if err != nil {
			return "", err
		}
		return renderer.RenderScore(*owner, sc), nil
	})
}

type transactionsCmd struct {
	head int
}

func (*transactionsCmd) Name() string     { return "transactions" }
func (*transactionsCmd) Synopsis() string { return "list transactions, newest first" }
func (*transactionsCmd) Usage() string {
	return `invest transactions [-head <n>]

  Lists the owner's transactions, newest first.
`
}

func (c *transactionsCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.head, "head", 0, "Show only the N most recent transactions.")
}

func (c *transactionsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return report(ctx, nil, func(ctx context.Context, s *session) (string, error) {
		txs, err := s.Transactions(ctx, *owner)
		if err != nil {
			return "", err
		}
		if c.head > 0 && len(txs) > c.head {
			txs = txs[:c.head]
		}
		return renderer.TransactionsMarkdown(txs), nil
	})
}
