package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/etnz/folio"
	"github.com/etnz/folio/renderer"
)

// tradeArgs parses the "<symbol> <quantity> <price>" arguments of buy and sell.
func tradeArgs(f *flag.FlagSet) (symbol string, quantity folio.Quantity, price folio.Money, err error) {
	if f.NArg() != 3 {
		return "", folio.Quantity{}, folio.Money{}, fmt.Errorf("want <symbol> <quantity> <price>, got %d arguments", f.NArg())
	}
	symbol = f.Arg(0)
	if quantity, err = folio.ParseQuantity(f.Arg(1)); err != nil {
		return
	}
	price, err = folio.ParseMoney(f.Arg(2), "")
	return
}

// tradeFunc is (*folio.Service).Buy or (*folio.Service).Sell.
type tradeFunc func(*folio.Service, context.Context, string, string, folio.Quantity, folio.Money) (folio.Transaction, error)

// trade runs a buy or a sell and prints the recorded transaction.
func trade(ctx context.Context, f *flag.FlagSet, do tradeFunc) subcommands.ExitStatus {
	symbol, quantity, price, err := tradeArgs(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	ctx, s, err := open(ctx, nil)
	if err != nil {
		return fail("Error opening portfolio", err)
	}
	defer s.Close()

	tx, err := do(s.Service, ctx, *owner, symbol, quantity, price)
	if err != nil {
		return fail("Error recording transaction", err)
	}
	fmt.Fprintln(stdout, renderer.Transaction(tx))
	return subcommands.ExitSuccess
}

type buyCmd struct{}

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "record a purchase of shares" }
func (*buyCmd) Usage() string {
	return `invest buy <symbol> <quantity> <price>

  Records a purchase and averages its price into the holding.
`
}
func (*buyCmd) SetFlags(f *flag.FlagSet) {}

func (*buyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return trade(ctx, f, (*folio.Service).Buy)
}

type sellCmd struct{}

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "record a sale of shares" }
func (*sellCmd) Usage() string {
	return `invest sell <symbol> <quantity> <price>

  Records a sale. Selling more than the holding is rejected.
`
}
func (*sellCmd) SetFlags(f *flag.FlagSet) {}

func (*sellCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return trade(ctx, f, (*folio.Service).Sell)
}

type depositCmd struct {
	class string
	rates bool
}

func (*depositCmd) Name() string     { return "deposit" }
func (*depositCmd) Synopsis() string { return "record a fixed deposit or a bond" }
func (*depositCmd) Usage() string {
	return `invest deposit [-class FD|Bond] <instrument> <principal>
invest deposit -rates

  Records a fixed deposit or a bond. -rates lists indicative deposit rates.
`
}

func (c *depositCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.class, "class", "FD", "Asset class: FD or Bond")
	f.BoolVar(&c.rates, "rates", false, "List indicative fixed deposit rates and exit")
}

func (c *depositCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.rates {
		printMarkdown(renderer.FixedDepositRatesMarkdown(folio.FixedDepositRates()))
		return subcommands.ExitSuccess
	}
	if f.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Error: want <instrument> <principal>")
		return subcommands.ExitUsageError
	}
	class, err := folio.ParseAssetClass(c.class)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	principal, err := folio.ParseMoney(f.Arg(1), "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	ctx, s, err := open(ctx, nil)
	if err != nil {
		return fail("Error opening portfolio", err)
	}
	defer s.Close()

	tx, err := s.Deposit(ctx, *owner, f.Arg(0), principal, class)
	if err != nil {
		return fail("Error recording deposit", err)
	}
	fmt.Fprintln(stdout, renderer.Transaction(tx))
	return subcommands.ExitSuccess
}
