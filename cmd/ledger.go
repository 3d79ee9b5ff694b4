package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"github.com/etnz/folio"
)

type importCmd struct{}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import a JSONL ledger" }
func (*importCmd) Usage() string {
	return `invest import [<file>]

  Appends the transactions of a JSONL ledger (stdin when no file is given) to
  the owner and rebuilds the holdings they touch. Nothing is written when a
  transaction is invalid.
`
}
func (*importCmd) SetFlags(f *flag.FlagSet) {}

func (*importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var r io.Reader = os.Stdin
	if f.NArg() > 0 {
		file, err := os.Open(f.Arg(0))
		if err != nil {
			return fail("Error opening ledger", err)
		}
		defer file.Close()
		r = file
	}
	txs, err := folio.DecodeTransactions(r)
	if err != nil {
		return fail("Error decoding ledger", err)
	}

	ctx, s, err := open(ctx, nil)
	if err != nil {
		return fail("Error opening portfolio", err)
	}
	defer s.Close()

	n, err := s.Import(ctx, *owner, txs)
	if err != nil {
		return fail("Error importing ledger", err)
	}
	fmt.Fprintf(stdout, "Imported %d transactions for %s\n", n, *owner)
	return subcommands.ExitSuccess
}

type exportCmd struct {
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the ledger as JSONL" }
func (*exportCmd) Usage() string {
	return `invest export [-o <file>]

  Writes the owner's transactions in the order they were recorded, one JSON object per line.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Output file, stdout when empty")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx, s, err := open(ctx, nil)
	if err != nil {
		return fail("Error opening portfolio", err)
	}
	defer s.Close()

	txs, err := s.Ledger(ctx, *owner)
	if err != nil {
		return fail("Error loading transactions", err)
	}

	w := stdout
	if c.output != "" {
		file, err := os.Create(c.output)
		if err != nil {
			return fail("Error creating output", err)
		}
		defer file.Close()
		w = file
	}
	if err := folio.EncodeTransactions(w, txs); err != nil {
		return fail("Error writing ledger", err)
	}
	return subcommands.ExitSuccess
}
