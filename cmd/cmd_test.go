package cmd

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setup points the commands to a fresh pebble store, without live quotes, and
// captures their output as HTML.
func setup(t *testing.T) {
	t.Helper()
	t.Setenv("FOLIO_STORE", "pebble")
	t.Setenv("FOLIO_STORE_PATH", filepath.Join(t.TempDir(), "db"))
	t.Setenv("FOLIO_QUOTES", "none")
	t.Setenv("FOLIO_CURRENCY", "INR")

	prevOwner, prevHTML, prevOut := *owner, *html, stdout
	*owner, *html = "alice", true
	t.Cleanup(func() { *owner, *html, stdout = prevOwner, prevHTML, prevOut })
}

// run executes the command named name with args and returns its output.
func run(t *testing.T, name string, args ...string) (string, subcommands.ExitStatus) {
	t.Helper()
	var c subcommands.Command
	for _, cmd := range Commands {
		if cmd.Name() == name {
			c = cmd
		}
	}
	require.NotNil(t, c, "unknown command %q", name)

	f := flag.NewFlagSet(name, flag.ContinueOnError)
	c.SetFlags(f)
	require.NoError(t, f.Parse(args))

	var b bytes.Buffer
	stdout = &b
	status := c.Execute(context.Background(), f)
	return b.String(), status
}

func TestTrading(t *testing.T) {
	setup(t)

	out, status := run(t, "buy", "tcs", "10", "100")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "Bought 10 of TCS")

	_, status = run(t, "buy", "TCS", "5", "130")
	require.Equal(t, subcommands.ExitSuccess, status)

	out, status = run(t, "sell", "TCS", "8", "150")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "Sold 8 of TCS")

	// FIFO: 8 from the first lot at 100.
	out, status = run(t, "pnl")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "₹1,200.00") // sale value
	assert.Contains(t, out, "₹800.00")   // cost basis
	assert.Contains(t, out, "+₹400.00")

	// 7 left at the weighted average of 110.
	out, status = run(t, "holdings", "-quote", "TCS=120")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "₹110.00")
	assert.Contains(t, out, "₹840.00")
	assert.Contains(t, out, "+₹70.00")
	assert.NotContains(t, out, "no quote available")

	out, status = run(t, "holdings")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "no quote available")

	out, status = run(t, "transactions", "-head", "1")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "sell")
	assert.NotContains(t, out, "buy")
}

func TestOversellIsRejected(t *testing.T) {
	setup(t)

	_, status := run(t, "buy", "INFY", "2", "1500")
	require.Equal(t, subcommands.ExitSuccess, status)

	_, status = run(t, "sell", "INFY", "3", "1600")
	assert.Equal(t, subcommands.ExitFailure, status)

	out, _ := run(t, "transactions")
	assert.NotContains(t, out, "sell")
}

func TestUsageErrors(t *testing.T) {
	setup(t)

	tests := []struct {
		name string
		args []string
	}{
		{"buy", []string{"TCS", "10"}},
		{"buy", []string{"TCS", "ten", "100"}},
		{"sell", []string{"TCS", "1", "a lot"}},
		{"deposit", []string{"SBI"}},
		{"deposit", []string{"-class", "gold", "SBI", "1000"}},
		{"holdings", []string{"-quote", "TCS"}},
	}
	for _, test := range tests {
		_, status := run(t, test.name, test.args...)
		assert.Equal(t, subcommands.ExitUsageError, status, "%s %v", test.name, test.args)
	}
}

func TestQuoteFlagsArePerRun(t *testing.T) {
	setup(t)
	run(t, "buy", "TCS", "10", "100")

	_, status := run(t, "summary", "-quote", "TCS")
	require.Equal(t, subcommands.ExitUsageError, status)
	_, status = run(t, "holdings", "-quote", "TCS=120")
	require.Equal(t, subcommands.ExitSuccess, status)

	out, status := run(t, "summary")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "1,000.00")
	out, status = run(t, "holdings")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.NotContains(t, out, "1,200.00")
}

func TestDeposit(t *testing.T) {
	setup(t)

	out, status := run(t, "deposit", "-rates")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "HDFC")

	out, status = run(t, "deposit", "SBI fixed deposit", "100000")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "Deposited ₹100,000.00 in SBI-FIXED-DEPOSIT")

	out, status = run(t, "summary")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "₹107,000.00")
}

func TestScoreWithoutHistory(t *testing.T) {
	setup(t)

	out, status := run(t, "score")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "300")
	assert.Contains(t, out, "No History")
}

func TestExportImport(t *testing.T) {
	setup(t)

	run(t, "buy", "TCS", "10", "100")
	run(t, "sell", "TCS", "4", "120")
	ledger := filepath.Join(t.TempDir(), "alice.jsonl")
	_, status := run(t, "export", "-o", ledger)
	require.Equal(t, subcommands.ExitSuccess, status)

	data, err := os.ReadFile(ledger)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "\n"))

	*owner = "bob"
	out, status := run(t, "import", ledger)
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "Imported 2 transactions for bob")

	out, _ = run(t, "holdings", "-quote", "TCS=100")
	assert.Contains(t, out, ">6<")

	_, status = run(t, "import", filepath.Join(t.TempDir(), "missing.jsonl"))
	assert.Equal(t, subcommands.ExitFailure, status)
}

func TestTopic(t *testing.T) {
	setup(t)

	out, status := run(t, "topic")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "real-returns")

	_, status = run(t, "topic", "nope")
	assert.Equal(t, subcommands.ExitFailure, status)
}

func TestCompletion(t *testing.T) {
	global := flag.NewFlagSet("invest", flag.ContinueOnError)
	global.String("owner", "", "")
	global.Bool("html", false, "")
	global.String("env-file", "", "")

	c := Completion(global)
	for _, cmd := range Commands {
		assert.Contains(t, c.Sub, cmd.Name())
	}
	assert.Empty(t, c.Flags["html"].Predict(""))
	assert.Contains(t, c.Sub["holdings"].Flags, "quote")
	assert.ElementsMatch(t, []string{"FD", "Bond"}, c.Sub["deposit"].Flags["class"].Predict(""))
	assert.Contains(t, c.Sub["topic"].Args.Predict(""), "score")
}
