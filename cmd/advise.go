package cmd

import (
	"context"
	"errors"
	"flag"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/etnz/folio/advisor"
)

// adviseCmd is the subcommand for the AI advisor.
type adviseCmd struct {
	interactive bool
}

func (*adviseCmd) Name() string     { return "advise" }
func (*adviseCmd) Synopsis() string { return "ask an AI advisor about the portfolio" }
func (*adviseCmd) Usage() string {
	return `invest advise [-i] [<question>]

  Asks Gemini to comment on the owner's score and holdings. Without a question
  it explains the score. -i keeps the conversation open. Requires GEMINI_API_KEY.
`
}

func (c *adviseCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.interactive, "i", false, "Start an interactive session")
}

func (c *adviseCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	question := strings.Join(f.Args(), " ")
	if question == "" && !c.interactive {
		question = "Explain my investor score and how I could improve it."
	}

	ctx, s, err := open(ctx, nil)
	if err != nil {
		return fail("Error opening portfolio", err)
	}
	defer s.Close()

	if s.cfg.GeminiAPIKey == "" {
		return fail("Error", errors.New("GEMINI_API_KEY is not set"))
	}
	client, err := advisor.NewClient(ctx, s.cfg.GeminiAPIKey)
	if err != nil {
		return fail("Error initializing Gemini's client", err)
	}

	model := s.cfg.GeminiModel
	a := advisor.New(stdout, os.Stdin, model,
		advisor.NewAnalyst(model, s.Service, *owner),
		advisor.NewTrader(model),
	)
	if err := a.Run(ctx, client, c.interactive, question); err != nil {
		return fail("Advisor failed", err)
	}
	return subcommands.ExitSuccess
}
