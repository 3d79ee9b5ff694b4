package advisor

import (
	"context"

	"google.golang.org/genai"

	"github.com/etnz/folio"
	"github.com/etnz/folio/renderer"
)

// Portfolio gives access to the reports of an owner. *folio.Service implements it.
type Portfolio interface {
	Valuation(ctx context.Context, owner string) (folio.Valuation, error)
	Dashboard(ctx context.Context, owner string) (folio.Dashboard, error)
	PnL(ctx context.Context, owner string) (folio.PnLStatement, error)
	RealReturns(ctx context.Context, owner string) (folio.RealReturnStatement, error)
	Score(ctx context.Context, owner string) (folio.ScoreReport, error)
	Transactions(ctx context.Context, owner string) ([]folio.Transaction, error)
}

// report declares a function without parameters returning a markdown report.
func report(name, description string, render func(ctx context.Context) (string, error)) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        name,
			Description: description,
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown report.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			out, err := render(ctx)
			if err != nil {
				return failure(id, name, err)
			}
			return output(id, name, out)
		},
	}
}

// Reports returns the report functions of owner.
func Reports(p Portfolio, owner string) []*Func {
	return []*Func{
		report("Holdings", "Holdings with quantity, average cost, current price, value, unrealized profit and asset allocation.",
			func(ctx context.Context) (string, error) {
				v, err := p.Valuation(ctx, owner)
				return renderer.RenderHoldings(owner, v), err
			}),
		report("Summary", "Total value, amount invested, unrealized, realized and total profit, and asset allocation.",
			func(ctx context.Context) (string, error) {
				d, err := p.Dashboard(ctx, owner)
				return renderer.RenderDashboard(owner, d), err
			}),
		report("RealizedPnL", "Realized profit per instrument sold, matching sales against the oldest purchases first.",
			func(ctx context.Context) (string, error) {
				s, err := p.PnL(ctx, owner)
				return renderer.PnLMarkdown(s), err
			}),
		report("RealReturns", "Realized profit per instrument once discounted by inflation over the holding period.",
			func(ctx context.Context) (string, error) {
				s, err := p.RealReturns(ctx, owner)
				return renderer.RealReturnsMarkdown(s), err
			}),
		report("Score", "Investor score between 300 and 900 with its diversification, profitability and discipline breakdown.",
			func(ctx context.Context) (string, error) {
				s, err := p.Score(ctx, owner)
				return renderer.RenderScore(owner, s), err
			}),
		report("Transactions", "Every transaction, newest first.",
			func(ctx context.Context) (string, error) {
				txs, err := p.Transactions(ctx, owner)
				return renderer.TransactionsMarkdown(txs), err
			}),
	}
}
