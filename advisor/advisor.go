// Package advisor is an AI assistant commenting an owner's portfolio with Gemini.
//
// A facilitator model answers the user. It consults an analyst that reads the
// folio reports through function calls, and a trader grounded on Google Search.
package advisor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// Agent is the AI assistant that handles the chat session.
type Agent struct {
	w           io.Writer
	r           *bufio.Reader
	Facilitator *Expert
	Experts     []*Expert
}

// New creates a new Agent writing to w and reading the user from r.
func New(w io.Writer, r io.Reader, model string, experts ...*Expert) *Agent {
	return &Agent{
		w:           w,
		r:           bufio.NewReader(r),
		Experts:     experts,
		Facilitator: newFacilitator(model, experts...),
	}
}

// NewClient returns a Gemini API client.
func NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
}

func (a *Agent) Start(ctx context.Context, client *genai.Client) error {
	for _, e := range a.Experts {
		if err := e.Start(ctx, client); err != nil {
			return err
		}
	}
	return a.Facilitator.Start(ctx, client)
}

const prompt = "advise> "

// Run starts the interactive session. prompts are asked first, as if typed by
// the user; when interactive is false the session ends after them.
func (a *Agent) Run(ctx context.Context, client *genai.Client, interactive bool, prompts ...string) error {
	if a.Facilitator.chat == nil {
		if err := a.Start(ctx, client); err != nil {
			return err
		}
	}

	if interactive {
		fmt.Fprintln(a.w, "Welcome to folio advise. Type 'bye' to exit.")
	}

	for {
		var input string
		if len(prompts) > 0 {
			input, prompts = strings.TrimSpace(prompts[0]), prompts[1:]
			if input == "" {
				continue
			}
			if interactive {
				fmt.Fprint(a.w, prompt)
				fmt.Fprintln(a.w, input)
			}
		} else {
			if !interactive {
				return nil
			}
			fmt.Fprint(a.w, prompt)
			var err error
			input, err = a.r.ReadString('\n')
			if err != nil {
				if err == io.EOF {
					return nil // Clean exit on Ctrl+D
				}
				return err
			}
		}

		if strings.TrimSpace(input) == "bye" {
			return nil
		}

		content, err := a.Facilitator.Ask(ctx, &genai.Part{Text: input})
		if err != nil {
			return err
		}
		fmt.Fprintln(a.w, text(content))
	}
}

func newFacilitator(model string, experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You advise an individual investor about their portfolio of Indian equities,
			bonds and fixed deposits.

			The experts listed in your Tools are dedicated to you and keep the context of
			your previous questions. Ask the Analyst for any figure about the portfolio
			before commenting it, never guess amounts.

			Explain the investor score factors (diversification, profitability, discipline)
			and what would improve them. Keep answers short and in markdown.
			`}}},
		},
		Library: NewLibrary(experts),
	}
}

// NewTrader returns an expert grounded on Google Search for market news.
func NewTrader(model string) *Expert {
	return &Expert{
		Name: "Trader",
		Description: `This is an expert trader, aware of the Indian markets, listed companies,
		bonds and bank deposits. Ask the Trader whenever you need recent or grounding information.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are an expert in trading. You leverage Google Search to ground your
			assertions and relate the latest news to the question.
			`}}},
		},
	}
}

// NewAnalyst returns an expert reading the reports of owner from p.
func NewAnalyst(model string, p Portfolio, owner string) *Expert {
	lib := Reports(p, owner)
	return &Expert{
		Name: "Analyst",
		Description: `This is the Analyst. It reads the investor's portfolio: holdings, summary,
		realized and inflation adjusted returns, investor score and transactions.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are the analyst of the investor's portfolio. Use the Tools to read the
			reports and answer with the exact figures they contain.
			`}}},
		},
		Library: NewLibrary(lib),
	}
}
