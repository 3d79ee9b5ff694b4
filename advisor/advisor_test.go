package advisor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"google.golang.org/genai"

	"github.com/etnz/folio"
	"github.com/etnz/folio/store"
)

func TestReports(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	svc := folio.NewService(new(store.Memory), nil, folio.Options{Now: func() time.Time { return at }})
	if _, err := svc.Buy(ctx, "alice", "TCS", folio.Q(5), folio.M(200, "INR")); err != nil {
		t.Fatalf("Buy() error = %v", err)
	}

	lib := NewLibrary(Reports(svc, "alice"))
	tests := []struct {
		name string
		want string
	}{
		{"Holdings", "| TCS* | Equity | 5 |"},
		{"Summary", "| Total Investment | ₹1,000.00 |"},
		{"RealizedPnL", "Nothing sold yet."},
		{"RealReturns", "Nothing sold yet."},
		{"Score", "| Diversification | 20 |"},
		{"Transactions", "| buy | TCS | 5 |"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := lib(ctx, &genai.FunctionCall{ID: "1", Name: tt.name})
			if resp.Name != tt.name || resp.ID != "1" {
				t.Errorf("response = %s/%s, want %s/1", resp.Name, resp.ID, tt.name)
			}
			out, _ := resp.Response["output"].(string)
			if !strings.Contains(out, tt.want) {
				t.Errorf("output does not contain %q:\n%s", tt.want, out)
			}
		})
	}

	resp := lib(ctx, &genai.FunctionCall{ID: "2", Name: "Forecast"})
	if _, ok := resp.Response["error"]; !ok {
		t.Errorf("unknown function response = %v, want an error", resp.Response)
	}
}

// broken fails every report.
type broken struct{ Portfolio }

func (broken) Score(ctx context.Context, owner string) (folio.ScoreReport, error) {
	return folio.ScoreReport{}, errors.New("store offline")
}

func TestReportError(t *testing.T) {
	lib := NewLibrary(Reports(broken{}, "alice"))
	resp := lib(context.Background(), &genai.FunctionCall{ID: "1", Name: "Score"})
	if got := resp.Response["error"]; got != "store offline" {
		t.Errorf("error = %v, want store offline", got)
	}
}

func TestExpertDeclaration(t *testing.T) {
	e := NewAnalyst(DefaultModel, broken{}, "alice")
	d := e.Declaration()
	if d.Name != "Analyst" || d.Parameters.Required[0] != "question" {
		t.Errorf("Declaration() = %+v", d)
	}
	if got := len(e.Config.Tools[0].FunctionDeclarations); got != 6 {
		t.Errorf("analyst declares %d functions, want 6", got)
	}

	resp := e.Call(context.Background(), "1", map[string]any{"question": 42})
	if _, ok := resp.Response["error"]; !ok {
		t.Errorf("Call() with a non string question = %v, want an error", resp.Response)
	}
}
