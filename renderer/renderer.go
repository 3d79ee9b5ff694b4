// Package renderer renders folio reports as markdown.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/etnz/folio"
)

//go:embed templates/*.md
var templates embed.FS

// RenderHoldings renders the valued holdings of owner.
func RenderHoldings(owner string, v folio.Valuation) string {
	partials := map[string]string{
		"allocation": "templates/allocation.md",
	}
	return renderTemplate("holdings", "templates/holdings.md", partials, struct {
		Owner string
		folio.Valuation
	}{owner, v})
}

// RenderDashboard renders the portfolio summary of owner.
func RenderDashboard(owner string, d folio.Dashboard) string {
	partials := map[string]string{
		"allocation": "templates/allocation.md",
	}
	return renderTemplate("dashboard", "templates/dashboard.md", partials, struct {
		Owner string
		folio.Dashboard
	}{owner, d})
}

// RenderScore renders the investor score of owner.
func RenderScore(owner string, s folio.ScoreReport) string {
	return renderTemplate("score", "templates/score.md", nil, struct {
		Owner string
		Max   int
		folio.ScoreReport
	}{owner, folio.ScoreMax, s})
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		content, err := fs.ReadFile(templates, file)
		if err != nil {
			return fmt.Sprintf("error reading partial template %q: %v", file, err)
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
