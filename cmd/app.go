// Package cmd implements the invest command line over a folio Service.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"

	"github.com/etnz/folio"
	"github.com/etnz/folio/config"
	"github.com/etnz/folio/logger"
	"github.com/etnz/folio/quote"
	"github.com/etnz/folio/store"
)

// Commands lists every invest subcommand, in help order.
var Commands = []subcommands.Command{
	&buyCmd{},
	&sellCmd{},
	&depositCmd{},
	&holdingsCmd{},
	&summaryCmd{},
	&pnlCmd{},
	&realReturnsCmd{},
	&scoreCmd{},
	&transactionsCmd{},
	&importCmd{},
	&exportCmd{},
	&adviseCmd{},
	&topicCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	owner   = flag.String("owner", defaultOwner(), "Owner of the portfolio, defaults to $USER")
	envFile = flag.String("env-file", "", "Path to a .env file, ./.env when it exists")
	html    = flag.Bool("html", false, "Print reports as HTML instead of rendering them in the terminal")
)

// stdout receives every report.
var stdout io.Writer = os.Stdout

func defaultOwner() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "default"
}

// session is a Service opened from the configuration, with the resources to
// release once the command is done.
type session struct {
	*folio.Service
	cfg     config.Config
	log     *zap.SugaredLogger
	closers []func() error
}

// open loads the configuration and opens the store and the quote source.
// overrides, when not empty, take precedence over live quotes.
func open(ctx context.Context, overrides quote.Static) (context.Context, *session, error) {
	cfg, err := config.Load(*envFile)
	if err != nil {
		return ctx, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	s := &session{cfg: cfg, log: logger.New(cfg.Env)}
	ctx = logger.WithContext(ctx, s.log)

	st, err := s.openStore(ctx)
	if err != nil {
		s.Close()
		return ctx, nil, err
	}
	quotes, err := s.openQuotes(overrides)
	if err != nil {
		s.Close()
		return ctx, nil, err
	}

	s.Service = folio.NewService(st, quotes, folio.Options{
		Currency:      cfg.Currency,
		InflationRate: cfg.InflationRate,
		GrowthFactor:  cfg.GrowthFactor,
		QuoteTimeout:  cfg.QuoteTimeout,
		Logger:        s.log,
	})
	return ctx, s, nil
}

func (s *session) openStore(ctx context.Context) (folio.Store, error) {
	switch s.cfg.Store {
	case config.StoreMemory:
		return &store.Memory{}, nil
	case config.StorePostgres:
		db, err := store.OpenPostgres(ctx, s.cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, db.Close)
		return db, nil
	default:
		db, err := store.OpenPebble(s.cfg.StorePath)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, db.Close)
		return db, nil
	}
}

// openQuotes chains the overrides, then the cached provider, behind a FanOut.
// It returns nil when there is nothing to ask.
func (s *session) openQuotes(overrides quote.Static) (folio.QuoteSource, error) {
	var chain quote.Overlay
	if len(overrides) > 0 {
		// FanOut asks for exchange listings.
		listed := make(quote.Static, len(overrides))
		for symbol, price := range overrides {
			listed[quote.Normalize(symbol)] = price
		}
		chain = append(chain, listed)
	}

	var provider quote.Fetcher
	switch s.cfg.Quotes {
	case config.QuotesFinnhub:
		provider = &quote.Finnhub{APIKey: s.cfg.FinnhubAPIKey}
	case config.QuotesEODHD:
		provider = &quote.EODHD{APIKey: s.cfg.EODHDAPIKey}
	case config.QuotesYahoo:
		provider = &quote.Yahoo{}
	}
	if provider != nil {
		cached, err := quote.NewCached(provider, s.cfg.QuoteCacheTTL)
		if err != nil {
			return nil, fmt.Errorf("could not create the quote cache: %w", err)
		}
		s.closers = append(s.closers, func() error { cached.Close(); return nil })
		chain = append(chain, cached)
	}

	if len(chain) == 0 {
		return nil, nil
	}
	return &quote.FanOut{
		Fetcher:   chain,
		Limit:     s.cfg.QuoteConcurrency,
		Normalize: quote.Normalize,
		Logger:    s.log,
	}, nil
}

// Close releases the session resources, in reverse order of acquisition.
func (s *session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			s.log.Warnw("close failed", "err", err)
		}
	}
	_ = s.log.Sync()
}

// printMarkdown renders md in the terminal, or as HTML with -html.
func printMarkdown(md string) {
	if *html {
		if err := goldmark.New(goldmark.WithExtensions(extension.Table)).Convert([]byte(md), stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error converting markdown: %v\n", err)
		}
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Fprint(stdout, out)
			return
		}
	}
	// fall back to raw markdown
	fmt.Fprint(stdout, md)
}

// fail prints err and returns the failure status.
func fail(format string, err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, format+": %v\n", err)
	return subcommands.ExitFailure
}
