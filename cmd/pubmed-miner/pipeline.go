// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/pubmed-miner/internal/corpus"
	"github.com/pdiddy/pubmed-miner/internal/entrez"
	"github.com/pdiddy/pubmed-miner/internal/fetch"
	"github.com/pdiddy/pubmed-miner/internal/observability"
	"github.com/pdiddy/pubmed-miner/internal/search"
	"github.com/pdiddy/pubmed-miner/internal/session"
	"github.com/pdiddy/pubmed-miner/pkg/types"
)

// pipeline runs the search, fetch and export stages against NCBI. The
// contact email arrives with each call; one Entrez client (and so one
// request pacer) is kept per contact.
type pipeline struct {
	cfg    types.Config
	logger zerolog.Logger
	out    io.Writer
	http   *http.Client

	contact string
	client  *entrez.Client
}

var _ session.Runner = (*pipeline)(nil)

func newPipeline(c types.Config, logger zerolog.Logger, out io.Writer) *pipeline {
	return &pipeline{cfg: c, logger: logger, out: out}
}

func (p *pipeline) clientFor(contact string) *entrez.Client {
	if p.client == nil || p.contact != contact {
		ec := p.cfg.Entrez
		ec.Email = contact
		p.client = entrez.New(ec, p.http)
		p.contact = contact
	}
	return p.client
}

// Search runs the identifier search and writes the provenance file.
func (p *pipeline) Search(ctx context.Context, contact string, q types.SearchQuery) (types.IdentifierList, error) {
	return search.Search(ctx, p.clientFor(contact), q, search.Options{
		OutputDir: p.cfg.Search.OutputDir,
		Logger:    p.logger,
	})
}

// Fetch retrieves and extracts every record, printing one progress line
// per article and a summary at the end.
func (p *pipeline) Fetch(ctx context.Context, contact string, ids types.IdentifierList) ([]types.ExtractedRecord, error) {
	f := fetch.New(p.clientFor(contact), p.cfg.Fetch, p.logger)
	last := time.Now()
	f.OnProgress(func(done, total int, rec types.ExtractedRecord) {
		status := "Downloaded"
		if rec.Failed() {
			status = "Failed"
		}
		fmt.Fprintf(p.out, "%s article %d/%d (%s) in %.2fs\n",
			status, done, total, rec.Identifier, time.Since(last).Seconds())
		last = time.Now()
	})

	records, err := f.FetchAll(ctx, ids)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(p.out, "\nFetch summary: %s\n", fetch.Summarize(records))
	return records, nil
}

// Export writes the corpus in the configured format and, when archiving
// is enabled, saves the run to the SQLite archive.
func (p *pipeline) Export(ctx context.Context, term string, records []types.ExtractedRecord, filename string) (string, error) {
	path, err := corpus.Export(corpus.Assemble(records), filename, p.cfg.Export.Format)
	if err != nil {
		return "", err
	}
	p.logger.Info().Str("path", path).Int("rows", len(records)).Msg("corpus exported")

	if p.cfg.Export.Archive {
		run, err := p.archive(ctx, term, records)
		if err != nil {
			p.logger.Warn().Err(err).Msg("run not archived")
		} else {
			runLogger := observability.WithRunContext(p.logger, term, run.ID)
			runLogger.Info().Msg("run archived")
		}
	}
	return path, nil
}

func (p *pipeline) archive(ctx context.Context, term string, records []types.ExtractedRecord) (corpus.Run, error) {
	store, err := corpus.NewStore(p.cfg.Export.DBPath)
	if err != nil {
		return corpus.Run{}, err
	}
	defer store.Close()
	return store.SaveRun(ctx, term, records)
}
