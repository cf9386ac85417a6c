// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search turns a keyword query into an ordered list of PubMed
// identifiers and records that list on disk for provenance.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/pubmed-miner/pkg/types"
)

var (
	// ErrInvalidQuery is returned, without contacting the service, when the
	// query breaks an invariant (empty term, half a date range, cap <= 0).
	ErrInvalidQuery = errors.New("invalid query")

	// ErrSearchFailed wraps any error from the remote search.
	ErrSearchFailed = errors.New("search failed")

	// ErrNoMatches accompanies an empty identifier list. It is not fatal;
	// the caller decides whether to ask for a new query.
	ErrNoMatches = errors.New("no identifiers matched the search term")
)

// Searcher is the remote search capability: term and bounds in, ranked
// identifiers out.
type Searcher interface {
	Search(ctx context.Context, q types.SearchQuery) ([]string, error)
}

// Options controls the side effects of Search.
type Options struct {
	// OutputDir is the directory for the provenance file ("" means ".").
	OutputDir string

	// Logger receives the provenance outcome and the no-match notice.
	Logger zerolog.Logger
}

// Search validates q, runs it against s, and returns at most q.MaxRecords
// identifiers. The list is written to a provenance file on every successful
// call, including when it is empty; a failed write is logged and otherwise
// ignored. An empty result returns an empty list together with ErrNoMatches.
func Search(ctx context.Context, s Searcher, q types.SearchQuery, opts Options) (types.IdentifierList, error) {
	q.Term = strings.TrimSpace(q.Term)
	if err := Validate(q); err != nil {
		return nil, err
	}

	ids, err := s.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSearchFailed, err)
	}

	list := make(types.IdentifierList, 0, len(ids))
	list = append(list, ids...)
	if len(list) > q.MaxRecords {
		list = list[:q.MaxRecords]
	}

	path := ProvenancePath(opts.OutputDir, q.Term)
	if err := WriteProvenance(path, list); err != nil {
		opts.Logger.Warn().Err(err).Str("path", path).Msg("provenance file not written")
	} else {
		opts.Logger.Debug().Str("path", path).Int("ids", len(list)).Msg("provenance file written")
	}

	if len(list) == 0 {
		opts.Logger.Info().Str("term", q.Term).Msg("no PMIDs matching search term")
		return list, ErrNoMatches
	}
	return list, nil
}
