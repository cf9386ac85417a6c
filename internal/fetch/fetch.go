// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch retrieves article records one identifier at a time and
// extracts their abstract and author text. A failure on one record never
// stops the batch; it becomes a placeholder record carrying the error.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/pubmed-miner/pkg/types"
)

const (
	// DefaultDatabase is the Entrez database records are fetched from.
	DefaultDatabase = "pubmed"

	// DefaultRecordTimeout bounds a single record fetch.
	DefaultRecordTimeout = 30 * time.Second
)

var (
	// ErrFetchFailed marks a record whose request failed, timed out or
	// returned a non-success status.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrParseFailed marks a record whose body was not well-formed XML.
	ErrParseFailed = errors.New("parse failed")
)

// FailureKind classifies a per-record failure.
type FailureKind int

const (
	FetchFailed FailureKind = iota + 1
	ParseFailed
)

func (k FailureKind) String() string {
	switch k {
	case FetchFailed:
		return "fetch_failed"
	case ParseFailed:
		return "parse_failed"
	}
	return "unknown"
}

func (k FailureKind) sentinel() error {
	if k == ParseFailed {
		return ErrParseFailed
	}
	return ErrFetchFailed
}

// RecordError is the failure attached to a placeholder record.
type RecordError struct {
	ID   string
	Kind FailureKind
	Err  error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s for %s: %v", e.Kind, e.ID, e.Err)
}

// Unwrap exposes both the kind's sentinel and the underlying cause.
func (e *RecordError) Unwrap() []error {
	return []error{e.Kind.sentinel(), e.Err}
}

// Source returns the raw XML record for one identifier.
type Source interface {
	FetchRecord(ctx context.Context, database, id string) ([]byte, error)
}

// ProgressFunc is called after each record with its 1-based position.
type ProgressFunc func(done, total int, rec types.ExtractedRecord)

// Fetcher runs the sequential fetch-and-extract loop.
type Fetcher struct {
	src      Source
	cfg      types.FetchConfig
	logger   zerolog.Logger
	progress ProgressFunc
}

// New creates a Fetcher reading from src. Zero-valued settings in cfg take
// the package defaults.
func New(src Source, cfg types.FetchConfig, logger zerolog.Logger) *Fetcher {
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.RecordTimeout <= 0 {
		cfg.RecordTimeout = DefaultRecordTimeout
	}
	return &Fetcher{src: src, cfg: cfg, logger: logger}
}

// OnProgress registers fn to be called after every record.
func (f *Fetcher) OnProgress(fn ProgressFunc) {
	f.progress = fn
}

// FetchAll fetches and extracts every identifier in order and returns
// exactly one record per identifier. Per-record failures become
// placeholder records. If ctx is cancelled the run stops and only the
// context error is returned.
func (f *Fetcher) FetchAll(ctx context.Context, ids types.IdentifierList) ([]types.ExtractedRecord, error) {
	records := make([]types.ExtractedRecord, 0, len(ids))
	total := len(ids)
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		rec := f.fetchOne(ctx, id)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records = append(records, rec)

		ev := f.logger.Info()
		if rec.Failed() {
			ev = f.logger.Warn().Err(rec.Failure)
		}
		ev.Int("index", i+1).
			Int("total", total).
			Str("id", id).
			Dur("elapsed", time.Since(start)).
			Msg("record processed")

		if f.progress != nil {
			f.progress(i+1, total, rec)
		}
	}
	return records, nil
}

func (f *Fetcher) fetchOne(ctx context.Context, id string) types.ExtractedRecord {
	rctx, cancel := context.WithTimeout(ctx, f.cfg.RecordTimeout)
	defer cancel()

	body, err := f.src.FetchRecord(rctx, f.cfg.Database, id)
	if err != nil {
		return placeholder(id, FetchFailed, err)
	}
	rec, err := extract(id, bytes.NewReader(body))
	if err != nil {
		return placeholder(id, ParseFailed, err)
	}
	return rec
}

func placeholder(id string, kind FailureKind, err error) types.ExtractedRecord {
	return types.ExtractedRecord{
		Identifier: id,
		Failure:    &RecordError{ID: id, Kind: kind, Err: err},
	}
}

// Summary counts the outcomes of a fetch run.
type Summary struct {
	Fetched    int
	NoAbstract int
	Failed     int
}

// Summarize tallies records.
func Summarize(records []types.ExtractedRecord) Summary {
	var s Summary
	for _, r := range records {
		switch {
		case r.Failed():
			s.Failed++
		case !r.HasAbstract():
			s.Fetched++
			s.NoAbstract++
		default:
			s.Fetched++
		}
	}
	return s
}

// Total returns the number of records processed.
func (s Summary) Total() int {
	return s.Fetched + s.Failed
}

// HasFailures reports whether any record failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

func (s Summary) String() string {
	return fmt.Sprintf("%d fetched (%d without abstract), %d failed (total: %d)",
		s.Fetched, s.NoAbstract, s.Failed, s.Total())
}
