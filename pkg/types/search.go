// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the pubmed-miner pipeline:
// the search query, the identifier list it produces, the per-article
// extraction result, and the configuration for each stage.
package types

import "time"

// DateLayout is the publication date format accepted by E-utilities
// (mindate/maxdate) and by the CLI date flags.
const DateLayout = "2006/01/02"

// SearchQuery holds the parameters of one identifier search.
// MinDate and MaxDate bound the publication date and are sent only as a pair.
type SearchQuery struct {
	// Term is the keyword query passed to esearch unchanged.
	Term string `json:"term" yaml:"term" validate:"required"`

	// MinDate is the earliest publication date (zero means unbounded).
	MinDate time.Time `json:"min_date" yaml:"min_date" validate:"required_with=MaxDate"`

	// MaxDate is the latest publication date (zero means unbounded).
	MaxDate time.Time `json:"max_date" yaml:"max_date" validate:"required_with=MinDate,gtefield=MinDate"`

	// MaxRecords caps the number of identifiers returned.
	MaxRecords int `json:"max_records" yaml:"max_records" validate:"gt=0"`

	// Database is the Entrez database to search (e.g. "pubmed").
	Database string `json:"database" yaml:"database" validate:"required"`
}

// HasDateRange reports whether both date bounds are set.
func (q SearchQuery) HasDateRange() bool {
	return !q.MinDate.IsZero() && !q.MaxDate.IsZero()
}

// IdentifierList is the ordered list of accession identifiers returned by a
// search. An empty list is a valid result meaning nothing matched.
type IdentifierList []string
