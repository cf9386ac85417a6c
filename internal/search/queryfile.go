// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pubmed-miner/pkg/types"
)

// QueryFile is the on-disk record of a search: the query that ran and the
// identifiers it returned. A later fetch can start from it without
// re-querying the service.
type QueryFile struct {
	Query   QueryParams  `yaml:"query"`
	IDs     []string     `yaml:"ids"`
	Summary QuerySummary `yaml:"summary"`
}

// QueryParams stores the query parameters in a serializable form.
type QueryParams struct {
	Term       string `yaml:"term"`
	MinDate    string `yaml:"min_date,omitempty"`
	MaxDate    string `yaml:"max_date,omitempty"`
	MaxRecords int    `yaml:"max_records"`
	Database   string `yaml:"database"`
}

// QuerySummary stores the result count and when the search ran.
type QuerySummary struct {
	Total     int       `yaml:"total"`
	Timestamp time.Time `yaml:"timestamp"`
}

// WriteQueryFile saves q and ids to a YAML file at path.
func WriteQueryFile(path string, q types.SearchQuery, ids types.IdentifierList) error {
	qf := QueryFile{
		Query: QueryParams{
			Term:       q.Term,
			MaxRecords: q.MaxRecords,
			Database:   q.Database,
		},
		IDs: ids,
		Summary: QuerySummary{
			Total:     len(ids),
			Timestamp: time.Now().UTC(),
		},
	}
	if qf.IDs == nil {
		qf.IDs = []string{}
	}
	if q.HasDateRange() {
		qf.Query.MinDate = q.MinDate.Format(types.DateLayout)
		qf.Query.MaxDate = q.MaxDate.Format(types.DateLayout)
	}

	data, err := yaml.Marshal(&qf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadQueryFile loads a previously saved query file from disk.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}
	return &qf, nil
}

// Identifiers returns the stored identifier list.
func (qf *QueryFile) Identifiers() types.IdentifierList {
	return types.IdentifierList(qf.IDs)
}

// ToQuery converts stored QueryParams back into a SearchQuery.
func (p QueryParams) ToQuery() (types.SearchQuery, error) {
	minDate, maxDate, err := ParseDateRange(p.MinDate, p.MaxDate)
	if err != nil {
		return types.SearchQuery{}, err
	}
	return types.SearchQuery{
		Term:       p.Term,
		MinDate:    minDate,
		MaxDate:    maxDate,
		MaxRecords: p.MaxRecords,
		Database:   p.Database,
	}, nil
}
