// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus collects extracted records into three index-aligned
// columns and writes them out as a table.
package corpus

import "github.com/pdiddy/pubmed-miner/pkg/types"

// Corpus holds the abstract, identifier and author columns. The three
// slices always have the same length and share the input order.
type Corpus struct {
	Abstracts   []string
	Identifiers []string
	Authors     []string
}

// Row is one line of the output table.
type Row struct {
	Abstract string `json:"abstract" yaml:"abstract"`
	DOIS     string `json:"dois" yaml:"dois"`
	Authors  string `json:"authors" yaml:"authors"`
}

// Assemble builds a corpus from records, in order. Placeholder records for
// failed fetches contribute their identifier with empty text.
func Assemble(records []types.ExtractedRecord) *Corpus {
	c := &Corpus{
		Abstracts:   make([]string, 0, len(records)),
		Identifiers: make([]string, 0, len(records)),
		Authors:     make([]string, 0, len(records)),
	}
	for _, r := range records {
		c.Append(r)
	}
	return c
}

// Append adds one record to the end of every column.
func (c *Corpus) Append(r types.ExtractedRecord) {
	c.Abstracts = append(c.Abstracts, r.AbstractText)
	c.Identifiers = append(c.Identifiers, r.Identifier)
	c.Authors = append(c.Authors, r.AuthorText)
}

// Len returns the number of rows.
func (c *Corpus) Len() int {
	return len(c.Identifiers)
}

// Rows returns the corpus as table rows.
func (c *Corpus) Rows() []Row {
	rows := make([]Row, c.Len())
	for i := range rows {
		rows[i] = Row{
			Abstract: c.Abstracts[i],
			DOIS:     c.Identifiers[i],
			Authors:  c.Authors[i],
		}
	}
	return rows
}

func fromRows(rows []Row) *Corpus {
	c := &Corpus{
		Abstracts:   make([]string, 0, len(rows)),
		Identifiers: make([]string, 0, len(rows)),
		Authors:     make([]string, 0, len(rows)),
	}
	for _, r := range rows {
		c.Abstracts = append(c.Abstracts, r.Abstract)
		c.Identifiers = append(c.Identifiers, r.DOIS)
		c.Authors = append(c.Authors, r.Authors)
	}
	return c
}
