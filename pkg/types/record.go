// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// NoAbstract is the abstract text recorded for an article whose record has
// no Abstract element.
const NoAbstract = "No Abstract"

// ExtractedRecord is the abstract and author text pulled from one article
// record. A record is produced for every identifier, including ones whose
// fetch or parse failed; those carry a Failure and empty text fields so the
// corpus columns stay aligned.
type ExtractedRecord struct {
	// Identifier is the accession identifier the record was fetched by.
	Identifier string `json:"identifier" yaml:"identifier"`

	// AbstractText is the normalized abstract, or NoAbstract.
	AbstractText string `json:"abstract" yaml:"abstract"`

	// AuthorText is every author name followed by a single space.
	AuthorText string `json:"authors" yaml:"authors"`

	// Failure is set when the record could not be fetched or parsed.
	Failure error `json:"-" yaml:"-"`
}

// Failed reports whether the record is a placeholder for a failed fetch or parse.
func (r ExtractedRecord) Failed() bool {
	return r.Failure != nil
}

// HasAbstract reports whether the article carried an Abstract element.
func (r ExtractedRecord) HasAbstract() bool {
	return !r.Failed() && r.AbstractText != NoAbstract
}
