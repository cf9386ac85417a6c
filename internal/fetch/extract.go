// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/pdiddy/pubmed-miner/internal/normalize"
	"github.com/pdiddy/pubmed-miner/pkg/types"
)

var errNoRoot = errors.New("document has no root element")

// Extract parses one efetch XML document and builds the record for id.
// Authors are every Author element in document order, each followed by a
// single space. The abstract is the normalized text of every AbstractText
// under the first Abstract element, each followed by the text that trails
// it up to the next element, or types.NoAbstract when there is none.
// A malformed document yields an error wrapping ErrParseFailed.
func Extract(id string, r io.Reader) (types.ExtractedRecord, error) {
	rec, err := extract(id, r)
	if err != nil {
		return rec, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	return rec, nil
}

func extract(id string, r io.Reader) (types.ExtractedRecord, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return types.ExtractedRecord{Identifier: id}, err
	}
	if !hasRoot(doc) {
		return types.ExtractedRecord{Identifier: id}, errNoRoot
	}
	return types.ExtractedRecord{
		Identifier:   id,
		AbstractText: abstractText(doc),
		AuthorText:   authorText(doc),
	}, nil
}

func hasRoot(doc *xmlquery.Node) bool {
	for n := doc.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == xmlquery.ElementNode {
			return true
		}
	}
	return false
}

func authorText(doc *xmlquery.Node) string {
	var b strings.Builder
	for _, a := range xmlquery.Find(doc, "//Author") {
		b.WriteString(plainText(a))
		b.WriteByte(' ')
	}
	return b.String()
}

func abstractText(doc *xmlquery.Node) string {
	abs := xmlquery.FindOne(doc, "//Abstract")
	if abs == nil {
		return types.NoAbstract
	}
	var b strings.Builder
	for _, frag := range xmlquery.Find(abs, ".//AbstractText") {
		b.WriteString(normalize.Normalize(frag.InnerText() + tail(frag)))
	}
	return b.String()
}

// tail returns the text between n's end tag and the next element, which
// in indented records is the whitespace separating labelled sections.
func tail(n *xmlquery.Node) string {
	var b strings.Builder
	for s := n.NextSibling; s != nil && s.Type != xmlquery.ElementNode; s = s.NextSibling {
		if s.Type == xmlquery.TextNode || s.Type == xmlquery.CharDataNode {
			b.WriteString(s.Data)
		}
	}
	return b.String()
}

// plainText joins the text beneath n with single spaces, so that
// <LastName>Smith</LastName><ForeName>Jane</ForeName> reads "Smith Jane"
// whether or not the source was indented.
func plainText(n *xmlquery.Node) string {
	var parts []string
	var walk func(*xmlquery.Node)
	walk = func(n *xmlquery.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case xmlquery.TextNode, xmlquery.CharDataNode:
				parts = append(parts, strings.Fields(c.Data)...)
			case xmlquery.ElementNode:
				walk(c)
			}
		}
	}
	walk(n)
	return strings.Join(parts, " ")
}
