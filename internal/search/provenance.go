// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/pubmed-miner/pkg/types"
)

// provenanceSuffix is appended to the search term to name the provenance file.
const provenanceSuffix = "_pmidList.txt"

// ProvenancePath returns dir/<term>_pmidList.txt. Path separators in the
// term are replaced so the file always lands directly in dir.
func ProvenancePath(dir, term string) string {
	name := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == os.PathSeparator {
			return '_'
		}
		return r
	}, term)
	return filepath.Join(dir, name+provenanceSuffix)
}

// FormatList renders ids as a single list literal: ['111', '222'].
// An empty list renders as [].
func FormatList(ids types.IdentifierList) string {
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = "'" + strings.ReplaceAll(id, "'", `\'`) + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// ParseList reads a list literal written by FormatList.
func ParseList(s string) (types.IdentifierList, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, fmt.Errorf("not a list literal: %q", truncate(s, 40))
	}
	inner := strings.TrimSpace(s[1 : len(s)-1])
	if inner == "" {
		return types.IdentifierList{}, nil
	}
	parts := strings.Split(inner, ",")
	ids := make(types.IdentifierList, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if len(p) < 2 || (p[0] != '\'' && p[0] != '"') || p[len(p)-1] != p[0] {
			return nil, fmt.Errorf("malformed list element %q", p)
		}
		ids = append(ids, strings.ReplaceAll(p[1:len(p)-1], `\'`, "'"))
	}
	return ids, nil
}

// WriteProvenance writes ids to path as one list literal, replacing any
// existing file.
func WriteProvenance(path string, ids types.IdentifierList) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating provenance directory: %w", err)
		}
	}
	return os.WriteFile(path, []byte(FormatList(ids)), 0o644)
}

// ReadProvenance loads an identifier list from a provenance file.
func ReadProvenance(path string) (types.IdentifierList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading provenance file: %w", err)
	}
	ids, err := ParseList(string(data))
	if err != nil {
		return nil, fmt.Errorf("parsing provenance file %s: %w", path, err)
	}
	return ids, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
