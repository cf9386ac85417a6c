// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-miner/internal/search"
	"github.com/pdiddy/pubmed-miner/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [term...]",
	Short: "Search PubMed for article identifiers",
	Long: `Search sends a keyword query to NCBI esearch and prints the matching
PubMed identifiers in rank order. The list is also written to
<term>_pmidList.txt in the output directory. Dates bound the publication
date and must be given together.`,
	RunE: runSearch,
}

func init() {
	addQueryFlags(searchCmd)
	searchCmd.Flags().String("query-file", "", "also save the query and identifiers to this YAML file")
	searchCmd.Flags().Bool("json", false, "print identifiers as a JSON array")

	rootCmd.AddCommand(searchCmd)
}

func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().String("term", "", "search term (default: the positional arguments)")
	cmd.Flags().String("from", "", "publication date range start (YYYY/MM/DD)")
	cmd.Flags().String("to", "", "publication date range end (YYYY/MM/DD)")
	cmd.Flags().Int("max", 0, "maximum number of identifiers (default from config)")
	cmd.Flags().String("db", "", "Entrez database (default from config)")
	cmd.Flags().String("output-dir", "", "directory for the provenance file (default from config)")
}

// queryFromFlags builds a SearchQuery from the query flags, filling unset
// values from the loaded configuration.
func queryFromFlags(cmd *cobra.Command, args []string) (types.SearchQuery, error) {
	term, _ := cmd.Flags().GetString("term")
	if term == "" {
		term = strings.Join(args, " ")
	}
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	minDate, maxDate, err := search.ParseDateRange(from, to)
	if err != nil {
		return types.SearchQuery{}, err
	}

	maxRecords, _ := cmd.Flags().GetInt("max")
	if maxRecords == 0 {
		maxRecords = cfg.Search.MaxRecords
	}
	db, _ := cmd.Flags().GetString("db")
	if db == "" {
		db = cfg.Search.Database
	}
	if dir, _ := cmd.Flags().GetString("output-dir"); dir != "" {
		cfg.Search.OutputDir = dir
	}

	return types.SearchQuery{
		Term:       strings.TrimSpace(term),
		MinDate:    minDate,
		MaxDate:    maxDate,
		MaxRecords: maxRecords,
		Database:   db,
	}, nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	q, err := queryFromFlags(cmd, args)
	if err != nil {
		return err
	}
	if err := search.Validate(q); err != nil {
		return err
	}
	contact, err := requireContact()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	p := newPipeline(*cfg, logger, cmd.ErrOrStderr())
	ids, err := p.Search(cmd.Context(), contact, q)
	if err != nil && !errors.Is(err, search.ErrNoMatches) {
		return err
	}

	if path, _ := cmd.Flags().GetString("query-file"); path != "" {
		if err := search.WriteQueryFile(path, q, ids); err != nil {
			return fmt.Errorf("writing query file: %w", err)
		}
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		return enc.Encode(ids)
	}
	if len(ids) == 0 {
		fmt.Fprintln(out, "No PMIDs matching search term.")
		return nil
	}
	for _, id := range ids {
		fmt.Fprintln(out, id)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "\n%d identifiers, saved to %s\n",
		len(ids), search.ProvenancePath(cfg.Search.OutputDir, q.Term))
	return nil
}
