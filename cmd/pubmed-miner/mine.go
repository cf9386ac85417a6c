// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-miner/internal/search"
)

var mineCmd = &cobra.Command{
	Use:   "mine [term...]",
	Short: "Search, fetch and export in one step",
	Long: `Mine runs the whole pipeline without prompts: it searches PubMed for the
term, writes the provenance file, fetches every matching record, and writes
the corpus table. The output name defaults to the search term.`,
	RunE: runMine,
}

func init() {
	addQueryFlags(mineCmd)
	addExportFlags(mineCmd)

	rootCmd.AddCommand(mineCmd)
}

func runMine(cmd *cobra.Command, args []string) error {
	q, err := queryFromFlags(cmd, args)
	if err != nil {
		return err
	}
	if err := search.Validate(q); err != nil {
		return err
	}
	if err := applyExportFlags(cmd); err != nil {
		return err
	}
	output, _ := cmd.Flags().GetString("output")
	if strings.TrimSpace(output) == "" {
		output = strings.ReplaceAll(q.Term, "/", "_")
	}
	contact, err := requireContact()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	p := newPipeline(*cfg, logger, cmd.ErrOrStderr())

	ids, err := p.Search(ctx, contact, q)
	if errors.Is(err, search.ErrNoMatches) {
		fmt.Fprintln(cmd.OutOrStdout(), "No PMIDs matching search term.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%d PMIDs collected\n", len(ids))

	records, err := p.Fetch(ctx, contact, ids)
	if err != nil {
		return err
	}
	path, err := p.Export(ctx, q.Term, records, output)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Corpus written to %s\n", path)
	return nil
}
