// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-miner/internal/search"
	"github.com/pdiddy/pubmed-miner/pkg/types"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [identifiers...]",
	Short: "Fetch article records and export the corpus",
	Long: `Fetch retrieves each article record from NCBI efetch, one at a time,
extracts the abstract and author names, and writes the corpus table.
Identifiers come from the arguments, a provenance file (--ids-file) written
by search, or a YAML query file (--query-file). A record that cannot be
fetched or parsed keeps its row with empty text.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().String("ids-file", "", "read identifiers from a <term>_pmidList.txt provenance file")
	fetchCmd.Flags().String("query-file", "", "read identifiers from a YAML query file written by search")
	fetchCmd.Flags().String("term", "", "label for the archived run (default: the query file term)")
	addExportFlags(fetchCmd)

	rootCmd.AddCommand(fetchCmd)
}

func addExportFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "", "output filename without extension")
	cmd.Flags().String("format", "", "output format: csv, json or yaml (default from config)")
	cmd.Flags().Bool("archive", false, "also save the run to the SQLite archive")
}

// applyExportFlags overrides the export settings from flags.
func applyExportFlags(cmd *cobra.Command) error {
	if f, _ := cmd.Flags().GetString("format"); f != "" {
		switch format := types.ExportFormat(strings.ToLower(f)); format {
		case types.FormatCSV, types.FormatJSON, types.FormatYAML:
			cfg.Export.Format = format
		default:
			return fmt.Errorf("unsupported format %q: use csv, json or yaml", f)
		}
	}
	if cmd.Flags().Changed("archive") {
		cfg.Export.Archive, _ = cmd.Flags().GetBool("archive")
	}
	return nil
}

func runFetch(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	if strings.TrimSpace(output) == "" {
		return fmt.Errorf("--output is required")
	}
	if err := applyExportFlags(cmd); err != nil {
		return err
	}

	term, _ := cmd.Flags().GetString("term")
	ids, fileTerm, err := identifiersFromFlags(cmd, args)
	if err != nil {
		return err
	}
	if term == "" {
		term = fileTerm
	}
	if len(ids) == 0 {
		return fmt.Errorf("no identifiers to fetch")
	}

	contact, err := requireContact()
	if err != nil {
		return err
	}

	p := newPipeline(*cfg, logger, cmd.ErrOrStderr())
	records, err := p.Fetch(cmd.Context(), contact, ids)
	if err != nil {
		return err
	}
	path, err := p.Export(cmd.Context(), term, records, output)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Corpus written to %s\n", path)
	return nil
}

func identifiersFromFlags(cmd *cobra.Command, args []string) (types.IdentifierList, string, error) {
	idsFile, _ := cmd.Flags().GetString("ids-file")
	queryFile, _ := cmd.Flags().GetString("query-file")

	switch {
	case idsFile != "" && queryFile != "":
		return nil, "", fmt.Errorf("use only one of --ids-file and --query-file")
	case idsFile != "":
		ids, err := search.ReadProvenance(idsFile)
		return ids, "", err
	case queryFile != "":
		qf, err := search.ReadQueryFile(queryFile)
		if err != nil {
			return nil, "", err
		}
		return qf.Identifiers(), qf.Query.Term, nil
	}

	ids := make(types.IdentifierList, 0, len(args))
	for _, a := range args {
		for _, id := range strings.Split(a, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids, "", nil
}
