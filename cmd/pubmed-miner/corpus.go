// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-miner/internal/corpus"
	"github.com/pdiddy/pubmed-miner/internal/ui"
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Work with runs saved in the SQLite archive",
	Long: `Corpus manages the local SQLite archive of mining runs. Runs are saved
by fetch, mine and the interactive session when archiving is enabled
(--archive or export.archive: true). Use subcommands to list runs, show or
re-export one, or search abstracts across all runs.`,
}

// --- list subcommand ---

var corpusListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived runs, newest first",
	RunE:  runCorpusList,
}

func runCorpusList(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No archived runs.")
		return nil
	}
	fmt.Fprintf(out, "%-8s  %-20s  %-30s  %7s  %6s\n", "Run", "Created", "Term", "Records", "Failed")
	fmt.Fprintln(out, strings.Repeat("-", 81))
	for _, r := range runs {
		fmt.Fprintf(out, "%-8s  %-20s  %-30s  %7d  %6d\n",
			r.ID[:8], r.CreatedAt.Local().Format("2006-01-02 15:04:05"), clip(r.Term, 30), r.Records, r.Failed)
	}
	fmt.Fprintf(out, "\n%d runs\n", len(runs))
	return nil
}

// --- show subcommand ---

var corpusShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print the rows of an archived run",
	Long: `Show prints every row of the run whose ID is, or starts with, the
given value. Use --json for the full row text.`,
	Args: cobra.ExactArgs(1),
	RunE: runCorpusShow,
}

func runCorpusShow(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	c, run, err := store.LoadRun(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(c.Rows())
	}

	fmt.Fprintf(out, "%s %s\n", ui.RenderLabel("run:"), run.ID)
	fmt.Fprintf(out, "%s %s\n", ui.RenderLabel("term:"), run.Term)
	fmt.Fprintf(out, "%s %d (%d failed)\n\n", ui.RenderLabel("records:"), run.Records, run.Failed)
	fmt.Fprintf(out, "%-4s  %-10s  %-50s  %s\n", "#", "DOIS", "Abstract", "Authors")
	fmt.Fprintln(out, strings.Repeat("-", 100))
	for i, r := range c.Rows() {
		fmt.Fprintf(out, "%-4d  %-10s  %-50s  %s\n", i+1, r.DOIS, clip(r.Abstract, 50), clip(r.Authors, 30))
	}
	return nil
}

// --- query subcommand ---

var corpusQueryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Search abstracts across archived runs",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCorpusQuery,
}

func runCorpusQuery(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	matches, err := store.SearchAbstracts(cmd.Context(), strings.Join(args, " "), limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(matches) == 0 {
		fmt.Fprintln(out, "No results found.")
		return nil
	}
	fmt.Fprintf(out, "%-8s  %-10s  %-60s\n", "Run", "DOIS", "Abstract")
	fmt.Fprintln(out, strings.Repeat("-", 82))
	for _, m := range matches {
		fmt.Fprintf(out, "%-8s  %-10s  %-60s\n", m.RunID[:8], m.Identifier, clip(m.Abstract, 60))
	}
	fmt.Fprintf(out, "\n%d results\n", len(matches))
	return nil
}

// --- export subcommand ---

var corpusExportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Re-export an archived run as CSV, JSON or YAML",
	Args:  cobra.ExactArgs(1),
	RunE:  runCorpusExport,
}

func runCorpusExport(cmd *cobra.Command, args []string) error {
	if err := applyExportFlags(cmd); err != nil {
		return err
	}
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	c, run, err := store.LoadRun(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	output, _ := cmd.Flags().GetString("output")
	if strings.TrimSpace(output) == "" {
		output = strings.ReplaceAll(run.Term, "/", "_")
	}

	path, err := corpus.Export(c, output, cfg.Export.Format)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported run %s to %s\n", run.ID[:8], path)
	return nil
}

// --- shared helpers ---

func openStore(cmd *cobra.Command) (*corpus.Store, error) {
	path, _ := cmd.Flags().GetString("db")
	if path == "" {
		path = cfg.Export.DBPath
	}
	return corpus.NewStore(path)
}

// clip shortens s to at most n runes for table display.
func clip(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func init() {
	corpusCmd.PersistentFlags().String("db", "", "archive database (default from config)")

	corpusShowCmd.Flags().Bool("json", false, "print rows as JSON")
	corpusQueryCmd.Flags().Int("limit", 20, "maximum number of results")
	corpusExportCmd.Flags().StringP("output", "o", "", "output filename without extension (default: the run's term)")
	corpusExportCmd.Flags().String("format", "", "output format: csv, json or yaml (default from config)")

	corpusCmd.AddCommand(corpusListCmd)
	corpusCmd.AddCommand(corpusShowCmd)
	corpusCmd.AddCommand(corpusQueryCmd)
	corpusCmd.AddCommand(corpusExportCmd)

	rootCmd.AddCommand(corpusCmd)
}
