// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-miner/internal/session"
	"github.com/pdiddy/pubmed-miner/internal/ui"
	"github.com/pdiddy/pubmed-miner/pkg/types"
)

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Run the guided prompt session (the default)",
	Long: `Interactive asks for a contact email, a search term with an optional
date range and a record cap, then confirms before fetching and before
writing the CSV file. A search with no matches asks for a new query.`,
	RunE: runInteractive,
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}

// spinnerRunner shows a spinner while the search runs. Fetch prints its
// own per-article progress, so it is not wrapped.
type spinnerRunner struct {
	*pipeline
}

func (r spinnerRunner) Search(ctx context.Context, contact string, q types.SearchQuery) (types.IdentifierList, error) {
	var ids types.IdentifierList
	err := ui.RunWithSpinner(ctx, fmt.Sprintf("Searching PubMed for %q...", q.Term), func(ctx context.Context) error {
		var err error
		ids, err = r.pipeline.Search(ctx, contact, q)
		return err
	})
	return ids, err
}

func runInteractive(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	// Keep info-level log lines from interleaving with the forms.
	log := logger
	if !cmd.Flags().Changed("log-level") && log.GetLevel() < zerolog.WarnLevel {
		log = log.Level(zerolog.WarnLevel)
	}

	fmt.Fprintln(out, ui.RenderTitle("pubmed-miner"))
	fmt.Fprintln(out, ui.RenderNote(ui.Welcome))
	fmt.Fprintln(out)

	prompter := ui.NewFormPrompter(out)
	prompter.DefaultEmail = cfg.Entrez.Email
	runner := spinnerRunner{newPipeline(*cfg, log, out)}
	s := session.New(prompter, runner, session.Options{
		Database:   cfg.Search.Database,
		MaxRecords: cfg.Search.MaxRecords,
		Logger:     log,
	})

	res, err := s.Run(cmd.Context())
	if errors.Is(err, huh.ErrUserAborted) || errors.Is(err, context.Canceled) {
		fmt.Fprintln(out, ui.RenderWarn("Session ended, nothing exported."))
		return nil
	}
	if err != nil {
		return err
	}
	if res.Exported != "" {
		fmt.Fprintln(out, ui.RenderOK(fmt.Sprintf("%d records written to %s", len(res.Records), res.Exported)))
	}
	return nil
}
