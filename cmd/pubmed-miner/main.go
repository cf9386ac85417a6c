// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pubmed-miner CLI.
// Without a subcommand it runs the interactive session; search, fetch and
// mine run the same stages from flags, and corpus works with the archive.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pubmed-miner/internal/config"
	"github.com/pdiddy/pubmed-miner/internal/observability"
	"github.com/pdiddy/pubmed-miner/internal/secrets"
	"github.com/pdiddy/pubmed-miner/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// cfg is loaded once in PersistentPreRunE.
	cfg *types.Config

	logger = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "pubmed-miner",
	Short: "Collect PubMed abstracts and authors into a CSV corpus",
	Long: `pubmed-miner searches NCBI PubMed for articles matching a keyword query,
fetches each article record, extracts the abstract and author names, and
writes them to a three-column table (Abstract, DOIS, Authors).

Run without a subcommand for the interactive session. The search, fetch and
mine subcommands run the same stages from flags, and corpus lists, searches
and re-exports runs saved in the SQLite archive.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runInteractive,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pubmed-miner.yaml or ~/.config/pubmed-miner/pubmed-miner.yaml)")
	rootCmd.PersistentFlags().String("env-file", ".env", "dotenv file loaded before configuration")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets", "directory of secret files (ncbi-email)")
	rootCmd.PersistentFlags().String("email", "", "NCBI contact email (overrides config, NCBI_EMAIL and .secrets/ncbi-email)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: trace, debug, info, warn, error")
}

func setup(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	envFile, _ := flags.GetString("env-file")
	if err := secrets.LoadEnvFile(envFile); err != nil {
		return err
	}

	cfgFile, _ := flags.GetString("config")
	v := viper.New()
	loaded, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded

	if lvl, _ := flags.GetString("log-level"); lvl != "" {
		cfg.Logging.Level = lvl
	}
	logger = observability.NewLogger(cfg.Logging)
	if used := v.ConfigFileUsed(); used != "" {
		logger.Debug().Str("path", used).Msg("using config file")
	}

	dir, _ := flags.GetString("secrets-dir")
	s, err := secrets.Load(dir, logger)
	if err != nil {
		return err
	}
	if len(s) > 0 {
		keys := make([]string, 0, len(s))
		for k := range s {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		logger.Debug().Strs("keys", keys).Msg("loaded secrets")
	}

	email, _ := flags.GetString("email")
	if email == "" {
		email = cfg.Entrez.Email
	}
	cfg.Entrez.Email = secrets.Default(s, secrets.EmailKey, email)
	return nil
}

// requireContact fails early when no contact email is configured.
func requireContact() (string, error) {
	if cfg.Entrez.Email == "" {
		return "", fmt.Errorf("an NCBI contact email is required: use --email, %s, or %s/%s",
			config.EmailEnv, ".secrets", secrets.EmailKey)
	}
	return cfg.Entrez.Email, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
