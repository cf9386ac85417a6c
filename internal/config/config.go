// Package config loads pubmed-miner settings from defaults, an optional
// YAML file and PUBMED_MINER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/pdiddy/pubmed-miner/pkg/types"
)

const (
	// EnvPrefix prefixes every environment override, e.g.
	// PUBMED_MINER_SEARCH_MAX_RECORDS.
	EnvPrefix = "PUBMED_MINER"

	// ConfigName is the config file base name searched for in . and
	// ~/.config/pubmed-miner.
	ConfigName = "pubmed-miner"

	// EmailEnv is the conventional variable for the NCBI contact address.
	EmailEnv = "NCBI_EMAIL"
)

// Load reads configuration into a types.Config. cfgFile, when set, names
// the file explicitly; otherwise the search paths are tried and a missing
// file is not an error.
func Load(v *viper.Viper, cfgFile string) (*types.Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("entrez.email", EnvPrefix+"_ENTREZ_EMAIL", EmailEnv); err != nil {
		return nil, fmt.Errorf("binding email env: %w", err)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", ConfigName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("entrez.base_url", "https://eutils.ncbi.nlm.nih.gov/entrez/eutils")
	v.SetDefault("entrez.email", "")
	v.SetDefault("entrez.tool", "pubmed-miner")
	v.SetDefault("entrez.rate_limit", 3.0)
	v.SetDefault("entrez.timeout", "60s")
	v.SetDefault("entrez.user_agent", "pubmed-miner/0.1")

	v.SetDefault("search.database", "pubmed")
	v.SetDefault("search.max_records", 20)
	v.SetDefault("search.output_dir", ".")

	v.SetDefault("fetch.database", "pubmed")
	v.SetDefault("fetch.record_timeout", "30s")

	v.SetDefault("export.format", string(types.FormatCSV))
	v.SetDefault("export.archive", false)
	v.SetDefault("export.db_path", "corpus.db")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")
}

// Validate rejects settings no stage can run with.
func Validate(cfg *types.Config) error {
	var errs []error
	if cfg.Entrez.RateLimit <= 0 {
		errs = append(errs, errors.New("entrez.rate_limit must be positive"))
	}
	if cfg.Search.MaxRecords <= 0 {
		errs = append(errs, errors.New("search.max_records must be positive"))
	}
	if cfg.Fetch.RecordTimeout <= 0 {
		errs = append(errs, errors.New("fetch.record_timeout must be positive"))
	}
	switch cfg.Export.Format {
	case types.FormatCSV, types.FormatJSON, types.FormatYAML:
	default:
		errs = append(errs, fmt.Errorf("export.format %q is not csv, json or yaml", cfg.Export.Format))
	}
	return errors.Join(errs...)
}
