package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP client timeout for a whole request.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "pubmed-miner/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// EntrezConfig holds settings for the NCBI E-utilities client.
type EntrezConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the E-utilities endpoint prefix.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// Email is the contact address NCBI requires from every client.
	// It is sent with each request; there is no process-wide identity.
	Email string `json:"email" yaml:"email" mapstructure:"email"`

	// Tool names this program to NCBI.
	Tool string `json:"tool" yaml:"tool" mapstructure:"tool"`

	// RateLimit is the maximum number of requests per second (default 3).
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit" mapstructure:"rate_limit"`
}

// SearchConfig holds settings for the identifier search stage.
type SearchConfig struct {
	// Database is the Entrez database searched (default "pubmed").
	Database string `json:"database" yaml:"database" mapstructure:"database"`

	// MaxRecords is the default result cap when none is given.
	MaxRecords int `json:"max_records" yaml:"max_records" mapstructure:"max_records"`

	// OutputDir is where provenance files are written (default ".").
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`
}

// FetchConfig holds settings for the record fetch stage.
type FetchConfig struct {
	// Database is the Entrez database records are fetched from (default "pubmed").
	Database string `json:"database" yaml:"database" mapstructure:"database"`

	// RecordTimeout bounds a single fetch; expiry fails that record only.
	RecordTimeout time.Duration `json:"record_timeout" yaml:"record_timeout" mapstructure:"record_timeout"`
}

// ExportFormat selects the corpus table format.
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
	FormatYAML ExportFormat = "yaml"
)

// ExportConfig holds settings for the corpus export stage.
type ExportConfig struct {
	// Format selects the output format: csv, json, or yaml.
	Format ExportFormat `json:"format" yaml:"format" mapstructure:"format"`

	// Archive controls whether every exported run is also saved to the SQLite archive.
	Archive bool `json:"archive" yaml:"archive" mapstructure:"archive"`

	// DBPath is the SQLite archive file.
	DBPath string `json:"db_path" yaml:"db_path" mapstructure:"db_path"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	// Level is the minimum log level (trace, debug, info, warn, error).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is console or json.
	Format string `json:"format" yaml:"format" mapstructure:"format"`

	// Output is stderr or stdout.
	Output string `json:"output" yaml:"output" mapstructure:"output"`
}

// Config groups all stage configurations.
type Config struct {
	Entrez  EntrezConfig  `json:"entrez" yaml:"entrez" mapstructure:"entrez"`
	Search  SearchConfig  `json:"search" yaml:"search" mapstructure:"search"`
	Fetch   FetchConfig   `json:"fetch" yaml:"fetch" mapstructure:"fetch"`
	Export  ExportConfig  `json:"export" yaml:"export" mapstructure:"export"`
	Logging LoggingConfig `json:"logging" yaml:"logging" mapstructure:"logging"`
}
