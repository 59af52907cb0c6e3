package types

// ScrapingConfig holds settings for the listing harvest stage.
// Per prd001-listing R1.2, R5.1-R5.3.
type ScrapingConfig struct {
	// Platform selects the listing backend; only "openreview" is supported.
	Platform string `json:"platform" yaml:"platform" mapstructure:"platform"`

	// Conference is the conference group identifier (e.g. "ICLR").
	Conference string `json:"conference" yaml:"conference" mapstructure:"conference"`

	// Year is the conference year (e.g. 2024).
	Year int `json:"year" yaml:"year" mapstructure:"year"`

	// Track is the listing track within the group (e.g. "Conference").
	Track string `json:"track" yaml:"track" mapstructure:"track"`

	// SubmissionType optionally narrows the listing to one tab
	// (e.g. "accept-oral"); empty selects the default view.
	SubmissionType string `json:"submission_type,omitempty" yaml:"submission_type,omitempty" mapstructure:"submission_type"`

	// Delay is the pause in whole seconds after each paper, applied
	// whether the paper succeeded, failed, or was skipped.
	Delay int `json:"delay" yaml:"delay" mapstructure:"delay"`
}

// PathsConfig holds filesystem locations for pipeline output.
type PathsConfig struct {
	// OutputDir is the directory for downloaded PDFs, created if absent.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// DBPath is the SQLite database file backing the record store.
	DBPath string `json:"db_path" yaml:"db_path" mapstructure:"db_path"`
}

// SummarizationConfig holds settings for the summarization stage.
// Per prd003-summarization R2.1-R2.4, R5.1.
type SummarizationConfig struct {
	// Provider selects the model backend: openai, claude, or gemini.
	Provider string `json:"provider" yaml:"provider" mapstructure:"provider"`

	// ModelName is the provider's model identifier (e.g. "gpt-4o-mini").
	ModelName string `json:"model_name" yaml:"model_name" mapstructure:"model_name"`

	// Param carries provider-specific generation parameters. Keys outside
	// the supported set are rejected before any model call.
	Param map[string]any `json:"param,omitempty" yaml:"param,omitempty" mapstructure:"param"`

	// Prefix and Suffix frame the paper content in the summarization prompt.
	Prefix string `json:"prefix" yaml:"prefix" mapstructure:"prefix"`
	Suffix string `json:"suffix" yaml:"suffix" mapstructure:"suffix"`

	// ContentCap is the maximum number of characters of extracted text fed
	// to the model; 0 means no cap.
	ContentCap int `json:"content_cap" yaml:"content_cap" mapstructure:"content_cap"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// ServerConfig holds settings for the read-only browse server.
type ServerConfig struct {
	// Addr is the listen address (e.g. "127.0.0.1:8787").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`
}

// LoggingConfig holds settings for the diagnostic log.
type LoggingConfig struct {
	// File is the log file path; empty keeps diagnostics on stderr only.
	File string `json:"file,omitempty" yaml:"file,omitempty" mapstructure:"file"`

	// Level is the minimum level recorded: debug, info, warn, or error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// MaxSizeMB is the size at which the log file rotates (default 10).
	MaxSizeMB int `json:"max_size_mb" yaml:"max_size_mb" mapstructure:"max_size_mb"`

	// MaxBackups is the number of rotated files kept (default 3).
	MaxBackups int `json:"max_backups" yaml:"max_backups" mapstructure:"max_backups"`
}

// Config groups all stage configurations for the pipeline.
type Config struct {
	Scraping      ScrapingConfig      `json:"scraping" yaml:"scraping" mapstructure:"scraping"`
	Paths         PathsConfig         `json:"paths" yaml:"paths" mapstructure:"paths"`
	Summarization SummarizationConfig `json:"summarization" yaml:"summarization" mapstructure:"summarization"`
	Server        ServerConfig        `json:"server" yaml:"server" mapstructure:"server"`
	Logging       LoggingConfig       `json:"logging" yaml:"logging" mapstructure:"logging"`
}
