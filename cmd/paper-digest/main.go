// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-digest CLI.
// Implements: prd001-listing, prd002-pipeline, prd003-summarization,
//             prd004-store (CLI surface).
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-digest/internal/download"
	"github.com/pdiddy/paper-digest/internal/listing"
	"github.com/pdiddy/paper-digest/internal/pdftext"
	"github.com/pdiddy/paper-digest/internal/pipeline"
	"github.com/pdiddy/paper-digest/internal/secrets"
	"github.com/pdiddy/paper-digest/internal/store"
	"github.com/pdiddy/paper-digest/internal/summarize"
	"github.com/pdiddy/paper-digest/pkg/logger"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const downloadTimeout = 60 * time.Second

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd runs the full harvest pipeline: scrape the configured listing,
// then download, extract, summarize, and persist each paper.
var rootCmd = &cobra.Command{
	Use:   "paper-digest",
	Short: "Harvest, summarize, and browse conference papers",
	Long: `paper-digest scrapes a conference listing site for papers, downloads each
PDF, extracts its text, produces a model-generated summary, and stores
everything in a local SQLite database. Papers already summarized in a
previous run are skipped, so interrupted runs resume where they left off.

Running paper-digest with no subcommand executes the whole pipeline.
Use harvest to only discover listing entries, papers to inspect the
stored records, and serve to browse the corpus over HTTP.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
	RunE: runPipeline,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./config.yaml or ~/.config/paper-digest/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paper-digest"))
		}
	}

	viper.SetEnvPrefix("PAPER_DIGEST")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("paths.output_dir", "papers")
	viper.SetDefault("paths.db_path", "papers.db")
	viper.SetDefault("server.addr", "127.0.0.1:8787")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig unmarshals the viper state into the typed configuration.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("parsing configuration: %w", err)
	}
	return cfg, nil
}

// resolveAPIKey finds the summarizer key: explicit config param first,
// then the provider's .secrets/ file, then the environment through viper
// (PAPER_DIGEST_SUMMARIZATION_PARAM_API_KEY).
func resolveAPIKey(cfg types.SummarizationConfig) string {
	if key := summarize.APIKeyParam(cfg.Param); key != "" {
		return key
	}
	if name := secrets.ProviderKey(cfg.Provider); name != "" {
		if key, ok := loadedSecrets[name]; ok {
			return key
		}
	}
	return viper.GetString("summarization.param.api_key")
}

// runPipeline is the root command: one full pass over the configured
// listing. Configuration problems and a failed scrape abort with a
// non-zero exit; individual paper failures are reported in the batch
// summary but do not change the exit code.
func runPipeline(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer log.Sync()

	src, err := listing.NewSource(cfg.Scraping, log)
	if err != nil {
		return err
	}

	opts, err := summarize.OptionsFromConfig(cfg.Summarization)
	if err != nil {
		return err
	}

	gen, err := summarize.NewModel(ctx, cfg.Summarization, resolveAPIKey(cfg.Summarization))
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.Paths.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := os.MkdirAll(cfg.Paths.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", cfg.Paths.OutputDir, err)
	}

	entries, err := src.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetching listing: %w", err)
	}
	fmt.Printf("Found %d papers in listing\n", len(entries))

	client := &http.Client{Timeout: downloadTimeout}
	deps := pipeline.Deps{
		Store: st,
		Download: func(ctx context.Context, filename, url string) (string, error) {
			return download.PDF(ctx, client, filename, url, cfg.Paths.OutputDir)
		},
		Extract: pdftext.ExtractFile,
		Summarize: func(ctx context.Context, content string) (string, error) {
			return summarize.Summarize(ctx, gen, opts, content)
		},
		Log: log,
	}

	summary := pipeline.Run(ctx, deps, entries, cfg, os.Stdout)
	log.Info("batch finished",
		zap.Int("processed", summary.Processed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed))

	fmt.Println("All papers processed.")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
