// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-digest/internal/listing"
	"github.com/pdiddy/paper-digest/pkg/logger"
	"github.com/pdiddy/paper-digest/pkg/types"
)

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Discover listing entries without processing them",
	Long: `Harvest walks the configured conference listing and writes the
discovered (title, PDF URL) entries as a YAML manifest, without
downloading or summarizing anything. Useful for checking what a full
run would pick up.`,
	RunE: runHarvest,
}

func init() {
	harvestCmd.Flags().String("out", "", "write the manifest to a file instead of stdout")

	rootCmd.AddCommand(harvestCmd)
}

// harvestManifest is the YAML document the harvest command emits.
type harvestManifest struct {
	Platform       string               `yaml:"platform"`
	Conference     string               `yaml:"conference"`
	Year           int                  `yaml:"year"`
	Track          string               `yaml:"track"`
	SubmissionType string               `yaml:"submission_type,omitempty"`
	Count          int                  `yaml:"count"`
	Entries        []types.ListingEntry `yaml:"entries"`
}

func runHarvest(cmd *cobra.Command, args []string) error {
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

	entries, err := src.Fetch(context.Background())
	if err != nil {
		return fmt.Errorf("fetching listing: %w", err)
	}

	manifest := harvestManifest{
		Platform:       cfg.Scraping.Platform,
		Conference:     cfg.Scraping.Conference,
		Year:           cfg.Scraping.Year,
		Track:          cfg.Scraping.Track,
		SubmissionType: cfg.Scraping.SubmissionType,
		Count:          len(entries),
		Entries:        entries,
	}
	data, err := yaml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}

	outPath, _ := cmd.Flags().GetString("out")
	if outPath == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	fmt.Printf("Wrote %d entries to %s\n", len(entries), outPath)
	return nil
}
