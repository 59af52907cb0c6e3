// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-digest/internal/store"
	"github.com/pdiddy/paper-digest/pkg/types"
)

var papersCmd = &cobra.Command{
	Use:   "papers",
	Short: "Inspect and maintain harvested paper records",
	Long: `Papers provides maintenance operations over the record store: list
harvested papers, show a single record, delete one, or export the
whole corpus. These run outside the pipeline hot path.`,
}

// --- list subcommand ---

var papersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List harvested papers",
	RunE:  runPapersList,
}

func runPapersList(cmd *cobra.Command, args []string) error {
	st, err := openPaperStore()
	if err != nil {
		return err
	}
	defer st.Close()

	filters := map[string]any{}
	if v, _ := cmd.Flags().GetString("conference"); v != "" {
		filters["conference"] = v
	}
	if v, _ := cmd.Flags().GetString("track"); v != "" {
		filters["track"] = v
	}
	if y, _ := cmd.Flags().GetInt("year"); y != 0 {
		filters["year"] = y
	}

	records, err := st.Query(context.Background(), filters)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatPapersOutput(records, jsonOutput)
}

func formatPapersOutput(records []types.PaperRecord, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Println("No papers found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-50s  %-12s  %-6s  %-14s  %s\n",
		"Title", "Conference", "Year", "Track", "Summarized")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))

	for _, r := range records {
		title := r.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		summarized := "no"
		if r.Processed() {
			summarized = "yes"
		}
		fmt.Fprintf(os.Stdout, "%-50s  %-12s  %-6d  %-14s  %s\n",
			title, r.Conference, r.Year, r.Track, summarized)
	}

	fmt.Fprintf(os.Stdout, "\n%d papers\n", len(records))
	return nil
}

// --- show subcommand ---

var papersShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one paper record in full",
	RunE:  runPapersShow,
}

func runPapersShow(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("provide exactly one paper id")
	}

	st, err := openPaperStore()
	if err != nil {
		return err
	}
	defer st.Close()

	rec, found, err := st.Get(context.Background(), args[0])
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no paper with id %q", args[0])
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}

	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}
	_, err = os.Stdout.Write(data)
	return err
}

// --- delete subcommand ---

var papersDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one paper record",
	RunE:  runPapersDelete,
}

func runPapersDelete(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("provide exactly one paper id")
	}

	st, err := openPaperStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	_, found, err := st.Get(ctx, args[0])
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no paper with id %q", args[0])
	}
	if err := st.Delete(ctx, args[0]); err != nil {
		return err
	}

	fmt.Printf("Deleted %s\n", args[0])
	return nil
}

// --- export subcommand ---

var papersExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all paper records to YAML or JSON",
	RunE:  runPapersExport,
}

func runPapersExport(cmd *cobra.Command, args []string) error {
	st, err := openPaperStore()
	if err != nil {
		return err
	}
	defer st.Close()

	records, err := st.Query(context.Background(), nil)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	var data []byte
	switch format {
	case "yaml", "":
		data, err = yaml.Marshal(records)
	case "json":
		data, err = json.MarshalIndent(records, "", "  ")
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return fmt.Errorf("marshaling records: %w", err)
	}

	outPath, _ := cmd.Flags().GetString("out")
	if outPath == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	fmt.Printf("Exported %d papers to %s\n", len(records), outPath)
	return nil
}

// --- shared helpers ---

func openPaperStore() (*store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return store.Open(cfg.Paths.DBPath)
}

func init() {
	papersListCmd.Flags().String("conference", "", "filter by conference")
	papersListCmd.Flags().String("track", "", "filter by track")
	papersListCmd.Flags().Int("year", 0, "filter by year")
	papersListCmd.Flags().Bool("json", false, "output records as JSON")

	papersShowCmd.Flags().Bool("json", false, "output the record as JSON")

	papersExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	papersExportCmd.Flags().String("out", "", "write the export to a file instead of stdout")

	papersCmd.AddCommand(papersListCmd)
	papersCmd.AddCommand(papersShowCmd)
	papersCmd.AddCommand(papersDeleteCmd)
	papersCmd.AddCommand(papersExportCmd)

	rootCmd.AddCommand(papersCmd)
}
