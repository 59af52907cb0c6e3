// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-digest/internal/store"
	"github.com/pdiddy/paper-digest/internal/web"
	"github.com/pdiddy/paper-digest/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve harvested papers over HTTP",
	Long: `Serve starts a read-only HTTP server over the record store: an HTML
index of harvested papers plus a small JSON API. It never writes to
the store and can run alongside the pipeline.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer log.Sync()

	st, err := store.Open(cfg.Paths.DBPath)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.Server.Addr
	}

	srv := web.NewServer(st, log)
	fmt.Printf("Serving papers on http://%s\n", addr)
	return srv.Run(addr)
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}
