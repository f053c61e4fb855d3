package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dzhu8/GoFetch-sub002/internal/server"
	"github.com/dzhu8/GoFetch-sub002/internal/storage"
)

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the relevance engine over HTTP",
	Long: `Serve exposes the engine to the web application frontend:

  POST /api/v1/extract  parse an OCR payload into bibliography entries
  POST /api/v1/related  run the full relevance pipeline
  GET  /api/v1/runs     list persisted runs`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	log := newLogger()
	defer log.Sync()

	db, err := storage.OpenDB(cfg.Storage.Path)
	if err != nil {
		exitWithError(ExitError, "opening runs database: %v", err)
	}
	defer db.Close()

	engine := newEngine(cfg, log)
	srv := server.New(engine, db, log)

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	log.Info("listening", zap.String("addr", addr))
	return srv.Router().Run(addr)
}
