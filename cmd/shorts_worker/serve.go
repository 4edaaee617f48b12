package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/shorts-worker/internal/config"
	"github.com/jonathan/shorts-worker/internal/logging"
	"github.com/jonathan/shorts-worker/internal/pipeline"
	"github.com/jonathan/shorts-worker/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the video processing pipeline.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	log := logging.New(server.ServiceName, verbose)
	defer func() { _ = log.Sync() }()

	cfg := config.FromEnv(log)
	if cfg.GeminiAPIKey == "" {
		log.Warnw("GEMINI_API_KEY not set; jobs will fail at initialization")
	}

	runner := pipeline.NewRunner(cfg, log)
	srv := server.New(server.Config{Port: servePort}, runner, log)
	return srv.Start()
}
