package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/shorts-worker/internal/config"
	"github.com/jonathan/shorts-worker/internal/logging"
	"github.com/jonathan/shorts-worker/internal/pipeline"
	"github.com/jonathan/shorts-worker/internal/server"
)

var processCmd = &cobra.Command{
	Use:   "process <youtube-url>",
	Short: "Run the pipeline once for a single URL",
	Long:  `Run the full download, analyze, edit, and upload pipeline for one video and print the result as JSON.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	log := logging.New(server.ServiceName, verbose)
	defer func() { _ = log.Sync() }()

	cfg := config.FromEnv(log)
	runner := pipeline.NewRunner(cfg, log)

	result, err := runner.Process(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("pipeline failed: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
