// Package main provides the entry point for the shorts worker.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "shorts_worker",
	Short: "Shorts Worker HTTP API server",
	Long:  "Shorts Worker downloads a video, picks its best highlight with a multimodal model, reframes it to 9:16, and publishes the clip to Google Drive.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
