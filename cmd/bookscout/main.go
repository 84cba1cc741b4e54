// Bookscout - Personalized Book Recommendations with Recombee
// Copyright 2026 Andrei Catrinei (acatrinei)
// SPDX-License-Identifier: MIT
// https://github.com/acatrinei/bookscout

// Command bookscout is the terminal client and dashboard server for the
// Recombee-backed book recommender. Run without arguments to start the
// interactive menu.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/acatrinei/bookscout/internal/books"
	"github.com/acatrinei/bookscout/internal/config"
	"github.com/acatrinei/bookscout/internal/logging"
	"github.com/acatrinei/bookscout/internal/recombee"
)

var (
	verbose bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "bookscout",
	Short: "Personalized book recommendations in your terminal",
	Long: `Bookscout is a thin client over the Recombee recommendation service
for a book catalog.

It covers the full loop: declare the item property schema, bulk-load the
catalog from CSV, build a cold-start taste profile for new users, record
ratings and detail views, and fetch personalized or item-to-item
recommendations.

Run without arguments to start the interactive menu.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}

		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		// The interactive menu owns the terminal, so logs go to stderr.
		logging.Init(logging.Config{
			Level:  level,
			Format: cfg.Logging.Format,
		})
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMenu()
	},
}

// newService assembles the client stack shared by every subcommand:
// signed transport with retry, circuit breaker, domain service on top.
func newService() (*books.Service, recombee.Sender) {
	client := recombee.New(cfg.Recombee)
	breaker := recombee.NewBreakerClient(client)
	return books.NewService(breaker, cfg.Recombee.Scenario), breaker
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(loadCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}
