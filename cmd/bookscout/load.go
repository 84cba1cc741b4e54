// Bookscout - Personalized Book Recommendations with Recombee
// Copyright 2026 Andrei Catrinei (acatrinei)
// SPDX-License-Identifier: MIT
// https://github.com/acatrinei/bookscout

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/acatrinei/bookscout/internal/catalog"
)

var loadCmd = &cobra.Command{
	Use:   "load <catalog.csv>",
	Short: "Bulk-load the book catalog from a CSV file",
	Long: `Streams the catalog CSV into the Recombee database in batched
submissions, deriving publish_year, description_len, popularity and
has_awards along the way. Run "bookscout schema" first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, sender := newService()
		loader := catalog.NewLoader(sender, cfg.Catalog.BatchSize, cfg.Catalog.BatchesPerSecond)

		stats, err := loader.LoadFile(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Println(successStyle.Render(fmt.Sprintf(
			"Loaded %d books in %d batches.", stats.Items, stats.Batches)))
		if stats.Skipped > 0 {
			fmt.Println(warnStyle.Render(fmt.Sprintf(
				"Skipped %d rows without a bookId.", stats.Skipped)))
		}
		return nil
	},
}
