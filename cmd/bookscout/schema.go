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

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Declare the item property schema in the Recombee database",
	Long: `Declares every catalog item property (title, author, genres, derived
fields) in a single batch. Safe to re-run: properties that already
exist are left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, sender := newService()
		if err := catalog.SetupSchema(cmd.Context(), sender); err != nil {
			return err
		}
		fmt.Println(successStyle.Render("Item property schema is in place."))
		return nil
	},
}
