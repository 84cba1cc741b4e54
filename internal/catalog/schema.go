// Bookscout - Personalized Book Recommendations with Recombee
// Copyright 2026 Andrei Catrinei (acatrinei)
// SPDX-License-Identifier: MIT
// https://github.com/acatrinei/bookscout

// Package catalog provides the item property schema and the bulk CSV
// loader that populates the Recombee database with the book catalog.
package catalog

import (
	"context"
	"fmt"

	"github.com/acatrinei/bookscout/internal/logging"
	"github.com/acatrinei/bookscout/internal/recombee"
)

// Property is one typed item property in the database schema.
type Property struct {
	Name string
	Type string
}

// ItemProperties is the full schema of a catalog item. Declaring a property
// that already exists is a no-op on the Recombee side, so SetupSchema can be
// re-run safely.
var ItemProperties = []Property{
	{"title", "string"},
	{"author", "string"},
	{"series", "string"},
	{"genres", "set"},
	{"language", "string"},
	{"book_format", "string"},
	{"publisher", "string"},
	{"description", "string"},
	{"pages", "int"},
	{"avg_rating", "double"},
	{"num_ratings", "int"},
	{"liked_percent", "double"},
	{"bbe_score", "double"},
	{"bbe_votes", "int"},
	{"price", "double"},
	{"publish_year", "int"},
	{"description_len", "int"},
	{"popularity", "double"},
	{"has_awards", "boolean"},
}

// SetupSchema declares every item property in a single batch submission.
// Individual sub-requests that fail are reported but do not abort the rest
// of the batch.
func SetupSchema(ctx context.Context, sender recombee.Sender) error {
	reqs := make([]recombee.Request, 0, len(ItemProperties))
	for _, p := range ItemProperties {
		reqs = append(reqs, recombee.AddItemProperty(p.Name, p.Type))
	}

	raw, err := sender.SendWithRetry(ctx, recombee.Batch(reqs))
	if err != nil {
		return fmt.Errorf("declaring item properties: %w", err)
	}

	results, err := recombee.DecodeBatchResults(raw)
	if err != nil {
		return fmt.Errorf("decoding schema batch results: %w", err)
	}

	failed := 0
	for i, res := range results {
		if res.Code >= 200 && res.Code < 300 {
			continue
		}
		failed++
		name := "unknown"
		if i < len(ItemProperties) {
			name = ItemProperties[i].Name
		}
		logging.Warn().
			Str("property", name).
			Int("code", res.Code).
			Msg("Item property declaration failed")
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d item properties failed to declare", failed, len(results))
	}

	logging.Info().Int("properties", len(results)).Msg("Item property schema declared")
	return nil
}
