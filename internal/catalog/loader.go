// Bookscout - Personalized Book Recommendations with Recombee
// Copyright 2026 Andrei Catrinei (acatrinei)
// SPDX-License-Identifier: MIT
// https://github.com/acatrinei/bookscout

package catalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/acatrinei/bookscout/internal/logging"
	"github.com/acatrinei/bookscout/internal/metrics"
	"github.com/acatrinei/bookscout/internal/recombee"
)

// Loader streams a catalog CSV into the Recombee database in batched
// submissions. Each row produces an add_item plus a set_item_values
// sub-request, so a batch of size N covers N/2 books.
type Loader struct {
	sender    recombee.Sender
	batchSize int
	limiter   *rate.Limiter
}

// NewLoader builds a Loader. batchSize is the number of sub-requests per
// batch submission; batchesPerSecond throttles submissions so a large
// catalog does not saturate the service-side write quota.
func NewLoader(sender recombee.Sender, batchSize int, batchesPerSecond float64) *Loader {
	if batchSize < 2 {
		batchSize = 2
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if batchesPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(batchesPerSecond), 1)
	}
	return &Loader{
		sender:    sender,
		batchSize: batchSize,
		limiter:   limiter,
	}
}

// Stats summarizes one bulk-load run.
type Stats struct {
	Rows    int // CSV data rows read
	Items   int // books submitted
	Skipped int // rows dropped for a missing item key
	Batches int // batch submissions sent
}

// LoadFile opens path and streams it through Load.
func (l *Loader) LoadFile(ctx context.Context, path string) (Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return Stats{}, fmt.Errorf("opening catalog file: %w", err)
	}
	defer f.Close()
	return l.Load(ctx, f)
}

// Load reads CSV rows from r and submits them in batches. The first row
// must be a header naming at least the bookId column; unknown columns are
// ignored. The run aborts on the first failed batch submission.
func (l *Loader) Load(ctx context.Context, r io.Reader) (Stats, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return Stats{}, fmt.Errorf("reading catalog header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	if _, ok := cols["bookId"]; !ok {
		return Stats{}, fmt.Errorf("catalog header is missing the bookId column")
	}

	var (
		stats   Stats
		pending []recombee.Request
	)
	started := time.Now()

	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		if err := l.limiter.Wait(ctx); err != nil {
			return err
		}
		books := len(pending) / 2
		if _, err := l.sender.SendWithRetry(ctx, recombee.Batch(pending)); err != nil {
			metrics.CatalogBatchesTotal.WithLabelValues("error").Inc()
			return fmt.Errorf("submitting catalog batch: %w", err)
		}
		metrics.CatalogBatchesTotal.WithLabelValues("success").Inc()
		metrics.CatalogItemsLoaded.Add(float64(books))
		stats.Batches++
		pending = pending[:0]
		logging.Debug().
			Int("batch", stats.Batches).
			Int("items_total", stats.Items).
			Msg("Catalog batch submitted")
		return nil
	}

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return stats, fmt.Errorf("reading catalog row %d: %w", stats.Rows+1, err)
		}
		stats.Rows++

		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		itemID := field("bookId")
		if itemID == "" {
			stats.Skipped++
			continue
		}

		pending = append(pending,
			recombee.AddItem(itemID),
			recombee.SetItemValues(itemID, rowValues(field), true),
		)
		stats.Items++

		if len(pending) >= l.batchSize {
			if err := flush(); err != nil {
				return stats, err
			}
		}
	}

	if err := flush(); err != nil {
		return stats, err
	}

	logging.Info().
		Int("rows", stats.Rows).
		Int("items", stats.Items).
		Int("skipped", stats.Skipped).
		Int("batches", stats.Batches).
		Dur("elapsed", time.Since(started)).
		Msg("Catalog load complete")
	return stats, nil
}

// rowValues maps one CSV row onto the item property schema, computing the
// derived fields along the way. Properties whose source column is blank or
// unparseable are omitted rather than written as zero values.
func rowValues(field func(string) string) map[string]any {
	values := map[string]any{
		"title":       field("title"),
		"author":      field("author"),
		"genres":      splitGenres(field("genres")),
		"description": field("description"),
		"has_awards":  field("awards") != "",
	}

	setString(values, "series", field("series"))
	setString(values, "language", field("language"))
	setString(values, "book_format", field("bookFormat"))
	setString(values, "publisher", field("publisher"))

	setInt(values, "pages", field("pages"))
	setFloat(values, "avg_rating", field("rating"))
	setInt(values, "num_ratings", field("numRatings"))
	setFloat(values, "liked_percent", field("likedPercent"))
	setFloat(values, "bbe_score", field("bbeScore"))
	setInt(values, "bbe_votes", field("bbeVotes"))
	setFloat(values, "price", field("price"))

	// Derived fields.
	if year, ok := publishYear(field("firstPublishDate"), field("publishDate")); ok {
		values["publish_year"] = year
	}
	// Character count, not bytes: descriptions are free text in any script.
	values["description_len"] = utf8.RuneCountInString(field("description"))
	if n, err := parseInt(field("numRatings")); err == nil {
		values["popularity"] = float64(n)
	} else {
		values["popularity"] = 0.0
	}

	return values
}

func splitGenres(raw string) []string {
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, "|")
	genres := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			genres = append(genres, p)
		}
	}
	return genres
}

func setString(values map[string]any, key, raw string) {
	if raw != "" {
		values[key] = raw
	}
}

func setInt(values map[string]any, key, raw string) {
	if n, err := parseInt(raw); err == nil {
		values[key] = n
	}
}

func setFloat(values map[string]any, key, raw string) {
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		values[key] = f
	}
}

// parseInt accepts both plain integers and the float renderings that
// spreadsheet exports produce ("452.0").
func parseInt(raw string) (int, error) {
	if n, err := strconv.Atoi(raw); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// dateLayouts covers the formats seen in catalog exports. Ordinal suffixes
// ("June 1st 2008") are stripped before matching.
var dateLayouts = []string{
	"01/02/06",
	"01/02/2006",
	"2006-01-02",
	"January 2 2006",
	"January 2006",
	"2006",
}

// publishYear derives the publication year from the first parseable of the
// two date columns. Two-digit years that land in the future are pulled back
// a century: no catalog entry is published after today.
func publishYear(dates ...string) (int, bool) {
	for _, raw := range dates {
		if raw == "" {
			continue
		}
		cleaned := stripOrdinals(raw)
		for _, layout := range dateLayouts {
			t, err := time.Parse(layout, cleaned)
			if err != nil {
				continue
			}
			year := t.Year()
			if year > time.Now().Year() {
				year -= 100
			}
			return year, true
		}
	}
	return 0, false
}

var ordinalPattern = regexp.MustCompile(`(\d)(st|nd|rd|th)\b`)

func stripOrdinals(s string) string {
	return ordinalPattern.ReplaceAllString(s, "$1")
}
