// Bookscout - Personalized Book Recommendations with Recombee
// Copyright 2026 Andrei Catrinei (acatrinei)
// SPDX-License-Identifier: MIT
// https://github.com/acatrinei/bookscout

package catalog

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/goccy/go-json"

	"github.com/acatrinei/bookscout/internal/recombee"
)

type fakeSender struct {
	requests []recombee.Request
	respond  func(req recombee.Request) (json.RawMessage, error)
}

func (f *fakeSender) SendWithRetry(_ context.Context, req recombee.Request) (json.RawMessage, error) {
	f.requests = append(f.requests, req)
	return f.respond(req)
}

// batchEntries unwraps the sub-requests of a batch request.
func batchEntries(t *testing.T, req recombee.Request) []map[string]any {
	t.Helper()
	if req.Operation != "batch" {
		t.Fatalf("operation = %s, want batch", req.Operation)
	}
	entries, ok := req.Body["requests"].([]map[string]any)
	if !ok {
		t.Fatalf("batch body has no requests list: %T", req.Body["requests"])
	}
	return entries
}

func batchResponse(code, count int) json.RawMessage {
	results := make([]map[string]any, count)
	for i := range results {
		results[i] = map[string]any{"code": code, "json": "ok"}
	}
	raw, _ := json.Marshal(results)
	return raw
}

func TestSetupSchemaDeclaresEveryProperty(t *testing.T) {
	sender := &fakeSender{respond: func(req recombee.Request) (json.RawMessage, error) {
		return batchResponse(201, len(ItemProperties)), nil
	}}

	if err := SetupSchema(context.Background(), sender); err != nil {
		t.Fatalf("SetupSchema() failed: %v", err)
	}
	if len(sender.requests) != 1 {
		t.Fatalf("requests = %d, want a single batch", len(sender.requests))
	}

	entries := batchEntries(t, sender.requests[0])
	if len(entries) != len(ItemProperties) {
		t.Fatalf("batch entries = %d, want %d", len(entries), len(ItemProperties))
	}
	for i, entry := range entries {
		wantPath := "/items/properties/" + ItemProperties[i].Name
		if entry["path"] != wantPath {
			t.Errorf("entry %d path = %v, want %v", i, entry["path"], wantPath)
		}
		params := entry["params"].(map[string]any)
		if params["type"] != ItemProperties[i].Type {
			t.Errorf("%s type = %v, want %v", ItemProperties[i].Name, params["type"], ItemProperties[i].Type)
		}
	}
}

func TestSetupSchemaReportsFailedProperties(t *testing.T) {
	sender := &fakeSender{respond: func(req recombee.Request) (json.RawMessage, error) {
		results := make([]map[string]any, len(ItemProperties))
		for i := range results {
			results[i] = map[string]any{"code": 201}
		}
		results[3]["code"] = 400
		raw, _ := json.Marshal(results)
		return raw, nil
	}}

	if err := SetupSchema(context.Background(), sender); err == nil {
		t.Fatal("SetupSchema() should report the failed declaration")
	}
}

const catalogCSV = `bookId,title,series,author,rating,description,language,genres,bookFormat,pages,publisher,publishDate,firstPublishDate,awards,numRatings,likedPercent,bbeScore,bbeVotes,price
1.Dune,Dune,Dune #1,Frank Herbert,4.25,A desert planet saga,English,Science Fiction|Classics,Paperback,412,Ace,06/01/05,08/01/65,Hugo Award,700000,96,50000,510,9.99
2.Emma,Emma,,Jane Austen,4.01,,English,Classics,Hardcover,474,Penguin,,12/23/1815,,600000,93,40000,420,
,Ghost Row,,,,,,,,,,,,,,,,,
3.It,It,,Stephen King,4.24,A clown terrorizes a town,English,Horror,Paperback,1116,Viking,September 15th 1986,,,800000,95,60000,530,12.5
`

func TestLoadBatchesAndDerivesFields(t *testing.T) {
	sender := &fakeSender{respond: func(req recombee.Request) (json.RawMessage, error) {
		return json.RawMessage(`[]`), nil
	}}
	loader := NewLoader(sender, 4, 0) // 2 books per batch, unthrottled

	stats, err := loader.Load(context.Background(), strings.NewReader(catalogCSV))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if stats.Rows != 4 {
		t.Errorf("Rows = %d, want 4", stats.Rows)
	}
	if stats.Items != 3 {
		t.Errorf("Items = %d, want 3", stats.Items)
	}
	if stats.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1 (row without bookId)", stats.Skipped)
	}
	if stats.Batches != 2 {
		t.Errorf("Batches = %d, want 2", stats.Batches)
	}
	if len(sender.requests) != 2 {
		t.Fatalf("requests = %d, want 2 batches", len(sender.requests))
	}

	entries := batchEntries(t, sender.requests[0])
	if len(entries) != 4 {
		t.Fatalf("first batch entries = %d, want 4", len(entries))
	}
	if entries[0]["method"] != "PUT" || entries[0]["path"] != "/items/1.Dune" {
		t.Errorf("entry 0 = %v %v, want PUT /items/1.Dune", entries[0]["method"], entries[0]["path"])
	}

	values := entries[1]["params"].(map[string]any)
	checks := map[string]any{
		"title":           "Dune",
		"author":          "Frank Herbert",
		"series":          "Dune #1",
		"avg_rating":      4.25,
		"pages":           412,
		"num_ratings":     700000,
		"publish_year":    1965, // firstPublishDate wins over publishDate
		"description_len": len("A desert planet saga"),
		"popularity":      700000.0,
		"has_awards":      true,
		"!cascadeCreate":  true,
	}
	for key, want := range checks {
		if got := values[key]; got != want {
			t.Errorf("%s = %v (%T), want %v", key, got, got, want)
		}
	}
	genres, ok := values["genres"].([]string)
	if !ok || len(genres) != 2 || genres[0] != "Science Fiction" || genres[1] != "Classics" {
		t.Errorf("genres = %v, want [Science Fiction Classics]", values["genres"])
	}

	emma := entries[3]["params"].(map[string]any)
	if _, present := emma["price"]; present {
		t.Error("blank price should be omitted, not written as zero")
	}
	if emma["has_awards"] != false {
		t.Errorf("has_awards = %v, want false for a blank awards field", emma["has_awards"])
	}
	if emma["publish_year"] != 1815 {
		t.Errorf("publish_year = %v, want 1815", emma["publish_year"])
	}
	if emma["popularity"] != 600000.0 {
		t.Errorf("popularity = %v, want 600000", emma["popularity"])
	}
}

func TestLoadAbortsOnBatchFailure(t *testing.T) {
	sender := &fakeSender{respond: func(req recombee.Request) (json.RawMessage, error) {
		return nil, &recombee.APIError{StatusCode: 401, Message: "bad token", Operation: "batch"}
	}}
	loader := NewLoader(sender, 2, 0)

	if _, err := loader.Load(context.Background(), strings.NewReader(catalogCSV)); err == nil {
		t.Fatal("Load() should abort when a batch submission fails")
	}
	if len(sender.requests) != 1 {
		t.Errorf("requests after failure = %d, want 1", len(sender.requests))
	}
}

func TestLoadRejectsMissingKeyColumn(t *testing.T) {
	loader := NewLoader(&fakeSender{}, 10, 0)
	_, err := loader.Load(context.Background(), strings.NewReader("title,author\nDune,Frank Herbert\n"))
	if err == nil {
		t.Fatal("Load() should reject input without a bookId column")
	}
}

func TestPublishYear(t *testing.T) {
	tests := []struct {
		name     string
		first    string
		fallback string
		want     int
		ok       bool
	}{
		{"two digit slash date", "08/01/65", "", 1965, true},
		{"four digit slash date", "12/23/1815", "", 1815, true},
		{"ordinal long form", "September 15th 1986", "", 1986, true},
		{"fallback to second column", "", "06/01/05", 2005, true},
		{"first column wins", "08/01/65", "06/01/05", 1965, true},
		{"unparseable then parseable", "not a date", "2001-09-04", 2001, true},
		{"bare year", "1988", "", 1988, true},
		{"both blank", "", "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := publishYear(tt.first, tt.fallback)
			if ok != tt.ok || got != tt.want {
				t.Errorf("publishYear(%q, %q) = %d, %v; want %d, %v",
					tt.first, tt.fallback, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestDescriptionLengthCountsCharacters(t *testing.T) {
	desc := "Călătoria unui erou prin deșert" // multi-byte letters
	values := rowValues(func(col string) string {
		if col == "description" {
			return desc
		}
		return ""
	})

	want := utf8.RuneCountInString(desc)
	if want == len(desc) {
		t.Fatal("test description must contain multi-byte characters")
	}
	if got := values["description_len"]; got != want {
		t.Errorf("description_len = %v, want %d characters (not %d bytes)", got, want, len(desc))
	}
}

func TestParseInt(t *testing.T) {
	if n, err := parseInt("452"); err != nil || n != 452 {
		t.Errorf("parseInt(452) = %d, %v", n, err)
	}
	if n, err := parseInt("452.0"); err != nil || n != 452 {
		t.Errorf("parseInt(452.0) = %d, %v", n, err)
	}
	if _, err := parseInt("n/a"); err == nil {
		t.Error("parseInt(n/a) should fail")
	}
}
