// Bookscout - Personalized Book Recommendations with Recombee
// Copyright 2026 Andrei Catrinei (acatrinei)
// SPDX-License-Identifier: MIT
// https://github.com/acatrinei/bookscout

// Package books holds the application layer over the remote recommendation
// service: typed projections of its loosely-typed responses, the profile
// normalization rules, and the user-facing actions (cold start, search,
// rating, recommendations).
package books

import (
	"fmt"
	"strings"
)

// UserProfile is a user's taste signal as stored server-side.
// Genre and author lists are case-insensitively deduplicated before
// persistence; casing and order of first occurrences are preserved.
type UserProfile struct {
	UserID     string   `json:"user_id"`
	FavGenres  []string `json:"fav_genres"`
	FavAuthors []string `json:"fav_authors"`
}

// Established reports whether the profile carries any taste signal.
func (p UserProfile) Established() bool {
	return len(p.FavGenres) > 0 || len(p.FavAuthors) > 0
}

// ParseProfile builds a typed profile from a raw property map, applying the
// normalization rules at the boundary so nothing downstream sees raw shapes.
func ParseProfile(userID string, values map[string]any) UserProfile {
	return UserProfile{
		UserID:     userID,
		FavGenres:  UniqueFold(NormalizeList(values["fav_genres"])),
		FavAuthors: UniqueFold(NormalizeList(values["fav_authors"])),
	}
}

// Book is a read-only projection of a catalog entry. The catalog is owned by
// the remote service; a Book is a transient, request-scoped copy.
type Book struct {
	ItemID    string   `json:"item_id"`
	Title     string   `json:"title,omitempty"`
	Author    string   `json:"author,omitempty"`
	Genres    []string `json:"genres,omitempty"`
	AvgRating *float64 `json:"avg_rating,omitempty"`
}

// ParseBook builds a typed book from a raw property map.
// Falls back from avg_rating to rating, mirroring older catalog loads.
func ParseBook(itemID string, values map[string]any) Book {
	book := Book{
		ItemID: itemID,
		Title:  stringField(values, "title"),
		Author: stringField(values, "author"),
		Genres: NormalizeList(values["genres"]),
	}
	if rating, ok := floatField(values, "avg_rating"); ok {
		book.AvgRating = &rating
	} else if rating, ok := floatField(values, "rating"); ok {
		book.AvgRating = &rating
	}
	return book
}

// Label renders a one-line human-readable description of the book,
// used by both presentation shells.
func (b Book) Label() string {
	title := b.Title
	if title == "" {
		title = "<no title>"
	}
	author := b.Author
	if author == "" {
		author = "<no author>"
	}
	rating := "N/A"
	if b.AvgRating != nil {
		rating = fmt.Sprintf("%.2f", *b.AvgRating)
	}
	return fmt.Sprintf("%s — %s | rating: %s | %s", title, author, rating, strings.Join(b.Genres, ", "))
}

// stringField reads a trimmed string property, tolerating absent or
// non-string values.
func stringField(values map[string]any, key string) string {
	if s, ok := values[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// floatField reads a numeric property, tolerating absent values and the
// integer/float ambiguity of decoded JSON.
func floatField(values map[string]any, key string) (float64, bool) {
	switch v := values[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
