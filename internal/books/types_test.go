// Bookscout - Personalized Book Recommendations with Recombee
// Copyright 2026 Andrei Catrinei (acatrinei)
// SPDX-License-Identifier: MIT
// https://github.com/acatrinei/bookscout

package books

import (
	"reflect"
	"testing"
)

func TestParseBook(t *testing.T) {
	t.Parallel()

	values := map[string]any{
		"title":      "The Dispossessed",
		"author":     "Ursula K. Le Guin",
		"genres":     []any{"Sci-Fi", []any{"Utopia"}, "Sci-Fi"},
		"avg_rating": 4.23,
	}

	book := ParseBook("book-1", values)
	if book.ItemID != "book-1" {
		t.Errorf("item id = %q, want book-1", book.ItemID)
	}
	if book.Title != "The Dispossessed" {
		t.Errorf("title = %q", book.Title)
	}
	if book.Author != "Ursula K. Le Guin" {
		t.Errorf("author = %q", book.Author)
	}
	// Normalized but not deduplicated: that happens at profile build time.
	want := []string{"Sci-Fi", "Utopia", "Sci-Fi"}
	if !reflect.DeepEqual(book.Genres, want) {
		t.Errorf("genres = %v, want %v", book.Genres, want)
	}
	if book.AvgRating == nil || *book.AvgRating != 4.23 {
		t.Errorf("avg rating = %v, want 4.23", book.AvgRating)
	}
}

func TestParseBookMissingFields(t *testing.T) {
	t.Parallel()

	book := ParseBook("book-2", map[string]any{})
	if book.Title != "" || book.Author != "" {
		t.Errorf("empty values should parse to empty fields, got %+v", book)
	}
	if len(book.Genres) != 0 {
		t.Errorf("genres = %v, want empty", book.Genres)
	}
	if book.AvgRating != nil {
		t.Errorf("avg rating = %v, want nil", book.AvgRating)
	}
}

func TestParseBookRatingFallback(t *testing.T) {
	t.Parallel()

	book := ParseBook("book-3", map[string]any{"rating": 3.5})
	if book.AvgRating == nil || *book.AvgRating != 3.5 {
		t.Errorf("avg rating = %v, want fallback to rating field", book.AvgRating)
	}
}

func TestBookLabel(t *testing.T) {
	t.Parallel()

	rating := 4.5
	tests := []struct {
		name     string
		book     Book
		expected string
	}{
		{
			"full book",
			Book{Title: "Dune", Author: "Frank Herbert", Genres: []string{"Sci-Fi", "Classics"}, AvgRating: &rating},
			"Dune — Frank Herbert | rating: 4.50 | Sci-Fi, Classics",
		},
		{
			"missing everything",
			Book{},
			"<no title> — <no author> | rating: N/A | ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.book.Label(); got != tt.expected {
				t.Errorf("Label() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestParseProfile(t *testing.T) {
	t.Parallel()

	values := map[string]any{
		"fav_genres":  []any{"Drama", "drama", "Sci-Fi"},
		"fav_authors": "Le Guin",
	}

	profile := ParseProfile("alice", values)
	if profile.UserID != "alice" {
		t.Errorf("user id = %q, want alice", profile.UserID)
	}
	if !reflect.DeepEqual(profile.FavGenres, []string{"Drama", "Sci-Fi"}) {
		t.Errorf("fav genres = %v", profile.FavGenres)
	}
	if !reflect.DeepEqual(profile.FavAuthors, []string{"Le Guin"}) {
		t.Errorf("fav authors = %v", profile.FavAuthors)
	}
	if !profile.Established() {
		t.Error("profile with genres and authors should be established")
	}
}

func TestProfileEstablished(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		profile  UserProfile
		expected bool
	}{
		{"empty", UserProfile{}, false},
		{"genres only", UserProfile{FavGenres: []string{"Drama"}}, true},
		{"authors only", UserProfile{FavAuthors: []string{"Le Guin"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.profile.Established(); got != tt.expected {
				t.Errorf("Established() = %v, want %v", got, tt.expected)
			}
		})
	}
}
