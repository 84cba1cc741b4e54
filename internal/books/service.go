// Bookscout - Personalized Book Recommendations with Recombee
// Copyright 2026 Andrei Catrinei (acatrinei)
// SPDX-License-Identifier: MIT
// https://github.com/acatrinei/bookscout

package books

import (
	"context"
	"fmt"
	"time"

	"github.com/acatrinei/bookscout/internal/cache"
	"github.com/acatrinei/bookscout/internal/logging"
	"github.com/acatrinei/bookscout/internal/recombee"
)

// itemCacheTTL bounds how long fetched item attributes are reused. Catalog
// attributes change rarely; a short TTL keeps a long-lived process honest.
const itemCacheTTL = 5 * time.Minute

// Service exposes the user-facing actions over the remote recommendation
// service. All durable state lives remotely; the only local state is a
// short-lived cache of item attributes. Safe for concurrent use across
// independent user sessions; two concurrent writes for the same user race
// at the remote side (last write wins).
type Service struct {
	client   recombee.Sender
	scenario string
	items    *cache.Cache[Book]
}

// NewService creates the application service. The scenario tag is attached to
// recommend-for-user requests; empty disables it.
func NewService(client recombee.Sender, scenario string) *Service {
	return &Service{
		client:   client,
		scenario: scenario,
		items:    cache.New[Book](itemCacheTTL),
	}
}

// EnsureUser creates the user on the remote service if missing. A conflict
// (user already exists) is success. Creation is best-effort advisory: any
// other failure is returned for reporting, but callers keep going.
func (s *Service) EnsureUser(ctx context.Context, userID string) error {
	_, err := s.client.SendWithRetry(ctx, recombee.AddUser(userID))
	if err == nil || recombee.IsConflict(err) {
		return nil
	}
	return fmt.Errorf("ensure user %s: %w", userID, err)
}

// HasProfile reports whether the user already carries a taste profile.
// A user the remote service has never seen is the cold-start case and yields
// false, not an error.
func (s *Service) HasProfile(ctx context.Context, userID string) (bool, error) {
	raw, err := s.client.SendWithRetry(ctx, recombee.GetUserValues(userID))
	if err != nil {
		if recombee.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("fetch profile for %s: %w", userID, err)
	}

	values, err := recombee.DecodeValues(raw)
	if err != nil {
		return false, fmt.Errorf("fetch profile for %s: %w", userID, err)
	}
	return ParseProfile(userID, values).Established(), nil
}

// Profile fetches and normalizes the stored taste profile of a user.
func (s *Service) Profile(ctx context.Context, userID string) (UserProfile, error) {
	raw, err := s.client.SendWithRetry(ctx, recombee.GetUserValues(userID))
	if err != nil {
		return UserProfile{UserID: userID}, fmt.Errorf("fetch profile for %s: %w", userID, err)
	}
	values, err := recombee.DecodeValues(raw)
	if err != nil {
		return UserProfile{UserID: userID}, fmt.Errorf("fetch profile for %s: %w", userID, err)
	}
	return ParseProfile(userID, values), nil
}

// BuildProfile runs the cold-start flow: it fetches each picked item, merges
// authors and genres into a deduplicated profile, and persists it as a full
// replacement of any previous profile.
//
// The flow is not transactional across items. An item that cannot be fetched
// or decoded is skipped with a log line and the rest still contribute; only
// the final persistence write can fail the call. Returns true when a profile
// was written, false when the picked items yielded no taste signal at all.
func (s *Service) BuildProfile(ctx context.Context, userID string, itemIDs []string) (bool, error) {
	var authors, genres []string

	for _, itemID := range itemIDs {
		book, err := s.fetchBook(ctx, itemID)
		if err != nil {
			logging.Warn().Str("item", itemID).Err(err).Msg("skipping unreadable item during cold start")
			continue
		}

		if book.Author != "" {
			authors = append(authors, book.Author)
		}
		genres = append(genres, book.Genres...)
	}

	// Second normalization pass is deliberate: it is a no-op on clean input
	// and keeps the persisted shape canonical regardless of what the per-item
	// parsing produced.
	authors = UniqueFold(NormalizeList(authors))
	genres = UniqueFold(NormalizeList(genres))

	if len(authors) == 0 && len(genres) == 0 {
		return false, nil
	}

	values := map[string]any{
		"fav_genres":  genres,
		"fav_authors": authors,
	}
	if _, err := s.client.SendWithRetry(ctx, recombee.SetUserValues(userID, values, true)); err != nil {
		return false, fmt.Errorf("save profile for %s: %w", userID, err)
	}

	logging.Info().
		Str("user", userID).
		Int("genres", len(genres)).
		Int("authors", len(authors)).
		Msg("cold-start profile saved")
	return true, nil
}

// fetchBook returns the attributes of one catalog item, served from the
// item cache when a recent copy exists.
func (s *Service) fetchBook(ctx context.Context, itemID string) (Book, error) {
	if book, ok := s.items.Get(itemID); ok {
		return book, nil
	}

	raw, err := s.client.SendWithRetry(ctx, recombee.GetItemValues(itemID))
	if err != nil {
		return Book{}, err
	}
	values, err := recombee.DecodeValues(raw)
	if err != nil {
		return Book{}, err
	}

	book := ParseBook(itemID, values)
	s.items.Set(itemID, book)
	return book, nil
}

// Search runs a personalized full-text title search and returns typed results.
func (s *Service) Search(ctx context.Context, userID, query string, count int) ([]Book, error) {
	raw, err := s.client.SendWithRetry(ctx, recombee.SearchItems(userID, query, count, true, true))
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return decodeBooks(raw)
}

// RecordDetailView registers an implicit detail-view signal for the item.
func (s *Service) RecordDetailView(ctx context.Context, userID, itemID string) error {
	if _, err := s.client.SendWithRetry(ctx, recombee.AddDetailView(userID, itemID, true)); err != nil {
		return fmt.Errorf("record detail view of %s: %w", itemID, err)
	}
	return nil
}

// StarsToRating converts a 1-5 star rating to the service's [-1, 1] scale:
// 1 star maps to -1, 3 stars to 0, 5 stars to 1.
func StarsToRating(stars float64) float64 {
	return (stars - 3) / 2
}

// RateBook records an explicit star rating (1-5) for the item.
func (s *Service) RateBook(ctx context.Context, userID, itemID string, stars float64) error {
	if stars < 1 || stars > 5 {
		return fmt.Errorf("rating %.1f out of range: must be between 1 and 5", stars)
	}
	req := recombee.AddRating(userID, itemID, StarsToRating(stars), true)
	if _, err := s.client.SendWithRetry(ctx, req); err != nil {
		return fmt.Errorf("rate %s: %w", itemID, err)
	}
	return nil
}

// RecommendForUser returns personalized recommendations, ranked by the
// configured scenario.
func (s *Service) RecommendForUser(ctx context.Context, userID string, count int) ([]Book, error) {
	raw, err := s.client.SendWithRetry(ctx, recombee.RecommendItemsToUser(userID, count, true, s.scenario))
	if err != nil {
		return nil, fmt.Errorf("recommend for %s: %w", userID, err)
	}
	return decodeBooks(raw)
}

// SimilarBooks returns items similar to the given one, personalized for the user.
func (s *Service) SimilarBooks(ctx context.Context, userID, itemID string, count int) ([]Book, error) {
	raw, err := s.client.SendWithRetry(ctx, recombee.RecommendItemsToItem(itemID, userID, count, true))
	if err != nil {
		return nil, fmt.Errorf("similar to %s: %w", itemID, err)
	}
	return decodeBooks(raw)
}

// decodeBooks converts a ranked-list response into typed books.
func decodeBooks(raw []byte) ([]Book, error) {
	recs, err := recombee.DecodeRecommendations(raw)
	if err != nil {
		return nil, err
	}
	out := make([]Book, 0, len(recs.Recomms))
	for _, rec := range recs.Recomms {
		out = append(out, ParseBook(rec.ID, rec.Values))
	}
	return out, nil
}
