// Bookscout - Personalized Book Recommendations with Recombee
// Copyright 2026 Andrei Catrinei (acatrinei)
// SPDX-License-Identifier: MIT
// https://github.com/acatrinei/bookscout

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/acatrinei/bookscout/internal/books"
	"github.com/acatrinei/bookscout/internal/models"
	"github.com/acatrinei/bookscout/internal/recombee"
	"github.com/acatrinei/bookscout/internal/validation"
)

// BookService is the recommendation surface the handlers dispatch to.
type BookService interface {
	EnsureUser(ctx context.Context, userID string) error
	Profile(ctx context.Context, userID string) (books.UserProfile, error)
	BuildProfile(ctx context.Context, userID string, itemIDs []string) (bool, error)
	Search(ctx context.Context, userID, query string, count int) ([]books.Book, error)
	RecordDetailView(ctx context.Context, userID, itemID string) error
	RateBook(ctx context.Context, userID, itemID string, stars float64) error
	RecommendForUser(ctx context.Context, userID string, count int) ([]books.Book, error)
	SimilarBooks(ctx context.Context, userID, itemID string, count int) ([]books.Book, error)
}

// Handler holds the HTTP handlers of the dashboard API.
type Handler struct {
	service BookService
}

// NewHandler creates a Handler backed by the given service.
func NewHandler(service BookService) *Handler {
	return &Handler{service: service}
}

// respondServiceError maps service failures onto HTTP statuses. Expected
// upstream conditions keep their own codes so clients can distinguish a
// missing entity from an outage.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case recombee.IsNotFound(err):
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Entity does not exist", nil)
	case recombee.IsTransient(err):
		respondError(w, http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE",
			"Recommendation service is unreachable", err)
	default:
		var apiErr *recombee.APIError
		if errors.As(err, &apiErr) {
			respondError(w, http.StatusBadGateway, "UPSTREAM_ERROR", apiErr.Message, err)
			return
		}
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal error", err)
	}
}

// CreateUser handles POST /api/v1/users/{id}.
// Creating a user that already exists succeeds without side effects.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if err := h.service.EnsureUser(r.Context(), userID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusCreated, map[string]string{"user_id": userID})
}

// GetProfile handles GET /api/v1/users/{id}/profile.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	profile, err := h.service.Profile(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, models.ProfileResponse{
		UserID:      userID,
		FavGenres:   profile.FavGenres,
		FavAuthors:  profile.FavAuthors,
		Established: profile.Established(),
	})
}

// BuildProfile handles POST /api/v1/users/{id}/profile.
// The body names the items the user picked during cold-start onboarding.
func (h *Handler) BuildProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req models.BuildProfileRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid JSON body", err)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", verr.Error(), nil)
		return
	}

	written, err := h.service.BuildProfile(r.Context(), userID, req.ItemIDs)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, models.BuildProfileResponse{
		UserID:  userID,
		Written: written,
	})
}

// Search handles GET /api/v1/search?user_id=&q=&count=.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	query := r.URL.Query().Get("q")
	if userID == "" || query == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR",
			"user_id and q query parameters are required", nil)
		return
	}
	count := clampCount(getIntParam(r, "count", 10))

	results, err := h.service.Search(r.Context(), userID, query, count)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, toBookResults(results))
}

// AddRating handles POST /api/v1/ratings.
func (h *Handler) AddRating(w http.ResponseWriter, r *http.Request) {
	var req models.RatingRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid JSON body", err)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", verr.Error(), nil)
		return
	}

	if err := h.service.RateBook(r.Context(), req.UserID, req.ItemID, req.Stars); err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusCreated, map[string]string{
		"user_id": req.UserID,
		"item_id": req.ItemID,
	})
}

// AddView handles POST /api/v1/views.
func (h *Handler) AddView(w http.ResponseWriter, r *http.Request) {
	var req models.ViewRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid JSON body", err)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", verr.Error(), nil)
		return
	}

	if err := h.service.RecordDetailView(r.Context(), req.UserID, req.ItemID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusCreated, map[string]string{
		"user_id": req.UserID,
		"item_id": req.ItemID,
	})
}

// Recommendations handles GET /api/v1/users/{id}/recommendations?count=.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	count := clampCount(getIntParam(r, "count", 10))

	results, err := h.service.RecommendForUser(r.Context(), userID, count)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, toBookResults(results))
}

// Similar handles GET /api/v1/items/{id}/similar?user_id=&count=.
func (h *Handler) Similar(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "id")
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR",
			"user_id query parameter is required", nil)
		return
	}
	count := clampCount(getIntParam(r, "count", 10))

	results, err := h.service.SimilarBooks(r.Context(), userID, itemID, count)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondData(w, http.StatusOK, toBookResults(results))
}

// Health handles GET /api/v1/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func clampCount(count int) int {
	if count < 1 {
		return 1
	}
	if count > 50 {
		return 50
	}
	return count
}

func toBookResults(items []books.Book) []models.BookResult {
	results := make([]models.BookResult, len(items))
	for i, b := range items {
		results[i] = models.BookResult{
			ItemID:    b.ItemID,
			Title:     b.Title,
			Author:    b.Author,
			Genres:    b.Genres,
			AvgRating: b.AvgRating,
		}
	}
	return results
}
