// Bookscout - Personalized Book Recommendations with Recombee
// Copyright 2026 Andrei Catrinei (acatrinei)
// SPDX-License-Identifier: MIT
// https://github.com/acatrinei/bookscout

// Package models defines the wire types shared by the HTTP API.
package models

import "time"

// APIResponse is the envelope of every JSON API response.
type APIResponse struct {
	Status   string    `json:"status"`
	Data     any       `json:"data"`
	Metadata Metadata  `json:"metadata"`
	Error    *APIError `json:"error,omitempty"`
}

// Metadata carries response metadata for observability.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	RecommID  string    `json:"recomm_id,omitempty"`
}

// APIError is the structured error payload.
//
// Common codes: VALIDATION_ERROR, NOT_FOUND, UPSTREAM_ERROR,
// UPSTREAM_UNAVAILABLE, INTERNAL_ERROR.
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ProfileResponse is the stored taste profile of a user.
type ProfileResponse struct {
	UserID      string   `json:"user_id"`
	FavGenres   []string `json:"fav_genres"`
	FavAuthors  []string `json:"fav_authors"`
	Established bool     `json:"established"`
}

// BuildProfileRequest asks the server to derive a profile from picked items.
type BuildProfileRequest struct {
	ItemIDs []string `json:"item_ids" validate:"required,min=1,max=20,dive,required"`
}

// BuildProfileResponse reports whether a profile was written.
type BuildProfileResponse struct {
	UserID  string `json:"user_id"`
	Written bool   `json:"written"`
}

// RatingRequest records an explicit star rating.
type RatingRequest struct {
	UserID string  `json:"user_id" validate:"required"`
	ItemID string  `json:"item_id" validate:"required"`
	Stars  float64 `json:"stars" validate:"gte=1,lte=5"`
}

// ViewRequest records an implicit detail-view interaction.
type ViewRequest struct {
	UserID string `json:"user_id" validate:"required"`
	ItemID string `json:"item_id" validate:"required"`
}

// BookResult is one catalog item in a search or recommendation response.
type BookResult struct {
	ItemID    string   `json:"item_id"`
	Title     string   `json:"title"`
	Author    string   `json:"author"`
	Genres    []string `json:"genres,omitempty"`
	AvgRating *float64 `json:"avg_rating,omitempty"`
}
