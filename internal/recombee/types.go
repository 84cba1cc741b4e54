// Bookscout - Personalized Book Recommendations with Recombee
// Copyright 2026 Andrei Catrinei (acatrinei)
// SPDX-License-Identifier: MIT
// https://github.com/acatrinei/bookscout

package recombee

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Recommendation is one entry of a recommendation or search response.
type Recommendation struct {
	// ID is the item identifier.
	ID string `json:"id"`

	// Values holds the item properties when returnProperties was requested.
	Values map[string]any `json:"values"`
}

// Recommendations is the response shape shared by search, recommend-for-user
// and recommend-similar operations.
type Recommendations struct {
	// RecommID identifies the recommendation request for feedback reporting.
	RecommID string `json:"recommId"`

	// Recomms is the ranked result list.
	Recomms []Recommendation `json:"recomms"`
}

// BatchResult is the outcome of one sub-request of a Batch submission.
type BatchResult struct {
	// Code is the HTTP-style status code of the sub-request.
	Code int `json:"code"`

	// JSON is the raw sub-response payload.
	JSON json.RawMessage `json:"json"`
}

// DecodeValues decodes a property-map response (GetUserValues, GetItemValues).
func DecodeValues(raw json.RawMessage) (map[string]any, error) {
	var values map[string]any
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("decode property values: %w", err)
	}
	return values, nil
}

// DecodeRecommendations decodes a ranked-list response.
func DecodeRecommendations(raw json.RawMessage) (*Recommendations, error) {
	var recs Recommendations
	if err := json.Unmarshal(raw, &recs); err != nil {
		return nil, fmt.Errorf("decode recommendations: %w", err)
	}
	return &recs, nil
}

// DecodeBatchResults decodes the per-request outcomes of a Batch submission.
func DecodeBatchResults(raw json.RawMessage) ([]BatchResult, error) {
	var results []BatchResult
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, fmt.Errorf("decode batch results: %w", err)
	}
	return results, nil
}
