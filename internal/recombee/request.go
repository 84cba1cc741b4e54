// Bookscout - Personalized Book Recommendations with Recombee
// Copyright 2026 Andrei Catrinei (acatrinei)
// SPDX-License-Identifier: MIT
// https://github.com/acatrinei/bookscout

package recombee

import (
	"fmt"
	"net/url"
)

// Request describes one Recombee API operation. A Request is immutable once
// constructed and may be re-sent verbatim on retry.
//
// Params are encoded into the query string, Body into the JSON request body.
// The Operation name is used for logging and metrics only.
type Request struct {
	Method    string
	Path      string
	Params    map[string]string
	Body      map[string]any
	Operation string
}

// escapeID percent-encodes an identifier for use in a request path.
func escapeID(id string) string {
	return url.PathEscape(id)
}

// AddUser adds a user to the database. Returns 409 if the user already exists.
func AddUser(userID string) Request {
	return Request{
		Method:    "PUT",
		Path:      fmt.Sprintf("/users/%s", escapeID(userID)),
		Operation: "add_user",
	}
}

// GetUserValues fetches all stored property values of a user.
// Returns 404 if the user does not exist.
func GetUserValues(userID string) Request {
	return Request{
		Method:    "GET",
		Path:      fmt.Sprintf("/users/%s", escapeID(userID)),
		Operation: "get_user_values",
	}
}

// SetUserValues replaces the given property values of a user.
// With cascadeCreate the user is created if it does not exist yet.
func SetUserValues(userID string, values map[string]any, cascadeCreate bool) Request {
	body := make(map[string]any, len(values)+1)
	for k, v := range values {
		body[k] = v
	}
	body["!cascadeCreate"] = cascadeCreate
	return Request{
		Method:    "POST",
		Path:      fmt.Sprintf("/users/%s", escapeID(userID)),
		Body:      body,
		Operation: "set_user_values",
	}
}

// AddItem adds an item to the catalog. Returns 409 if the item already exists.
func AddItem(itemID string) Request {
	return Request{
		Method:    "PUT",
		Path:      fmt.Sprintf("/items/%s", escapeID(itemID)),
		Operation: "add_item",
	}
}

// GetItemValues fetches all stored property values of an item.
func GetItemValues(itemID string) Request {
	return Request{
		Method:    "GET",
		Path:      fmt.Sprintf("/items/%s", escapeID(itemID)),
		Operation: "get_item_values",
	}
}

// SetItemValues replaces the given property values of an item.
func SetItemValues(itemID string, values map[string]any, cascadeCreate bool) Request {
	body := make(map[string]any, len(values)+1)
	for k, v := range values {
		body[k] = v
	}
	body["!cascadeCreate"] = cascadeCreate
	return Request{
		Method:    "POST",
		Path:      fmt.Sprintf("/items/%s", escapeID(itemID)),
		Body:      body,
		Operation: "set_item_values",
	}
}

// AddItemProperty declares a typed item property in the database schema.
// Valid property types: int, double, string, boolean, timestamp, set, image, imageList.
func AddItemProperty(name, propertyType string) Request {
	return Request{
		Method:    "PUT",
		Path:      fmt.Sprintf("/items/properties/%s", escapeID(name)),
		Params:    map[string]string{"type": propertyType},
		Operation: "add_item_property",
	}
}

// SearchItems performs a personalized full-text search over item properties.
func SearchItems(userID, query string, count int, returnProperties, cascadeCreate bool) Request {
	return Request{
		Method: "POST",
		Path:   fmt.Sprintf("/search/users/%s/items/", escapeID(userID)),
		Body: map[string]any{
			"searchQuery":      query,
			"count":            count,
			"returnProperties": returnProperties,
			"cascadeCreate":    cascadeCreate,
		},
		Operation: "search_items",
	}
}

// AddDetailView records an implicit detail-view interaction of a user on an item.
func AddDetailView(userID, itemID string, cascadeCreate bool) Request {
	return Request{
		Method: "POST",
		Path:   "/detailviews/",
		Body: map[string]any{
			"userId":        userID,
			"itemId":        itemID,
			"cascadeCreate": cascadeCreate,
		},
		Operation: "add_detail_view",
	}
}

// AddRating records an explicit rating of an item by a user.
// The rating must be in [-1, 1].
func AddRating(userID, itemID string, rating float64, cascadeCreate bool) Request {
	return Request{
		Method: "POST",
		Path:   "/ratings/",
		Body: map[string]any{
			"userId":        userID,
			"itemId":        itemID,
			"rating":        rating,
			"cascadeCreate": cascadeCreate,
		},
		Operation: "add_rating",
	}
}

// RecommendItemsToUser requests personalized recommendations for a user.
// The scenario tag selects a pre-configured ranking strategy; empty omits it.
func RecommendItemsToUser(userID string, count int, returnProperties bool, scenario string) Request {
	body := map[string]any{
		"count":            count,
		"returnProperties": returnProperties,
	}
	if scenario != "" {
		body["scenario"] = scenario
	}
	return Request{
		Method:    "POST",
		Path:      fmt.Sprintf("/recomms/users/%s/items/", escapeID(userID)),
		Body:      body,
		Operation: "recommend_items_to_user",
	}
}

// RecommendItemsToItem requests items similar to the given item, personalized
// for the target user.
func RecommendItemsToItem(itemID, targetUserID string, count int, returnProperties bool) Request {
	return Request{
		Method: "POST",
		Path:   fmt.Sprintf("/recomms/items/%s/items/", escapeID(itemID)),
		Body: map[string]any{
			"targetUserId":     targetUserID,
			"count":            count,
			"returnProperties": returnProperties,
		},
		Operation: "recommend_items_to_item",
	}
}

// Batch bundles multiple requests into a single atomic submission.
// Sub-request query params and bodies are merged into the per-entry params map,
// matching the Recombee batch wire format.
func Batch(requests []Request) Request {
	entries := make([]map[string]any, 0, len(requests))
	for _, r := range requests {
		entry := map[string]any{
			"method": r.Method,
			"path":   r.Path,
		}
		params := make(map[string]any, len(r.Params)+len(r.Body))
		for k, v := range r.Params {
			params[k] = v
		}
		for k, v := range r.Body {
			params[k] = v
		}
		if len(params) > 0 {
			entry["params"] = params
		}
		entries = append(entries, entry)
	}
	return Request{
		Method:    "POST",
		Path:      "/batch/",
		Body:      map[string]any{"requests": entries},
		Operation: "batch",
	}
}
