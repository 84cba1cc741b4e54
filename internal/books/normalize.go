// Bookscout - Personalized Book Recommendations with Recombee
// Copyright 2026 Andrei Catrinei (acatrinei)
// SPDX-License-Identifier: MIT
// https://github.com/acatrinei/bookscout

package books

import (
	"fmt"
	"strings"
)

// NormalizeList canonicalizes a loosely-typed property value into a clean,
// ordered list of non-empty strings. The remote service returns set-typed
// properties in inconsistent shapes (scalar, list, occasionally a list nested
// one level), and this is the single place that flattens them.
//
// Rules:
//   - nil or an empty sequence yields an empty result
//   - a scalar yields a one-element result, stringified and trimmed
//   - a sequence is walked in order, each element stringified and trimmed
//   - a nested sequence is flattened one level with the same per-element rule
//   - elements that are empty after trimming are dropped
//
// NormalizeList never fails: an unexpected shape degrades to stringifying the
// whole value as one element. Deduplication is the caller's responsibility.
func NormalizeList(value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		return appendTrimmed(nil, v)
	case []string:
		out := make([]string, 0, len(v))
		for _, s := range v {
			out = appendTrimmed(out, s)
		}
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, elem := range v {
			switch nested := elem.(type) {
			case []any:
				for _, inner := range nested {
					out = appendTrimmed(out, stringify(inner))
				}
			case []string:
				for _, inner := range nested {
					out = appendTrimmed(out, inner)
				}
			default:
				out = appendTrimmed(out, stringify(elem))
			}
		}
		return out
	default:
		return appendTrimmed(nil, stringify(value))
	}
}

// UniqueFold deduplicates a list case-insensitively, keeping the first
// occurrence's original casing and the relative order of first occurrences.
// Idempotent: applying it twice gives the same result.
func UniqueFold(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

// appendTrimmed appends s trimmed, dropping it when empty.
func appendTrimmed(out []string, s string) []string {
	if trimmed := strings.TrimSpace(s); trimmed != "" {
		return append(out, trimmed)
	}
	return out
}

// stringify renders a scalar as a string. JSON numbers arrive as float64;
// integral values print without a trailing ".0".
func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if f, ok := v.(float64); ok && f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprint(v)
}
