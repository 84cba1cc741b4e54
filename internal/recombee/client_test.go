// Bookscout - Personalized Book Recommendations with Recombee
// Copyright 2026 Andrei Catrinei (acatrinei)
// SPDX-License-Identifier: MIT
// https://github.com/acatrinei/bookscout

package recombee

import (
	"context"
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // matches the API signing scheme
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/acatrinei/bookscout/internal/config"
)

// newTestClient builds a client pointed at the given test server.
func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	return New(config.RecombeeConfig{
		DatabaseID:     "test-db",
		APIToken:       "test-token",
		BaseURI:        serverURL,
		Timeout:        50 * time.Millisecond,
		MaxAttempts:    3,
		RetryBaseDelay: 5 * time.Millisecond,
	})
}

func TestSendWithRetrySuccessFirstAttempt(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`"ok"`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	raw, err := client.SendWithRetry(context.Background(), AddUser("alice"))
	if err != nil {
		t.Fatalf("SendWithRetry() failed: %v", err)
	}
	if string(raw) != `"ok"` {
		t.Errorf("response = %s, want \"ok\"", raw)
	}
	if got := attempts.Load(); got != 1 {
		t.Errorf("attempts = %d, want 1 (no retries after success)", got)
	}
}

func TestSendWithRetryTransientExhaustsAttempts(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		time.Sleep(300 * time.Millisecond) // outlives the 50ms client timeout
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	start := time.Now()
	_, err := client.SendWithRetry(context.Background(), GetUserValues("alice"))
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("SendWithRetry() should fail when every attempt times out")
	}
	if !IsTransient(err) {
		t.Errorf("error should be classified transient, got %v", err)
	}
	if got := attempts.Load(); got != 3 {
		t.Errorf("attempts = %d, want exactly 3", got)
	}
	// Two backoff sleeps: base (5ms) + 2*base (10ms). The last attempt does
	// not sleep. Total floor: 3 timeouts + 15ms of backoff.
	if minimum := 3*50*time.Millisecond + 15*time.Millisecond; elapsed < minimum {
		t.Errorf("elapsed = %v, want at least %v (timeouts plus backoff)", elapsed, minimum)
	}
}

func TestSendWithRetryNonTransientImmediate(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"rating must be between -1 and 1"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.SendWithRetry(context.Background(), AddRating("alice", "book-1", 3.0, true))

	if err == nil {
		t.Fatal("SendWithRetry() should surface a 400 immediately")
	}
	if got := attempts.Load(); got != 1 {
		t.Errorf("attempts = %d, want exactly 1 (no retry on status-coded errors)", got)
	}
	if IsTransient(err) {
		t.Error("status-coded error must not be classified transient")
	}
	if !strings.Contains(err.Error(), "rating must be between -1 and 1") {
		t.Errorf("error should carry the remote message, got %v", err)
	}
}

func TestSendWithRetryClassification(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		isConflict bool
		isNotFound bool
	}{
		{"conflict", http.StatusConflict, `{"message":"user already exists"}`, true, false},
		{"not found", http.StatusNotFound, `{"message":"user does not exist"}`, false, true},
		{"server error", http.StatusInternalServerError, `{"message":"boom"}`, false, false},
		{"rate limited", http.StatusTooManyRequests, `{"message":"slow down"}`, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newTestClient(t, server.URL)
			_, err := client.SendWithRetry(context.Background(), AddUser("alice"))
			if err == nil {
				t.Fatal("expected an error")
			}

			if got := IsConflict(err); got != tt.isConflict {
				t.Errorf("IsConflict = %v, want %v", got, tt.isConflict)
			}
			if got := IsNotFound(err); got != tt.isNotFound {
				t.Errorf("IsNotFound = %v, want %v", got, tt.isNotFound)
			}
			if IsTransient(err) {
				t.Error("status-coded errors are never transient")
			}
		})
	}
}

func TestSendWithRetryContextCancelsBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer server.Close()

	client := New(config.RecombeeConfig{
		DatabaseID:     "test-db",
		APIToken:       "test-token",
		BaseURI:        server.URL,
		Timeout:        50 * time.Millisecond,
		MaxAttempts:    5,
		RetryBaseDelay: 10 * time.Second, // the cancel must win, not the backoff
	})

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.SendWithRetry(ctx, GetUserValues("alice"))
	if err == nil {
		t.Fatal("SendWithRetry() should fail when the context expires")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("cancellation took %v, backoff wait was not interrupted", elapsed)
	}
}

func TestRequestSigning(t *testing.T) {
	var gotURI string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.URL.RequestURI()
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	client.now = func() time.Time { return time.Unix(1700000000, 0) }

	if _, err := client.SendWithRetry(context.Background(), GetItemValues("book 1")); err != nil {
		t.Fatalf("SendWithRetry() failed: %v", err)
	}

	if !strings.HasPrefix(gotURI, "/test-db/items/book%201?") {
		t.Errorf("URI = %q, want database-qualified escaped path", gotURI)
	}
	if !strings.Contains(gotURI, "hmac_timestamp=1700000000") {
		t.Errorf("URI = %q, want signing timestamp", gotURI)
	}

	// The signature must verify against the path the server received.
	idx := strings.LastIndex(gotURI, "&hmac_sign=")
	if idx < 0 {
		t.Fatalf("URI = %q, want hmac_sign parameter", gotURI)
	}
	signed, signature := gotURI[:idx], gotURI[idx+len("&hmac_sign="):]

	mac := hmac.New(sha1.New, []byte("test-token"))
	mac.Write([]byte(signed))
	if expected := hex.EncodeToString(mac.Sum(nil)); signature != expected {
		t.Errorf("signature = %q, want %q", signature, expected)
	}
}

func TestSendEncodesBody(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		w.Write([]byte(`"ok"`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	req := SetUserValues("alice", map[string]any{
		"fav_genres":  []string{"Sci-Fi"},
		"fav_authors": []string{"Le Guin"},
	}, true)

	if _, err := client.SendWithRetry(context.Background(), req); err != nil {
		t.Fatalf("SendWithRetry() failed: %v", err)
	}

	if gotBody["!cascadeCreate"] != true {
		t.Errorf("body cascadeCreate = %v, want true", gotBody["!cascadeCreate"])
	}
	genres, ok := gotBody["fav_genres"].([]any)
	if !ok || len(genres) != 1 || genres[0] != "Sci-Fi" {
		t.Errorf("body fav_genres = %v, want [Sci-Fi]", gotBody["fav_genres"])
	}
}

func TestNewDefaultsRegion(t *testing.T) {
	client := New(config.RecombeeConfig{
		DatabaseID:  "db",
		APIToken:    "t",
		Region:      "us-west",
		Timeout:     time.Second,
		MaxAttempts: 3,
	})
	if client.baseURI != "https://rapi-us-west.recombee.com" {
		t.Errorf("baseURI = %q, want us-west endpoint", client.baseURI)
	}

	fallback := New(config.RecombeeConfig{DatabaseID: "db", APIToken: "t"})
	if fallback.baseURI != "https://rapi-eu-west.recombee.com" {
		t.Errorf("baseURI = %q, want eu-west fallback", fallback.baseURI)
	}
	if fallback.maxAttempts != 1 {
		t.Errorf("maxAttempts = %d, want floor of 1", fallback.maxAttempts)
	}
}
