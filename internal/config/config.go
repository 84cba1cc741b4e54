// Bookscout - Personalized Book Recommendations with Recombee
// Copyright 2026 Andrei Catrinei (acatrinei)
// SPDX-License-Identifier: MIT
// https://github.com/acatrinei/bookscout

// Package config holds all application configuration, loaded from environment
// variables and an optional YAML config file via Koanf v2.
//
// Loading order (highest priority wins):
//  1. Environment variables
//  2. Config file (bookscout.yaml, or CONFIG_PATH override)
//  3. Built-in defaults
//
// Required settings:
//   - RECOMBEE_DB_ID: Recombee database identifier
//   - RECOMBEE_API_TOKEN: Recombee private API token
//
// Config is immutable after Load() and safe for concurrent read access.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds all application configuration.
type Config struct {
	Recombee RecombeeConfig `koanf:"recombee"`
	Server   ServerConfig   `koanf:"server"`
	Catalog  CatalogConfig  `koanf:"catalog"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// RecombeeConfig holds the connection settings for the hosted Recombee service.
//
// Environment Variables:
//   - RECOMBEE_DB_ID: database identifier (required)
//   - RECOMBEE_API_TOKEN: private API token used for request signing (required)
//   - RECOMBEE_REGION: service region (default: eu-west)
//   - RECOMBEE_BASE_URI: explicit API base URI, overrides the region mapping
//   - RECOMBEE_SCENARIO: scenario tag for personalized recommendations
//   - RECOMBEE_TIMEOUT: per-request timeout (default: 10s)
type RecombeeConfig struct {
	DatabaseID string `koanf:"db_id" validate:"required"`
	APIToken   string `koanf:"api_token" validate:"required"`

	// Region selects the Recombee cluster. Ignored when BaseURI is set.
	Region string `koanf:"region" validate:"omitempty,oneof=eu-west us-west ap-se ca-east"`

	// BaseURI overrides the regional endpoint, mainly for tests.
	BaseURI string `koanf:"base_uri" validate:"omitempty,url"`

	// Scenario is the opaque ranking-strategy tag sent with user recommendations.
	Scenario string `koanf:"scenario"`

	// Timeout bounds a single HTTP attempt, not the whole retry sequence.
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`

	// MaxAttempts caps transient-failure retries per request (minimum 1).
	MaxAttempts int `koanf:"max_attempts" validate:"gte=1"`

	// RetryBaseDelay is the first backoff delay; it doubles on every attempt.
	RetryBaseDelay time.Duration `koanf:"retry_base_delay" validate:"gt=0"`
}

// ServerConfig holds the dashboard HTTP server settings.
//
// Environment Variables:
//   - SERVER_HOST, SERVER_PORT: listen address (default: 127.0.0.1:8480)
//   - SERVER_TIMEOUT: read/write timeout for the HTTP server
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"gte=1,lte=65535"`
	Timeout         time.Duration `koanf:"timeout" validate:"gt=0"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs" validate:"gte=1"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window" validate:"gt=0"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// CatalogConfig holds bulk-load settings for the book catalog importer.
type CatalogConfig struct {
	// BatchSize is the number of requests submitted per Batch call.
	BatchSize int `koanf:"batch_size" validate:"gte=1"`

	// BatchesPerSecond paces Batch submissions against the remote service.
	// Zero disables pacing.
	BatchesPerSecond float64 `koanf:"batches_per_second" validate:"gte=0"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"omitempty,oneof=trace debug info warn warning error fatal disabled"`
	Format string `koanf:"format" validate:"omitempty,oneof=json console"`
}

// Validate checks the configuration for missing or malformed values.
// Returns a descriptive error naming the first offending field.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if ok := asValidationErrors(err, &verrs); ok && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: field %s failed rule %q", fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// asValidationErrors unwraps err into validator.ValidationErrors.
func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	v, ok := err.(validator.ValidationErrors)
	if ok {
		*target = v
	}
	return ok
}
