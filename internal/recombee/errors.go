// Bookscout - Personalized Book Recommendations with Recombee
// Copyright 2026 Andrei Catrinei (acatrinei)
// SPDX-License-Identifier: MIT
// https://github.com/acatrinei/bookscout

package recombee

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a status-coded error returned by the Recombee API.
//
// The remote service answered, so API errors are never retried. Expected
// outcomes are detected with the IsConflict and IsNotFound predicates rather
// than by matching status codes at every call site.
type APIError struct {
	// StatusCode is the HTTP status returned by the service.
	StatusCode int

	// Message is the error description from the response body, if any.
	Message string

	// Operation is the remote operation that failed (e.g. "add_user").
	Operation string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("recombee: %s failed with status %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("recombee: %s failed with status %d: %s", e.Operation, e.StatusCode, e.Message)
}

// TransportError is a connection-level failure: the remote service did not
// respond (timeout, refused connection, reset). Transport errors are the only
// failure class retried by SendWithRetry.
type TransportError struct {
	// Operation is the remote operation that failed.
	Operation string

	// Err is the underlying network error.
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("recombee: %s did not complete: %v", e.Operation, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsConflict reports whether err is an API error with status 409,
// meaning the entity already exists. Creation operations treat this as success.
func IsConflict(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict
}

// IsNotFound reports whether err is an API error with status 404.
// Profile lookups treat this as a valid absence signal, not a failure.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsTransient reports whether err is a connection-level failure that is
// expected to resolve on retry. Status-coded responses are never transient,
// including 429 and 5xx: the service responded, so retrying is the caller's
// decision, not the transport's.
func IsTransient(err error) bool {
	var terr *TransportError
	return errors.As(err, &terr)
}
