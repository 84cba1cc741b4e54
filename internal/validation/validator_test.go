// Bookscout - Personalized Book Recommendations with Recombee
// Copyright 2026 Andrei Catrinei (acatrinei)
// SPDX-License-Identifier: MIT
// https://github.com/acatrinei/bookscout

package validation

import (
	"strings"
	"testing"
)

type ratingRequest struct {
	UserID string  `validate:"required"`
	ItemID string  `validate:"required"`
	Stars  float64 `validate:"gte=1,lte=5"`
}

func TestValidateStructPasses(t *testing.T) {
	req := ratingRequest{UserID: "alice", ItemID: "book-1", Stars: 4}
	if err := ValidateStruct(&req); err != nil {
		t.Fatalf("ValidateStruct() = %v, want nil", err)
	}
}

func TestValidateStructSingleFailure(t *testing.T) {
	req := ratingRequest{UserID: "alice", ItemID: "book-1", Stars: 9}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("ValidateStruct() should fail for an out-of-range rating")
	}
	if len(err.Fields()) != 1 {
		t.Fatalf("field errors = %d, want 1", len(err.Fields()))
	}
	fe := err.Fields()[0]
	if fe.Field != "Stars" || fe.Tag != "lte" {
		t.Errorf("failure = %s/%s, want Stars/lte", fe.Field, fe.Tag)
	}
	if !strings.Contains(err.Error(), "less than or equal to 5") {
		t.Errorf("message = %q, want a translated lte message", err.Error())
	}
	if err.Details()["field"] != "Stars" {
		t.Errorf("details = %v, want single-field shape", err.Details())
	}
}

func TestValidateStructMultipleFailures(t *testing.T) {
	req := ratingRequest{Stars: 0}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("ValidateStruct() should fail")
	}
	if len(err.Fields()) != 3 {
		t.Fatalf("field errors = %d, want 3", len(err.Fields()))
	}
	if _, ok := err.Details()["fields"]; !ok {
		t.Errorf("details = %v, want multi-field shape", err.Details())
	}
}

func TestValidatorSingleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator() should return the same instance")
	}
}
