package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOfWrappedError(t *testing.T) {
	base := ConflictWrap("image already exists for this item and camera", errors.New("duplicate key"))
	wrapped := fmt.Errorf("ingest: %w", base)

	if KindOf(wrapped) != Conflict {
		t.Fatalf("expected conflict, got %v", KindOf(wrapped))
	}
	if !Is(wrapped, Conflict) || Is(wrapped, NotFound) {
		t.Fatalf("Is mismatch for %v", wrapped)
	}
	if KindOf(errors.New("boom")) != Internal {
		t.Fatalf("plain errors should be internal")
	}
	if Is(nil, Internal) {
		t.Fatalf("nil error has no kind")
	}
}

func TestKindStatusAndCode(t *testing.T) {
	tests := []struct {
		kind   Kind
		status int
		code   string
	}{
		{Authentication, http.StatusUnauthorized, "AUTHENTICATION_ERROR"},
		{Validation, http.StatusBadRequest, "VALIDATION_ERROR"},
		{NotFound, http.StatusNotFound, "NOT_FOUND"},
		{Conflict, http.StatusConflict, "CONFLICT"},
		{Internal, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		if tt.kind.Status() != tt.status || tt.kind.Code() != tt.code {
			t.Fatalf("kind %d: got %d/%s", tt.kind, tt.kind.Status(), tt.kind.Code())
		}
	}
}

func TestInvalidCarriesFieldDetail(t *testing.T) {
	err := Invalid("grade", "grade must be between 0 and 3")
	if err.Kind != Validation {
		t.Fatalf("unexpected kind %v", err.Kind)
	}
	msgs, ok := err.Details["grade"].([]string)
	if !ok || len(msgs) != 1 {
		t.Fatalf("unexpected details %v", err.Details)
	}
}
