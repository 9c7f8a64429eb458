package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestWrap(t *testing.T) {
	plain := fmt.Errorf("disk on fire")
	wrapped := Wrap(plain, "LOAD_FAILED", "Failed to load", http.StatusInternalServerError)

	if wrapped.Code != "LOAD_FAILED" || wrapped.Status != http.StatusInternalServerError {
		t.Errorf("Unexpected wrap result: %+v", wrapped)
	}
	if wrapped.Details != "disk on fire" {
		t.Errorf("Expected details from the original error, got %q", wrapped.Details)
	}
}

func TestWrapKeepsAPIError(t *testing.T) {
	inner := fmt.Errorf("lookup: %w", ErrNotFound)
	if got := Wrap(inner, "OTHER", "Other", http.StatusTeapot); got != ErrNotFound {
		t.Errorf("Expected the wrapped sentinel back, got %+v", got)
	}
}

func TestWithDetailsCopies(t *testing.T) {
	detailed := ErrInvalidInput.WithDetails("lat is required")
	if detailed.Details != "lat is required" {
		t.Errorf("Expected details to be set, got %q", detailed.Details)
	}
	if ErrInvalidInput.Details != "" {
		t.Error("Sentinel error was modified")
	}
}
