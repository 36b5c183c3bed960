package faults

import (
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestIsCategory(t *testing.T) {
	t.Parallel()

	err := NewTypedError(ValidationError, "invalid input", nil)
	if !IsCategory(err, ValidationError) {
		t.Fatalf("expected validation category match")
	}
	if IsCategory(err, NotFoundError) {
		t.Fatalf("expected not-found category mismatch")
	}

	wrapped := errors.New("wrap: " + err.Error())
	if IsCategory(wrapped, ValidationError) {
		t.Fatalf("plain wrapped string error must not match typed category")
	}

	joined := errors.Join(err, errors.New("other"))
	if !IsCategory(joined, ValidationError) {
		t.Fatalf("expected category match through errors.Join")
	}
}

func TestCategoryOfPrefersWrappingTypedError(t *testing.T) {
	t.Parallel()

	apiErr := NewAPIError(NotFoundError, http.StatusNotFound, "Not Found", "missing")
	wrapped := NewTypedError(InternalError, "lookup failed", apiErr)

	category, ok := CategoryOf(wrapped)
	if !ok || category != InternalError {
		t.Fatalf("expected wrapping category InternalError, got %q (ok=%v)", category, ok)
	}
	if !IsCategory(apiErr, NotFoundError) {
		t.Fatalf("expected api error to match its own category")
	}
}

func TestAPIErrorMessageCarriesStatusReasonAndBody(t *testing.T) {
	t.Parallel()

	apiErr := NewAPIError(ConflictError, http.StatusConflict, "Conflict", `{"error":"duplicate principal"}`)

	message := apiErr.Error()
	for _, want := range []string{"409", "Conflict", "duplicate principal"} {
		if !strings.Contains(message, want) {
			t.Fatalf("expected %q in api error message, got %q", want, message)
		}
	}

	var nilErr *APIError
	if nilErr.Error() != "<nil>" {
		t.Fatalf("expected nil receiver message, got %q", nilErr.Error())
	}
}

func TestAsAPIErrorUnwrapsThroughTypedError(t *testing.T) {
	t.Parallel()

	apiErr := NewAPIError(TransportError, http.StatusBadGateway, "Bad Gateway", "")
	wrapped := NewTypedError(TransportError, "request failed", apiErr)

	got, ok := AsAPIError(wrapped)
	if !ok {
		t.Fatalf("expected api error in chain")
	}
	if got.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected status %d, got %d", http.StatusBadGateway, got.StatusCode)
	}

	if _, ok := AsAPIError(errors.New("plain")); ok {
		t.Fatalf("expected no api error in plain chain")
	}
}
