package kerberos

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/crmarques/krbctl/faults"
)

func TestNormalizeFieldMap(t *testing.T) {
	t.Parallel()

	t.Run("normalizes_nested_fields", func(t *testing.T) {
		t.Parallel()

		input := map[string]any{
			"version": json.Number("2"),
			"comment": "primary key",
			"tags": map[string]any{
				"ttl":    uint16(300),
				"weight": json.Number("1.5"),
				"owners": []any{"dns-team", int8(9)},
			},
		}

		got, err := NormalizeFieldMap(input)
		if err != nil {
			t.Fatalf("NormalizeFieldMap returned error: %v", err)
		}

		expected := map[string]any{
			"version": int64(2),
			"comment": "primary key",
			"tags": map[string]any{
				"ttl":    int64(300),
				"weight": float64(1.5),
				"owners": []any{"dns-team", int64(9)},
			},
		}

		if !fieldMapsEqual(got, expected) {
			t.Fatalf("expected %#v, got %#v", expected, got)
		}
	})

	t.Run("renders_timestamps_as_rfc3339", func(t *testing.T) {
		t.Parallel()

		uploaded := time.Date(2026, 2, 20, 10, 30, 0, 0, time.UTC)
		got, err := NormalizeFieldMap(map[string]any{"uploaded_at": uploaded})
		if err != nil {
			t.Fatalf("NormalizeFieldMap returned error: %v", err)
		}
		if got["uploaded_at"] != "2026-02-20T10:30:00Z" {
			t.Fatalf("expected rfc3339 timestamp, got %#v", got["uploaded_at"])
		}
	})

	t.Run("rejects_non_finite_float", func(t *testing.T) {
		t.Parallel()

		_, err := NormalizeFieldMap(map[string]any{"weight": math.Inf(1)})
		assertValidationCategory(t, err)
	})

	t.Run("rejects_out_of_range_integer", func(t *testing.T) {
		t.Parallel()

		_, err := NormalizeFieldMap(map[string]any{"version": uint64(math.MaxInt64) + 1})
		assertValidationCategory(t, err)
	})

	t.Run("rejects_unsupported_type", func(t *testing.T) {
		t.Parallel()

		type opaque struct{ ID string }
		_, err := NormalizeFieldMap(map[string]any{"tags": opaque{ID: "x"}})
		assertValidationCategory(t, err)
	})
}

func fieldMapsEqual(a any, b any) bool {
	encodedA, err := json.Marshal(a)
	if err != nil {
		return false
	}
	encodedB, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return string(encodedA) == string(encodedB)
}

func assertValidationCategory(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var typed *faults.TypedError
	if !errors.As(err, &typed) {
		t.Fatalf("expected typed error, got %T", err)
	}
	if typed.Category != faults.ValidationError {
		t.Fatalf("expected %q category, got %q", faults.ValidationError, typed.Category)
	}
}
