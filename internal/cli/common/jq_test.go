package common

import (
	"context"
	"reflect"
	"testing"

	"github.com/crmarques/krbctl/faults"
)

func TestApplyQuery(t *testing.T) {
	t.Parallel()

	payload := []any{
		map[string]any{"principal": "host/a.example.com", "version": 1},
		map[string]any{"principal": "host/b.example.com", "version": 2},
	}

	testCases := []struct {
		name       string
		expression string
		payload    any
		want       any
	}{
		{name: "empty expression passes through", expression: "", payload: payload, want: payload},
		{name: "blank expression passes through", expression: "   ", payload: payload, want: payload},
		{name: "single result unwrapped", expression: ".[0].principal", payload: payload, want: "host/a.example.com"},
		{name: "multiple results collected", expression: ".[].principal", payload: payload, want: []any{"host/a.example.com", "host/b.example.com"}},
		{name: "no results yield empty slice", expression: ".[] | select(.version > 9)", payload: payload, want: []any{}},
		{name: "object projection", expression: "{p: .principal}", payload: map[string]any{"principal": "host/a.example.com"}, want: map[string]any{"p": "host/a.example.com"}},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			got, err := ApplyQuery(context.Background(), testCase.expression, testCase.payload)
			if err != nil {
				t.Fatalf("ApplyQuery returned error: %v", err)
			}
			if !reflect.DeepEqual(got, testCase.want) {
				t.Fatalf("ApplyQuery = %#v, want %#v", got, testCase.want)
			}
		})
	}
}

func TestApplyQueryRejectsInvalidExpression(t *testing.T) {
	t.Parallel()

	_, err := ApplyQuery(context.Background(), ".[", map[string]any{})
	if err == nil {
		t.Fatal("expected error for invalid query")
	}
	if !faults.IsCategory(err, faults.ValidationError) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestApplyQueryReportsRuntimeErrors(t *testing.T) {
	t.Parallel()

	_, err := ApplyQuery(context.Background(), ".principal", []any{"not-an-object"})
	if err == nil {
		t.Fatal("expected error for mistyped payload")
	}
	if !faults.IsCategory(err, faults.ValidationError) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
