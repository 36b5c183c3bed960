package common

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/crmarques/krbctl/faults"
	"github.com/itchyny/gojq"
)

var compiledQueryCache sync.Map

// ApplyQuery runs a jq expression over decoded output before rendering. An
// empty expression passes the payload through. A query yielding exactly one
// value returns that value bare; multiple values come back as a slice.
func ApplyQuery(ctx context.Context, expression string, payload any) (any, error) {
	trimmed := strings.TrimSpace(expression)
	if trimmed == "" {
		return payload, nil
	}

	code, err := compileQuery(trimmed)
	if err != nil {
		return nil, err
	}

	// gojq evaluates plain JSON values only, so the payload round-trips
	// through encoding/json before the query runs.
	normalized, err := normalizeQueryInput(payload)
	if err != nil {
		return nil, err
	}

	iter := code.RunWithContext(ctx, normalized)
	results := make([]any, 0, 1)
	for {
		value, hasNext := iter.Next()
		if !hasNext {
			break
		}
		if valueErr, isErr := value.(error); isErr {
			return nil, ValidationError(fmt.Sprintf("jq query failed: %v", valueErr), valueErr)
		}
		results = append(results, value)
	}

	switch len(results) {
	case 0:
		return []any{}, nil
	case 1:
		return results[0], nil
	default:
		return results, nil
	}
}

func normalizeQueryInput(payload any) (any, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, faults.NewTypedError(faults.InternalError, "jq query input is not serializable", err)
	}

	var normalized any
	if err := json.Unmarshal(encoded, &normalized); err != nil {
		return nil, faults.NewTypedError(faults.InternalError, "jq query input is not serializable", err)
	}
	return normalized, nil
}

func compileQuery(expression string) (*gojq.Code, error) {
	if cached, ok := compiledQueryCache.Load(expression); ok {
		return cached.(*gojq.Code), nil
	}

	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, ValidationError(fmt.Sprintf("invalid jq query: %v", err), err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, ValidationError(fmt.Sprintf("invalid jq query: %v", err), err)
	}

	compiledQueryCache.Store(expression, code)
	return code, nil
}
