package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/crmarques/krbctl/keysapi"
	"github.com/google/uuid"
)

type requestSpec struct {
	method string
	path   string
	query  map[string]string
	body   map[string]any
}

func searchQueryValues(query keysapi.SearchQuery) map[string]string {
	values := make(map[string]string)
	if query.Filter != "" {
		values["_filter"] = query.Filter
	}
	if query.TagFilter != "" {
		values["_tfilter"] = query.TagFilter
	}
	if len(query.Fields) > 0 {
		values["_fields"] = strings.Join(query.Fields, ",")
	}
	if query.Limit > 0 {
		values["_limit"] = strconv.Itoa(query.Limit)
	}
	if query.Offset > 0 {
		values["_offset"] = strconv.Itoa(query.Offset)
	}
	if len(values) == 0 {
		return nil
	}
	return values
}

func (g *HTTPKeysGateway) execute(ctx context.Context, spec requestSpec) ([]byte, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, transportError("request rate limiter interrupted", err)
		}
	}

	request, err := g.newRequest(ctx, spec)
	if err != nil {
		return nil, err
	}

	response, err := g.doRequest(ctx, request)
	if err != nil {
		return nil, transportError("remote request failed", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, 1<<20))
	if err != nil {
		return nil, transportError("failed to read remote response body", err)
	}

	if response.StatusCode >= http.StatusBadRequest {
		return nil, classifyStatusError(response.StatusCode, body)
	}

	return body, nil
}

func (g *HTTPKeysGateway) newRequest(ctx context.Context, spec requestSpec) (*http.Request, error) {
	targetURL := g.resolveRequestURL(spec.path, spec.query)

	requestBody, err := encodeRequestBody(spec.body)
	if err != nil {
		return nil, err
	}

	var bodyReader io.Reader
	if len(requestBody) > 0 {
		bodyReader = bytes.NewReader(requestBody)
	}

	request, err := http.NewRequestWithContext(ctx, spec.method, targetURL, bodyReader)
	if err != nil {
		return nil, internalError("failed to create remote request", err)
	}

	request.Header.Set("Accept", defaultMediaType)
	if len(requestBody) > 0 {
		request.Header.Set("Content-Type", defaultMediaType)
	}
	request.Header.Set(requestIDHeader, uuid.NewString())

	if len(g.defaultHeaders) > 0 {
		keys := make([]string, 0, len(g.defaultHeaders))
		for key := range g.defaultHeaders {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			request.Header.Set(key, g.defaultHeaders[key])
		}
	}

	request.Header.Set("Authorization", authScheme+" "+g.apiKey)

	return request, nil
}

func (g *HTTPKeysGateway) resolveRequestURL(requestPath string, query map[string]string) string {
	target := *g.baseURL
	target.Path = joinBaseAndRequestPath(g.baseURL.Path, requestPath)

	values := target.Query()
	if len(query) > 0 {
		keys := make([]string, 0, len(query))
		for key := range query {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			values.Set(key, query[key])
		}
	}
	target.RawQuery = values.Encode()

	return target.String()
}

func encodeRequestBody(body map[string]any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, validationError("failed to encode JSON request body", err)
	}
	return encoded, nil
}
