package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/crmarques/krbctl/faults"
	"github.com/crmarques/krbctl/kerberos"
)

// Record responses arrive as {"result": {...}}; list responses as
// {"results": [...]}. Both decoders also accept the bare form some
// endpoints return. Numbers decode as json.Number so integral values
// survive field-map normalization intact.
func decodeKeyResponse(body []byte) (kerberos.Key, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return kerberos.Key{}, validationError("remote response body is empty", nil)
	}

	var envelope struct {
		Result *kerberos.Key `json:"result"`
	}
	if err := decodeJSON(body, &envelope); err != nil {
		return kerberos.Key{}, err
	}
	if envelope.Result != nil {
		return *envelope.Result, nil
	}

	var key kerberos.Key
	if err := decodeJSON(body, &key); err != nil {
		return kerberos.Key{}, err
	}
	return key, nil
}

func decodeKeyListResponse(body []byte) ([]kerberos.Key, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var keys []kerberos.Key
		if err := decodeJSON(body, &keys); err != nil {
			return nil, err
		}
		return keys, nil
	}

	var envelope struct {
		Results []kerberos.Key `json:"results"`
	}
	if err := decodeJSON(body, &envelope); err != nil {
		return nil, err
	}
	return envelope.Results, nil
}

func decodeJSON(body []byte, target any) error {
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	if err := decoder.Decode(target); err != nil {
		return validationError("response body is not valid JSON", err)
	}
	return nil
}

func classifyStatusError(statusCode int, body []byte) error {
	category := faults.TransportError
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		category = faults.AuthError
	case statusCode == http.StatusNotFound:
		category = faults.NotFoundError
	case statusCode == http.StatusConflict:
		category = faults.ConflictError
	case statusCode >= 400 && statusCode < 500:
		category = faults.ValidationError
	}

	return faults.NewAPIError(category, statusCode, http.StatusText(statusCode), summarizeBody(body))
}

func summarizeBody(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return "<empty>"
	}
	if len(trimmed) > 512 {
		return trimmed[:512] + "..."
	}
	return trimmed
}
