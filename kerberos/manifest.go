package kerberos

import (
	"bytes"
	"errors"
	"io"

	"go.yaml.in/yaml/v3"
)

// DecodeSpec parses a declared-state manifest. YAML and JSON documents are
// both accepted; unknown fields are rejected so misspelled options fail
// instead of silently dropping out of the payload.
func DecodeSpec(data []byte) (Spec, error) {
	var spec Spec

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		if errors.Is(err, io.EOF) {
			return Spec{}, validationError("key manifest is empty", nil)
		}
		return Spec{}, validationError("invalid key manifest", err)
	}

	if err := spec.Validate(); err != nil {
		return Spec{}, err
	}
	return spec, nil
}
