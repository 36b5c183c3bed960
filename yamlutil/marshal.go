package yamlutil

import (
	"bytes"

	"go.yaml.in/yaml/v3"
)

// MarshalWithIndent renders v as YAML using the given indent width. The
// default yaml.Marshal indent is 4; catalog files and command output use 2.
func MarshalWithIndent(v any, indent int) ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(indent)
	if err := encoder.Encode(v); err != nil {
		_ = encoder.Close()
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
