package common

import (
	"bytes"
	"errors"
	"io"
	"os"

	"github.com/crmarques/krbctl/kerberos"
	"github.com/spf13/cobra"
)

const (
	stdinFileIndicator  = "-"
	MissingInputMessage = "input is required: provide --manifest <path|-> or stdin"
	maxInputBytes       = 4 << 20
)

// ReadManifest reads the declared-state document from the manifest path, "-",
// or piped stdin.
func ReadManifest(command *cobra.Command, manifest string) ([]byte, error) {
	return readManifest(command, manifest, true)
}

// ReadOptionalManifest returns nil without error when no manifest was given
// and stdin is an interactive terminal.
func ReadOptionalManifest(command *cobra.Command, manifest string) ([]byte, error) {
	return readManifest(command, manifest, false)
}

func DecodeManifest(command *cobra.Command, manifest string) (kerberos.Spec, error) {
	data, err := ReadManifest(command, manifest)
	if err != nil {
		return kerberos.Spec{}, err
	}
	return kerberos.DecodeSpec(data)
}

func readManifest(command *cobra.Command, manifest string, required bool) ([]byte, error) {
	if manifest != "" && manifest != stdinFileIndicator {
		file, err := os.Open(manifest)
		if err != nil {
			return nil, err
		}
		defer file.Close()

		data, err := readAllWithLimit(file, maxInputBytes)
		if err != nil {
			return nil, err
		}
		if len(bytes.TrimSpace(data)) == 0 {
			return nil, ValidationError("input is empty", nil)
		}
		return data, nil
	}

	inputReader := command.InOrStdin()
	if stdinFile, ok := inputReader.(*os.File); ok {
		info, err := stdinFile.Stat()
		if err == nil && (info.Mode()&os.ModeCharDevice) != 0 {
			if required {
				return nil, ValidationError(MissingInputMessage, nil)
			}
			return nil, nil
		}
	}

	data, err := readAllWithLimit(inputReader, maxInputBytes)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		if required {
			return nil, ValidationError(MissingInputMessage, nil)
		}
		return nil, nil
	}

	return data, nil
}

func readAllWithLimit(reader io.Reader, maxBytes int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(reader, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, ValidationError("input exceeds maximum supported size", errors.New("input too large"))
	}
	return data, nil
}
