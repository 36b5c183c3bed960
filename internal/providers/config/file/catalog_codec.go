package file

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/crmarques/krbctl/config"
	"github.com/crmarques/krbctl/yamlutil"
	"go.yaml.in/yaml/v3"
)

func decodeCatalogFile(path string) (config.ProfileCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return config.ProfileCatalog{}, err
	}
	return decodeCatalog(data)
}

func decodeCatalog(data []byte) (config.ProfileCatalog, error) {
	var profileCatalog config.ProfileCatalog

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&profileCatalog); err != nil {
		return config.ProfileCatalog{}, validationError("invalid profile catalog yaml", err)
	}

	return profileCatalog, nil
}

func encodeCatalog(profileCatalog config.ProfileCatalog) ([]byte, error) {
	data, err := yamlutil.MarshalWithIndent(profileCatalog, 2)
	if err != nil {
		return nil, internalError("failed to encode profile catalog yaml", err)
	}
	return data, nil
}

func resolveCatalogPath(explicitPath string) (string, error) {
	path := explicitPath
	if path == "" {
		path = os.Getenv(config.ProfilesFileEnvVar)
	}
	if path == "" {
		path = config.DefaultProfileCatalogPath
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", internalError("failed to resolve user home directory", err)
	}

	if path == "~" {
		path = homeDir
	} else if strings.HasPrefix(path, "~/") {
		path = filepath.Join(homeDir, strings.TrimPrefix(path, "~/"))
	}

	if path == "" {
		return "", validationError("profile catalog path is empty", nil)
	}

	cleanPath := filepath.Clean(path)
	if cleanPath == "." {
		return "", validationError("profile catalog path is invalid", errors.New("resolved to current directory"))
	}

	if !filepath.IsAbs(cleanPath) {
		cleanPath = filepath.Join(homeDir, cleanPath)
	}

	return cleanPath, nil
}

func unknownOverrideError(key string) error {
	return validationError(fmt.Sprintf("unknown override key %q", key), nil)
}
