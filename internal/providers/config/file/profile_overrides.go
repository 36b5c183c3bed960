package file

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/crmarques/krbctl/config"
	"go.yaml.in/yaml/v3"
)

const (
	profileEnvPrefix  = "KRBCTL_"
	profileEnvNameVar = profileEnvPrefix + "PROFILE"
)

var (
	profileEnvSetters = map[string]func(*config.Profile, string) error{
		"csp.url":                      setCSPURL,
		"csp.api-key":                  setCSPAPIKey,
		"csp.api-base-path":            setCSPAPIBasePath,
		"csp.timeout-seconds":          setCSPTimeoutSeconds,
		"csp.rate-limit":               setCSPRateLimit,
		"csp.default-headers":          setCSPDefaultHeaders,
		"csp.tls.ca-cert-file":         setCSPTLSCACertFile,
		"csp.tls.client-cert-file":     setCSPTLSClientCertFile,
		"csp.tls.client-key-file":      setCSPTLSClientKeyFile,
		"csp.tls.insecure-skip-verify": setCSPTLSInsecureSkipVerify,
	}
	profileEnvSuffixToPath map[string]string

	// KRBCTL_ variables that select the profile or the catalog file rather
	// than override a profile attribute.
	reservedEnvSuffixes = map[string]struct{}{
		"PROFILE":       {},
		"PROFILES_FILE": {},
	}
)

func init() {
	profileEnvSuffixToPath = make(map[string]string, len(profileEnvSetters))
	for path := range profileEnvSetters {
		profileEnvSuffixToPath[toEnvSuffix(path)] = path
	}
}

func toEnvSuffix(path string) string {
	replaced := strings.NewReplacer(".", "_", "-", "_").Replace(path)
	return strings.ToUpper(replaced)
}

func ProfileNameFromEnv() string {
	return strings.TrimSpace(os.Getenv(profileEnvNameVar))
}

func ProfileOverridesFromEnv() (map[string]string, error) {
	overrides := make(map[string]string)
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, profileEnvPrefix) {
			continue
		}
		pair := strings.SplitN(env, "=", 2)
		key := strings.TrimPrefix(pair[0], profileEnvPrefix)
		if key == "" {
			continue
		}
		if _, reserved := reservedEnvSuffixes[key]; reserved {
			continue
		}
		path, ok := profileEnvSuffixToPath[key]
		if !ok {
			return nil, validationError(fmt.Sprintf("unsupported profile override %q", pair[0]), nil)
		}
		value := ""
		if len(pair) == 2 {
			value = pair[1]
		}
		overrides[path] = value
	}
	return overrides, nil
}

func applyOverrides(profile config.Profile, overrides map[string]string) (config.Profile, error) {
	for _, key := range sortedOverrideKeys(overrides) {
		setter, ok := profileEnvSetters[key]
		if !ok {
			return config.Profile{}, unknownOverrideError(key)
		}
		if err := setter(&profile, overrides[key]); err != nil {
			return config.Profile{}, validationError(fmt.Sprintf("failed to apply override %q", key), err)
		}
	}

	return profile, nil
}

func sortedOverrideKeys(overrides map[string]string) []string {
	keys := make([]string, 0, len(overrides))
	for key := range overrides {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func setCSPURL(profile *config.Profile, value string) error {
	ensureCSPConfig(profile).URL = value
	return nil
}

func setCSPAPIKey(profile *config.Profile, value string) error {
	ensureCSPConfig(profile).APIKey = value
	return nil
}

func setCSPAPIBasePath(profile *config.Profile, value string) error {
	ensureCSPConfig(profile).APIBasePath = value
	return nil
}

func setCSPTimeoutSeconds(profile *config.Profile, value string) error {
	parsed, err := parseInt(value)
	if err != nil {
		return err
	}
	ensureCSPConfig(profile).TimeoutSeconds = parsed
	return nil
}

func setCSPRateLimit(profile *config.Profile, value string) error {
	parsed, err := parseFloat(value)
	if err != nil {
		return err
	}
	ensureCSPConfig(profile).RateLimit = parsed
	return nil
}

func setCSPDefaultHeaders(profile *config.Profile, value string) error {
	headers, err := parseStringMap(value)
	if err != nil {
		return err
	}
	ensureCSPConfig(profile).DefaultHeaders = headers
	return nil
}

func setCSPTLSCACertFile(profile *config.Profile, value string) error {
	ensureTLSConfig(profile).CACertFile = value
	return nil
}

func setCSPTLSClientCertFile(profile *config.Profile, value string) error {
	ensureTLSConfig(profile).ClientCertFile = value
	return nil
}

func setCSPTLSClientKeyFile(profile *config.Profile, value string) error {
	ensureTLSConfig(profile).ClientKeyFile = value
	return nil
}

func setCSPTLSInsecureSkipVerify(profile *config.Profile, value string) error {
	parsed, err := parseBool(value)
	if err != nil {
		return err
	}
	ensureTLSConfig(profile).InsecureSkipVerify = parsed
	return nil
}

func ensureCSPConfig(profile *config.Profile) *config.CSPConfig {
	if profile.CSP == nil {
		profile.CSP = &config.CSPConfig{}
	}
	return profile.CSP
}

func ensureTLSConfig(profile *config.Profile) *config.TLS {
	csp := ensureCSPConfig(profile)
	if csp.TLS == nil {
		csp.TLS = &config.TLS{}
	}
	return csp.TLS
}

func parseBool(value string) (bool, error) {
	result, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return false, err
	}
	return result, nil
}

func parseInt(value string) (int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, fmt.Errorf("value is empty")
	}
	return strconv.Atoi(trimmed)
}

func parseFloat(value string) (float64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, fmt.Errorf("value is empty")
	}
	return strconv.ParseFloat(trimmed, 64)
}

func parseStringMap(value string) (map[string]string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	var result map[string]string
	if err := yaml.Unmarshal([]byte(trimmed), &result); err != nil {
		return nil, fmt.Errorf("invalid map: %w", err)
	}
	return result, nil
}
