package file

import (
	"fmt"
	"strings"

	"github.com/crmarques/krbctl/config"
)

func validateCatalog(profileCatalog config.ProfileCatalog) error {
	if len(profileCatalog.Profiles) == 0 {
		if profileCatalog.CurrentProfile != "" {
			return validationError("current-profile must be empty when profiles list is empty", nil)
		}
		return nil
	}

	seen := map[string]struct{}{}
	for _, item := range profileCatalog.Profiles {
		if item.Name == "" {
			return validationError("profile name must not be empty", nil)
		}
		if _, exists := seen[item.Name]; exists {
			return validationError(fmt.Sprintf("duplicate profile name %q", item.Name), nil)
		}
		seen[item.Name] = struct{}{}

		if err := validateProfile(item); err != nil {
			return err
		}
	}

	if profileCatalog.CurrentProfile == "" {
		return validationError("current-profile must be set when profiles are defined", nil)
	}

	if _, exists := seen[profileCatalog.CurrentProfile]; !exists {
		return validationError(fmt.Sprintf("current-profile %q does not match any profile", profileCatalog.CurrentProfile), nil)
	}

	return nil
}

// validateProfile checks the stored shape of a profile. The api-key is not
// required here so catalogs can leave it to KRBCTL_CSP_API_KEY or a ${VAR}
// reference supplied at resolve time.
func validateProfile(profile config.Profile) error {
	if profile.Name == "" {
		return validationError("profile name must not be empty", nil)
	}

	if profile.CSP == nil {
		return validationError("csp is required", nil)
	}

	if profile.CSP.TimeoutSeconds < 0 {
		return validationError("csp.timeout-seconds must not be negative", nil)
	}
	if profile.CSP.RateLimit < 0 {
		return validationError("csp.rate-limit must not be negative", nil)
	}

	if profile.CSP.TLS != nil {
		if countSet(profile.CSP.TLS.ClientCertFile != "", profile.CSP.TLS.ClientKeyFile != "") == 1 {
			return validationError("csp.tls.client-cert-file and csp.tls.client-key-file must be set together", nil)
		}
	}

	return nil
}

func validateResolvedProfile(profile config.Profile) error {
	if err := validateProfile(profile); err != nil {
		return err
	}
	if profile.CSP.APIKey == "" {
		return validationError(fmt.Sprintf("profile %q has no csp.api-key configured", profile.Name), nil)
	}
	return nil
}

func normalizeProfile(profile config.Profile) config.Profile {
	profile.Name = strings.TrimSpace(profile.Name)
	return profile
}

func applyProfileDefaults(profile config.Profile) config.Profile {
	if profile.CSP == nil {
		return profile
	}

	csp := *profile.CSP
	if csp.URL == "" {
		csp.URL = config.DefaultCSPURL
	}
	if csp.APIBasePath == "" {
		csp.APIBasePath = config.DefaultAPIBasePath
	}
	if csp.TimeoutSeconds == 0 {
		csp.TimeoutSeconds = config.DefaultTimeoutSeconds
	}
	profile.CSP = &csp

	return profile
}

func compactProfileCatalogForPersistence(profileCatalog config.ProfileCatalog) config.ProfileCatalog {
	if len(profileCatalog.Profiles) == 0 {
		return profileCatalog
	}

	compacted := profileCatalog
	compacted.Profiles = make([]config.Profile, len(profileCatalog.Profiles))
	for idx, item := range profileCatalog.Profiles {
		compacted.Profiles[idx] = compactProfileForPersistence(item)
	}

	return compacted
}

func compactProfileForPersistence(profile config.Profile) config.Profile {
	if profile.CSP == nil {
		return profile
	}
	if profile.CSP.APIBasePath != config.DefaultAPIBasePath {
		return profile
	}

	csp := *profile.CSP
	csp.APIBasePath = ""
	profile.CSP = &csp
	return profile
}

func countSet(values ...bool) int {
	count := 0
	for _, value := range values {
		if value {
			count++
		}
	}
	return count
}
