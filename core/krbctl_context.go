package core

import (
	"context"

	"github.com/crmarques/krbctl/config"
	"github.com/crmarques/krbctl/faults"
	configfile "github.com/crmarques/krbctl/internal/providers/config/file"
	httpkeys "github.com/crmarques/krbctl/internal/providers/keysapi/http"
	"github.com/crmarques/krbctl/keysapi"
	"github.com/crmarques/krbctl/reconcile"
)

func NewProfileService(opts BootstrapConfig) config.ProfileService {
	return configfile.NewFileProfileService(opts.ProfileCatalogPath)
}

// NewKrbctlContext resolves the selected profile and assembles the remote
// client stack for it. KRBCTL_* variables fill the selection before the
// catalog is consulted; explicit overrides win over environment ones.
func NewKrbctlContext(opts BootstrapConfig, selection config.ProfileSelection) (KrbctlContext, error) {
	profileService := NewProfileService(opts)

	effective, err := environmentSelection(selection)
	if err != nil {
		return KrbctlContext{}, err
	}

	profile, err := profileService.ResolveProfile(context.Background(), effective)
	if err != nil {
		return KrbctlContext{}, err
	}
	if profile.CSP == nil {
		return KrbctlContext{}, faults.NewTypedError(faults.InternalError, "resolved profile has no csp configuration", nil)
	}

	gateway, err := httpkeys.NewHTTPKeysGateway(*profile.CSP)
	if err != nil {
		return KrbctlContext{}, err
	}

	var keysClient keysapi.Client = gateway
	searcher, ok := keysClient.(keysapi.Searcher)
	if !ok {
		return KrbctlContext{}, faults.NewTypedError(
			faults.InternalError,
			"keys client does not implement search capabilities",
			nil,
		)
	}

	return KrbctlContext{
		Profiles:   profileService,
		Profile:    profile,
		Keys:       keysClient,
		Search:     searcher,
		Reconciler: reconcile.NewDefaultReconciler(keysClient),
	}, nil
}

func environmentSelection(selection config.ProfileSelection) (config.ProfileSelection, error) {
	if selection.Name == "" {
		selection.Name = configfile.ProfileNameFromEnv()
	}

	envOverrides, err := configfile.ProfileOverridesFromEnv()
	if err != nil {
		return config.ProfileSelection{}, err
	}
	if len(envOverrides) == 0 {
		return selection, nil
	}

	merged := make(map[string]string, len(envOverrides)+len(selection.Overrides))
	for key, value := range envOverrides {
		merged[key] = value
	}
	for key, value := range selection.Overrides {
		merged[key] = value
	}
	selection.Overrides = merged

	return selection, nil
}
