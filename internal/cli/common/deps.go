package common

import (
	"github.com/crmarques/krbctl/config"
	"github.com/crmarques/krbctl/keysapi"
	"github.com/crmarques/krbctl/reconcile"
)

// CommandDependencies carries the wiring every command draws from. Profiles
// is always populated; the remote members stay nil when the invocation never
// reaches the remote keys API.
type CommandDependencies struct {
	Profiles   config.ProfileService
	Keys       keysapi.Client
	Search     keysapi.Searcher
	Reconciler reconcile.Reconciler
}

func RequireProfiles(deps CommandDependencies) (config.ProfileService, error) {
	if deps.Profiles == nil {
		return nil, ValidationError("profile service is not configured", nil)
	}
	return deps.Profiles, nil
}

func RequireKeys(deps CommandDependencies) (keysapi.Client, error) {
	if deps.Keys == nil {
		return nil, ValidationError("keys api client is not configured", nil)
	}
	return deps.Keys, nil
}

func RequireSearch(deps CommandDependencies) (keysapi.Searcher, error) {
	if deps.Search == nil {
		return nil, ValidationError("keys search client is not configured", nil)
	}
	return deps.Search, nil
}

func RequireReconciler(deps CommandDependencies) (reconcile.Reconciler, error) {
	if deps.Reconciler == nil {
		return nil, ValidationError("reconciler is not configured", nil)
	}
	return deps.Reconciler, nil
}
