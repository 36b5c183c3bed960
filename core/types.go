package core

import (
	"github.com/crmarques/krbctl/config"
	"github.com/crmarques/krbctl/keysapi"
	"github.com/crmarques/krbctl/reconcile"
)

// KrbctlContext is the assembled runtime for one resolved profile: the
// profile catalog service, the resolved profile itself, and the remote keys
// client stack built from it.
type KrbctlContext struct {
	Profiles   config.ProfileService
	Profile    config.Profile
	Keys       keysapi.Client
	Search     keysapi.Searcher
	Reconciler reconcile.Reconciler
}

type BootstrapConfig struct {
	ProfileCatalogPath string
}
