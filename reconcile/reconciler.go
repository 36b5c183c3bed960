package reconcile

import (
	"context"

	"github.com/crmarques/krbctl/kerberos"
)

// Options control a single reconciliation pass. DryRun computes the decision
// without issuing any remote write.
type Options struct {
	DryRun bool
}

// Reconciler drives one declared Kerberos key record to its target state in
// a single, strictly sequential invocation.
type Reconciler interface {
	Reconcile(ctx context.Context, spec kerberos.Spec, opts Options) (Result, error)
}
