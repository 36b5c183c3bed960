package reconcile

import (
	"context"
	"fmt"
	"strings"

	"github.com/crmarques/krbctl/faults"
	"github.com/crmarques/krbctl/kerberos"
	"github.com/crmarques/krbctl/keysapi"
	"github.com/crmarques/krbctl/logctx"
)

func (r *DefaultReconciler) resolve(ctx context.Context, inv invocation) (resolution, error) {
	if inv.spec.ID != "" {
		return r.resolveByID(ctx, inv)
	}
	return r.resolveByPrincipal(ctx, inv)
}

func (r *DefaultReconciler) resolveByID(ctx context.Context, inv invocation) (resolution, error) {
	logctx.From(ctx).Debug().Str("id", inv.spec.ID).Msg("reading key record by id")

	existing, err := r.Client.Read(ctx, inv.spec.ID)
	if err != nil {
		// An absent target tolerates a missing id-addressed record; a
		// present target does not, since a declared id must reference an
		// existing record.
		if faults.IsCategory(err, faults.NotFoundError) && inv.spec.TargetState() == kerberos.StateAbsent {
			return resolution{}, nil
		}
		return resolution{}, err
	}
	return newResolution(existing)
}

func (r *DefaultReconciler) resolveByPrincipal(ctx context.Context, inv invocation) (resolution, error) {
	filter := keysapi.PrincipalFilter(inv.spec.Principal)
	logctx.From(ctx).Debug().Str("filter", filter).Msg("listing key records by natural key")

	matches, err := r.Client.List(ctx, filter)
	if err != nil {
		return resolution{}, err
	}

	switch len(matches) {
	case 0:
		return resolution{}, nil
	case 1:
		return newResolution(matches[0])
	default:
		return resolution{}, ambiguousMatchError(inv.spec.Principal, matches)
	}
}

func newResolution(existing kerberos.Key) (resolution, error) {
	fields, err := existing.Fields()
	if err != nil {
		return resolution{}, err
	}
	return resolution{existing: existing, fields: fields, found: true}, nil
}

func ambiguousMatchError(principal string, matches []kerberos.Key) error {
	candidates := make([]string, 0, len(matches))
	for _, match := range matches {
		candidates = append(candidates, describeKey(match))
	}
	return faults.NewTypedError(
		faults.ConflictError,
		fmt.Sprintf("found multiple Kerberos keys for principal %q: %s", principal, strings.Join(candidates, ", ")),
		nil,
	)
}

func describeKey(key kerberos.Key) string {
	if key.ID != "" {
		return key.ID
	}
	return key.PrincipalName()
}
