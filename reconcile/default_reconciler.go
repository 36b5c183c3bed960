package reconcile

import (
	"context"

	"github.com/crmarques/krbctl/faults"
	"github.com/crmarques/krbctl/kerberos"
	"github.com/crmarques/krbctl/keysapi"
	"github.com/crmarques/krbctl/logctx"
)

var _ Reconciler = (*DefaultReconciler)(nil)

type DefaultReconciler struct {
	Client keysapi.Client
}

func NewDefaultReconciler(client keysapi.Client) *DefaultReconciler {
	return &DefaultReconciler{Client: client}
}

// invocation carries the immutable inputs of one reconciliation pass through
// resolve, decide, act and report.
type invocation struct {
	spec    kerberos.Spec
	payload map[string]any
	dryRun  bool
}

// resolution is the typed outcome of the remote lookup: either a found
// record with its serialized fields, or nothing.
type resolution struct {
	existing kerberos.Key
	fields   map[string]any
	found    bool
}

func (r *DefaultReconciler) Reconcile(ctx context.Context, spec kerberos.Spec, opts Options) (Result, error) {
	if r == nil || r.Client == nil {
		return Result{}, internalError("keys api client is not configured", nil)
	}
	if err := spec.Validate(); err != nil {
		return Result{}, err
	}

	payload, err := spec.DesiredPayload()
	if err != nil {
		return Result{}, err
	}
	inv := invocation{spec: spec, payload: payload, dryRun: opts.DryRun}

	resolved, err := r.resolve(ctx, inv)
	if err != nil {
		return Result{}, err
	}

	planned := planAction(inv, resolved)
	logctx.From(ctx).Debug().
		Str("action", string(planned)).
		Bool("found", resolved.found).
		Bool("dry_run", inv.dryRun).
		Msg("reconcile decision")

	if inv.dryRun {
		return dryRunResult(planned), nil
	}

	returned, err := r.apply(ctx, inv, resolved, planned)
	if err != nil {
		return Result{}, err
	}

	return buildResult(resolved, planned, returned), nil
}

// planAction is the reconciliation state machine over (existing, target,
// drift).
func planAction(inv invocation, resolved resolution) action {
	switch inv.spec.TargetState() {
	case kerberos.StateAbsent:
		if !resolved.found {
			return actionNone
		}
		return actionDelete
	default:
		if !resolved.found {
			return actionCreate
		}
		if kerberos.PayloadChanged(inv.payload, resolved.fields) {
			return actionUpdate
		}
		return actionNone
	}
}

func dryRunResult(planned action) Result {
	return Result{
		Changed: planned != actionNone,
		Object:  map[string]any{},
		Msg:     actionMessage(planned),
	}
}

func buildResult(resolved resolution, planned action, returned map[string]any) Result {
	before := map[string]any{}
	if resolved.found {
		before = resolved.fields
	}

	result := Result{
		Changed: planned != actionNone,
		Object:  returned,
		Msg:     actionMessage(planned),
		Diff:    &Diff{Before: before, After: returned},
	}

	if resolved.found {
		result.ID = resolved.existing.ID
	} else if id, ok := returned["id"].(string); ok {
		result.ID = id
	}
	return result
}

func internalError(message string, cause error) error {
	return faults.NewTypedError(faults.InternalError, message, cause)
}
