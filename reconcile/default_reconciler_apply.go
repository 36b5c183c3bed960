package reconcile

import (
	"context"

	"github.com/crmarques/krbctl/logctx"
)

// apply issues the planned remote write and returns the serialized record
// the service responded with. No-op and delete return an empty field map.
func (r *DefaultReconciler) apply(ctx context.Context, inv invocation, resolved resolution, planned action) (map[string]any, error) {
	logger := logctx.From(ctx)

	switch planned {
	case actionCreate:
		created, err := r.Client.Create(ctx, inv.payload)
		if err != nil {
			return nil, err
		}
		logger.Debug().Str("id", created.ID).Msg("key record created")
		return created.Fields()
	case actionUpdate:
		updated, err := r.Client.Update(ctx, resolved.existing.ID, inv.payload)
		if err != nil {
			return nil, err
		}
		logger.Debug().Str("id", resolved.existing.ID).Msg("key record updated")
		return updated.Fields()
	case actionDelete:
		if err := r.Client.Delete(ctx, resolved.existing.ID); err != nil {
			return nil, err
		}
		logger.Debug().Str("id", resolved.existing.ID).Msg("key record deleted")
		return map[string]any{}, nil
	default:
		return map[string]any{}, nil
	}
}
