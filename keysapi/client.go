package keysapi

import (
	"context"

	"github.com/crmarques/krbctl/kerberos"
)

// Client is the remote boundary for Kerberos key records. Implementations
// surface every non-2xx response as a faults.APIError and never retry.
type Client interface {
	Read(ctx context.Context, id string) (kerberos.Key, error)
	List(ctx context.Context, filter string) ([]kerberos.Key, error)
	Create(ctx context.Context, payload map[string]any) (kerberos.Key, error)
	Update(ctx context.Context, id string, payload map[string]any) (kerberos.Key, error)
	Delete(ctx context.Context, id string) error
}

// SearchQuery is the richer listing surface used by read-only commands.
// Filter and TagFilter use the service's server-side filter syntax.
type SearchQuery struct {
	Filter    string
	TagFilter string
	Fields    []string
	Limit     int
	Offset    int
}

// Searcher is implemented by clients that support server-side search beyond
// the natural-key lookup the reconciler needs.
type Searcher interface {
	Search(ctx context.Context, query SearchQuery) ([]kerberos.Key, error)
}
