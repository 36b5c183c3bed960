package http

import (
	"context"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/crmarques/krbctl/config"
	"github.com/crmarques/krbctl/internal/providers/shared/tlsconfig"
	"github.com/crmarques/krbctl/kerberos"
	"github.com/crmarques/krbctl/keysapi"
	"golang.org/x/time/rate"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	defaultMediaType   = "application/json"

	keysKerberosPath = "/keys/kerberos"
	requestIDHeader  = "X-Request-Id"
	authScheme       = "Token"
)

var _ keysapi.Client = (*HTTPKeysGateway)(nil)
var _ keysapi.Searcher = (*HTTPKeysGateway)(nil)

// HTTPKeysGateway talks to the CSP DDI keys API. Record ids are API paths
// (keys/kerberos/<uuid>); a bare uuid is also accepted and anchored under
// the kerberos collection.
type HTTPKeysGateway struct {
	baseURL        *url.URL
	apiKey         string
	defaultHeaders map[string]string
	client         *http.Client
	limiter        *rate.Limiter
	tlsDebug       tlsDebugInfo
}

func NewHTTPKeysGateway(cfg config.CSPConfig) (*HTTPKeysGateway, error) {
	baseURL, err := parseBaseURL(cfg.URL, cfg.APIBasePath)
	if err != nil {
		return nil, err
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, validationError("csp.api-key is required", nil)
	}

	tlsSettings, err := tlsconfig.BuildTLSConfig(cfg.TLS)
	if err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsSettings

	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	return &HTTPKeysGateway{
		baseURL:        baseURL,
		apiKey:         apiKey,
		defaultHeaders: cloneStringMap(cfg.DefaultHeaders),
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		limiter:  limiter,
		tlsDebug: newTLSDebugInfo(cfg.TLS),
	}, nil
}

func (g *HTTPKeysGateway) Read(ctx context.Context, id string) (kerberos.Key, error) {
	recordPath, err := keyPath(id)
	if err != nil {
		return kerberos.Key{}, err
	}

	body, err := g.execute(ctx, requestSpec{method: http.MethodGet, path: recordPath})
	if err != nil {
		return kerberos.Key{}, err
	}

	return decodeKeyResponse(body)
}

func (g *HTTPKeysGateway) List(ctx context.Context, filter string) ([]kerberos.Key, error) {
	return g.Search(ctx, keysapi.SearchQuery{Filter: filter})
}

func (g *HTTPKeysGateway) Search(ctx context.Context, query keysapi.SearchQuery) ([]kerberos.Key, error) {
	body, err := g.execute(ctx, requestSpec{
		method: http.MethodGet,
		path:   keysKerberosPath,
		query:  searchQueryValues(query),
	})
	if err != nil {
		return nil, err
	}

	return decodeKeyListResponse(body)
}

func (g *HTTPKeysGateway) Create(ctx context.Context, payload map[string]any) (kerberos.Key, error) {
	body, err := g.execute(ctx, requestSpec{
		method: http.MethodPost,
		path:   keysKerberosPath,
		body:   payload,
	})
	if err != nil {
		return kerberos.Key{}, err
	}

	return decodeKeyResponse(body)
}

func (g *HTTPKeysGateway) Update(ctx context.Context, id string, payload map[string]any) (kerberos.Key, error) {
	recordPath, err := keyPath(id)
	if err != nil {
		return kerberos.Key{}, err
	}

	body, err := g.execute(ctx, requestSpec{
		method: http.MethodPatch,
		path:   recordPath,
		body:   payload,
	})
	if err != nil {
		return kerberos.Key{}, err
	}

	return decodeKeyResponse(body)
}

func (g *HTTPKeysGateway) Delete(ctx context.Context, id string) error {
	recordPath, err := keyPath(id)
	if err != nil {
		return err
	}

	_, err = g.execute(ctx, requestSpec{method: http.MethodDelete, path: recordPath})
	return err
}

func parseBaseURL(rawURL string, apiBasePath string) (*url.URL, error) {
	value := strings.TrimSpace(rawURL)
	if value == "" {
		return nil, validationError("csp.url is required", nil)
	}

	parsed, err := url.Parse(value)
	if err != nil {
		return nil, validationError("csp.url is invalid", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, validationError("csp.url must use http or https", nil)
	}
	if parsed.Host == "" {
		return nil, validationError("csp.url host is required", nil)
	}

	basePath := strings.TrimSpace(apiBasePath)
	if basePath == "" {
		basePath = config.DefaultAPIBasePath
	}
	parsed.Path = joinBaseAndRequestPath(parsed.Path, basePath)

	return parsed, nil
}

// keyPath maps a record id onto the request path. Ids returned by the API
// already carry the keys/kerberos prefix; bare uuids get it added.
func keyPath(id string) (string, error) {
	trimmed := strings.Trim(strings.TrimSpace(id), "/")
	if trimmed == "" {
		return "", validationError("key id is required", nil)
	}

	if strings.HasPrefix(trimmed, "keys/kerberos/") {
		return "/" + trimmed, nil
	}
	return keysKerberosPath + "/" + trimmed, nil
}

func normalizeRequestPath(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	if trimmed != "/" {
		trimmed = strings.TrimSuffix(trimmed, "/")
	}
	return trimmed
}

func joinBaseAndRequestPath(basePath string, requestPath string) string {
	normalizedBase := normalizeRequestPath(basePath)
	if normalizedBase == "" {
		normalizedBase = "/"
	}

	normalizedRequest := normalizeRequestPath(requestPath)
	if normalizedRequest == "" || normalizedRequest == "/" {
		return normalizedBase
	}

	joined := path.Join(normalizedBase, strings.TrimPrefix(normalizedRequest, "/"))
	if !strings.HasPrefix(joined, "/") {
		return "/" + joined
	}
	return joined
}

func cloneStringMap(values map[string]string) map[string]string {
	if len(values) == 0 {
		return nil
	}

	cloned := make(map[string]string, len(values))
	for key, value := range values {
		cloned[key] = value
	}
	return cloned
}
