package http

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/crmarques/krbctl/config"
	"github.com/crmarques/krbctl/logctx"
)

type tlsDebugInfo struct {
	enabled            bool
	insecureSkipVerify bool
	caCertFile         string
	clientCertFile     string
	clientKeyFile      string
}

func newTLSDebugInfo(tlsSettings *config.TLS) tlsDebugInfo {
	if tlsSettings == nil {
		return tlsDebugInfo{}
	}

	return tlsDebugInfo{
		enabled:            true,
		insecureSkipVerify: tlsSettings.InsecureSkipVerify,
		caCertFile:         strings.TrimSpace(tlsSettings.CACertFile),
		clientCertFile:     strings.TrimSpace(tlsSettings.ClientCertFile),
		clientKeyFile:      strings.TrimSpace(tlsSettings.ClientKeyFile),
	}
}

func (info tlsDebugInfo) mTLSEnabled() bool {
	return info.clientCertFile != "" && info.clientKeyFile != ""
}

func (g *HTTPKeysGateway) doRequest(ctx context.Context, request *http.Request) (*http.Response, error) {
	logger := logctx.From(ctx)

	logger.Debug().
		Str("method", request.Method).
		Str("url", redactURLForDebug(request.URL)).
		Bool("tls_enabled", g.tlsDebug.enabled).
		Bool("mtls_enabled", g.tlsDebug.mTLSEnabled()).
		Bool("tls_insecure_skip_verify", g.tlsDebug.insecureSkipVerify).
		Msg("csp request")

	response, err := g.client.Do(request)
	if err != nil {
		logger.Debug().
			Str("method", request.Method).
			Str("url", redactURLForDebug(request.URL)).
			Err(err).
			Msg("csp request failed")
		return nil, err
	}

	logger.Debug().
		Str("method", request.Method).
		Str("url", redactURLForDebug(request.URL)).
		Int("status", response.StatusCode).
		Msg("csp response")
	return response, nil
}

// redactURLForDebug strips credentials and query values before logging.
// Filter expressions carry principal names; header auth never reaches the
// URL but query redaction keeps the log safe either way.
func redactURLForDebug(value *url.URL) string {
	if value == nil {
		return ""
	}

	cloned := *value
	cloned.User = nil

	query := cloned.Query()
	if len(query) > 0 {
		for key, values := range query {
			redacted := make([]string, len(values))
			for idx := range values {
				redacted[idx] = "<redacted>"
			}
			query[key] = redacted
		}
		cloned.RawQuery = query.Encode()
	}

	return cloned.String()
}
