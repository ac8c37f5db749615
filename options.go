package cloudantclient

import (
	"net/http"
	"time"

	"pkt.systems/pslog"
)

// Option configures a Client at construction time.
type Option func(*Client)

// WithLogger sets the structured logger used for per-exchange debug lines.
// Passing nil falls back to pslog.NoopLogger().
func WithLogger(logger pslog.Base) Option {
	return func(c *Client) {
		if logger == nil {
			logger = pslog.NoopLogger()
		}
		c.logger = logger
	}
}

// WithHTTPClient supplies the underlying HTTP client, replacing the default
// HTTP/2 single-connection transport. Intended for tests and proxies.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithCookieJar replaces the default RFC 6265 session store.
func WithCookieJar(jar http.CookieJar) Option {
	return func(c *Client) {
		c.jar = jar
	}
}

// WithIdentityEndpoint overrides the identity service's token endpoint used
// for API-key authentication.
func WithIdentityEndpoint(endpoint string) Option {
	return func(c *Client) {
		c.identityEndpoint = endpoint
	}
}

// WithUserAgent overrides the User-Agent header sent with every exchange.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithTimeout caps the total duration of each exchange on the shared
// connection. Zero means no client-side timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithMetrics attaches a Prometheus collector observing exchanges and token
// refreshes.
func WithMetrics(metrics *MetricsCollector) Option {
	return func(c *Client) {
		c.metrics = metrics
	}
}

// WithRefreshErrorHandler registers a callback invoked when a scheduled
// token refresh fails. Refresh failures do not retry themselves; callers
// relying on auto-refresh should treat the callback as a signal to
// re-authenticate.
func WithRefreshErrorHandler(fn func(error)) Option {
	return func(c *Client) {
		c.onRefreshError = fn
	}
}
