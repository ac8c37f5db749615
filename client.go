// client.go
// ---------
// The composition root. A Client owns one shared multiplexed connection,
// the session cookie store, the credential store, and the request-id
// source. It exposes the public operation surface: Request, Requests,
// AuthenticateWithPassword, AuthenticateWithAPIKey and Disconnect.
package cloudantclient

import (
	"context"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"pkt.systems/pslog"

	"github.com/glynnbird/cloudantclient/internal/expiry"
)

// EnvLogLevel is the environment variable consulted when no logger is
// configured. Setting it to "debug" enables per-exchange debug lines on
// stderr. Logging is purely observational and never consulted for control
// flow.
const EnvLogLevel = "COUCH_LOG"

// SessionPath is the server endpoint for cookie-session authentication.
const SessionPath = "/_session"

// Client is a persistent-connection client for a CouchDB-compatible HTTP
// API. All exchanges issued by one Client multiplex over a single shared
// connection. A Client is safe for concurrent use; construct it with
// NewClient and release it with Disconnect.
type Client struct {
	conn     *Connection
	executor *RequestExecutor
	jar      http.CookieJar
	creds    *credentialStore
	identity *identityExchange
	ids      *requestIDSource
	logger   pslog.Base
	metrics  *MetricsCollector

	userAgent        string
	identityEndpoint string
	timeout          time.Duration
	httpClient       *http.Client
	onRefreshError   func(error)

	disconnectOnce sync.Once
}

// NewClient constructs a client for the given base URL and opens the shared
// connection. The connection is opened exactly once here and is the sole
// transport for every exchange this instance issues.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{
		ids:       newRequestIDSource(),
		creds:     &credentialStore{},
		userAgent: DefaultUserAgent(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = loggerFromEnv()
	}

	conn, err := newConnection(baseURL, c.httpClient, c.timeout)
	if err != nil {
		return nil, err
	}
	c.conn = conn

	if c.jar == nil {
		jar, err := newCookieJar()
		if err != nil {
			return nil, err
		}
		c.jar = jar
	}

	c.identity = newIdentityExchange(c.identityEndpoint, c.userAgent)
	c.executor = newRequestExecutor(c)

	c.logDebug("client connected", "url", conn.BaseURL().String(), "tag", c.ids.tag)
	return c, nil
}

// Request normalizes desc, injects the current credential state, and
// performs one exchange over the shared connection. A response with status
// >= 400 returns both the populated result and an application error.
func (c *Client) Request(ctx context.Context, desc RequestDescription) (*ExchangeResult, error) {
	if c.conn.State() == StateDisconnected {
		return nil, ErrDisconnected
	}
	nr, err := c.normalize(desc)
	if err != nil {
		return nil, err
	}
	return c.executor.Execute(ctx, nr)
}

// Requests performs every description concurrently over the single shared
// connection and returns one settled outcome per input, preserving input
// order regardless of completion order. A single failing exchange never
// aborts the others.
func (c *Client) Requests(ctx context.Context, descs []RequestDescription) []Outcome {
	outcomes := make([]Outcome, len(descs))
	var wg sync.WaitGroup
	for i, desc := range descs {
		wg.Add(1)
		go func(i int, desc RequestDescription) {
			defer wg.Done()
			result, err := c.Request(ctx, desc)
			outcomes[i] = Outcome{Result: result, Err: err}
		}(i, desc)
	}
	wg.Wait()
	return outcomes
}

// AuthenticateWithPassword performs cookie-session authentication: a
// form-encoded POST to /_session whose Set-Cookie response is captured by
// the exchange engine into the shared session store. Nothing is stored
// client-side beyond the cookie; subsequent requests replay it
// automatically.
func (c *Client) AuthenticateWithPassword(ctx context.Context, name, password string) (*ExchangeResult, error) {
	return c.Request(ctx, RequestDescription{
		Method:      http.MethodPost,
		Path:        SessionPath,
		ContentType: ContentTypeForm,
		Body: []QueryParam{
			{Key: "name", Value: name},
			{Key: "password", Value: password},
		},
	})
}

// AuthenticateWithAPIKey trades apiKey for a bearer token via the identity
// exchange and stores it. With autoRefresh, a refresh is scheduled to fire
// 60 seconds before expiry (immediately for shorter-lived tokens) and
// re-arms itself after every successful refresh until Disconnect. A failed
// explicit call leaves any previous credential untouched.
func (c *Client) AuthenticateWithAPIKey(ctx context.Context, apiKey string, autoRefresh bool) error {
	if strings.TrimSpace(apiKey) == "" {
		return ErrNoAPIKey
	}
	token, err := c.identity.Exchange(ctx, apiKey)
	if err != nil {
		if c.metrics != nil {
			c.metrics.tokenRefresh("error")
		}
		return err
	}
	c.creds.set(token)
	if c.metrics != nil {
		c.metrics.tokenRefresh("ok")
	}
	c.logDebug("bearer token acquired", "expires_at", token.Expiry.Format(time.RFC3339))

	if autoRefresh && !token.Expiry.IsZero() {
		c.scheduleRefresh(apiKey, token.Expiry)
	}
	return nil
}

// scheduleRefresh arms the self-rescheduling refresh loop. A refresh
// failure is logged (and reported through the WithRefreshErrorHandler
// callback when configured) but does not retry itself; the previous, now
// possibly stale, credential stays in place.
func (c *Client) scheduleRefresh(apiKey string, expiresAt time.Time) {
	delay := expiry.RefreshDelay(expiresAt, time.Now())
	c.logDebug("refresh scheduled", "in", delay.String())
	c.creds.armRefresh(delay, func() {
		token, err := c.identity.Exchange(context.Background(), apiKey)
		if err != nil {
			c.logError("token refresh failed", "error", err.Error())
			if c.metrics != nil {
				c.metrics.tokenRefresh("error")
			}
			if c.onRefreshError != nil {
				c.onRefreshError(err)
			}
			return
		}
		c.creds.set(token)
		if c.metrics != nil {
			c.metrics.tokenRefresh("ok")
		}
		c.logDebug("bearer token refreshed", "expires_at", token.Expiry.Format(time.RFC3339))
		if !token.Expiry.IsZero() {
			c.scheduleRefresh(apiKey, token.Expiry)
		}
	})
}

// Disconnect cancels the pending credential refresh and closes the shared
// connection. It is idempotent and terminal: exchanges already in flight
// still complete, but the client cannot reconnect.
func (c *Client) Disconnect() {
	c.disconnectOnce.Do(func() {
		c.creds.stop()
		c.conn.disconnect()
		c.logDebug("client disconnected")
	})
}

// State reports the shared connection's lifecycle state.
func (c *Client) State() ConnectionState {
	return c.conn.State()
}

// normalize derives the wire request for desc, injecting the cookie header
// produced by the session store and the bearer token when one is current.
func (c *Client) normalize(desc RequestDescription) (*NormalizedRequest, error) {
	id := c.ids.next()
	nr, err := normalizeRequest(c.conn.BaseURL(), id, desc, c.cookieHeaderFor(desc.Path), c.creds.bearer(), c.userAgent)
	if err != nil {
		return nil, err
	}
	return nr, nil
}

// cookieHeaderFor renders the Cookie header value for the given path, or ""
// when the session store has nothing for it.
func (c *Client) cookieHeaderFor(path string) string {
	if c.jar == nil {
		return ""
	}
	base := c.conn.BaseURL()
	ref := *base
	if path != "" {
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		ref.Path = path
	}
	cookies := c.jar.Cookies(&ref)
	if len(cookies) == 0 {
		return ""
	}
	parts := make([]string, 0, len(cookies))
	for _, cookie := range cookies {
		parts = append(parts, cookie.Name+"="+cookie.Value)
	}
	return strings.Join(parts, "; ")
}

func loggerFromEnv() pslog.Base {
	if strings.EqualFold(os.Getenv(EnvLogLevel), "debug") {
		return pslog.NewWithOptions(context.Background(), os.Stderr, pslog.Options{
			Mode:     pslog.ModeStructured,
			MinLevel: pslog.DebugLevel,
		})
	}
	return pslog.NoopLogger()
}

func (c *Client) logDebug(msg string, keyvals ...any) {
	if c.logger == nil {
		return
	}
	c.logger.Debug(msg, keyvals...)
}

func (c *Client) logError(msg string, keyvals ...any) {
	if c.logger == nil {
		return
	}
	c.logger.Error(msg, keyvals...)
}
