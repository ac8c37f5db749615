// connection.go
// -------------
// Owns the shared multiplexed transport: one HTTP/2-capable http.Client per
// Connection, constructed once and used by every exchange the client issues.
// The lifecycle is disconnected -> connecting -> connected -> disconnected
// and the final state is terminal: a new client must be constructed to
// reconnect. The cookie jar (the client's session store) is built here too,
// backed by the public suffix list so domain matching follows RFC 6265.
package cloudantclient

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/publicsuffix"
)

// ConnectionState reports where the shared transport is in its lifecycle.
type ConnectionState int32

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
)

func (s ConnectionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Connection is the shared transport handle. All exchanges issued by a
// client multiplex over this one connection; the transport demultiplexes
// responses to the stream that issued them, so the connection itself owns
// no per-request state.
type Connection struct {
	httpClient *http.Client
	base       *url.URL

	state          atomic.Int32
	disconnectOnce sync.Once
}

// newConnection validates the base URL and builds the transport. When the
// caller supplies no http.Client, an HTTP/2-enabled transport capped at one
// connection per host is constructed so that concurrent exchanges share a
// single multiplexed session.
func newConnection(baseURL string, httpClient *http.Client, timeout time.Duration) (*Connection, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, configError("base URL required", nil)
	}
	base, err := url.Parse(trimmed)
	if err != nil {
		return nil, configError(fmt.Sprintf("invalid base URL %q", baseURL), err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, configError(fmt.Sprintf("unsupported base URL scheme %q", base.Scheme), nil)
	}

	conn := &Connection{base: base}
	conn.state.Store(int32(StateConnecting))

	if httpClient == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.MaxConnsPerHost = 1
		if err := http2.ConfigureTransport(transport); err != nil {
			return nil, configError("configure http2 transport", err)
		}
		httpClient = &http.Client{Transport: transport, Timeout: timeout}
	}
	conn.httpClient = httpClient

	// The TCP/TLS session itself is established lazily by the first
	// exchange and reused for every subsequent one.
	conn.state.Store(int32(StateConnected))
	return conn, nil
}

// newCookieJar builds the RFC 6265 session store shared by all exchanges.
func newCookieJar() (http.CookieJar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, configError("construct cookie jar", err)
	}
	return jar, nil
}

// State returns the current lifecycle state.
func (c *Connection) State() ConnectionState {
	return ConnectionState(c.state.Load())
}

// BaseURL returns the parsed base URL the connection targets.
func (c *Connection) BaseURL() *url.URL {
	return c.base
}

// disconnect closes the transport. It is idempotent and does not cancel
// exchanges already in flight; their completion or transport error is still
// delivered to their callers.
func (c *Connection) disconnect() {
	c.disconnectOnce.Do(func() {
		c.state.Store(int32(StateDisconnected))
		if transport, ok := c.httpClient.Transport.(interface{ CloseIdleConnections() }); ok {
			transport.CloseIdleConnections()
		}
	})
}
