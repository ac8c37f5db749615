// request_executor.go
// -------------------
// The exchange engine: sends one normalized request over the shared
// connection, buffers the response body to completion, forwards Set-Cookie
// values to the session store, and classifies the outcome by status code.
// Each call is one exchange; many exchanges may be in flight concurrently
// over the same multiplexed connection. There are no retries here: a
// transport error aborts only its own exchange and never tears down the
// shared connection.
package cloudantclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RequestExecutor carries normalized requests over the client's shared
// connection and produces classified results.
type RequestExecutor struct {
	client *Client
}

func newRequestExecutor(client *Client) *RequestExecutor {
	return &RequestExecutor{client: client}
}

// Execute performs one exchange. Status < 400 returns (result, nil);
// status >= 400 returns the identically-shaped result together with an
// application error, so callers inspect status and body uniformly either
// way. Transport failures return (nil, transport error).
func (re *RequestExecutor) Execute(ctx context.Context, nr *NormalizedRequest) (*ExchangeResult, error) {
	c := re.client
	start := time.Now()
	c.logDebug("sending request",
		"id", nr.ID,
		"method", nr.Method,
		"path", nr.Path,
		"auth", authModeTag(nr),
		"bytes", len(nr.Body),
	)
	if c.metrics != nil {
		c.metrics.exchangeStarted(nr.Method)
		defer c.metrics.exchangeFinished(nr.Method)
	}

	var body io.Reader
	if len(nr.Body) > 0 {
		body = bytes.NewReader(nr.Body)
	}
	req, err := http.NewRequestWithContext(ctx, nr.Method, nr.URL, body)
	if err != nil {
		return nil, configError("build wire request", err)
	}
	req.Header = nr.Header

	resp, err := c.conn.httpClient.Do(req)
	if err != nil {
		c.logDebug("request failed", "id", nr.ID, "error", err.Error())
		return nil, transportError(nr.ID, "exchange failed", err)
	}
	defer resp.Body.Close()

	if cookies := resp.Cookies(); len(cookies) > 0 {
		re.ingestCookies(resp.Request.URL, cookies)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logDebug("response body read failed", "id", nr.ID, "error", err.Error())
		return nil, transportError(nr.ID, "read response body", err)
	}

	result := &ExchangeResult{
		StatusCode: resp.StatusCode,
		Headers:    lowercaseHeaders(resp.Header),
		Data:       decodeBody(data, resp.Header.Get(headerContentType)),
	}

	elapsed := time.Since(start)
	c.logDebug("received response",
		"id", nr.ID,
		"status", resp.StatusCode,
		"bytes", len(data),
		"elapsed_ms", elapsed.Milliseconds(),
	)
	if c.metrics != nil {
		c.metrics.exchangeCompleted(nr.Method, resp.StatusCode, elapsed)
	}

	if resp.StatusCode >= 400 {
		return result, applicationError(nr.ID, resp.StatusCode)
	}
	return result, nil
}

// ingestCookies forwards server-issued cookies to the shared session store,
// keyed by the URL that produced them. Updates are visible to any exchange
// normalized after this one completes.
func (re *RequestExecutor) ingestCookies(u *url.URL, cookies []*http.Cookie) {
	if u == nil || re.client.jar == nil {
		return
	}
	re.client.jar.SetCookies(u, cookies)
}

// decodeBody interprets the buffered response body. JSON content decodes
// into a generic value; a parse failure degrades to the raw text rather
// than failing the exchange. Non-JSON content is returned as the raw text.
func decodeBody(data []byte, contentType string) any {
	text := string(data)
	if !isJSONContentType(contentType) {
		return text
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return text
	}
	return v
}

// lowercaseHeaders flattens response headers into a map keyed by lowercased
// name, first value wins.
func lowercaseHeaders(h http.Header) map[string]string {
	headers := make(map[string]string, len(h))
	for k, vals := range h {
		if len(vals) > 0 {
			headers[strings.ToLower(k)] = vals[0]
		}
	}
	return headers
}

// authModeTag names the credential mode attached to a request, for log
// lines only.
func authModeTag(nr *NormalizedRequest) string {
	hasBearer := nr.Header.Get(headerAuthorization) != ""
	hasCookie := nr.Header.Get(headerCookie) != ""
	switch {
	case hasBearer && hasCookie:
		return "bearer+cookie"
	case hasBearer:
		return "bearer"
	case hasCookie:
		return "cookie"
	default:
		return "none"
	}
}
