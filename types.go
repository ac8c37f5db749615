package cloudantclient

import "net/http"

// Content types recognized by the request normalizer.
const (
	ContentTypeJSON = "application/json"
	ContentTypeForm = "application/x-www-form-urlencoded"
)

// QueryParam is one ordered key/value pair. Query strings and form bodies
// built from []QueryParam preserve caller order.
type QueryParam struct {
	Key   string
	Value string
}

// RequestDescription is the loosely-shaped input to Request. The zero value
// describes GET /.
type RequestDescription struct {
	// Method is the HTTP method. Empty defaults to GET; the value is
	// case-normalized to uppercase.
	Method string

	// Path is the request path relative to the client base URL. Empty
	// defaults to "/". A missing leading slash is added.
	Path string

	// QueryParams are appended to the path as a percent-encoded query
	// string in the given order.
	QueryParams []QueryParam

	// Body is a structured value encoded according to the content type:
	// JSON-serialized under application/json, form-encoded under
	// application/x-www-form-urlencoded (accepts []QueryParam, url.Values
	// or map[string]string). Nil means no body.
	Body any

	// RawBody, when non-empty, is sent verbatim and takes precedence over
	// Body.
	RawBody string

	// ContentType overrides the default of application/json.
	ContentType string

	// Headers are extra headers set on the wire request.
	Headers map[string]string
}

// NormalizedRequest is the fully-specified wire request derived from a
// RequestDescription. It is constructed per call and discarded once the
// exchange completes.
type NormalizedRequest struct {
	// ID is the correlation identifier, formatted <tag><counter>. It is
	// used for log correlation only, never for routing.
	ID string

	Method      string
	Path        string // path with query string appended
	URL         string // absolute URL
	ContentType string
	Body        []byte

	// Header carries the assembled wire headers, including cookie and
	// authorization when credentials are present.
	Header http.Header
}

// ExchangeResult is the classified outcome of one exchange. Success
// (status < 400) and failure (status >= 400) carry the identical shape;
// callers distinguish them by the returned error, not by inspecting the
// status code.
type ExchangeResult struct {
	StatusCode int

	// Headers maps lowercased response header names to their first value.
	Headers map[string]string

	// Data is the response body: JSON-decoded when the response content
	// type is JSON, otherwise the raw text. A JSON parse failure degrades
	// to the raw text rather than failing the exchange.
	Data any
}

// Outcome is one settled result from Requests. Exactly one of Result/Err
// describes a transport or configuration failure; application failures
// (status >= 400) populate both.
type Outcome struct {
	Result *ExchangeResult
	Err    error
}
