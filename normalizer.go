// normalizer.go
// -------------
// Turns a loosely-shaped RequestDescription into a fully-specified wire
// request: concrete method and path, encoded body, query string, and the
// cookie/authorization headers derived from the client's current credential
// state. Normalization is synchronous and performs no network I/O; a
// malformed URL is a configuration error surfaced before anything is sent.
package cloudantclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const (
	headerContentType   = "Content-Type"
	headerAccept        = "Accept"
	headerCookie        = "Cookie"
	headerAuthorization = "Authorization"
	headerUserAgent     = "User-Agent"
	headerRequestID     = "X-Request-Id"
)

// normalizeRequest derives the wire request for desc. cookie and bearer are
// the current credential values; either or both may be empty. The function
// is pure: it never reads client state directly.
func normalizeRequest(base *url.URL, id string, desc RequestDescription, cookie, bearer, userAgent string) (*NormalizedRequest, error) {
	method := strings.ToUpper(strings.TrimSpace(desc.Method))
	if method == "" {
		method = http.MethodGet
	}

	path := desc.Path
	if path == "" {
		path = "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if qs := encodeQuery(desc.QueryParams); qs != "" {
		path += "?" + qs
	}

	ref, err := url.Parse(path)
	if err != nil {
		return nil, configError(fmt.Sprintf("invalid request path %q", path), err)
	}
	target := base.ResolveReference(ref)

	contentType := desc.ContentType
	if contentType == "" {
		// An explicit content type may also arrive via extra headers.
		for k, v := range desc.Headers {
			if strings.EqualFold(k, headerContentType) {
				contentType = v
				break
			}
		}
	}
	if contentType == "" {
		contentType = ContentTypeJSON
	}

	body, err := encodeBody(desc, contentType)
	if err != nil {
		return nil, err
	}

	header := make(http.Header)
	for k, v := range desc.Headers {
		header.Set(k, v)
	}
	header.Set(headerContentType, contentType)
	if header.Get(headerAccept) == "" {
		header.Set(headerAccept, ContentTypeJSON)
	}
	if userAgent != "" {
		header.Set(headerUserAgent, userAgent)
	}
	if cookie != "" {
		header.Set(headerCookie, cookie)
	}
	if bearer != "" {
		header.Set(headerAuthorization, "Bearer "+bearer)
	}
	header.Set(headerRequestID, id)

	return &NormalizedRequest{
		ID:          id,
		Method:      method,
		Path:        path,
		URL:         target.String(),
		ContentType: contentType,
		Body:        body,
		Header:      header,
	}, nil
}

// encodeBody serializes the request body according to the content type.
// RawBody passes through verbatim; a nil Body yields no payload.
func encodeBody(desc RequestDescription, contentType string) ([]byte, error) {
	if desc.RawBody != "" {
		return []byte(desc.RawBody), nil
	}
	if desc.Body == nil {
		return nil, nil
	}
	if isFormContentType(contentType) {
		encoded, err := encodeForm(desc.Body)
		if err != nil {
			return nil, err
		}
		return []byte(encoded), nil
	}
	if s, ok := desc.Body.(string); ok {
		// Pre-serialized string bodies pass through unchanged.
		return []byte(s), nil
	}
	data, err := json.Marshal(desc.Body)
	if err != nil {
		return nil, configError("request body is not JSON-serializable", err)
	}
	return data, nil
}

// encodeForm renders a structured body as percent-escaped key=value pairs
// joined by "&". []QueryParam preserves caller order; url.Values and
// map[string]string encode in sorted-key order.
func encodeForm(body any) (string, error) {
	switch v := body.(type) {
	case []QueryParam:
		return encodeQuery(v), nil
	case url.Values:
		return v.Encode(), nil
	case map[string]string:
		values := make(url.Values, len(v))
		for k, val := range v {
			values.Set(k, val)
		}
		return values.Encode(), nil
	case string:
		return v, nil
	default:
		return "", configError("form body must be []QueryParam, url.Values, map[string]string or string", nil)
	}
}

func encodeQuery(params []QueryParam) string {
	if len(params) == 0 {
		return ""
	}
	var b strings.Builder
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

func isFormContentType(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(contentType), ContentTypeForm)
}

func isJSONContentType(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.HasPrefix(ct, ContentTypeJSON) || strings.Contains(ct, "+json")
}
