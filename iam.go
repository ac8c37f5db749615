// iam.go
// ------
// The identity-token exchange: trades an API key for a short-lived bearer
// token at the identity service's token endpoint. The exchange is a single
// fixed request/response shape: a form-encoded POST carrying the grant type
// and the key. Any status >= 400 is a credential error whose body is the
// parsed (or raw) error payload.
package cloudantclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/oauth2"

	"github.com/glynnbird/cloudantclient/internal/expiry"
)

const (
	// DefaultIdentityEndpoint is the IBM Cloud IAM token endpoint.
	DefaultIdentityEndpoint = "https://iam.cloud.ibm.com/identity/token"

	// iamGrantType is the fixed grant type for API-key token exchanges.
	iamGrantType = "urn:ibm:params:oauth:grant-type:apikey"
)

// identityTokenResponse is the JSON body returned by the token endpoint.
type identityTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Expiration  int64  `json:"expiration"` // absolute unix seconds
}

// identityExchange performs API-key -> bearer-token exchanges against a
// fixed endpoint. It deliberately uses its own plain HTTP client rather
// than the shared multiplexed connection: the identity service is a
// different host from the database.
type identityExchange struct {
	endpoint   string
	httpClient *http.Client
	userAgent  string
}

func newIdentityExchange(endpoint, userAgent string) *identityExchange {
	if endpoint == "" {
		endpoint = DefaultIdentityEndpoint
	}
	return &identityExchange{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		userAgent:  userAgent,
	}
}

// Exchange trades apiKey for a bearer token. The returned token carries an
// absolute expiry derived from the response's expiration field, falling
// back to expires_in, then to the token's own exp claim.
func (x *identityExchange) Exchange(ctx context.Context, apiKey string) (*oauth2.Token, error) {
	form := url.Values{}
	form.Set("grant_type", iamGrantType)
	form.Set("apikey", apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, x.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, credentialError("build token request", 0, err)
	}
	req.Header.Set(headerContentType, ContentTypeForm)
	req.Header.Set(headerAccept, ContentTypeJSON)
	if x.userAgent != "" {
		req.Header.Set(headerUserAgent, x.userAgent)
	}

	resp, err := x.httpClient.Do(req)
	if err != nil {
		return nil, credentialError("token exchange failed", 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, credentialError("read token response", resp.StatusCode, err)
	}

	if resp.StatusCode >= 400 {
		return nil, credentialError(tokenErrorMessage(body), resp.StatusCode, nil)
	}

	var tr identityTokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, credentialError("parse token response", resp.StatusCode, err)
	}
	if tr.AccessToken == "" {
		return nil, credentialError("token response missing access_token", resp.StatusCode, nil)
	}

	return &oauth2.Token{
		AccessToken: tr.AccessToken,
		TokenType:   tr.TokenType,
		Expiry:      tokenExpiry(tr, time.Now()),
	}, nil
}

// tokenExpiry resolves the token's expiry instant. Preference order:
// absolute expiration field, relative expires_in, then the JWT exp claim of
// the access token itself (parsed unverified; it only schedules a local
// refresh and is never trusted for authorization).
func tokenExpiry(tr identityTokenResponse, now time.Time) time.Time {
	if tr.Expiration > 0 {
		return time.Unix(tr.Expiration, 0)
	}
	if tr.ExpiresIn > 0 {
		return expiry.FromExpiresIn(tr.ExpiresIn, now)
	}
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tr.AccessToken, &claims); err == nil && claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}
	return time.Time{}
}

// tokenErrorMessage extracts a readable message from an identity-service
// error payload, falling back to the raw body.
func tokenErrorMessage(body []byte) string {
	var payload struct {
		ErrorMessage string `json:"errorMessage"`
		ErrorCode    string `json:"errorCode"`
		Message      string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.ErrorMessage != "":
			return payload.ErrorMessage
		case payload.Message != "":
			return payload.Message
		case payload.ErrorCode != "":
			return payload.ErrorCode
		}
	}
	if len(body) > 0 {
		return string(body)
	}
	return "token exchange failed"
}
