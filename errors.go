package cloudantclient

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios.
var (
	// ErrDisconnected is returned when a request is issued after Disconnect.
	ErrDisconnected = errors.New("cloudantclient: client disconnected")

	// ErrNoAPIKey is returned when API-key authentication is attempted with
	// an empty key.
	ErrNoAPIKey = errors.New("cloudantclient: api key required")
)

// ErrorKind partitions client failures by where they originate.
type ErrorKind string

const (
	// ErrorKindConfig covers malformed URLs and invalid request
	// descriptions. These fail synchronously, before any network I/O.
	ErrorKindConfig ErrorKind = "config"

	// ErrorKindTransport covers connection-level and stream-level failures
	// on an individual exchange.
	ErrorKindTransport ErrorKind = "transport"

	// ErrorKindApplication covers HTTP responses with status >= 400. The
	// accompanying ExchangeResult is still fully populated.
	ErrorKindApplication ErrorKind = "application"

	// ErrorKindCredential covers identity-token exchange failures, whether
	// from an explicit authentication call or a scheduled refresh.
	ErrorKindCredential ErrorKind = "credential"
)

// ClientError is the error type returned by all client operations.
type ClientError struct {
	Kind       ErrorKind
	Message    string
	StatusCode int    // HTTP status for application/credential errors, 0 otherwise
	RequestID  string // correlation id of the exchange, when one was assigned
	Cause      error
}

// Error implements the error interface.
func (e *ClientError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("cloudantclient: %s: %s", e.Kind, e.Message)
	if e.RequestID != "" {
		msg = fmt.Sprintf("[%s] %s", e.RequestID, msg)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ClientError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is matches two ClientErrors by kind for errors.Is.
func (e *ClientError) Is(target error) bool {
	if e == nil {
		return false
	}
	if targetErr, ok := target.(*ClientError); ok {
		return e.Kind == targetErr.Kind
	}
	return false
}

func configError(message string, cause error) *ClientError {
	return &ClientError{Kind: ErrorKindConfig, Message: message, Cause: cause}
}

func transportError(requestID, message string, cause error) *ClientError {
	return &ClientError{Kind: ErrorKindTransport, Message: message, RequestID: requestID, Cause: cause}
}

func applicationError(requestID string, statusCode int) *ClientError {
	return &ClientError{
		Kind:       ErrorKindApplication,
		Message:    fmt.Sprintf("server returned status %d", statusCode),
		StatusCode: statusCode,
		RequestID:  requestID,
	}
}

func credentialError(message string, statusCode int, cause error) *ClientError {
	return &ClientError{Kind: ErrorKindCredential, Message: message, StatusCode: statusCode, Cause: cause}
}
