package cloudantclient

import "fmt"

var (
	// Version is the library semantic version (inject via -ldflags).
	Version = "1.0.0"
)

// DefaultUserAgent returns the User-Agent header value sent when no
// override is configured.
func DefaultUserAgent() string {
	return fmt.Sprintf("cloudantclient/%s", Version)
}
