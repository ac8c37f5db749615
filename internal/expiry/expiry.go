// Package expiry holds the arithmetic for scheduling proactive credential
// refreshes ahead of token expiry.
package expiry

import "time"

// RefreshLead is how far ahead of token expiry a refresh fires.
const RefreshLead = 60 * time.Second

// RefreshDelay returns how long to wait before refreshing a token that
// expires at the given instant. The delay is expiry minus RefreshLead; a
// token whose remaining lifetime is under the lead refreshes immediately.
func RefreshDelay(expiresAt, now time.Time) time.Duration {
	d := expiresAt.Sub(now) - RefreshLead
	if d < 0 {
		return 0
	}
	return d
}

// FromExpiresIn converts a relative lifetime in seconds into an absolute
// expiry instant.
func FromExpiresIn(seconds int64, now time.Time) time.Time {
	return now.Add(time.Duration(seconds) * time.Second)
}
