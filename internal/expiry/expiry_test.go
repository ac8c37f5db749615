package expiry

import (
	"testing"
	"time"
)

func TestRefreshDelayFiresSixtySecondsEarly(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	expiresAt := FromExpiresIn(3600, now)
	if d := RefreshDelay(expiresAt, now); d != 3540*time.Second {
		t.Errorf("delay = %v, want 3540s", d)
	}
}

func TestRefreshDelayClampsShortLifetimes(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	// Lifetime under the lead: refresh immediately, never negative.
	if d := RefreshDelay(FromExpiresIn(30, now), now); d != 0 {
		t.Errorf("delay = %v, want 0", d)
	}
	if d := RefreshDelay(now.Add(-time.Minute), now); d != 0 {
		t.Errorf("delay for past expiry = %v, want 0", d)
	}
	// Exactly the lead also fires immediately.
	if d := RefreshDelay(FromExpiresIn(60, now), now); d != 0 {
		t.Errorf("delay = %v, want 0", d)
	}
}
