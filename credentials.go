// credentials.go
// --------------
// The credential store holds the current bearer token, its expiry, and the
// pending refresh timer. Exactly one live credential exists at a time; a
// refresh replaces it wholesale with last-writer-wins semantics, so an
// exchange started just before a refresh completes may still carry the
// previous token. The refresh timer is a self-rescheduling loop: firing
// re-invokes authentication with the same arguments and arms the next
// timer, until Disconnect cancels it.
package cloudantclient

import (
	"sync"
	"time"

	"golang.org/x/oauth2"
)

type credentialStore struct {
	mu      sync.Mutex
	token   *oauth2.Token
	refresh *time.Timer
	stopped bool
}

// bearer returns the current access token, or "" when no non-expired token
// is held.
func (s *credentialStore) bearer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == nil || !s.token.Valid() {
		return ""
	}
	return s.token.AccessToken
}

// set replaces the credential wholesale. The previous token is discarded;
// the pending refresh timer is left alone (the refresh loop re-arms it).
func (s *credentialStore) set(token *oauth2.Token) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// armRefresh schedules fn after d, replacing any previously pending timer.
// It is a no-op once the store has been stopped, so a refresh racing a
// disconnect cannot re-arm the loop.
func (s *credentialStore) armRefresh(d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if s.refresh != nil {
		s.refresh.Stop()
	}
	s.refresh = time.AfterFunc(d, fn)
}

// stop cancels the pending refresh timer and marks the store terminal. Safe
// to call from any state, including mid-refresh.
func (s *credentialStore) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.refresh != nil {
		s.refresh.Stop()
		s.refresh = nil
	}
}
