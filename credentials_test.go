package cloudantclient

import (
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestCredentialStoreBearer(t *testing.T) {
	store := &credentialStore{}
	if got := store.bearer(); got != "" {
		t.Errorf("bearer = %q, want empty before authentication", got)
	}

	store.set(&oauth2.Token{AccessToken: "tok1", Expiry: time.Now().Add(time.Hour)})
	if got := store.bearer(); got != "tok1" {
		t.Errorf("bearer = %q, want tok1", got)
	}

	// An expired token is never attached.
	store.set(&oauth2.Token{AccessToken: "tok2", Expiry: time.Now().Add(-time.Minute)})
	if got := store.bearer(); got != "" {
		t.Errorf("bearer = %q, want empty for expired token", got)
	}
}

func TestCredentialStoreLastWriterWins(t *testing.T) {
	store := &credentialStore{}
	store.set(&oauth2.Token{AccessToken: "old", Expiry: time.Now().Add(time.Hour)})
	store.set(&oauth2.Token{AccessToken: "new", Expiry: time.Now().Add(time.Hour)})
	if got := store.bearer(); got != "new" {
		t.Errorf("bearer = %q, want new", got)
	}
}

func TestCredentialStoreRefreshReplacesPendingTimer(t *testing.T) {
	store := &credentialStore{}
	fired := make(chan string, 2)

	store.armRefresh(time.Hour, func() { fired <- "first" })
	store.armRefresh(time.Millisecond, func() { fired <- "second" })

	select {
	case got := <-fired:
		if got != "second" {
			t.Errorf("fired = %q, want second", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
	select {
	case got := <-fired:
		t.Errorf("unexpected extra firing %q", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCredentialStoreStopCancelsAndPreventsRearm(t *testing.T) {
	store := &credentialStore{}
	fired := make(chan struct{}, 1)

	store.armRefresh(10*time.Millisecond, func() { fired <- struct{}{} })
	store.stop()

	select {
	case <-fired:
		t.Fatal("refresh fired after stop")
	case <-time.After(50 * time.Millisecond):
	}

	// Arming after stop is a no-op, so a refresh racing a disconnect
	// cannot resurrect the loop.
	store.armRefresh(time.Millisecond, func() { fired <- struct{}{} })
	select {
	case <-fired:
		t.Fatal("refresh fired on a stopped store")
	case <-time.After(50 * time.Millisecond):
	}
}
