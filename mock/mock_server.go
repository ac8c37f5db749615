// Package mock provides a scripted in-memory server imitating the pieces of
// a CouchDB-compatible API the client exercises: cookie-session issuing on
// /_session, API-key token exchanges on a configurable identity path, and
// canned JSON documents. It records the credential headers it observes so
// tests can assert what was actually sent.
package mock

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
)

// DefaultIdentityPath is where the mock serves token exchanges.
const DefaultIdentityPath = "/identity/token"

// ObservedRequest captures the credential-relevant parts of one request.
type ObservedRequest struct {
	Method        string
	Path          string
	Cookie        string
	Authorization string
}

// Server is a fake document-database plus identity service.
type Server struct {
	*httptest.Server

	// TokenLifetime is the expires_in (seconds) issued with each token.
	TokenLifetime int64

	mu        sync.Mutex
	documents map[string]any
	sessions  map[string]string // cookie value -> username
	tokens    int
	observed  []ObservedRequest
}

// NewServer starts the fake server. Callers own shutting it down via Close.
func NewServer() *Server {
	s := &Server{
		TokenLifetime: 3600,
		documents: map[string]any{
			"/_all_dbs": []string{"animaldb", "moviesdb"},
			"/_up":      map[string]any{"status": "ok"},
		},
		sessions: make(map[string]string),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// SetDocument registers a canned JSON response for path.
func (s *Server) SetDocument(path string, doc any) {
	s.mu.Lock()
	s.documents[path] = doc
	s.mu.Unlock()
}

// Observed returns a copy of every request seen so far.
func (s *Server) Observed() []ObservedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ObservedRequest, len(s.observed))
	copy(out, s.observed)
	return out
}

// IdentityEndpoint returns the absolute URL of the token exchange.
func (s *Server) IdentityEndpoint() string {
	return s.URL + DefaultIdentityPath
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.record(r)

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/_session":
		s.handleSession(w, r)
	case r.Method == http.MethodPost && r.URL.Path == DefaultIdentityPath:
		s.handleToken(w, r)
	default:
		s.handleDocument(w, r)
	}
}

func (s *Server) record(r *http.Request) {
	s.mu.Lock()
	s.observed = append(s.observed, ObservedRequest{
		Method:        r.Method,
		Path:          r.URL.Path,
		Cookie:        r.Header.Get("Cookie"),
		Authorization: r.Header.Get("Authorization"),
	})
	s.mu.Unlock()
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "bad_request"})
		return
	}
	name := r.PostFormValue("name")
	password := r.PostFormValue("password")
	if name == "" || password == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"error":  "unauthorized",
			"reason": "Name or password is incorrect.",
		})
		return
	}

	s.mu.Lock()
	cookie := fmt.Sprintf("session-%d", len(s.sessions)+1)
	s.sessions[cookie] = name
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: "AuthSession", Value: cookie, Path: "/"})
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "name": name, "roles": []string{}})
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errorMessage": "bad request"})
		return
	}
	if r.PostFormValue("grant_type") != "urn:ibm:params:oauth:grant-type:apikey" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errorMessage": "unsupported grant type"})
		return
	}
	if r.PostFormValue("apikey") == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errorMessage": "Provide a valid apikey"})
		return
	}

	s.mu.Lock()
	s.tokens++
	token := fmt.Sprintf("mock-token-%d", s.tokens)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   s.TokenLifetime,
	})
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	doc, ok := s.documents[r.URL.Path]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "not_found", "reason": "missing"})
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
