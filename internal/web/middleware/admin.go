package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	adminCookieName = "facegate_admin_session"
	adminDuration   = 24 * time.Hour
)

// AdminSession represents an authenticated admin session.
type AdminSession struct {
	ID        string
	Username  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// AdminSessions issues and validates admin sessions. Sessions live in
// process memory only; the cookie carries the session ID plus an HMAC
// signature so a forged ID is rejected before the map lookup.
type AdminSessions struct {
	secret   []byte
	username string
	password string

	mu       sync.RWMutex
	sessions map[string]*AdminSession
}

// NewAdminSessions creates the admin session manager. When username or
// password is empty, admin login is disabled and every login attempt fails.
func NewAdminSessions(secret, username, password string) *AdminSessions {
	if secret == "" {
		secret = "facegate-dev-secret-change-in-production"
	}
	return &AdminSessions{
		secret:   []byte(secret),
		username: username,
		password: password,
		sessions: make(map[string]*AdminSession),
	}
}

// Enabled reports whether admin credentials are configured.
func (as *AdminSessions) Enabled() bool {
	return as.username != "" && as.password != ""
}

// Authenticate checks the credentials in constant time. It always fails
// when admin login is disabled.
func (as *AdminSessions) Authenticate(username, password string) bool {
	if !as.Enabled() {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(as.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(as.password)) == 1
	return userOK && passOK
}

// Create issues a new admin session.
func (as *AdminSessions) Create(username string) (*AdminSession, error) {
	idBytes := make([]byte, 32)
	if _, err := rand.Read(idBytes); err != nil {
		return nil, err
	}

	now := time.Now()
	session := &AdminSession{
		ID:        base64.URLEncoding.EncodeToString(idBytes),
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(adminDuration),
	}

	as.mu.Lock()
	as.sessions[session.ID] = session
	as.mu.Unlock()

	return session, nil
}

// Get returns the session for the ID, expiring it lazily.
func (as *AdminSessions) Get(id string) *AdminSession {
	as.mu.RLock()
	session, ok := as.sessions[id]
	as.mu.RUnlock()
	if !ok {
		return nil
	}
	if time.Now().After(session.ExpiresAt) {
		as.Delete(id)
		return nil
	}
	return session
}

// Delete removes a session.
func (as *AdminSessions) Delete(id string) {
	as.mu.Lock()
	delete(as.sessions, id)
	as.mu.Unlock()
}

// SetCookie writes the signed admin session cookie.
func (as *AdminSessions) SetCookie(w http.ResponseWriter, session *AdminSession) {
	http.SetCookie(w, &http.Cookie{
		Name:     adminCookieName,
		Value:    session.ID + "." + as.sign(session.ID),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(adminDuration.Seconds()),
	})
}

// ClearCookie removes the admin session cookie.
func (as *AdminSessions) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     adminCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// FromRequest extracts a valid admin session from the request cookie.
func (as *AdminSessions) FromRequest(r *http.Request) *AdminSession {
	cookie, err := r.Cookie(adminCookieName)
	if err != nil {
		return nil
	}
	id, signature, ok := strings.Cut(cookie.Value, ".")
	if !ok || !as.verify(id, signature) {
		return nil
	}
	return as.Get(id)
}

func (as *AdminSessions) sign(data string) string {
	h := hmac.New(sha256.New, as.secret)
	h.Write([]byte(data))
	return base64.URLEncoding.EncodeToString(h.Sum(nil))
}

func (as *AdminSessions) verify(data, signature string) bool {
	return hmac.Equal([]byte(signature), []byte(as.sign(data)))
}

type contextKey string

const adminContextKey contextKey = "admin_session"

// RequireAdmin guards a route group behind a valid admin session.
func RequireAdmin(as *AdminSessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := as.FromRequest(r)
			if session == nil {
				http.Error(w, `{"error": "unauthorized"}`, http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), adminContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminFromContext retrieves the admin session placed by RequireAdmin.
func AdminFromContext(ctx context.Context) *AdminSession {
	session, ok := ctx.Value(adminContextKey).(*AdminSession)
	if !ok {
		return nil
	}
	return session
}
