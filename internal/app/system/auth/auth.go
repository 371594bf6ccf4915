// internal/app/system/auth/auth.go
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/classhub/internal/domain/models"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session constants                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	// DefaultSessionName is used when no cookie name is configured.
	DefaultSessionName = "classhub-session"

	// identityKey holds the JSON-encoded models.Identity.
	identityKey = "identity"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Current-User helper                                                         |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionUser is the signed-in identity as carried in r.Context().
type SessionUser struct {
	Email   string
	Name    string
	Role    string
	Student *models.Student
}

// MSSV returns the student id for student users, or "".
func (u *SessionUser) MSSV() string {
	if u == nil || u.Student == nil {
		return ""
	}
	return u.Student.MSSV
}

// Identity converts the user back into the backend identity record.
func (u *SessionUser) Identity() models.Identity {
	return models.Identity{Email: u.Email, Role: u.Role, Student: u.Student}
}

func newSessionUser(id models.Identity) *SessionUser {
	return &SessionUser{
		Email:   id.Email,
		Name:    id.DisplayName(),
		Role:    strings.ToLower(id.Role),
		Student: id.Student,
	}
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & “found?” flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok && u != nil
}

// WithTestUser injects u into the request context, bypassing the cookie.
// Intended for handler tests.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

/*─────────────────────────────────────────────────────────────────────────────*
| SessionManager                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionManager owns the cookie store and is the only code that reads or
// writes the identity record. SignIn initialises it, LoadSessionUser reads
// it on every request and SignOut tears it down.
type SessionManager struct {
	store *sessions.CookieStore
	name  string
	log   *zap.Logger
}

// NewSessionManager builds a SessionManager. The `secure` flag controls
// whether cookies are marked Secure and which SameSite mode is used.
//
// In production (secure=true), cookies are Secure + SameSite=None.
// In local dev over http://localhost, use secure=false so cookies are accepted.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, errors.New("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = DefaultSessionName
	}

	// The identity record includes a student profile, so cookies are
	// encrypted as well as signed. The block key is derived from the
	// session key.
	blockKey := sha256.Sum256([]byte("classhub/session-block/" + sessionKey))
	store := sessions.NewCookieStore([]byte(sessionKey), blockKey[:])
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts
	if maxAge > 0 {
		store.MaxAge(int(maxAge.Seconds()))
	}

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain),
		zap.Duration("max_age", maxAge))

	return &SessionManager{store: store, name: name, log: logger}, nil
}

// Store exposes the underlying cookie store.
func (sm *SessionManager) Store() *sessions.CookieStore { return sm.store }

// Name is the session cookie name.
func (sm *SessionManager) Name() string { return sm.name }

// GetSession returns the request's session. A cookie that no longer decodes
// (rotated key, tampering) yields a fresh empty session and no error.
func (sm *SessionManager) GetSession(r *http.Request) (*sessions.Session, error) {
	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		var cerr securecookie.Error
		if errors.As(err, &cerr) && cerr.IsDecode() {
			sm.log.Debug("discarding undecodable session cookie", zap.Error(err))
			return sess, nil
		}
		return sess, err
	}
	return sess, nil
}

// SignIn stores id as the session's identity, replacing anything present.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, id models.Identity) error {
	if !models.ValidRole(id.Role) {
		return fmt.Errorf("sign in: unknown role %q", id.Role)
	}
	b, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("sign in: encode identity: %w", err)
	}
	sess, err := sm.GetSession(r)
	if err != nil {
		return err
	}
	for k := range sess.Values {
		delete(sess.Values, k)
	}
	sess.Values[identityKey] = string(b)
	return sess.Save(r, w)
}

// SignOut expires the session cookie.
func (sm *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, err := sm.GetSession(r)
	if err != nil {
		return err
	}
	for k := range sess.Values {
		delete(sess.Values, k)
	}
	opts := *sm.store.Options
	opts.MaxAge = -1
	sess.Options = &opts
	return sess.Save(r, w)
}

// identityFrom decodes the identity record, reporting false when it is
// missing or unusable.
func identityFrom(sess *sessions.Session) (models.Identity, bool) {
	raw, _ := sess.Values[identityKey].(string)
	if raw == "" {
		return models.Identity{}, false
	}
	var id models.Identity
	if err := json.Unmarshal([]byte(raw), &id); err != nil {
		return models.Identity{}, false
	}
	if id.Email == "" || !models.ValidRole(id.Role) {
		return models.Identity{}, false
	}
	if strings.EqualFold(id.Role, models.RoleStudent) && id.MSSV() == "" {
		return models.Identity{}, false
	}
	return id, true
}

// LoadSessionUser injects the user into context if they are signed in.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := sm.GetSession(r)
		if err != nil {
			sm.log.Warn("session load failed", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}
		if id, ok := identityFrom(sess); ok {
			r = withUser(r, newSessionUser(id))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn ensures there is a user in context (set by LoadSessionUser).
// If not signed in:
//   - HTMX: sends HX-Redirect to /login?return=...
//   - HTML: 303 redirect to /login?return=...
//   - API:  401 Unauthorized with a plain error body.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		redirectToLogin(w, r, http.StatusUnauthorized, true)
	})
}

// RequireRole ensures the signed-in user has one of the allowed roles.
// Both a missing identity and a role mismatch land on the login page; the
// return target is only kept when nobody is signed in.
func (sm *SessionManager) RequireRole(allowed ...string) func(http.Handler) http.Handler {
	set := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		set[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				redirectToLogin(w, r, http.StatusUnauthorized, true)
				return
			}
			if _, has := set[strings.ToLower(u.Role)]; !has {
				sm.log.Info("role mismatch",
					zap.String("path", r.URL.Path),
					zap.String("role", u.Role),
					zap.String("email", u.Email))
				redirectToLogin(w, r, http.StatusForbidden, false)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// HomeFor returns the landing page for a role.
func HomeFor(role string) string {
	switch strings.ToLower(role) {
	case models.RoleAdmin:
		return "/home"
	case models.RoleStudent:
		return "/student/home"
	}
	return "/login"
}

// helpers

func redirectToLogin(w http.ResponseWriter, r *http.Request, apiStatus int, keepReturn bool) {
	dest := "/login"
	if keepReturn {
		dest += "?return=" + url.QueryEscape(currentURI(r))
	}

	// HTMX: full-page client redirect (no partial swap)
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", dest)
		w.WriteHeader(apiStatus)
		return
	}

	if wantsHTML(r) {
		http.Redirect(w, r, dest, http.StatusSeeOther)
		return
	}

	// Non-HTML (API) callers keep the status code.
	http.Error(w, strings.ToLower(http.StatusText(apiStatus)), apiStatus)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

func wantsHTML(r *http.Request) bool {
	// Very light heuristic: treat it as HTML if it's HTMX or Accepts text/html.
	if r.Header.Get("HX-Request") == "true" {
		return true
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html")
}

func currentURI(r *http.Request) string {
	u := *r.URL
	return u.RequestURI()
}
