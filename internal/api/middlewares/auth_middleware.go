package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/princekumar9234/DarkBot/internal/auth"
)

// SessionCookie is the name of the HTTP-only cookie carrying the session
// token.
const SessionCookie = "token"

type ctxKey int

const userIDKey ctxKey = iota

// UserID returns the authenticated user id attached by one of the gate
// middlewares.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok
}

// Gate enforces session-token policies on incoming requests.
type Gate struct {
	tokens *auth.TokenManager
}

func NewGate(tokens *auth.TokenManager) *Gate {
	return &Gate{tokens: tokens}
}

// RequireAuth is the hard policy for API endpoints: a missing or invalid
// token is rejected with 401, no redirect. An explicit bearer credential
// takes priority over the session cookie when both are present.
func (g *Gate) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			token = cookieToken(r)
		}
		if token == "" {
			unauthorized(w, "access denied, please log in")
			return
		}
		userID, err := g.tokens.Verify(token)
		if err != nil {
			unauthorized(w, err.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), userID)))
	})
}

// RequirePage is the soft-redirect policy for page endpoints: a missing or
// invalid token redirects to the login page, clearing any stale cookie. Pages
// consult only the session cookie.
func (g *Gate) RequirePage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := cookieToken(r)
		if token == "" {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		userID, err := g.tokens.Verify(token)
		if err != nil {
			ClearSessionCookie(w)
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), userID)))
	})
}

// LoadUser is the best-effort policy: it attaches identity when a valid
// cookie is present but never blocks or redirects.
func (g *Gate) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := cookieToken(r); token != "" {
			if userID, err := g.tokens.Verify(token); err == nil {
				r = r.WithContext(withUserID(r.Context(), userID))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RedirectIfAuth sends already-authenticated visitors of the login and
// signup pages straight to the chat page.
func (g *Gate) RedirectIfAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := cookieToken(r); token != "" {
			if _, err := g.tokens.Verify(token); err == nil {
				http.Redirect(w, r, "/chat", http.StatusFound)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// ClearSessionCookie expires the session cookie on the client. The token
// itself stays valid until its natural expiry; there is no server-side
// revocation list.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

func withUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(authHeader, "Bearer ")
}

func cookieToken(r *http.Request) string {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"success":false,"message":"` + msg + `"}`))
}
