package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"backoffice/internal/api"

	"github.com/golang-jwt/jwt/v5"
)

const authCookie = "bo_session"

// sessionTTL matches the remote API's token lifetime; there is no refresh,
// an expired cookie simply forces re-login.
const sessionTTL = 30 * time.Minute

type authClaimsKey struct{}

// sessionClaims is the signed cookie payload: the remote API's bearer token
// wrapped together with the identity needed for rendering and role gating.
type sessionClaims struct {
	APIToken string `json:"api_token"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// claimsFromContext returns the authenticated claims stored in ctx, or nil.
func claimsFromContext(ctx context.Context) *sessionClaims {
	v, _ := ctx.Value(authClaimsKey{}).(*sessionClaims)
	return v
}

// sessionFor rebuilds the explicit API session for this request from its
// cookie claims. One session object per request; nothing is shared.
func sessionFor(claims *sessionClaims) *api.Session {
	s := api.NewSession()
	s.Establish(claims.APIToken, api.User{
		ID:       claims.UserID,
		Username: claims.Username,
		Role:     claims.Role,
	})
	return s
}

// parseCookie validates the session cookie and returns its claims.
func (h *Handler) parseCookie(r *http.Request) (*sessionClaims, error) {
	cookie, err := r.Cookie(authCookie)
	if err != nil {
		return nil, err
	}
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(h.cfg.SessionSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid session cookie")
	}
	return claims, nil
}

// RequireAuth redirects unauthenticated browser requests to /login and
// injects the session claims into the request context otherwise.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := h.parseCookie(r)
		if err != nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		ctx := context.WithValue(r.Context(), authClaimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// loginPage handles GET /login; an already-authenticated session goes
// straight to the dashboard.
func (h *Handler) loginPage(w http.ResponseWriter, r *http.Request) {
	if _, err := h.parseCookie(r); err == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.renderLogin(w, "")
}

// loginAction handles POST /login: authenticates against the remote API and
// wraps the returned bearer token in a signed cookie.
func (h *Handler) loginAction(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, "Invalid form submission.")
		return
	}
	username := r.FormValue("username")
	password := r.FormValue("password")
	if username == "" || password == "" {
		h.renderLogin(w, "Username and password are required.")
		return
	}

	session := api.NewSession()
	client := api.NewClient(h.cfg.APIBaseURL, session)
	user, err := client.Login(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			h.renderLogin(w, "Invalid username or password.")
			return
		}
		log.Printf("login: %v", err)
		h.renderLogin(w, "Could not reach the back-office service. Try again.")
		return
	}

	claims := &sessionClaims{
		APIToken: session.Token(),
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(sessionTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.cfg.SessionSecret))
	if err != nil {
		h.renderLogin(w, "Server error. Please try again.")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(sessionTTL.Seconds()),
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// logoutAction handles POST /logout.
func (h *Handler) logoutAction(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
}

// handleUnauthorized discards the session and bounces to /login when the
// remote API rejected the stored token. Returns true when it consumed the
// error.
func (h *Handler) handleUnauthorized(w http.ResponseWriter, r *http.Request, err error) bool {
	if !errors.Is(err, api.ErrUnauthorized) {
		return false
	}
	clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
	return true
}
