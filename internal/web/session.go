package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/pigeonworks-llc/billed/internal/models"
	"github.com/pigeonworks-llc/billed/internal/routes"
	"github.com/pigeonworks-llc/billed/internal/store"
)

// CookieName is the cookie holding the session ID.
const CookieName = "user"

type contextKey string

const contextKeySession contextKey = "session"

// SessionStore persists sessions behind the user cookie.
type SessionStore interface {
	CreateSession(userType models.UserType, email string) (*models.Session, error)
	GetSession(id string) (*models.Session, error)
	DeleteSession(id string) error
}

// SessionFromContext returns the session attached by RequireSession.
func SessionFromContext(ctx context.Context) (*models.Session, bool) {
	s, ok := ctx.Value(contextKeySession).(*models.Session)
	return s, ok
}

// RequireSession resolves the user cookie into a session and redirects to
// the login page when there is none.
func (h *Handler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(CookieName)
		if err != nil {
			http.Redirect(w, r, routes.Login, http.StatusSeeOther)
			return
		}

		session, err := h.sessions.GetSession(cookie.Value)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidID) {
				clearSessionCookie(w)
				http.Redirect(w, r, routes.Login, http.StatusSeeOther)
				return
			}
			h.logger.Error("failed to load session", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		ctx := context.WithValue(r.Context(), contextKeySession, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LoginPage handles GET /.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(CookieName); err == nil {
		if _, err := h.sessions.GetSession(cookie.Value); err == nil {
			http.Redirect(w, r, routes.Bills, http.StatusSeeOther)
			return
		}
	}
	h.render(w, http.StatusOK, h.views.Login)
}

// Login handles POST /login. It establishes a session for the submitted
// user type and email; no credentials are checked.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	userType := models.UserType(r.FormValue("type"))
	email := r.FormValue("email")
	if email == "" || (userType != models.UserTypeEmployee && userType != models.UserTypeAdmin) {
		http.Error(w, "Missing email or unknown user type", http.StatusBadRequest)
		return
	}

	session, err := h.sessions.CreateSession(userType, email)
	if err != nil {
		h.logger.Error("failed to create session", "error", err, "email", email)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    session.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	h.logger.Info("session created", "email", email, "type", userType)
	http.Redirect(w, r, routes.Bills, http.StatusSeeOther)
}

// Logout handles POST /logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(CookieName); err == nil {
		if err := h.sessions.DeleteSession(cookie.Value); err != nil && !errors.Is(err, store.ErrNotFound) {
			h.logger.Warn("failed to delete session", "error", err)
		}
	}
	clearSessionCookie(w)
	http.Redirect(w, r, routes.Login, http.StatusSeeOther)
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
