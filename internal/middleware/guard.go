package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/qcom/litelist/internal/session"
)

type contextKey string

const sessionKey contextKey = "session"

// SessionSource is what the guard needs from the session controller.
type SessionSource interface {
	Session() session.Session
	RecoverFromStorage(ctx context.Context) bool
}

// Guard gates routes on the session state. Recovery from storage is attempted
// once per guard, by Recover or by the first guarded request.
type Guard struct {
	sessions  SessionSource
	logger    *logrus.Logger
	recovered sync.Once
}

func NewGuard(sessions SessionSource, logger *logrus.Logger) *Guard {
	return &Guard{
		sessions: sessions,
		logger:   logger,
	}
}

// SessionFromContext returns the session admitted by RequireAuth.
func SessionFromContext(ctx context.Context) (session.Session, bool) {
	s, ok := ctx.Value(sessionKey).(session.Session)
	return s, ok
}

func (g *Guard) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := g.admit(w, r)
		if !ok {
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, s)))
	})
}

func (g *Guard) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := g.admit(w, r)
		if !ok {
			return
		}

		if !s.User.Admin {
			g.logger.WithFields(logrus.Fields{
				"username": s.User.Username,
				"path":     r.URL.Path,
			}).Info("Admin route refused")
			respondError(w, http.StatusForbidden, "FORBIDDEN", "Administrator access required")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, s)))
	})
}

// Recover runs the one recovery attempt of the process if it has not run yet
// and reports whether the session is authenticated.
func (g *Guard) Recover(ctx context.Context) bool {
	g.recovered.Do(func() {
		g.sessions.RecoverFromStorage(context.WithoutCancel(ctx))
	})
	return g.sessions.Session().Authenticated
}

func (g *Guard) admit(w http.ResponseWriter, r *http.Request) (session.Session, bool) {
	g.Recover(r.Context())

	s := g.sessions.Session()
	if s.Authenticated && s.User != nil {
		return s, true
	}

	// Browsers are sent to the login route; API callers get a JSON error.
	if strings.Contains(r.Header.Get("Accept"), "text/html") {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return session.Session{}, false
	}
	respondError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "Login required")
	return session.Session{}, false
}

type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: errorDetail{Code: code, Message: message}})
}
