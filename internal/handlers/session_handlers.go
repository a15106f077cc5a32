package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/qcom/litelist/internal/middleware"
	"github.com/qcom/litelist/internal/models"
	"github.com/qcom/litelist/internal/session"
)

func (g *Gateway) Login(w http.ResponseWriter, r *http.Request) {
	var req models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		g.respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Username and password are required")
		return
	}

	err := g.sessions.Login(r.Context(), username, req.Password)
	switch {
	case errors.Is(err, session.ErrInvalidCredentials):
		g.respondWithError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password")
		return
	case err != nil:
		g.respondWithError(w, http.StatusServiceUnavailable, "SERVER_UNAVAILABLE", "Server error, try again later")
		return
	}

	s := g.sessions.Session()
	if !s.Authenticated {
		// A concurrent logout won the race.
		g.respondWithError(w, http.StatusConflict, "SESSION_CHANGED", "Session changed during login")
		return
	}
	g.respondWithJSON(w, http.StatusOK, s.User)
}

func (g *Gateway) Logout(w http.ResponseWriter, r *http.Request) {
	g.sessions.Logout(r.Context())
	g.respondWithJSON(w, http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}

func (g *Gateway) Me(w http.ResponseWriter, r *http.Request) {
	s, _ := middleware.SessionFromContext(r.Context())
	g.respondWithJSON(w, http.StatusOK, s.User)
}
