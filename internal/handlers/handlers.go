// Package handlers is the local HTTP gateway in front of the session
// controller. Requests are answered with the session's token, so callers
// never handle credentials themselves.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/qcom/litelist/internal/api"
	"github.com/qcom/litelist/internal/middleware"
	"github.com/qcom/litelist/internal/models"
)

// Sessions is the slice of the session controller the gateway drives.
type Sessions interface {
	middleware.SessionSource
	Login(ctx context.Context, username, password string) error
	Logout(ctx context.Context)
}

// Backend is the litelist API as seen by the gateway.
type Backend interface {
	NoteLists(ctx context.Context, token string) ([]models.NoteList, error)
	NoteList(ctx context.Context, token string, id int64) (*models.NoteList, error)
	CreateNoteList(ctx context.Context, token, name, description string) (*models.NoteList, error)
	DeleteNoteList(ctx context.Context, token string, id int64) error
	CreateNote(ctx context.Context, token string, listID int64, content string) (*models.Note, error)
	DeleteNote(ctx context.Context, token string, listID, id int64) error
	Users(ctx context.Context, token string) ([]models.AdminUserInfo, error)
	Status(ctx context.Context) (*models.StatusInfo, error)
}

type Gateway struct {
	sessions Sessions
	backend  Backend
	logger   *logrus.Logger
}

func NewGateway(sessions Sessions, backend Backend, logger *logrus.Logger) *Gateway {
	return &Gateway{
		sessions: sessions,
		backend:  backend,
		logger:   logger,
	}
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// token returns the bearer token of the session admitted by the guard.
func token(r *http.Request) string {
	s, _ := middleware.SessionFromContext(r.Context())
	return s.Token
}

func (g *Gateway) respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		g.logger.WithError(err).Debug("Failed to write response")
	}
}

func (g *Gateway) respondWithError(w http.ResponseWriter, status int, code, message string) {
	g.respondWithJSON(w, status, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// respondWithAPIError maps a failed API call onto a gateway response.
func (g *Gateway) respondWithAPIError(w http.ResponseWriter, r *http.Request, err error) {
	var statusErr *api.StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusUnauthorized:
			g.respondWithError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "Session rejected by server")
			return
		case statusErr.StatusCode == http.StatusForbidden:
			g.respondWithError(w, http.StatusForbidden, "FORBIDDEN", "Not allowed")
			return
		case statusErr.StatusCode == http.StatusNotFound:
			g.respondWithError(w, http.StatusNotFound, "NOT_FOUND", "Not found")
			return
		case statusErr.Class() == api.ClassClient:
			g.respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", statusErr.Message)
			return
		}
	}

	g.logger.WithError(err).WithFields(logrus.Fields{
		"request_id": middleware.RequestIDFromContext(r.Context()),
		"path":       r.URL.Path,
	}).Error("API request failed")
	g.respondWithError(w, http.StatusServiceUnavailable, "SERVER_UNAVAILABLE", "Server error, try again later")
}
