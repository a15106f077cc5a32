package handlers

import (
	"net/http"

	"github.com/qcom/litelist/internal/models"
)

func (g *Gateway) Users(w http.ResponseWriter, r *http.Request) {
	users, err := g.backend.Users(r.Context(), token(r))
	if err != nil {
		g.respondWithAPIError(w, r, err)
		return
	}
	if users == nil {
		users = []models.AdminUserInfo{}
	}
	g.respondWithJSON(w, http.StatusOK, users)
}

func (g *Gateway) Status(w http.ResponseWriter, r *http.Request) {
	status, err := g.backend.Status(r.Context())
	if err != nil {
		g.respondWithAPIError(w, r, err)
		return
	}
	g.respondWithJSON(w, http.StatusOK, status)
}

func (g *Gateway) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
