package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/qcom/litelist/internal/models"
)

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	return id, err == nil && id > 0
}

func (g *Gateway) NoteLists(w http.ResponseWriter, r *http.Request) {
	lists, err := g.backend.NoteLists(r.Context(), token(r))
	if err != nil {
		g.respondWithAPIError(w, r, err)
		return
	}
	if lists == nil {
		lists = []models.NoteList{}
	}
	g.respondWithJSON(w, http.StatusOK, lists)
}

func (g *Gateway) NoteList(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		g.respondWithError(w, http.StatusBadRequest, "INVALID_ID", "Invalid list id")
		return
	}

	list, err := g.backend.NoteList(r.Context(), token(r), id)
	if err != nil {
		g.respondWithAPIError(w, r, err)
		return
	}
	g.respondWithJSON(w, http.StatusOK, list)
}

func (g *Gateway) CreateNoteList(w http.ResponseWriter, r *http.Request) {
	var req models.NewNoteList
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		g.respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "List name is required")
		return
	}
	description := ""
	if req.Description != nil {
		description = strings.TrimSpace(*req.Description)
	}

	list, err := g.backend.CreateNoteList(r.Context(), token(r), name, description)
	if err != nil {
		g.respondWithAPIError(w, r, err)
		return
	}
	g.respondWithJSON(w, http.StatusCreated, list)
}

func (g *Gateway) DeleteNoteList(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		g.respondWithError(w, http.StatusBadRequest, "INVALID_ID", "Invalid list id")
		return
	}

	if err := g.backend.DeleteNoteList(r.Context(), token(r), id); err != nil {
		g.respondWithAPIError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (g *Gateway) CreateNote(w http.ResponseWriter, r *http.Request) {
	listID, ok := pathID(r, "id")
	if !ok {
		g.respondWithError(w, http.StatusBadRequest, "INVALID_ID", "Invalid list id")
		return
	}

	var req models.NewNote
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		g.respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Note content is required")
		return
	}

	note, err := g.backend.CreateNote(r.Context(), token(r), listID, req.Content)
	if err != nil {
		g.respondWithAPIError(w, r, err)
		return
	}
	g.respondWithJSON(w, http.StatusCreated, note)
}

func (g *Gateway) DeleteNote(w http.ResponseWriter, r *http.Request) {
	listID, ok := pathID(r, "id")
	if !ok {
		g.respondWithError(w, http.StatusBadRequest, "INVALID_ID", "Invalid list id")
		return
	}
	noteID, ok := pathID(r, "noteID")
	if !ok {
		g.respondWithError(w, http.StatusBadRequest, "INVALID_ID", "Invalid note id")
		return
	}

	if err := g.backend.DeleteNote(r.Context(), token(r), listID, noteID); err != nil {
		g.respondWithAPIError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
