package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/qcom/litelist/internal/middleware"
)

// NewRouter wires the gateway routes. Everything except login, logout,
// status, health and metrics sits behind the guard.
func NewRouter(
	g *Gateway,
	guard *middleware.Guard,
	allowedOrigin string,
	gatherer prometheus.Gatherer,
	logger *logrus.Logger,
) *mux.Router {
	router := mux.NewRouter()

	router.Use(middleware.CORSMiddleware(allowedOrigin))
	router.Use(middleware.LoggingMiddleware(logger))

	router.HandleFunc("/health", g.Health).Methods("GET", "OPTIONS")
	router.HandleFunc("/status", g.Status).Methods("GET", "OPTIONS")
	router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods("GET")

	router.HandleFunc("/login", g.Login).Methods("POST", "OPTIONS")
	router.HandleFunc("/logout", g.Logout).Methods("POST", "OPTIONS")

	protected := router.NewRoute().Subrouter()
	protected.Use(guard.RequireAuth)
	protected.HandleFunc("/me", g.Me).Methods("GET")
	protected.HandleFunc("/lists", g.NoteLists).Methods("GET")
	protected.HandleFunc("/lists", g.CreateNoteList).Methods("POST")
	protected.HandleFunc("/lists/{id:[0-9]+}", g.NoteList).Methods("GET")
	protected.HandleFunc("/lists/{id:[0-9]+}", g.DeleteNoteList).Methods("DELETE")
	protected.HandleFunc("/lists/{id:[0-9]+}/notes", g.CreateNote).Methods("POST")
	protected.HandleFunc("/lists/{id:[0-9]+}/notes/{noteID:[0-9]+}", g.DeleteNote).Methods("DELETE")

	admin := router.PathPrefix("/admin").Subrouter()
	admin.Use(guard.RequireAdmin)
	admin.HandleFunc("/users", g.Users).Methods("GET")

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g.respondWithError(w, http.StatusNotFound, "NOT_FOUND", "Not found")
	})

	return router
}
