package controllers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Routes registers every endpoint on a new router
func (c *Controller) Routes() *mux.Router {
	router := mux.NewRouter()
	router.Use(c.requestID, c.tracing, c.accessLog)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/chat/start", c.StartChatHandler).Methods(http.MethodPost)
	api.HandleFunc("/chat/message", c.SendMessageHandler).Methods(http.MethodPost)
	api.HandleFunc("/chat/recommendation", c.RecommendationHandler).Methods(http.MethodPost)

	api.HandleFunc("/perfumes", c.ListPerfumesHandler).Methods(http.MethodGet)
	api.HandleFunc("/perfumes/{id:[0-9]+}", c.GetPerfumeHandler).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id:[0-9]+}", c.GetSessionHandler).Methods(http.MethodGet)

	router.HandleFunc("/health", c.HealthHandler).Methods(http.MethodGet)
	return router
}
