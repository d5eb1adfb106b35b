package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"aromasens/logger"
	"aromasens/models"
	"aromasens/services"
	"aromasens/storage"
)

// Controller holds the services every HTTP handler needs
type Controller struct {
	log             *logger.Logger
	ai              *services.AIService
	engine          *services.ConversationEngine
	recommender     *services.Recommender
	store           storage.Store
	defaultLanguage models.Language
	storageDriver   string
	startTime       time.Time
}

// Deps bundles the constructor arguments of NewController
type Deps struct {
	Log             *logger.Logger
	AI              *services.AIService
	Engine          *services.ConversationEngine
	Recommender     *services.Recommender
	Store           storage.Store
	DefaultLanguage models.Language
	StorageDriver   string
}

// NewController creates a new controller instance
func NewController(d Deps) *Controller {
	lang := d.DefaultLanguage
	if lang == "" {
		lang = models.LanguageES
	}
	return &Controller{
		log:             d.Log.With("component", "controllers"),
		ai:              d.AI,
		engine:          d.Engine,
		recommender:     d.Recommender,
		store:           d.Store,
		defaultLanguage: lang,
		storageDriver:   d.StorageDriver,
		startTime:       time.Now(),
	}
}

// settings resolves the optional per-request settings; bad values fall back to defaults
func (c *Controller) settings(req models.SettingsRequest) models.Settings {
	return models.Settings{
		Model:      c.ai.ResolveProvider(req.ProviderID),
		Language:   models.ParseLanguage(req.Language, c.defaultLanguage),
		TTSEnabled: req.TTSEnabled,
	}
}

// HealthHandler provides a health check endpoint
func (c *Controller) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:    "healthy",
		Service:   "aromasens",
		Uptime:    time.Since(c.startTime).Round(time.Second).String(),
		Providers: c.ai.Status(),
		Storage:   c.storageDriver,
		Timestamp: time.Now().UTC(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, models.ErrorResponse{
		Message: message,
		Status:  models.StatusError,
		Code:    code,
	})
}

// decodeJSON reads the request body into dst and answers 400 on failure
func (c *Controller) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		c.log.Debug("invalid request body", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON format")
		return false
	}
	return true
}

// serviceError maps a service error to a status: client errors are 400 with
// the error text, missing records 404, anything else 500 with fallback as message
func (c *Controller) serviceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case services.ValidationError(err):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "Not found")
	default:
		c.log.Error(fallback, "path", r.URL.Path, "requestId", RequestIDFromContext(r.Context()), "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", fallback)
	}
}
