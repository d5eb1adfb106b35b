package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"aromasens/models"
)

// ListPerfumesHandler lists the catalog for ?gender=; unknown genders yield []
func (c *Controller) ListPerfumesHandler(w http.ResponseWriter, r *http.Request) {
	gender := strings.TrimSpace(r.URL.Query().Get("gender"))
	perfumes, err := c.store.ListPerfumesByGender(r.Context(), gender)
	if err != nil {
		c.serviceError(w, r, err, "Failed to list perfumes")
		return
	}
	writeJSON(w, http.StatusOK, perfumes)
}

// GetPerfumeHandler returns one catalog record
func (c *Controller) GetPerfumeHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	perfume, err := c.store.GetPerfume(r.Context(), id)
	if err != nil {
		c.serviceError(w, r, err, "Failed to get perfume")
		return
	}
	writeJSON(w, http.StatusOK, perfume)
}

// GetSessionHandler returns a stored session with its recommendations
func (c *Controller) GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	session, err := c.store.GetChatSession(r.Context(), id)
	if err != nil {
		c.serviceError(w, r, err, "Failed to get session")
		return
	}
	recs, err := c.store.ListRecommendationsBySession(r.Context(), id)
	if err != nil {
		c.serviceError(w, r, err, "Failed to get session")
		return
	}
	writeJSON(w, http.StatusOK, models.SessionDetail{Session: *session, Recommendations: recs})
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "id must be a positive integer")
		return 0, false
	}
	return id, true
}
