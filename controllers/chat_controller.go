package controllers

import (
	"net/http"

	"aromasens/models"
	"aromasens/services"
)

// StartChatHandler opens a conversation for the requested gender
func (c *Controller) StartChatHandler(w http.ResponseWriter, r *http.Request) {
	var req models.StartChatRequest
	if !c.decodeJSON(w, r, &req) {
		return
	}

	resp, err := c.engine.Start(r.Context(), services.StartInput{
		Gender:   req.Gender,
		Settings: c.settings(req.SettingsRequest),
	})
	if err != nil {
		c.serviceError(w, r, err, "Failed to start chat")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// SendMessageHandler answers the current question and returns the next one
func (c *Controller) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	var req models.SendMessageRequest
	if !c.decodeJSON(w, r, &req) {
		return
	}

	step, ok := req.StepValue()
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_request", "Gender and step are required")
		return
	}

	resp, err := c.engine.Advance(r.Context(), services.AdvanceInput{
		Message:     req.Message,
		Gender:      req.Gender,
		CurrentStep: step,
		History:     req.History,
		Settings:    c.settings(req.SettingsRequest),
	})
	if err != nil {
		c.serviceError(w, r, err, "Failed to process message")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// RecommendationHandler turns the collected answers into a stored recommendation
func (c *Controller) RecommendationHandler(w http.ResponseWriter, r *http.Request) {
	var req models.RecommendationRequest
	if !c.decodeJSON(w, r, &req) {
		return
	}

	resp, err := c.recommender.Recommend(r.Context(), services.RecommendInput{
		Gender:      req.Gender,
		Preferences: req.ChatPreferences,
		Settings:    c.settings(req.SettingsRequest),
	})
	if err != nil {
		c.serviceError(w, r, err, "Failed to generate recommendation")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
