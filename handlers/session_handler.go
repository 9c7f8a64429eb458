package handlers

import (
	"cafe-server/middleware"
	"cafe-server/models"
	"cafe-server/services"
	"cafe-server/utils/errors"
	"encoding/json"
	"net/http"
	"time"
)

type SessionHandler struct {
	sessionService *services.SessionService
}

func NewSessionHandler(sessionService *services.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

type StartSessionResponse struct {
	SessionID string    `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type SetLocationRequest struct {
	Lng *float64 `json:"lng"`
	Lat *float64 `json:"lat"`
}

// StartSession handles POST /session
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	session, token, err := h.sessionService.Start(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, StartSessionResponse{
		SessionID: session.ID,
		Token:     token,
		ExpiresAt: session.ExpiresAt,
	})
}

// GetSession handles GET /session
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.SessionID(r.Context())
	if !ok {
		middleware.WriteError(w, errors.ErrUnauthorized)
		return
	}
	session, err := h.sessionService.Get(r.Context(), sessionID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, session)
}

// SetLocation handles PUT /session/location
func (h *SessionHandler) SetLocation(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.SessionID(r.Context())
	if !ok {
		middleware.WriteError(w, errors.ErrUnauthorized)
		return
	}

	var input SetLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}
	if input.Lng == nil || input.Lat == nil {
		middleware.WriteError(w, errors.ErrInvalidInput.WithDetails("lng and lat are required"))
		return
	}

	session, err := h.sessionService.SetLocation(r.Context(), sessionID, models.LngLat{*input.Lng, *input.Lat})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, session)
}
