package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/facegate/facegate/internal/gate"
)

// SessionHandler handles access session lookup and termination.
type SessionHandler struct {
	sessions *gate.Sessions
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(sessions *gate.Sessions) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Get returns an active session by ID.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	session, err := h.sessions.Get(r.Context(), id)
	if err != nil {
		respondGateError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"session_id":       session.ID,
		"name":             session.Name,
		"class":            session.Class,
		"roll":             session.Roll,
		"code":             session.Code,
		"start_time":       session.StartedAt.Format(time.RFC3339),
		"match_confidence": session.Confidence,
	})
}

type endSessionRequest struct {
	SessionID string `json:"session_id"`
}

// End terminates an active session.
func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	var req endSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	if err := h.sessions.End(r.Context(), req.SessionID); err != nil {
		respondGateError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Session ended successfully",
	})
}
