package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/facegate/facegate/internal/gate"
)

// captureCookieName carries the anonymous capture session across the
// capture and register requests of one browser.
const captureCookieName = "capture_session"

// CaptureHandler handles the face capture step of enrollment.
type CaptureHandler struct {
	capture *gate.Capture
}

// NewCaptureHandler creates a new capture handler.
func NewCaptureHandler(capture *gate.Capture) *CaptureHandler {
	return &CaptureHandler{capture: capture}
}

type captureRequest struct {
	FaceImage string `json:"face_image"`
}

// captureToken returns the capture session token from the request cookie,
// minting a fresh one when absent.
func captureToken(r *http.Request) (token string, created bool) {
	cookie, err := r.Cookie(captureCookieName)
	if err == nil && cookie.Value != "" {
		return cookie.Value, false
	}
	return uuid.NewString(), true
}

func setCaptureCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     captureCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// CaptureFace validates the submitted image and stores a capture ticket
// under the browser's capture session.
func (h *CaptureHandler) CaptureFace(w http.ResponseWriter, r *http.Request) {
	var req captureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	token, created := captureToken(r)
	if err := h.capture.Process(r.Context(), token, req.FaceImage); err != nil {
		respondGateError(w, err)
		return
	}

	if created {
		setCaptureCookie(w, token)
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Face captured and validated successfully",
	})
}

// ClearFace discards any pending capture for the browser's session.
func (h *CaptureHandler) ClearFace(w http.ResponseWriter, r *http.Request) {
	token, _ := captureToken(r)
	if err := h.capture.Clear(r.Context(), token); err != nil {
		respondGateError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Face data cleared",
	})
}
