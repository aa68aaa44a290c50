package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/facegate/facegate/internal/gate"
)

// ApproveHandler handles access approval by face recognition.
type ApproveHandler struct {
	capture  *gate.Capture
	matcher  *gate.Matcher
	sessions *gate.Sessions
	audit    *gate.Audit
}

// NewApproveHandler creates a new approval handler.
func NewApproveHandler(capture *gate.Capture, matcher *gate.Matcher, sessions *gate.Sessions, audit *gate.Audit) *ApproveHandler {
	return &ApproveHandler{
		capture:  capture,
		matcher:  matcher,
		sessions: sessions,
		audit:    audit,
	}
}

type approveRequest struct {
	FaceImage string `json:"face_image"`
}

// ApproveFace matches the submitted live image against enrolled identities
// and issues an access session on success.
func (h *ApproveHandler) ApproveFace(w http.ResponseWriter, r *http.Request) {
	var req approveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	embedding, err := h.capture.ExtractEmbedding(r.Context(), req.FaceImage)
	if err != nil {
		respondGateError(w, err)
		return
	}

	match, err := h.matcher.Match(r.Context(), embedding)
	if err != nil {
		if errors.Is(err, gate.ErrNoMatch) {
			h.audit.Record(r.Context(), "APPROVAL DENIED: Face not recognized")
			respondError(w, http.StatusNotFound, "Face not recognized. Please register first or try again.")
			return
		}
		respondGateError(w, err)
		return
	}

	session, err := h.sessions.Issue(r.Context(), match.Identity, match.Confidence)
	if err != nil {
		respondGateError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"session_id": session.ID,
		"name":       session.Name,
		"class":      session.Class,
		"roll":       session.Roll,
		"code":       session.Code,
		"confidence": session.Confidence,
	})
}
