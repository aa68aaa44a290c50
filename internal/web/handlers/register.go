package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/facegate/facegate/internal/gate"
)

// RegisterHandler handles new identity registration.
type RegisterHandler struct {
	enroller *gate.Enroller
}

// NewRegisterHandler creates a new registration handler.
func NewRegisterHandler(enroller *gate.Enroller) *RegisterHandler {
	return &RegisterHandler{enroller: enroller}
}

type registerRequest struct {
	Name  string `json:"name"`
	Class string `json:"class"`
	Roll  string `json:"roll"`
}

// RegisterEntry enrolls the identity captured earlier in the same browser
// session and returns the issued access code.
func (h *RegisterHandler) RegisterEntry(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	token, _ := captureToken(r)
	result, err := h.enroller.Enroll(r.Context(), token, req.Name, req.Class, req.Roll)
	if err != nil {
		respondGateError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"code":    result.Code,
		"name":    result.Name,
		"message": "Registration successful!",
	})
}
