package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/facegate/facegate/internal/gate"
	"github.com/facegate/facegate/internal/storage"
	"github.com/facegate/facegate/internal/web/middleware"
)

// AdminHandler handles the admin console API.
type AdminHandler struct {
	identities storage.IdentityStore
	sessions   *middleware.AdminSessions
	audit      *gate.Audit
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(identities storage.IdentityStore, sessions *middleware.AdminSessions, audit *gate.Audit) *AdminHandler {
	return &AdminHandler{
		identities: identities,
		sessions:   sessions,
		audit:      audit,
	}
}

type adminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates the admin and sets the signed session cookie. Both
// outcomes are audited.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	if !h.sessions.Authenticate(req.Username, req.Password) {
		h.audit.Record(r.Context(), "FAILED ADMIN LOGIN ATTEMPT: %s", sanitizeForLog(req.Username))
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	session, err := h.sessions.Create(req.Username)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	h.sessions.SetCookie(w, session)

	h.audit.Record(r.Context(), "ADMIN LOGIN: %s", sanitizeForLog(req.Username))
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Login successful",
	})
}

// Logout terminates the admin session and clears the cookie.
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if session := h.sessions.FromRequest(r); session != nil {
		h.sessions.Delete(session.ID)
	}
	h.sessions.ClearCookie(w)
	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Users lists all enrolled identities in enrollment order.
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	identities, err := h.identities.ListIdentities(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	}

	users := make([]map[string]any, 0, len(identities))
	for _, id := range identities {
		users = append(users, map[string]any{
			"name":          id.Name,
			"class":         id.Class,
			"roll":          id.Roll,
			"code":          id.Code,
			"registered_at": id.CreatedAt.Format(time.RFC3339),
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"users": users})
}

// Logs returns the retained audit entries, most recent first.
func (h *AdminHandler) Logs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.audit.Recent(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	}
	if logs == nil {
		logs = []string{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"logs": logs})
}

type deleteUserRequest struct {
	Name string `json:"name"`
}

// DeleteUser removes an enrolled identity. Active sessions issued to the
// identity keep their snapshot and stay valid.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	var req deleteUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	err := h.identities.DeleteIdentity(r.Context(), req.Name)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	}

	h.audit.Record(r.Context(), "USER DELETED: %s", sanitizeForLog(req.Name))
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("User '%s' deleted successfully", req.Name),
	})
}

type editUserRequest struct {
	OldName string `json:"old_name"`
	Name    string `json:"name"`
	Class   string `json:"class"`
	Roll    string `json:"roll"`
}

// EditUser renames or re-classes an identity. The captured embedding and
// access code are untouched; renaming onto an existing identity fails.
func (h *AdminHandler) EditUser(w http.ResponseWriter, r *http.Request) {
	var req editUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	name := strings.TrimSpace(req.Name)
	class := strings.TrimSpace(req.Class)
	roll := strings.TrimSpace(req.Roll)
	if name == "" || class == "" || roll == "" {
		respondError(w, http.StatusBadRequest, "All fields are required")
		return
	}

	err := h.identities.UpdateIdentity(r.Context(), req.OldName, name, gate.NameKey(name), class, roll)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		respondError(w, http.StatusNotFound, "User not found")
		return
	case errors.Is(err, storage.ErrDuplicateName):
		respondError(w, http.StatusBadRequest, fmt.Sprintf("User '%s' already exists", name))
		return
	case err != nil:
		respondError(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	}

	h.audit.Record(r.Context(), "USER EDITED: %s -> %s | Class: %s | Roll: %s",
		sanitizeForLog(req.OldName), sanitizeForLog(name), sanitizeForLog(class), sanitizeForLog(roll))
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "User updated successfully",
	})
}
