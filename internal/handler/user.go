package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/truassets/internal/model"
	"github.com/sakif/truassets/internal/service"
)

// UserHandler is the admin view of the platform-user directory.
type UserHandler struct {
	svc    *service.DirectoryService
	logger *slog.Logger
}

func NewUserHandler(svc *service.DirectoryService, logger *slog.Logger) *UserHandler {
	return &UserHandler{svc: svc, logger: logger}
}

// HTTP: GET /api/admin/users
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.List())
}

// HTTP: GET /api/admin/users/stats
func (h *UserHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Stats())
}

// HTTP: GET /api/admin/users/{id}
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// HandleCreate adds a directory entry.
//
// HTTP: POST /api/admin/users → 201
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var draft model.UserDraft
	if err := decodeJSON(r, &draft); err != nil {
		writeError(w, err)
		return
	}
	u, err := h.svc.Add(r.Context(), draft)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// HTTP: PATCH /api/admin/users/{id}
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch model.UserPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, err)
		return
	}
	u, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// HTTP: DELETE /api/admin/users/{id} → 204
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleModerate applies the {action} path segment (block, unblock, hold).
//
// HTTP: POST /api/admin/users/{id}/{action}
func (h *UserHandler) HandleModerate(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Moderate(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "action"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
