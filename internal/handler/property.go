package handler

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/truassets/internal/model"
	"github.com/sakif/truassets/internal/query"
	"github.com/sakif/truassets/internal/service"
)

// PropertyHandler serves the public catalog and the admin property CRUD.
type PropertyHandler struct {
	svc    *service.PropertyService
	logger *slog.Logger
}

func NewPropertyHandler(svc *service.PropertyService, logger *slog.Logger) *PropertyHandler {
	return &PropertyHandler{svc: svc, logger: logger}
}

// criteriaFromQuery reads ?search=&type=&budget=. Missing values match
// everything.
func criteriaFromQuery(r *http.Request) query.Criteria {
	q := r.URL.Query()
	return query.Criteria{
		SearchTerm:   q.Get("search"),
		PropertyType: q.Get("type"),
		Budget:       q.Get("budget"),
	}
}

// HandleList returns the filtered catalog, newest first.
//
// HTTP: GET /api/properties?search=&type=&budget=
func (h *PropertyHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.List(criteriaFromQuery(r)))
}

// HandleFeatured returns the filtered catalog as display cards.
//
// HTTP: GET /api/properties/featured?search=&type=&budget=
func (h *PropertyHandler) HandleFeatured(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Featured(criteriaFromQuery(r)))
}

// HandleStats returns the dashboard statistics.
//
// HTTP: GET /api/properties/stats
func (h *PropertyHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Statistics())
}

// HandleGet returns one property.
//
// HTTP: GET /api/properties/{id}
func (h *PropertyHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleCreate adds a property. The body is either a JSON PropertyDraft or
// the admin form (urlencoded or multipart), whose string fields are parsed
// by service.ParsePropertyForm.
//
// HTTP: POST /api/admin/properties → 201
func (h *PropertyHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var draft model.PropertyDraft
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			http.Error(w, "invalid form body", http.StatusBadRequest)
			return
		}
		d, err := service.ParsePropertyForm(r.Form)
		if err != nil {
			writeError(w, err)
			return
		}
		draft = d
	default:
		if err := decodeJSON(r, &draft); err != nil {
			writeError(w, err)
			return
		}
	}

	p, err := h.svc.Create(r.Context(), draft)
	if err != nil {
		writeError(w, err)
		return
	}
	h.logger.Info("property created", slog.String("id", p.ID), slog.String("title", p.Title))
	writeJSON(w, http.StatusCreated, p)
}

// HandleUpdate merges the fields present in the JSON body.
//
// HTTP: PATCH /api/admin/properties/{id}
func (h *PropertyHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch model.PropertyPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, err)
		return
	}
	p, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleDelete removes a property.
//
// HTTP: DELETE /api/admin/properties/{id} → 204
func (h *PropertyHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	h.logger.Info("property deleted", slog.String("id", id))
	w.WriteHeader(http.StatusNoContent)
}
