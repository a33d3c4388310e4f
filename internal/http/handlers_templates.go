package httpx

import (
	"net/http"

	"github.com/alphaleads/leadsearch/internal/domain/model"
	"github.com/alphaleads/leadsearch/internal/service"
)

// TemplateHandlers provides HTTP handlers for saved filter templates.
type TemplateHandlers struct {
	Svc *service.TemplateService
}

type saveTemplateBody struct {
	Name    string              `json:"name"`
	Filters model.SearchFilters `json:"filters"`
}

// Create handles HTTP requests to save a filter template.
func (h *TemplateHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var body saveTemplateBody
	if !DecodeJSON(w, r, &body) {
		return
	}

	tpl, err := h.Svc.Save(r.Context(), &model.SaveTemplateRequest{
		UserID:  UserID(r.Context()),
		Name:    body.Name,
		Filters: body.Filters,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, tpl)
}

// List handles HTTP requests to list the caller's templates.
func (h *TemplateHandlers) List(w http.ResponseWriter, r *http.Request) {
	templates, err := h.Svc.ListByUser(r.Context(), UserID(r.Context()))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if templates == nil {
		templates = []*model.Template{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"data": templates})
}

// Get handles HTTP requests to read one template.
func (h *TemplateHandlers) Get(w http.ResponseWriter, r *http.Request) {
	tpl, err := h.Svc.Get(r.Context(), r.PathValue("id"), UserID(r.Context()))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, tpl)
}

// Update handles HTTP requests to rename or change a template's filters.
func (h *TemplateHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var body saveTemplateBody
	if !DecodeJSON(w, r, &body) {
		return
	}

	tpl, err := h.Svc.Update(r.Context(), r.PathValue("id"), &model.SaveTemplateRequest{
		UserID:  UserID(r.Context()),
		Name:    body.Name,
		Filters: body.Filters,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, tpl)
}

// Delete handles HTTP requests to remove a template.
func (h *TemplateHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), r.PathValue("id"), UserID(r.Context())); err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
