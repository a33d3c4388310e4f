package httpx

import (
	"net/http"
	"strings"

	"github.com/alphaleads/leadsearch/internal/domain/model"
	"github.com/alphaleads/leadsearch/internal/service"
)

// LeadHandlers provides HTTP handlers for browsing and exporting leads.
type LeadHandlers struct {
	Svc *service.LeadService
}

// List handles HTTP requests to page through a search's leads.
func (h *LeadHandlers) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := &model.LeadListOptions{
		SearchID:  r.PathValue("id"),
		Query:     q.Get("q"),
		Sort:      q.Get("sort"),
		Ascending: strings.EqualFold(q.Get("order"), "asc"),
		Page:      parseIntQuery(r, "page", 1),
		Limit:     parseIntQuery(r, "limit", model.DefaultLeadPageSize),
	}

	page, err := h.Svc.List(r.Context(), UserID(r.Context()), opts)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if page.Leads == nil {
		page.Leads = []model.Lead{}
	}
	WriteJSON(w, http.StatusOK, page)
}

type exportBody struct {
	IDs []string `json:"ids"`
}

// Export handles HTTP requests to download a search's leads as CSV. An
// optional body restricts the export to specific lead ids.
func (h *LeadHandlers) Export(w http.ResponseWriter, r *http.Request) {
	var ids []string
	if r.ContentLength > 0 {
		var body exportBody
		if !DecodeJSON(w, r, &body) {
			return
		}
		ids = body.IDs
	}

	csvData, filename, err := h.Svc.Export(r.Context(), UserID(r.Context()), r.PathValue("id"), ids)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(csvData); err != nil {
		// Client disconnected mid-download.
		return
	}
}
