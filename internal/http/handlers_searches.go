// Package httpx provides the HTTP API for the leadsearch system.
package httpx

import (
	"errors"
	"net/http"

	"github.com/alphaleads/leadsearch/internal/domain/model"
	apperrors "github.com/alphaleads/leadsearch/internal/errors"
	"github.com/alphaleads/leadsearch/internal/service"
)

// SearchHandlers provides HTTP handlers for search lifecycle operations.
type SearchHandlers struct {
	Svc *service.SearchService
}

type createSearchBody struct {
	Name    string              `json:"name"`
	Filters model.SearchFilters `json:"filters"`
}

// Create handles HTTP requests to submit a new search.
//
// A failed submission can still carry a search id: the row is created before
// the executor run starts, so credential and start failures return the
// persisted (failed) search alongside the error.
func (h *SearchHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var body createSearchBody
	if !DecodeJSON(w, r, &body) {
		return
	}

	req := &model.CreateSearchRequest{
		UserID:  UserID(r.Context()),
		Name:    body.Name,
		Filters: body.Filters,
	}

	search, err := h.Svc.Start(r.Context(), req)
	if err != nil {
		if search != nil {
			writeFailedSubmission(w, search, err)
			return
		}
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, search)
}

func writeFailedSubmission(w http.ResponseWriter, search *model.Search, err error) {
	code := http.StatusBadGateway
	if apperrors.IsCredential(err) {
		code = http.StatusUnprocessableEntity
	}

	message := err.Error()
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}

	WriteJSON(w, code, map[string]any{
		"error":   string(apperrors.GetCode(err)),
		"message": message,
		"search":  search,
	})
}

// List handles HTTP requests to list the caller's searches.
func (h *SearchHandlers) List(w http.ResponseWriter, r *http.Request) {
	const (
		defaultLimit = 50
		maxLimit     = 200
	)
	limit, offset := ParseLimitOffset(r, defaultLimit, maxLimit)

	searches, err := h.Svc.ListByUser(r.Context(), UserID(r.Context()), limit, offset)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if searches == nil {
		searches = []*model.Search{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"data": searches})
}

// Stats handles HTTP requests for per-status search counts.
func (h *SearchHandlers) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Svc.Stats(r.Context(), UserID(r.Context()))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}

// Get handles HTTP requests to read a search without polling the executor.
func (h *SearchHandlers) Get(w http.ResponseWriter, r *http.Request) {
	search, err := h.Svc.Get(r.Context(), r.PathValue("id"), UserID(r.Context()))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, search)
}

// Status handles HTTP requests to poll a search, advancing it when the
// executor has finished.
func (h *SearchHandlers) Status(w http.ResponseWriter, r *http.Request) {
	search, err := h.Svc.Refresh(r.Context(), r.PathValue("id"), UserID(r.Context()))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, search)
}

// Delete handles HTTP requests to delete a search and its leads.
func (h *SearchHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), r.PathValue("id"), UserID(r.Context())); err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
