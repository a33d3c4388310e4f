package httpx

import (
	"log/slog"
	"net/http"

	"github.com/alphaleads/leadsearch/internal/core"
	"github.com/alphaleads/leadsearch/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Searches    *service.SearchService
	Leads       *service.LeadService
	Templates   *service.TemplateService
	Credentials *service.CredentialService
	Sessions    core.SessionStore
	Logger      *slog.Logger // Logger for request and panic logging (optional)
}

// NewRouter creates and configures the HTTP router. Everything under /api
// requires a bearer session; /healthz is open.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	searchHandlers := &SearchHandlers{Svc: services.Searches}
	leadHandlers := &LeadHandlers{Svc: services.Leads}
	templateHandlers := &TemplateHandlers{Svc: services.Templates}
	settingsHandlers := &SettingsHandlers{Svc: services.Credentials}

	api := http.NewServeMux()
	registerSearchRoutes(api, searchHandlers, leadHandlers)
	registerTemplateRoutes(api, templateHandlers)
	registerSettingsRoutes(api, settingsHandlers)

	mux.Handle("/api/", RequireAuth(services.Sessions)(api))
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	var handler http.Handler = mux
	if services.Logger != nil {
		handler = Logging(services.Logger)(handler)
		handler = Recover(services.Logger)(handler)
	}
	return handler
}

func registerSearchRoutes(mux *http.ServeMux, h *SearchHandlers, leads *LeadHandlers) {
	mux.HandleFunc("POST /api/searches", h.Create)
	mux.HandleFunc("GET /api/searches", h.List)
	mux.HandleFunc("GET /api/searches/stats", h.Stats)
	mux.HandleFunc("GET /api/searches/{id}", h.Get)
	mux.HandleFunc("GET /api/searches/{id}/status", h.Status)
	mux.HandleFunc("DELETE /api/searches/{id}", h.Delete)
	mux.HandleFunc("GET /api/searches/{id}/leads", leads.List)
	mux.HandleFunc("POST /api/searches/{id}/export", leads.Export)
}

func registerTemplateRoutes(mux *http.ServeMux, h *TemplateHandlers) {
	mux.HandleFunc("POST /api/templates", h.Create)
	mux.HandleFunc("GET /api/templates", h.List)
	mux.HandleFunc("GET /api/templates/{id}", h.Get)
	mux.HandleFunc("PUT /api/templates/{id}", h.Update)
	mux.HandleFunc("DELETE /api/templates/{id}", h.Delete)
}

func registerSettingsRoutes(mux *http.ServeMux, h *SettingsHandlers) {
	mux.HandleFunc("GET /api/settings/profile", h.GetProfile)
	mux.HandleFunc("POST /api/settings/token", h.SetToken)
	mux.HandleFunc("POST /api/settings/token/verify", h.VerifyToken)
	mux.HandleFunc("DELETE /api/settings/token", h.ClearToken)
}
