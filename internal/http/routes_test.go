package httpx

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/alphaleads/leadsearch/internal/apify"
	"github.com/alphaleads/leadsearch/internal/data"
	"github.com/alphaleads/leadsearch/internal/domain/model"
	"github.com/alphaleads/leadsearch/internal/service"
)

// In-memory collaborators for router tests. Lifecycle details are covered by
// the service tests; these exercise routing, auth and status mapping.

type memSearchRepo struct {
	mu       sync.Mutex
	searches map[string]*model.Search
	nextID   int
}

func newMemSearchRepo() *memSearchRepo {
	return &memSearchRepo{searches: make(map[string]*model.Search)}
}

func (r *memSearchRepo) Create(_ context.Context, req *model.CreateSearchRequest) (*model.Search, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	s := &model.Search{
		ID:        fmt.Sprintf("search-%d", r.nextID),
		UserID:    req.UserID,
		Name:      req.Name,
		Filters:   req.Filters,
		Status:    model.SearchStatusPending,
		CreatedAt: time.Now(),
	}
	r.searches[s.ID] = s
	return cloned(s), nil
}

func (r *memSearchRepo) GetByIDForUser(_ context.Context, id, userID string) (*model.Search, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.searches[id]
	if !ok || s.UserID != userID {
		return nil, data.ErrSearchNotFound
	}
	return cloned(s), nil
}

func (r *memSearchRepo) ListByUser(_ context.Context, userID string, _, _ int) ([]*model.Search, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Search
	for _, s := range r.searches {
		if s.UserID == userID {
			out = append(out, cloned(s))
		}
	}
	return out, nil
}

func (r *memSearchRepo) StatsByUser(_ context.Context, userID string) (*model.SearchStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &model.SearchStats{}
	for _, s := range r.searches {
		if s.UserID != userID {
			continue
		}
		switch s.Status {
		case model.SearchStatusPending:
			stats.Pending++
		case model.SearchStatusRunning:
			stats.Running++
		case model.SearchStatusSucceeded:
			stats.Succeeded++
		case model.SearchStatusFailed:
			stats.Failed++
		}
	}
	return stats, nil
}

func (r *memSearchRepo) MarkRunning(_ context.Context, id string, handles model.RunHandles) (*model.Search, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.searches[id]
	if !ok || s.Status != model.SearchStatusPending {
		return nil, data.ErrSearchNotFound
	}
	now := time.Now()
	s.Status = model.SearchStatusRunning
	s.RunID = &handles.RunID
	s.StartedAt = &now
	if handles.DatasetID != "" {
		s.DatasetID = &handles.DatasetID
	}
	return cloned(s), nil
}

func (r *memSearchRepo) MarkSucceeded(_ context.Context, id string, leadsCount int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.searches[id]
	if !ok || s.Status != model.SearchStatusRunning {
		return false, nil
	}
	now := time.Now()
	s.Status = model.SearchStatusSucceeded
	s.LeadsCount = leadsCount
	s.CompletedAt = &now
	s.ErrorMessage = nil
	return true, nil
}

func (r *memSearchRepo) MarkFailed(_ context.Context, id, errMsg string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.searches[id]
	if !ok || s.Status.Terminal() {
		return false, nil
	}
	now := time.Now()
	s.Status = model.SearchStatusFailed
	s.ErrorMessage = &errMsg
	s.CompletedAt = &now
	return true, nil
}

func (r *memSearchRepo) Delete(_ context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.searches[id]
	if !ok || s.UserID != userID {
		return data.ErrSearchNotFound
	}
	delete(r.searches, id)
	return nil
}

func (r *memSearchRepo) ListInFlight(_ context.Context, _ int) ([]*model.Search, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Search
	for _, s := range r.searches {
		if s.Status == model.SearchStatusRunning && s.RunID != nil {
			out = append(out, cloned(s))
		}
	}
	return out, nil
}

func cloned(s *model.Search) *model.Search {
	out := *s
	return &out
}

type memLeadRepo struct {
	mu    sync.Mutex
	leads []model.Lead
}

func (r *memLeadRepo) InsertBatch(_ context.Context, leads []model.Lead) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leads = append(r.leads, leads...)
	return len(leads), nil
}

func (r *memLeadRepo) List(_ context.Context, opts *model.LeadListOptions) (*model.LeadPage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	opts.Normalize()
	var matched []model.Lead
	for _, l := range r.leads {
		if l.SearchID == opts.SearchID {
			matched = append(matched, l)
		}
	}
	return &model.LeadPage{
		Leads: matched,
		Total: len(matched),
		Page:  opts.Page,
		Limit: opts.Limit,
	}, nil
}

func (r *memLeadRepo) ListForExport(_ context.Context, searchID string, _ []string) ([]model.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []model.Lead
	for _, l := range r.leads {
		if l.SearchID == searchID {
			matched = append(matched, l)
		}
	}
	return matched, nil
}

type memProfileRepo struct {
	tokens map[string]string
}

func (r *memProfileRepo) GetExecutorToken(_ context.Context, userID string) (string, error) {
	return r.tokens[userID], nil
}

func (r *memProfileRepo) SetExecutorToken(_ context.Context, userID, token string) error {
	r.tokens[userID] = token
	return nil
}

func (r *memProfileRepo) ClearExecutorToken(_ context.Context, userID string) error {
	delete(r.tokens, userID)
	return nil
}

func (r *memProfileRepo) GetByUserID(_ context.Context, userID string) (*model.Profile, error) {
	token, ok := r.tokens[userID]
	if !ok {
		return nil, data.ErrProfileNotFound
	}
	return &model.Profile{UserID: userID, HasExecutorToken: token != ""}, nil
}

type memTemplateRepo struct {
	mu        sync.Mutex
	templates map[string]*model.Template
	nextID    int
}

func newMemTemplateRepo() *memTemplateRepo {
	return &memTemplateRepo{templates: make(map[string]*model.Template)}
}

func (r *memTemplateRepo) Create(_ context.Context, req *model.SaveTemplateRequest) (*model.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.templates {
		if t.UserID == req.UserID && t.Name == req.Name {
			return nil, data.ErrTemplateExists
		}
	}
	r.nextID++
	t := &model.Template{
		ID:        fmt.Sprintf("template-%d", r.nextID),
		UserID:    req.UserID,
		Name:      req.Name,
		Filters:   req.Filters,
		CreatedAt: time.Now(),
	}
	r.templates[t.ID] = t
	return t, nil
}

func (r *memTemplateRepo) GetByIDForUser(_ context.Context, id, userID string) (*model.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.templates[id]
	if !ok || t.UserID != userID {
		return nil, data.ErrTemplateNotFound
	}
	return t, nil
}

func (r *memTemplateRepo) ListByUser(_ context.Context, userID string) ([]*model.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Template
	for _, t := range r.templates {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memTemplateRepo) Update(_ context.Context, id string, req *model.SaveTemplateRequest) (*model.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.templates[id]
	if !ok || t.UserID != req.UserID {
		return nil, data.ErrTemplateNotFound
	}
	t.Name = req.Name
	t.Filters = req.Filters
	return t, nil
}

func (r *memTemplateRepo) Delete(_ context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.templates[id]
	if !ok || t.UserID != userID {
		return data.ErrTemplateNotFound
	}
	delete(r.templates, id)
	return nil
}

type memExecutor struct {
	mu        sync.Mutex
	runStatus apify.RunInfo
	items     []map[string]any
	verifyErr error
}

func (e *memExecutor) StartRun(_ context.Context, _ string, _ map[string]any) (apify.RunInfo, error) {
	return apify.RunInfo{ID: "run-1", Status: apify.RunStatusRunning, DatasetID: "dataset-1"}, nil
}

func (e *memExecutor) RunStatus(_ context.Context, _, _ string) (apify.RunInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.runStatus, nil
}

func (e *memExecutor) DatasetItems(_ context.Context, _, _ string) ([]map[string]any, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.items, nil
}

func (e *memExecutor) VerifyToken(_ context.Context, _ string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.verifyErr
}

type memSessionStore struct {
	sessions map[string]string
}

func (s *memSessionStore) Resolve(_ context.Context, token string) (string, error) {
	return s.sessions[token], nil
}

func (s *memSessionStore) Create(_ context.Context, userID string) (string, error) {
	token := fmt.Sprintf("token-%s", userID)
	s.sessions[token] = userID
	return token, nil
}

func (s *memSessionStore) Destroy(_ context.Context, token string) error {
	delete(s.sessions, token)
	return nil
}

type routerFixture struct {
	server   *httptest.Server
	searches *memSearchRepo
	leads    *memLeadRepo
	executor *memExecutor
}

func newRouterFixture() *routerFixture {
	searches := newMemSearchRepo()
	leads := &memLeadRepo{}
	executor := &memExecutor{runStatus: apify.RunInfo{ID: "run-1", Status: apify.RunStatusRunning}}
	profiles := &memProfileRepo{tokens: map[string]string{}}

	searchSvc := service.MustNewSearchService(service.SearchServiceOptions{
		Searches: searches,
		Leads:    leads,
		Profiles: profiles,
		Executor: executor,
		Config:   service.SearchConfig{DefaultToken: "default-token"},
	})
	leadSvc := service.MustNewLeadService(service.LeadServiceOptions{
		Leads:    leads,
		Searches: searches,
	})
	templateSvc := service.MustNewTemplateService(service.TemplateServiceOptions{
		Templates: newMemTemplateRepo(),
	})
	credentialSvc := service.MustNewCredentialService(service.CredentialServiceOptions{
		Profiles: profiles,
		Executor: executor,
	})

	router := NewRouter(RouterServices{
		Searches:    searchSvc,
		Leads:       leadSvc,
		Templates:   templateSvc,
		Credentials: credentialSvc,
		Sessions:    &memSessionStore{sessions: map[string]string{"session-1": "user-1"}},
	})

	return &routerFixture{
		server:   httptest.NewServer(router),
		searches: searches,
		leads:    leads,
		executor: executor,
	}
}

func authed(r *http.Request) *http.Request {
	r.Header.Set("Authorization", "Bearer session-1")
	return r
}
