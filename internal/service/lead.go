package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/alphaleads/leadsearch/internal/core"
	"github.com/alphaleads/leadsearch/internal/data"
	"github.com/alphaleads/leadsearch/internal/domain/model"
	apperrors "github.com/alphaleads/leadsearch/internal/errors"
)

// LeadServiceOptions groups dependencies for LeadService.
type LeadServiceOptions struct {
	Leads    core.LeadRepository   // Required: lead repository
	Searches core.SearchRepository // Required: ownership checks go through searches
	Logger   *slog.Logger          // Optional: structured logger
}

// LeadService provides listing and export of a search's leads. Every
// operation verifies the search belongs to the caller before touching leads.
type LeadService struct {
	leads    core.LeadRepository
	searches core.SearchRepository
	logger   *slog.Logger
}

// NewLeadService constructs a new LeadService.
func NewLeadService(opts LeadServiceOptions) (*LeadService, error) {
	if opts.Leads == nil {
		return nil, errors.New("LeadRepository is required")
	}
	if opts.Searches == nil {
		return nil, errors.New("SearchRepository is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "lead_service")
	}

	return &LeadService{
		leads:    opts.Leads,
		searches: opts.Searches,
		logger:   logger,
	}, nil
}

// MustNewLeadService constructs a new LeadService and panics on error.
func MustNewLeadService(opts LeadServiceOptions) *LeadService {
	svc, err := NewLeadService(opts)
	if err != nil {
		//nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
		panic(fmt.Sprintf("failed to create LeadService: %v", err))
	}
	return svc
}

// List returns one page of a search's leads with optional text filtering.
func (s *LeadService) List(ctx context.Context, userID string, opts *model.LeadListOptions) (*model.LeadPage, error) {
	if opts == nil {
		return nil, apperrors.Validation("lead list options are required")
	}
	if _, err := s.ownedSearch(ctx, opts.SearchID, userID); err != nil {
		return nil, err
	}

	page, err := s.leads.List(ctx, opts)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStorage, "list leads")
	}
	return page, nil
}

// exportColumns fixes the header set and order of exported files.
var exportColumns = []struct {
	header string
	value  func(l *model.Lead) string
}{
	{"First Name", func(l *model.Lead) string { return deref(l.FirstName) }},
	{"Last Name", func(l *model.Lead) string { return deref(l.LastName) }},
	{"Full Name", func(l *model.Lead) string { return deref(l.FullName) }},
	{"Job Title", func(l *model.Lead) string { return deref(l.JobTitle) }},
	{"Headline", func(l *model.Lead) string { return deref(l.Headline) }},
	{"Seniority", func(l *model.Lead) string { return deref(l.SeniorityLevel) }},
	{"Functional Level", func(l *model.Lead) string { return deref(l.FunctionalLevel) }},
	{"Email", func(l *model.Lead) string { return deref(l.Email) }},
	{"Personal Email", func(l *model.Lead) string { return deref(l.PersonalEmail) }},
	{"Phone", func(l *model.Lead) string { return deref(l.MobileNumber) }},
	{"LinkedIn", func(l *model.Lead) string { return deref(l.Linkedin) }},
	{"City", func(l *model.Lead) string { return deref(l.City) }},
	{"State", func(l *model.Lead) string { return deref(l.State) }},
	{"Country", func(l *model.Lead) string { return deref(l.Country) }},
	{"Company", func(l *model.Lead) string { return deref(l.CompanyName) }},
	{"Company Domain", func(l *model.Lead) string { return deref(l.CompanyDomain) }},
	{"Company Website", func(l *model.Lead) string { return deref(l.CompanyWebsite) }},
	{"Company LinkedIn", func(l *model.Lead) string { return deref(l.CompanyLinkedin) }},
	{"Industry", func(l *model.Lead) string { return deref(l.Industry) }},
	{"Company Size", func(l *model.Lead) string { return deref(l.CompanySize) }},
	{"Company Description", func(l *model.Lead) string { return deref(l.CompanyDescription) }},
	{"Revenue", func(l *model.Lead) string { return deref(l.CompanyAnnualRevenue) }},
	{"Total Funding", func(l *model.Lead) string { return deref(l.CompanyTotalFunding) }},
	{"Founded Year", func(l *model.Lead) string { return derefInt(l.CompanyFoundedYear) }},
	{"Company Phone", func(l *model.Lead) string { return deref(l.CompanyPhone) }},
	{"Company Street Address", func(l *model.Lead) string { return deref(l.CompanyStreetAddress) }},
	{"Company City", func(l *model.Lead) string { return deref(l.CompanyCity) }},
	{"Company State", func(l *model.Lead) string { return deref(l.CompanyState) }},
	{"Company Country", func(l *model.Lead) string { return deref(l.CompanyCountry) }},
	{"Company Postal Code", func(l *model.Lead) string { return deref(l.CompanyPostalCode) }},
	{"Company Full Address", func(l *model.Lead) string { return deref(l.CompanyFullAddress) }},
	{"Market Cap", func(l *model.Lead) string { return deref(l.CompanyMarketCap) }},
	{"Keywords", func(l *model.Lead) string { return strings.Join(l.Keywords, ", ") }},
	{"Technologies", func(l *model.Lead) string { return strings.Join(l.CompanyTechnologies, ", ") }},
}

// Export renders a search's leads as CSV with a fixed column set. ids, when
// non-empty, restricts the export to those lead ids. The returned file name
// derives from the search name.
func (s *LeadService) Export(ctx context.Context, userID, searchID string, ids []string) ([]byte, string, error) {
	search, err := s.ownedSearch(ctx, searchID, userID)
	if err != nil {
		return nil, "", err
	}

	leads, err := s.leads.ListForExport(ctx, searchID, ids)
	if err != nil {
		return nil, "", apperrors.Wrap(err, apperrors.ErrCodeStorage, "export leads")
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	headers := make([]string, len(exportColumns))
	for i, col := range exportColumns {
		headers[i] = col.header
	}
	if err := w.Write(headers); err != nil {
		return nil, "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "write csv header")
	}

	row := make([]string, len(exportColumns))
	for i := range leads {
		for j, col := range exportColumns {
			row[j] = col.value(&leads[i])
		}
		if err := w.Write(row); err != nil {
			return nil, "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "write csv row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "flush csv")
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "leads exported",
			"search_id", searchID,
			"rows", len(leads),
		)
	}
	return buf.Bytes(), exportFileName(search.Name) + ".csv", nil
}

func (s *LeadService) ownedSearch(ctx context.Context, searchID, userID string) (*model.Search, error) {
	if strings.TrimSpace(searchID) == "" {
		return nil, apperrors.ValidationField("search_id", "search id is required")
	}

	search, err := s.searches.GetByIDForUser(ctx, searchID, userID)
	if errors.Is(err, data.ErrSearchNotFound) {
		return nil, apperrors.NotFound("search not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStorage, "get search")
	}
	return search, nil
}

var unsafeFileNameChars = regexp.MustCompile(`[^a-zA-Z0-9_\-\s]`)

func exportFileName(name string) string {
	cleaned := strings.TrimSpace(unsafeFileNameChars.ReplaceAllString(name, ""))
	if cleaned == "" {
		return "export"
	}
	return cleaned
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}
