package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/alphaleads/leadsearch/internal/data/pgxutil"
	"github.com/alphaleads/leadsearch/internal/domain/model"
)

// leadInsertBatchSize bounds each insert to stay under downstream payload limits.
const leadInsertBatchSize = 500

// LeadRepoConfig holds configuration options for the lead repository.
type LeadRepoConfig struct {
	Logger *slog.Logger
}

// LeadRepo provides database operations for persisted leads.
type LeadRepo struct {
	DB     *sql.DB
	logger *slog.Logger
}

// NewLeadRepo creates a new LeadRepo instance with the given database connection.
func NewLeadRepo(db *sql.DB, cfg LeadRepoConfig) *LeadRepo {
	return &LeadRepo{
		DB:     db,
		logger: cfg.Logger,
	}
}

var leadInsertColumns = []string{
	"search_id",
	"first_name",
	"last_name",
	"full_name",
	"job_title",
	"headline",
	"functional_level",
	"seniority_level",
	"email",
	"mobile_number",
	"personal_email",
	"linkedin",
	"city",
	"state",
	"country",
	"company_name",
	"company_domain",
	"company_website",
	"company_linkedin",
	"company_linkedin_uid",
	"company_size",
	"industry",
	"company_description",
	"company_annual_revenue",
	"company_annual_revenue_clean",
	"company_total_funding",
	"company_total_funding_clean",
	"company_founded_year",
	"company_phone",
	"company_street_address",
	"company_city",
	"company_state",
	"company_country",
	"company_postal_code",
	"company_full_address",
	"company_market_cap",
	"keywords",
	"company_technologies",
}

const leadSelectColumns = `id, created_at, ` + leadScanColumnList

// leadScanColumnList mirrors leadInsertColumns for SELECT statements.
const leadScanColumnList = `search_id, first_name, last_name, full_name, job_title, headline,
  functional_level, seniority_level, email, mobile_number, personal_email, linkedin,
  city, state, country, company_name, company_domain, company_website, company_linkedin,
  company_linkedin_uid, company_size, industry, company_description, company_annual_revenue,
  company_annual_revenue_clean, company_total_funding, company_total_funding_clean,
  company_founded_year, company_phone, company_street_address, company_city, company_state,
  company_country, company_postal_code, company_full_address, company_market_cap,
  keywords, company_technologies`

// InsertBatch persists leads in fixed-size batches using COPY, each chunk in
// its own transaction. A failed chunk rolls back, is logged and skipped so
// one bad chunk does not lose the rest; the returned count is the number of
// rows actually inserted.
func (r *LeadRepo) InsertBatch(ctx context.Context, leads []model.Lead) (int, error) {
	if len(leads) == 0 {
		return 0, nil
	}

	var inserted int
	for start := 0; start < len(leads); start += leadInsertBatchSize {
		end := min(start+leadInsertBatchSize, len(leads))
		chunk := leads[start:end]

		err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
			Fn: func(tx pgx.Tx) error {
				n, copyErr := tx.CopyFrom(
					ctx,
					pgx.Identifier{"leads"},
					leadInsertColumns,
					pgx.CopyFromSlice(len(chunk), func(i int) ([]any, error) {
						return leadCopyRow(&chunk[i]), nil
					}),
				)
				if copyErr != nil {
					return copyErr
				}
				inserted += int(n)
				return nil
			},
		})
		if err != nil && r.logger != nil {
			r.logger.ErrorContext(ctx, "lead batch insert failed",
				"search_id", chunk[0].SearchID,
				"batch_start", start,
				"batch_size", len(chunk),
				"error", err,
			)
		}
	}
	return inserted, nil
}

func leadCopyRow(l *model.Lead) []any {
	return []any{
		l.SearchID,
		l.FirstName,
		l.LastName,
		l.FullName,
		l.JobTitle,
		l.Headline,
		l.FunctionalLevel,
		l.SeniorityLevel,
		l.Email,
		l.MobileNumber,
		l.PersonalEmail,
		l.Linkedin,
		l.City,
		l.State,
		l.Country,
		l.CompanyName,
		l.CompanyDomain,
		l.CompanyWebsite,
		l.CompanyLinkedin,
		l.CompanyLinkedinUID,
		l.CompanySize,
		l.Industry,
		l.CompanyDescription,
		l.CompanyAnnualRevenue,
		l.CompanyAnnualRevenueClean,
		l.CompanyTotalFunding,
		l.CompanyTotalFundingClean,
		l.CompanyFoundedYear,
		l.CompanyPhone,
		l.CompanyStreetAddress,
		l.CompanyCity,
		l.CompanyState,
		l.CompanyCountry,
		l.CompanyPostalCode,
		l.CompanyFullAddress,
		l.CompanyMarketCap,
		l.Keywords,
		l.CompanyTechnologies,
	}
}

// List returns one page of a search's leads plus the total match count.
func (r *LeadRepo) List(ctx context.Context, opts *model.LeadListOptions) (*model.LeadPage, error) {
	if opts == nil {
		return nil, errors.New("lead list options are required")
	}
	if strings.TrimSpace(opts.SearchID) == "" {
		return nil, ErrSearchIDRequired
	}
	opts.Normalize()

	where := "search_id = $1"
	args := []any{opts.SearchID}
	if q := strings.TrimSpace(opts.Query); q != "" {
		where += ` AND (full_name ILIKE $2 OR email ILIKE $2 OR company_name ILIKE $2 OR job_title ILIKE $2)`
		args = append(args, "%"+q+"%")
	}

	direction := "DESC"
	if opts.Ascending {
		direction = "ASC"
	}

	page := &model.LeadPage{
		Leads: []model.Lead{},
		Page:  opts.Page,
		Limit: opts.Limit,
	}

	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		if err := conn.QueryRow(ctx,
			`SELECT count(*) FROM leads WHERE `+where, args...,
		).Scan(&page.Total); err != nil {
			return fmt.Errorf("count leads: %w", err)
		}

		// opts.Sort is validated against an allow-list in Normalize.
		query := fmt.Sprintf(
			`SELECT %s FROM leads WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d`,
			leadSelectColumns, where, opts.Sort, direction, opts.Limit, opts.Offset(),
		)
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("list leads: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			lead, scanErr := scanLead(rows)
			if scanErr != nil {
				return fmt.Errorf("scan lead: %w", scanErr)
			}
			page.Leads = append(page.Leads, *lead)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// ListForExport returns every lead of a search, optionally restricted to ids.
func (r *LeadRepo) ListForExport(ctx context.Context, searchID string, ids []string) ([]model.Lead, error) {
	if strings.TrimSpace(searchID) == "" {
		return nil, ErrSearchIDRequired
	}

	query := `SELECT ` + leadSelectColumns + ` FROM leads WHERE search_id = $1`
	args := []any{searchID}
	if len(ids) > 0 {
		query += ` AND id = ANY($2)`
		args = append(args, ids)
	}
	query += ` ORDER BY created_at ASC`

	var leads []model.Lead
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("list leads for export: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			lead, scanErr := scanLead(rows)
			if scanErr != nil {
				return fmt.Errorf("scan lead: %w", scanErr)
			}
			leads = append(leads, *lead)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return leads, nil
}

type leadRowScanner interface {
	Scan(dest ...any) error
}

func scanLead(scanner leadRowScanner) (*model.Lead, error) {
	lead := &model.Lead{}
	if err := scanner.Scan(
		&lead.ID,
		&lead.CreatedAt,
		&lead.SearchID,
		&lead.FirstName,
		&lead.LastName,
		&lead.FullName,
		&lead.JobTitle,
		&lead.Headline,
		&lead.FunctionalLevel,
		&lead.SeniorityLevel,
		&lead.Email,
		&lead.MobileNumber,
		&lead.PersonalEmail,
		&lead.Linkedin,
		&lead.City,
		&lead.State,
		&lead.Country,
		&lead.CompanyName,
		&lead.CompanyDomain,
		&lead.CompanyWebsite,
		&lead.CompanyLinkedin,
		&lead.CompanyLinkedinUID,
		&lead.CompanySize,
		&lead.Industry,
		&lead.CompanyDescription,
		&lead.CompanyAnnualRevenue,
		&lead.CompanyAnnualRevenueClean,
		&lead.CompanyTotalFunding,
		&lead.CompanyTotalFundingClean,
		&lead.CompanyFoundedYear,
		&lead.CompanyPhone,
		&lead.CompanyStreetAddress,
		&lead.CompanyCity,
		&lead.CompanyState,
		&lead.CompanyCountry,
		&lead.CompanyPostalCode,
		&lead.CompanyFullAddress,
		&lead.CompanyMarketCap,
		&lead.Keywords,
		&lead.CompanyTechnologies,
	); err != nil {
		return nil, err
	}
	return lead, nil
}
