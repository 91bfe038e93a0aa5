package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/octobees/leads-generator/discovery/internal/dto"
	"github.com/octobees/leads-generator/discovery/internal/entity"
)

// LeadsRepository persists the lead collection. Leads are append-only:
// Insert never rewrites an existing row, so DateAdded is stable.
type LeadsRepository interface {
	ListAll(ctx context.Context) ([]entity.Lead, error)
	List(ctx context.Context, filter dto.ListFilter) ([]entity.Lead, int, error)
	Insert(ctx context.Context, leads []entity.Lead) (int, error)
	Clear(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (entity.DiscoveryStats, error)
}

// Pagination bounds for List.
const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// Sort keys accepted by List.
const (
	SortScore   = "score"
	SortReviews = "reviews"
	SortNewest  = "newest"
)

const leadColumns = `id, name, industry, country, city, phone, phone_valid, email, email_valid,
            email_source, has_website, is_active, maps_url, directory_source, review_count,
            last_review_date, lead_score, date_added, notes, confidence, verified`

const leadColumnCount = 21

// normalizeFilter clamps paging values and defaults the sort key.
func normalizeFilter(filter dto.ListFilter) dto.ListFilter {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = DefaultPerPage
	}
	if filter.PerPage > MaxPerPage {
		filter.PerPage = MaxPerPage
	}
	switch strings.ToLower(strings.TrimSpace(filter.Sort)) {
	case SortReviews:
		filter.Sort = SortReviews
	case SortNewest:
		filter.Sort = SortNewest
	default:
		filter.Sort = SortScore
	}
	filter.Q = strings.TrimSpace(filter.Q)
	return filter
}

type listQuery struct {
	where string
	order string
	args  []any
}

// buildListQuery renders the WHERE and ORDER BY clauses of a filter.
// placeholder renders the n-th bind parameter of the dialect.
func buildListQuery(filter dto.ListFilter, placeholder func(int) string, like string) listQuery {
	var (
		clauses []string
		args    []any
		idx     = 1
	)

	if filter.Q != "" {
		pattern := "%" + strings.ToLower(filter.Q) + "%"
		var parts []string
		for _, col := range []string{"name", "city", "phone", "email"} {
			parts = append(parts, fmt.Sprintf("LOWER(COALESCE(%s, '')) %s %s", col, like, placeholder(idx)))
			args = append(args, pattern)
			idx++
		}
		clauses = append(clauses, "("+strings.Join(parts, " OR ")+")")
	}
	if filter.Country != "" {
		clauses = append(clauses, fmt.Sprintf("LOWER(country) = LOWER(%s)", placeholder(idx)))
		args = append(args, filter.Country)
		idx++
	}
	if filter.Industry != "" {
		clauses = append(clauses, fmt.Sprintf("LOWER(industry) = LOWER(%s)", placeholder(idx)))
		args = append(args, filter.Industry)
		idx++
	}
	if filter.NoWebsite {
		clauses = append(clauses, "has_website = "+placeholder(idx))
		args = append(args, false)
		idx++
	}
	if filter.HasEmail {
		clauses = append(clauses, "email IS NOT NULL AND email <> ''")
	}

	q := listQuery{args: args}
	if len(clauses) > 0 {
		q.where = " WHERE " + strings.Join(clauses, " AND ")
	}

	switch filter.Sort {
	case SortReviews:
		q.order = " ORDER BY review_count DESC, lead_score DESC, name ASC"
	case SortNewest:
		q.order = " ORDER BY date_added DESC, name ASC"
	default:
		q.order = " ORDER BY lead_score DESC, review_count DESC, name ASC"
	}
	return q
}

const statsSQL = `
        SELECT
            country,
            COUNT(*),
            SUM(CASE WHEN has_website THEN 0 ELSE 1 END),
            SUM(CASE WHEN email IS NOT NULL THEN 1 ELSE 0 END),
            SUM(CASE WHEN is_active THEN 1 ELSE 0 END)
        FROM leads
        GROUP BY country
    `

type rowScanner interface {
	Scan(dest ...any) error
}

type rowIterator interface {
	rowScanner
	Next() bool
	Err() error
}

func scanStats(rows rowIterator) (entity.DiscoveryStats, error) {
	stats := entity.ComputeStats(nil)
	for rows.Next() {
		var country string
		var total, noWebsite, withEmail, active int
		if err := rows.Scan(&country, &total, &noWebsite, &withEmail, &active); err != nil {
			return entity.DiscoveryStats{}, fmt.Errorf("scan stats: %w", err)
		}
		stats.TotalFound += total
		stats.NoWebsiteCount += noWebsite
		stats.WithEmailCount += withEmail
		stats.ActiveCount += active
		stats.ByCountry[entity.Country(country)] += total
	}
	if err := rows.Err(); err != nil {
		return entity.DiscoveryStats{}, err
	}
	return stats, nil
}

func scanLeads(rows rowIterator) ([]entity.Lead, error) {
	leads := make([]entity.Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return leads, nil
}

// flexTime scans timestamps stored natively or as RFC 3339 text.
type flexTime struct {
	Time  time.Time
	Valid bool
}

func (t *flexTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time, t.Valid = time.Time{}, false
		return nil
	case time.Time:
		t.Time, t.Valid = v.UTC(), true
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return fmt.Errorf("unsupported timestamp type %T", src)
	}
}

func (t *flexTime) parse(value string) error {
	if value == "" {
		t.Time, t.Valid = time.Time{}, false
		return nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return fmt.Errorf("parse timestamp %q: %w", value, err)
	}
	t.Time, t.Valid = parsed.UTC(), true
	return nil
}

func scanLead(row rowScanner) (entity.Lead, error) {
	var (
		lead        entity.Lead
		industry    string
		country     string
		emailSource string
		email       sql.NullString
		lastReview  flexTime
		dateAdded   flexTime
		confidence  sql.NullInt64
		verified    sql.NullBool
	)

	err := row.Scan(
		&lead.ID,
		&lead.Name,
		&industry,
		&country,
		&lead.City,
		&lead.Phone,
		&lead.PhoneValid,
		&email,
		&lead.EmailValid,
		&emailSource,
		&lead.HasWebsite,
		&lead.IsActive,
		&lead.MapsURL,
		&lead.DirectorySource,
		&lead.ReviewCount,
		&lastReview,
		&lead.LeadScore,
		&dateAdded,
		&lead.Notes,
		&confidence,
		&verified,
	)
	if err != nil {
		return entity.Lead{}, err
	}

	lead.Industry = entity.Industry(industry)
	lead.Country = entity.Country(country)
	lead.EmailSource = entity.ParseEmailSource(emailSource)
	if email.Valid {
		value := email.String
		lead.Email = &value
	}
	if lastReview.Valid {
		ts := lastReview.Time
		lead.LastReviewDate = &ts
	}
	lead.DateAdded = dateAdded.Time
	if confidence.Valid {
		c := int(confidence.Int64)
		lead.Confidence = &c
	}
	if verified.Valid {
		v := verified.Bool
		lead.Verified = &v
	}
	return lead, nil
}

// leadArgs flattens a lead into insert arguments. encodeTime adapts
// timestamps to the driver.
func leadArgs(lead entity.Lead, encodeTime func(time.Time) any) []any {
	var lastReview any
	if lead.LastReviewDate != nil {
		lastReview = encodeTime(lead.LastReviewDate.UTC())
	}
	var email any
	if lead.Email != nil {
		email = *lead.Email
	}
	var confidence any
	if lead.Confidence != nil {
		confidence = *lead.Confidence
	}
	var verified any
	if lead.Verified != nil {
		verified = *lead.Verified
	}
	emailSource := lead.EmailSource
	if emailSource == "" {
		emailSource = entity.EmailSourceNone
	}

	return []any{
		lead.ID,
		lead.Name,
		string(lead.Industry),
		string(lead.Country),
		lead.City,
		lead.Phone,
		lead.PhoneValid,
		email,
		lead.EmailValid,
		string(emailSource),
		lead.HasWebsite,
		lead.IsActive,
		lead.MapsURL,
		lead.DirectorySource,
		lead.ReviewCount,
		lastReview,
		lead.LeadScore,
		encodeTime(lead.DateAdded.UTC()),
		lead.Notes,
		confidence,
		verified,
	}
}

var errEmptyLeadID = errors.New("lead id must not be empty")

func validateForInsert(leads []entity.Lead) error {
	for i, lead := range leads {
		if strings.TrimSpace(lead.ID) == "" {
			return fmt.Errorf("lead %d (%q): %w", i, lead.Name, errEmptyLeadID)
		}
	}
	return nil
}

func placeholders(n int, placeholder func(int) string) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = placeholder(i + 1)
	}
	return strings.Join(parts, ", ")
}
