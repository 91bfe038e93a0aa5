package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/octobees/leads-generator/discovery/internal/entity"
	"github.com/octobees/leads-generator/discovery/internal/service/dedupe"
	"github.com/octobees/leads-generator/discovery/internal/service/discovery"
	"github.com/octobees/leads-generator/discovery/internal/service/scoring"
	"github.com/octobees/leads-generator/discovery/internal/service/verification"
)

// ImportSource is the directory source recorded for imported rows that
// name none.
const ImportSource = "CSV Import"

// CSVValidationError indicates that the provided CSV payload is invalid.
type CSVValidationError struct {
	Message string
}

// Error implements the error interface.
func (e CSVValidationError) Error() string {
	return e.Message
}

// ImportSummary reports what happened to the rows of an uploaded file.
type ImportSummary struct {
	Rows              int `json:"rows"`
	Inserted          int `json:"inserted"`
	SkippedDuplicates int `json:"skipped_duplicates"`
	SkippedWithSite   int `json:"skipped_with_website"`
	SkippedBlank      int `json:"skipped_blank"`
}

var exportHeaders = []string{
	"Name", "Industry", "Country", "City", "Phone", "Email", "Email Source",
	"Has Website", "Is Active", "Lead Score", "Review Count", "Last Review Date",
	"Maps URL", "Directory Source", "Notes", "Date Added",
}

var requiredCSVHeaders = []string{"name", "industry", "country", "city"}

// ExportFilename names an export file after the current date.
func (s *LeadsService) ExportFilename() string {
	return "business_leads_" + s.now().UTC().Format(time.DateOnly) + ".csv"
}

// ExportCSV writes every stored lead, best first, and returns the row count.
func (s *LeadsService) ExportCSV(ctx context.Context, w io.Writer) (int, error) {
	leads, err := s.repo.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeaders); err != nil {
		return 0, fmt.Errorf("write csv header: %w", err)
	}
	for _, lead := range leads {
		lastReview := ""
		if lead.LastReviewDate != nil {
			lastReview = lead.LastReviewDate.UTC().Format(time.DateOnly)
		}
		record := []string{
			lead.Name,
			string(lead.Industry),
			string(lead.Country),
			lead.City,
			lead.Phone,
			lead.EmailValue(),
			string(lead.EmailSource),
			strconv.FormatBool(lead.HasWebsite),
			strconv.FormatBool(lead.IsActive),
			strconv.Itoa(lead.LeadScore),
			strconv.Itoa(lead.ReviewCount),
			lastReview,
			lead.MapsURL,
			lead.DirectorySource,
			lead.Notes,
			lead.DateAdded.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return 0, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return 0, fmt.Errorf("flush csv: %w", err)
	}
	return len(leads), nil
}

// ImportCSV ingests leads from a CSV reader. Headers are matched
// case-insensitively, so an export file can be imported back. Rows run
// through the same normalization, merge and cross-run dedup as a
// discovery run.
func (s *LeadsService) ImportCSV(ctx context.Context, r io.Reader) (ImportSummary, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return ImportSummary{}, CSVValidationError{Message: "csv file is empty"}
		}
		return ImportSummary{}, fmt.Errorf("read csv header: %w", err)
	}

	indexMap, valErr := buildHeaderIndex(header)
	if valErr != nil {
		return ImportSummary{}, valErr
	}

	var (
		summary ImportSummary
		leads   []entity.Lead
		rowNum  = 1
	)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return ImportSummary{}, fmt.Errorf("read csv row: %w", err)
		}
		rowNum++
		summary.Rows++

		lead, ok, err := s.rowToLead(row, indexMap, rowNum)
		if err != nil {
			return ImportSummary{}, err
		}
		if !ok {
			summary.SkippedBlank++
			continue
		}
		if lead.HasWebsite {
			summary.SkippedWithSite++
			continue
		}
		leads = append(leads, lead)
	}

	merged := dedupe.Merge(leads)
	for i := range merged {
		merged[i] = scoring.Rescore(merged[i])
	}

	existing, err := s.repo.ListAll(ctx)
	if err != nil {
		return ImportSummary{}, err
	}
	fresh, skipped := dedupe.FilterKnown(merged, existing)
	summary.SkippedDuplicates = skipped + len(leads) - len(merged)
	for i := range fresh {
		fresh[i] = verification.Apply(fresh[i], existing)
	}

	inserted, err := s.repo.Insert(ctx, fresh)
	if err != nil {
		return ImportSummary{}, err
	}
	summary.Inserted = inserted

	s.logger.Info("csv imported",
		zap.Int("rows", summary.Rows),
		zap.Int("inserted", summary.Inserted),
		zap.Int("skipped_duplicates", summary.SkippedDuplicates),
	)
	return summary, nil
}

func (s *LeadsService) rowToLead(row []string, index map[string]int, rowNum int) (entity.Lead, bool, error) {
	get := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	name := get("name")
	if name == "" {
		return entity.Lead{}, false, nil
	}

	country, ok := entity.ParseCountry(get("country"))
	if !ok {
		return entity.Lead{}, false, CSVValidationError{Message: fmt.Sprintf("unsupported country on row %d", rowNum)}
	}
	industry, ok := entity.ParseIndustry(get("industry"))
	if !ok {
		return entity.Lead{}, false, CSVValidationError{Message: fmt.Sprintf("unsupported industry on row %d", rowNum)}
	}
	hasWebsite, err := parseOptionalBool(get("has_website"))
	if err != nil {
		return entity.Lead{}, false, CSVValidationError{Message: fmt.Sprintf("invalid has_website value on row %d", rowNum)}
	}
	isActive, err := parseOptionalBool(get("is_active"))
	if err != nil {
		return entity.Lead{}, false, CSVValidationError{Message: fmt.Sprintf("invalid is_active value on row %d", rowNum)}
	}
	reviews, err := parseOptionalInt(get("review_count"))
	if err != nil || reviews < 0 {
		return entity.Lead{}, false, CSVValidationError{Message: fmt.Sprintf("invalid review_count value on row %d", rowNum)}
	}
	lastReview, err := parseOptionalDate(get("last_review_date"))
	if err != nil {
		return entity.Lead{}, false, CSVValidationError{Message: fmt.Sprintf("invalid last_review_date value on row %d", rowNum)}
	}

	source := get("directory_source")
	if source == "" {
		source = ImportSource
	}
	lead := entity.Lead{
		ID:              uuid.NewString(),
		Name:            name,
		Industry:        industry,
		Country:         country,
		City:            get("city"),
		Phone:           get("phone"),
		EmailSource:     entity.ParseEmailSource(get("email_source")),
		HasWebsite:      hasWebsite,
		IsActive:        isActive,
		MapsURL:         get("maps_url"),
		DirectorySource: source,
		ReviewCount:     reviews,
		LastReviewDate:  lastReview,
		DateAdded:       s.now().UTC(),
		Notes:           get("notes"),
	}
	if email := get("email"); email != "" {
		lead.Email = &email
		if lead.EmailSource == entity.EmailSourceNone {
			lead.EmailSource = entity.EmailSourceDirectory
		}
	}
	return discovery.NormalizeLead(lead), true, nil
}

func buildHeaderIndex(header []string) (map[string]int, error) {
	index := make(map[string]int)
	for i, col := range header {
		key := strings.ToLower(strings.TrimSpace(col))
		key = strings.TrimPrefix(key, "\ufeff")
		index[strings.ReplaceAll(key, " ", "_")] = i
	}

	missing := make([]string, 0)
	for _, required := range requiredCSVHeaders {
		if _, ok := index[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, CSVValidationError{Message: fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", "))}
	}
	return index, nil
}

func parseOptionalInt(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}

func parseOptionalBool(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "":
		return false, nil
	case "yes", "y":
		return true, nil
	case "no", "n":
		return false, nil
	}
	return strconv.ParseBool(value)
}

func parseOptionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if ts, err := time.Parse(layout, value); err == nil {
			return &ts, nil
		}
	}
	return nil, fmt.Errorf("unsupported date %q", value)
}
