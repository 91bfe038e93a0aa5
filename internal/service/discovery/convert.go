package discovery

import (
	"net/url"
	"strings"

	"github.com/octobees/leads-generator/discovery/internal/entity"
	"github.com/octobees/leads-generator/discovery/internal/provider"
	"github.com/octobees/leads-generator/discovery/internal/service/normalize"
)

const (
	// PlacesSource is the directory source recorded for places results.
	PlacesSource = "Google Places"
	// GenerativeSource is used when a generated record names no source.
	// It contains "AI" so verification treats it as synthetic.
	GenerativeSource = "AI Discovery"

	placeURLPrefix  = "https://www.google.com/maps/place/?q=place_id:"
	searchURLPrefix = "https://www.google.com/maps/search/?api=1&query="
)

func (o *Orchestrator) placeToLead(p provider.Place, q provider.Query) (entity.Lead, bool) {
	name := normalize.TidyName(p.Name)
	if name == "" {
		return entity.Lead{}, false
	}

	mapsURL := p.MapsURL
	if mapsURL == "" && p.ID != "" {
		mapsURL = placeURLPrefix + p.ID
	}

	return entity.Lead{
		ID:              o.newID(),
		Name:            name,
		Industry:        q.Industry,
		Country:         q.Country,
		City:            q.City,
		Phone:           p.Phone,
		EmailSource:     entity.EmailSourceNone,
		HasWebsite:      p.Website != "",
		IsActive:        p.OperationalStatus == provider.StatusOperational && p.RatingCount > 0,
		MapsURL:         mapsURL,
		DirectorySource: PlacesSource,
		ReviewCount:     p.RatingCount,
		DateAdded:       o.now().UTC(),
		Notes:           p.Address,
	}, true
}

func (o *Orchestrator) recordToLead(rec provider.DirectoryRecord, q provider.Query, fallbackSource string) (entity.Lead, bool) {
	name := normalize.TidyName(rec.Name)
	if name == "" {
		return entity.Lead{}, false
	}

	source := rec.Source
	if source == "" {
		source = fallbackSource
	}

	lead := entity.Lead{
		ID:              o.newID(),
		Name:            name,
		Industry:        q.Industry,
		Country:         q.Country,
		City:            q.City,
		Phone:           rec.Phone,
		EmailSource:     entity.EmailSourceNone,
		HasWebsite:      rec.Website != "",
		IsActive:        rec.ReviewCount > 0,
		MapsURL:         rec.MapsURL,
		DirectorySource: source,
		ReviewCount:     max(rec.ReviewCount, 0),
		DateAdded:       o.now().UTC(),
		Notes:           rec.Address,
	}
	if rec.Active != nil {
		lead.IsActive = *rec.Active
	}
	if rec.LastReviewDate != nil {
		ts := *rec.LastReviewDate
		lead.LastReviewDate = &ts
	}
	if rec.Email != "" {
		email := rec.Email
		lead.Email = &email
		lead.EmailSource = entity.EmailSourceDirectory
		if src := entity.ParseEmailSource(string(rec.EmailSource)); src != entity.EmailSourceNone {
			lead.EmailSource = src
		}
	}
	if lead.MapsURL == "" {
		lead.MapsURL = searchURLPrefix + url.QueryEscape(name+" "+q.City)
	}
	return lead, true
}

// NormalizeLead canonicalises phone and email in place of the raw values
// when they validate. Failing fields keep their raw value and are flagged
// invalid.
func NormalizeLead(lead entity.Lead) entity.Lead {
	lead.Name = normalize.TidyName(lead.Name)

	phone := normalize.NormalizePhone(lead.Phone, lead.Country)
	lead.Phone = phone.Value
	lead.PhoneValid = phone.Valid

	email := normalize.NormalizeEmail(lead.Email)
	lead.EmailValid = email.Valid
	switch {
	case email.Valid:
		lead.Email = email.Value
	case lead.Email != nil:
		raw := *lead.Email
		lead.Email = &raw
	}
	if strings.TrimSpace(lead.EmailValue()) == "" {
		lead.Email = nil
		lead.EmailSource = entity.EmailSourceNone
	}
	return lead
}
