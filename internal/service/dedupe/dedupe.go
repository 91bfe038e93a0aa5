// Package dedupe merges near-duplicate leads within a discovery run and
// filters leads already present in the persisted collection.
package dedupe

import (
	"strings"
	"time"

	"github.com/octobees/leads-generator/discovery/internal/entity"
	"github.com/octobees/leads-generator/discovery/internal/service/normalize"
)

// MergeKey is the exact key used for in-run merging.
func MergeKey(lead entity.Lead) string {
	return normalize.NormalizeName(lead.Name) + "-" + strings.ToLower(lead.City)
}

// KnownKey is the plain key used to recognise leads across runs.
func KnownKey(lead entity.Lead) string {
	return strings.ToLower(lead.Name) + "-" + strings.ToLower(lead.City)
}

// Merge collapses leads sharing a MergeKey into the first occurrence,
// preserving first-occurrence order. Returned leads are copies.
func Merge(leads []entity.Lead) []entity.Lead {
	merged := make([]entity.Lead, 0, len(leads))
	index := make(map[string]int, len(leads))

	for _, lead := range leads {
		key := MergeKey(lead)
		if pos, seen := index[key]; seen {
			mergeInto(&merged[pos], lead)
			continue
		}
		index[key] = len(merged)
		merged = append(merged, copyLead(lead))
	}
	return merged
}

func mergeInto(existing *entity.Lead, incoming entity.Lead) {
	if existing.Phone == "" && incoming.Phone != "" {
		existing.Phone = incoming.Phone
		existing.PhoneValid = incoming.PhoneValid
	}
	if !existing.HasEmail() && incoming.HasEmail() {
		email := incoming.EmailValue()
		existing.Email = &email
		existing.EmailValid = incoming.EmailValid
		existing.EmailSource = incoming.EmailSource
	}
	if incoming.ReviewCount > existing.ReviewCount {
		existing.ReviewCount = incoming.ReviewCount
		existing.LastReviewDate = copyTime(incoming)
	}
	if incoming.LeadScore > existing.LeadScore {
		existing.LeadScore = incoming.LeadScore
	}
	if !strings.Contains(existing.DirectorySource, incoming.DirectorySource) {
		existing.DirectorySource += ", " + incoming.DirectorySource
	}
}

// FilterKnown drops candidates whose KnownKey already exists in the
// collection. Order is preserved; the second value is the number dropped.
func FilterKnown(candidates, existing []entity.Lead) ([]entity.Lead, int) {
	known := make(map[string]struct{}, len(existing))
	for _, lead := range existing {
		known[KnownKey(lead)] = struct{}{}
	}

	unique := make([]entity.Lead, 0, len(candidates))
	for _, lead := range candidates {
		if _, dup := known[KnownKey(lead)]; dup {
			continue
		}
		unique = append(unique, lead)
	}
	return unique, len(candidates) - len(unique)
}

// FindDuplicate returns the first lead in the collection whose name is a
// near-duplicate in the same city.
func FindDuplicate(lead entity.Lead, existing []entity.Lead) (entity.Lead, bool) {
	for _, candidate := range existing {
		if candidate.ID != "" && candidate.ID == lead.ID {
			continue
		}
		if !normalize.SameCity(candidate.City, lead.City) {
			continue
		}
		if normalize.Similarity(lead.Name, candidate.Name) > normalize.DuplicateThreshold {
			return candidate, true
		}
	}
	return entity.Lead{}, false
}

func copyLead(lead entity.Lead) entity.Lead {
	dup := lead
	if lead.Email != nil {
		email := *lead.Email
		dup.Email = &email
	}
	dup.LastReviewDate = copyTime(lead)
	if lead.Confidence != nil {
		c := *lead.Confidence
		dup.Confidence = &c
	}
	if lead.Verified != nil {
		v := *lead.Verified
		dup.Verified = &v
	}
	return dup
}

func copyTime(lead entity.Lead) *time.Time {
	if lead.LastReviewDate == nil {
		return nil
	}
	ts := *lead.LastReviewDate
	return &ts
}
