package scoring

import (
	"strconv"
	"strings"

	"github.com/octobees/leads-generator/discovery/internal/entity"
)

// Lead score weights. The lead score is the default ranking key.
const (
	weightNoWebsite = 3
	weightActive    = 2
	weightEmail     = 1
	weightPhone     = 1
	weightReviews   = 1

	MaxLeadScore = weightNoWebsite + weightActive + weightEmail + weightPhone + weightReviews
)

// Quality score weights, used only to pick high quality leads.
const (
	qualityNoWebsite     = 30
	qualityActive        = 20
	qualityPhone         = 15
	qualityEmail         = 15
	qualityReviewsCap    = 10
	qualityPerReview     = 2
	qualityReliable      = 10
	maxQualityScore      = 100
	factorNoWebsite      = "No Website"
	factorHasWebsite     = "Has Website (not ideal)"
	factorActive         = "Active Business"
	factorPhone          = "Has Phone"
	factorEmail          = "Has Email"
	factorReliableSource = "Reliable Source"
)

var qualityReliableSources = []string{"Google Places", "Yelp"}

// ComputeLeadScore returns the 0-8 ranking score derived from the lead's
// current field values.
func ComputeLeadScore(lead entity.Lead) int {
	score := 0
	if !lead.HasWebsite {
		score += weightNoWebsite
	}
	if lead.IsActive {
		score += weightActive
	}
	if lead.HasEmail() {
		score += weightEmail
	}
	if lead.Phone != "" {
		score += weightPhone
	}
	if lead.ReviewCount > 0 {
		score += weightReviews
	}
	return score
}

// Rescore returns a copy of the lead with LeadScore recomputed.
func Rescore(lead entity.Lead) entity.Lead {
	lead.LeadScore = ComputeLeadScore(lead)
	return lead
}

// QualityFactor is one contribution to the quality score.
type QualityFactor struct {
	Factor string `json:"factor"`
	Score  int    `json:"score"`
}

// QualityResult reports the 0-100 quality score and its factors.
type QualityResult struct {
	Total   int             `json:"total"`
	Factors []QualityFactor `json:"factors"`
}

// ComputeQuality evaluates the lead's quality score. It is independent of
// ComputeLeadScore and never used for default ordering.
func ComputeQuality(lead entity.Lead) QualityResult {
	var factors []QualityFactor
	add := func(name string, score int) {
		factors = append(factors, QualityFactor{Factor: name, Score: score})
	}

	if !lead.HasWebsite {
		add(factorNoWebsite, qualityNoWebsite)
	} else {
		add(factorHasWebsite, 0)
	}
	if lead.IsActive {
		add(factorActive, qualityActive)
	}
	if lead.Phone != "" {
		add(factorPhone, qualityPhone)
	}
	if lead.HasEmail() {
		add(factorEmail, qualityEmail)
	}
	if lead.ReviewCount > 0 {
		add("Has Reviews ("+strconv.Itoa(lead.ReviewCount)+")", min(qualityReviewsCap, lead.ReviewCount*qualityPerReview))
	}
	if isQualityReliable(lead.DirectorySource) {
		add(factorReliableSource, qualityReliable)
	}

	total := 0
	for _, f := range factors {
		total += f.Score
	}
	return QualityResult{Total: min(maxQualityScore, total), Factors: factors}
}

func isQualityReliable(source string) bool {
	for _, reliable := range qualityReliableSources {
		if strings.Contains(source, reliable) {
			return true
		}
	}
	return false
}
