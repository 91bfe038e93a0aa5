package scoring

import (
	"testing"

	"github.com/octobees/leads-generator/discovery/internal/entity"
)

func TestComputeLeadScore_FullCoverage(t *testing.T) {
	email := "owner@kofichopbar.com"
	lead := entity.Lead{
		HasWebsite:  false,
		IsActive:    true,
		Email:       &email,
		Phone:       "+233 302 123456",
		ReviewCount: 12,
	}

	if MaxLeadScore != 8 {
		t.Fatalf("expected max score 8, got %d", MaxLeadScore)
	}
	if got := ComputeLeadScore(lead); got != 8 {
		t.Fatalf("expected full score 8, got %d", got)
	}
}

func TestComputeLeadScore_MinimalSignals(t *testing.T) {
	empty := ""
	lead := entity.Lead{HasWebsite: true, Email: &empty}
	if got := ComputeLeadScore(lead); got != 0 {
		t.Fatalf("expected zero score, got %d", got)
	}
}

func TestComputeLeadScore_FieldWeightsAreIndependent(t *testing.T) {
	email := "hello@shop.com"
	base := entity.Lead{HasWebsite: true}

	mutations := map[string]struct {
		apply  func(l *entity.Lead)
		weight int
	}{
		"no website": {func(l *entity.Lead) { l.HasWebsite = false }, 3},
		"active":     {func(l *entity.Lead) { l.IsActive = true }, 2},
		"email":      {func(l *entity.Lead) { l.Email = &email }, 1},
		"phone":      {func(l *entity.Lead) { l.Phone = "555-123-4567" }, 1},
		"reviews":    {func(l *entity.Lead) { l.ReviewCount = 3 }, 1},
	}

	// Apply each mutation on top of every other combination of one mutation.
	for name, m := range mutations {
		for otherName, other := range mutations {
			if otherName == name {
				continue
			}
			start := base
			other.apply(&start)
			before := ComputeLeadScore(start)

			changed := start
			m.apply(&changed)
			after := ComputeLeadScore(changed)

			if after-before != m.weight {
				t.Fatalf("%s on top of %s changed score by %d, want %d", name, otherName, after-before, m.weight)
			}
		}
	}
}

func TestComputeLeadScore_Deterministic(t *testing.T) {
	lead := entity.Lead{IsActive: true, Phone: "123", ReviewCount: 1}
	first := ComputeLeadScore(lead)
	for i := 0; i < 10; i++ {
		if got := ComputeLeadScore(lead); got != first {
			t.Fatalf("expected stable score %d, got %d", first, got)
		}
	}
}

func TestRescore(t *testing.T) {
	lead := entity.Lead{LeadScore: 8, HasWebsite: true}
	if got := Rescore(lead); got.LeadScore != 0 {
		t.Fatalf("expected stale score to be replaced, got %d", got.LeadScore)
	}
	if lead.LeadScore != 8 {
		t.Fatalf("expected input to stay untouched")
	}
}

func TestComputeQuality(t *testing.T) {
	email := "info@shop.com"
	cases := map[string]struct {
		lead entity.Lead
		want int
	}{
		"everything": {
			lead: entity.Lead{IsActive: true, Phone: "1", Email: &email, ReviewCount: 40, DirectorySource: "Google Places, Yelp"},
			want: 100,
		},
		"reviews scale": {
			lead: entity.Lead{ReviewCount: 2},
			want: 30 + 4,
		},
		"reviews capped": {
			lead: entity.Lead{ReviewCount: 9},
			want: 30 + 10,
		},
		"has website": {
			lead: entity.Lead{HasWebsite: true, Phone: "1"},
			want: 15,
		},
		"reliable substring": {
			lead: entity.Lead{DirectorySource: "Yellow Pages, Yelp"},
			want: 40,
		},
		"unreliable source": {
			lead: entity.Lead{DirectorySource: "AI (Gemini)"},
			want: 30,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got := ComputeQuality(tc.lead)
			if got.Total != tc.want {
				t.Fatalf("expected quality %d, got %d (%+v)", tc.want, got.Total, got.Factors)
			}
		})
	}
}

func TestComputeQuality_IndependentOfLeadScore(t *testing.T) {
	lead := entity.Lead{LeadScore: 8, HasWebsite: true}
	if got := ComputeQuality(lead); got.Total != 0 {
		t.Fatalf("expected quality to ignore stored lead score, got %d", got.Total)
	}
	if len(ComputeQuality(lead).Factors) != 1 {
		t.Fatalf("expected website factor to be reported")
	}
}
