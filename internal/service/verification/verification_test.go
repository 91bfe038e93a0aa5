package verification

import (
	"testing"

	"github.com/octobees/leads-generator/discovery/internal/entity"
)

func baseLead(name, city, source string) entity.Lead {
	return entity.Lead{
		Name:            name,
		City:            city,
		Country:         entity.CountryUnitedKingdom,
		DirectorySource: source,
	}
}

func TestVerify_NoMatchesUnknownSource(t *testing.T) {
	res := Verify(baseLead("Corner Barber", "Leeds", "Yell.com"), nil)
	if res.Confidence != 50 || res.IsVerified {
		t.Fatalf("expected base confidence 50 unverified, got %+v", res)
	}
	if len(res.Sources) != 0 || len(res.Discrepancies) != 0 {
		t.Fatalf("expected no sources or discrepancies, got %+v", res)
	}
}

func TestVerify_ReliableSourceAndCompleteness(t *testing.T) {
	email := "hi@cornerbarber.co.uk"
	lead := baseLead("Corner Barber", "Leeds", "Google Places")
	lead.Phone = "+44 113 4960000"
	lead.Email = &email
	lead.ReviewCount = 4
	lead.IsActive = true

	res := Verify(lead, nil)
	// 50 + 15 + 10 + 5 + 5
	if res.Confidence != 85 || !res.IsVerified {
		t.Fatalf("expected 85 verified, got %+v", res)
	}
	if len(res.Sources) != 4 {
		t.Fatalf("expected 4 source notes, got %v", res.Sources)
	}
}

func TestVerify_MergedSourceIsNotReliable(t *testing.T) {
	res := Verify(baseLead("Corner Barber", "Leeds", "Google Places, Yelp"), nil)
	if res.Confidence != 50 {
		t.Fatalf("expected exact source match only, got %d", res.Confidence)
	}
}

func TestVerify_SyntheticSourcePenalty(t *testing.T) {
	res := Verify(baseLead("Corner Barber", "Leeds", "AI (Gemini)"), nil)
	if res.Confidence != 40 || res.IsVerified {
		t.Fatalf("expected 40 unverified, got %+v", res)
	}
}

func TestVerify_MatchBonusOnceAndPerMatchPenalties(t *testing.T) {
	emailA := "a@barber.co.uk"
	emailB := "b@barber.co.uk"

	lead := baseLead("Corner Barber", "Leeds", "Yell.com")
	lead.Phone = "0113 496 0000"
	lead.Email = &emailA

	first := baseLead("The Corner Barber", "LEEDS", "Yelp")
	first.Phone = "0113 496 9999"
	first.Email = &emailB
	first.HasWebsite = true

	second := baseLead("Corner Barber", "leeds", "Yelp")
	second.Phone = "0113 496 0000"

	res := Verify(lead, []entity.Lead{first, second})
	// 50 + 20 - 10 - 5 - 15 + 10 (phone and email)
	if res.Confidence != 50 {
		t.Fatalf("expected 50, got %d (%+v)", res.Confidence, res)
	}
	if len(res.Discrepancies) != 3 {
		t.Fatalf("expected 3 discrepancies, got %v", res.Discrepancies)
	}
	if res.Sources[0] != "Found 2 similar lead(s)" {
		t.Fatalf("unexpected first source note %q", res.Sources[0])
	}
}

func TestVerify_IgnoresOtherCityOrCountry(t *testing.T) {
	lead := baseLead("Corner Barber", "Leeds", "Yell.com")

	otherCity := baseLead("Corner Barber", "York", "Yelp")
	otherCountry := baseLead("Corner Barber", "Leeds", "Yelp")
	otherCountry.Country = entity.CountryAustralia
	otherName := baseLead("Harbour Fish Bar", "Leeds", "Yelp")

	res := Verify(lead, []entity.Lead{otherCity, otherCountry, otherName})
	if res.Confidence != 50 || len(res.Sources) != 0 {
		t.Fatalf("expected no matches, got %+v", res)
	}
}

func TestVerify_ClampsConfidence(t *testing.T) {
	lead := baseLead("Corner Barber", "Leeds", "AI (Gemini)")
	lead.Phone = "1"
	lead.HasWebsite = false

	var existing []entity.Lead
	for i := 0; i < 10; i++ {
		match := baseLead("Corner Barber", "Leeds", "Yelp")
		match.Phone = "2"
		match.HasWebsite = true
		existing = append(existing, match)
	}

	res := Verify(lead, existing)
	if res.Confidence != 0 || res.IsVerified {
		t.Fatalf("expected clamp to 0, got %+v", res)
	}
}

func TestApply(t *testing.T) {
	lead := baseLead("Corner Barber", "Leeds", "Yelp")
	got := Apply(lead, nil)
	if got.Confidence == nil || *got.Confidence != 65 {
		t.Fatalf("expected confidence 65, got %v", got.Confidence)
	}
	if got.Verified == nil || !*got.Verified {
		t.Fatalf("expected lead to be verified")
	}
	if lead.Confidence != nil {
		t.Fatalf("expected input lead to stay untouched")
	}
}
