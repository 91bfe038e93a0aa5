package places

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/octobees/leads-generator/discovery/internal/entity"
	"github.com/octobees/leads-generator/discovery/internal/provider"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(context.Background(), "test-key",
		WithEndpoint(server.URL+"/"),
		WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return client
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), " ")
	if !errors.Is(err, provider.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestPlaceType(t *testing.T) {
	cases := map[entity.Industry]string{
		entity.IndustrySalonsSpas:    "beauty_salon",
		entity.IndustryFoodBeverage:  "restaurant",
		entity.IndustryClinics:       "doctor",
		entity.IndustryFashionRetail: "clothing_store",
		entity.IndustryLogistics:     "storage",
		entity.IndustryProfessional:  "lawyer",
		entity.IndustrySMEs:          "establishment",
		entity.IndustryHotels:        "establishment",
	}
	for industry, want := range cases {
		if got := PlaceType(industry); got != want {
			t.Fatalf("PlaceType(%q)=%q, want %q", industry, got, want)
		}
	}
}

func TestClient_Search(t *testing.T) {
	var gotBody map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, "/places:searchText") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if !strings.Contains(r.Header.Get("X-Goog-FieldMask"), "places.websiteUri") {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"places":[
			{"id":"abc","displayName":{"text":"Kofi Chop Bar"},"nationalPhoneNumber":"024 123 4567","userRatingCount":12,"businessStatus":"OPERATIONAL","formattedAddress":"Osu, Accra"},
			{"id":"def","displayName":{"text":"Papaye"},"internationalPhoneNumber":"+233 30 281 0000","websiteUri":"https://papaye.example"}
		]}`))
	})

	got, err := client.Search(context.Background(), provider.Query{
		Country:  entity.CountryGhana,
		Industry: entity.IndustryFoodBeverage,
		City:     "Accra",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 places, got %d", len(got))
	}
	if got[0].ID != "abc" || got[0].Name != "Kofi Chop Bar" || got[0].RatingCount != 12 || got[0].OperationalStatus != provider.StatusOperational {
		t.Fatalf("unexpected first place %+v", got[0])
	}
	if got[1].Phone != "+233 30 281 0000" || got[1].Website == "" {
		t.Fatalf("unexpected second place %+v", got[1])
	}
	if gotBody["textQuery"] != "Food & beverage in Accra, Ghana" || gotBody["includedType"] != "restaurant" {
		t.Fatalf("unexpected request body %v", gotBody)
	}
}

func TestClient_SearchError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"API key not valid"}}`))
	})

	_, err := client.Search(context.Background(), provider.Query{Country: entity.CountryGhana, Industry: entity.IndustrySMEs, City: "Accra"})
	var respErr *provider.ResponseError
	if !errors.As(err, &respErr) || respErr.StatusCode != http.StatusForbidden {
		t.Fatalf("expected response error with 403, got %v", err)
	}
}

func TestClient_FetchDetail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/places/abc"):
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":"abc","displayName":{"text":"Kofi Chop Bar"},"googleMapsUri":"https://maps.google.com/?cid=1"}`))
		default:
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":{"code":404,"message":"not found"}}`))
		}
	})

	place, err := client.FetchDetail(context.Background(), "abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if place == nil || place.MapsURL != "https://maps.google.com/?cid=1" {
		t.Fatalf("unexpected place %+v", place)
	}

	missing, err := client.FetchDetail(context.Background(), "places/zzz")
	if err != nil || missing != nil {
		t.Fatalf("expected nil place without error, got %+v / %v", missing, err)
	}
}
