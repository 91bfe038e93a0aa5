package directory

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/octobees/leads-generator/discovery/internal/entity"
	"github.com/octobees/leads-generator/discovery/internal/provider"
)

func TestAvailable(t *testing.T) {
	ghana := Available(entity.CountryGhana)
	if len(ghana) != 5 || ghana[0].Name != "BusinessGhana Directory" {
		t.Fatalf("unexpected ghana directories %+v", ghana)
	}
	ghana[0].Name = "mutated"
	if Available(entity.CountryGhana)[0].Name != "BusinessGhana Directory" {
		t.Fatalf("expected catalogue to be copied")
	}
	if got := Available(entity.Country("Kenya")); len(got) != 0 {
		t.Fatalf("expected no directories for unknown country, got %d", len(got))
	}
	if !RequiresBackend(entity.CountryUnitedStates) {
		t.Fatalf("expected US directories to need the backend")
	}
}

func TestBackendClient_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/directories/search" || r.Header.Get("X-Request-ID") != "req-1" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		var q provider.Query
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil || q.City != "Kumasi" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"results": []map[string]any{
			{"name": "Ama Salon", "phone": "032 202 0000", "email": "ama@gmail.com", "reviewCount": 3, "source": "Yellow Pages Ghana"},
			{"name": "Site Owner", "website": "https://owner.example"},
			{"name": "No Source"},
		}})
	}))
	defer server.Close()

	client, err := NewBackendClient(server.Client(), server.URL+"/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := provider.WithRequestID(context.Background(), "req-1")
	records, err := client.Search(ctx, provider.Query{Country: entity.CountryGhana, Industry: entity.IndustrySalonsSpas, City: "Kumasi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected website record to be filtered, got %d records", len(records))
	}
	if records[0].Email != "ama@gmail.com" || records[0].ReviewCount != 3 || records[0].Source != "Yellow Pages Ghana" {
		t.Fatalf("unexpected first record %+v", records[0])
	}
	if records[1].Source != "Directory" {
		t.Fatalf("expected default source, got %q", records[1].Source)
	}
}

func TestBackendClient_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":"scraper offline"}`))
	}))
	defer server.Close()

	client, _ := NewBackendClient(server.Client(), server.URL)
	_, err := client.Search(context.Background(), provider.Query{Country: entity.CountryGhana, Industry: entity.IndustrySMEs, City: "Accra"})
	var respErr *provider.ResponseError
	if !errors.As(err, &respErr) || respErr.StatusCode != http.StatusBadGateway || respErr.Message != "scraper offline" {
		t.Fatalf("expected response error, got %v", err)
	}
}

func TestNewBackendClient_RequiresURL(t *testing.T) {
	if _, err := NewBackendClient(http.DefaultClient, " "); !errors.Is(err, provider.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestYelpClient_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer yelp-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("location") != "Austin" || r.URL.Query().Get("term") != "Hotels Austin" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"businesses":[
			{"name":"Lone Star Inn","phone":"+15125550100","review_count":40,"rating":4.5,"location":{"address1":"1 Congress Ave"}},
			{"name":"Closed Motel","review_count":2,"is_closed":true},
			{"name":""}
		]}`))
	}))
	defer server.Close()

	client, err := NewYelpClient("yelp-key", WithYelpBaseURL(server.URL), WithYelpHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := client.Search(context.Background(), provider.Query{Country: entity.CountryUnitedStates, Industry: entity.IndustryHotels, City: "Austin"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Address != "1 Congress Ave" || records[0].Active == nil || !*records[0].Active {
		t.Fatalf("unexpected first record %+v", records[0])
	}
	if *records[1].Active {
		t.Fatalf("expected closed business to be inactive")
	}
}

func TestYelpClient_OtherCountries(t *testing.T) {
	client, _ := NewYelpClient("yelp-key", WithYelpBaseURL("http://127.0.0.1:1"))
	records, err := client.Search(context.Background(), provider.Query{Country: entity.CountryGhana, Industry: entity.IndustryHotels, City: "Accra"})
	if err != nil || records != nil {
		t.Fatalf("expected no call outside the US, got %v / %v", records, err)
	}
}

func TestYelpClient_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"code":"TOKEN_INVALID"}}`))
	}))
	defer server.Close()

	client, _ := NewYelpClient("bad", WithYelpBaseURL(server.URL))
	_, err := client.Search(context.Background(), provider.Query{Country: entity.CountryUnitedStates, Industry: entity.IndustryHotels, City: "Austin"})
	var respErr *provider.ResponseError
	if !errors.As(err, &respErr) || respErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 response error, got %v", err)
	}
}
