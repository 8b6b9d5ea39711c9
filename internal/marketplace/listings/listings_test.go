package listings

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"car-mzansi-connect/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(ls []models.Listing) []string {
	out := make([]string, 0, len(ls))
	for _, l := range ls {
		out = append(out, l.ID)
	}
	return out
}

// ==========================
// Sample catalogue
// ==========================

func TestSample_Search(t *testing.T) {
	s := NewSample(time.Now())

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"1", "2", "3"}},
		{"bmw", []string{"1"}},
		{"AMG", []string{"2"}},
		{"pretoria", []string{"3"}},
		{"toyota", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := s.Search(context.Background(), tt.query, nil)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestSample_Get(t *testing.T) {
	s := NewSample(time.Now())

	l, err := s.Get(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Premium Motors JHB", l.Dealership.Name)

	_, err = s.Get(context.Background(), "99")
	assert.ErrorIs(t, err, ErrListingNotFound)
}

// ==========================
// Filters
// ==========================

func TestFilters_Match(t *testing.T) {
	s := NewSample(time.Now())

	tests := []struct {
		name   string
		mutate func(*Filters)
		want   []string
	}{
		{"defaults", func(*Filters) {}, []string{"1", "2", "3"}},
		{"price cap", func(f *Filters) { f.PriceRange.Max = 600000 }, []string{"1", "3"}},
		{"mileage cap", func(f *Filters) { f.MileageRange.Max = 20000 }, []string{"2"}},
		{"year floor", func(f *Filters) { f.YearRange.Min = 2022 }, []string{"1", "2"}},
		{"makes", func(f *Filters) { f.Makes = []string{"Audi", "BMW"} }, []string{"1", "3"}},
		{"fuel type", func(f *Filters) { f.FuelTypes = []string{"Diesel"} }, nil},
		{"location substring", func(f *Filters) { f.Locations = []string{"Cape Town"} }, []string{"2"}},
		{"verified", func(f *Filters) { f.Verified = true }, []string{"1", "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := DefaultFilters()
			tt.mutate(&f)
			got, err := s.Search(context.Background(), "", &f)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFilters_ActiveCount(t *testing.T) {
	f := DefaultFilters()
	assert.Zero(t, f.ActiveCount())

	f.PriceRange.Max = 100
	assert.Zero(t, f.ActiveCount())

	f.Makes = []string{"BMW", "Audi"}
	f.Locations = []string{"Sandton"}
	f.Verified = true
	assert.Equal(t, 4, f.ActiveCount())
}

func TestFilters_Validate(t *testing.T) {
	f := DefaultFilters()
	require.NoError(t, f.Validate())

	f.YearRange = Range{2024, 2015}
	assert.ErrorContains(t, f.Validate(), "invalid year range")
}

// ==========================
// WhatsApp
// ==========================

func TestWhatsAppLink(t *testing.T) {
	tests := []struct {
		phone, message, want string
	}{
		{"+27 12 345 6789", "", "https://wa.me/27123456789"},
		{"082 123 4567", "", "https://wa.me/27821234567"},
		{"821234567", "", "https://wa.me/27821234567"},
		{"0821234567", "Hi there", "https://wa.me/27821234567?text=Hi%20there"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, WhatsAppLink(tt.phone, tt.message), tt.phone)
	}
}

func TestInquiryMessage(t *testing.T) {
	l, _ := NewSample(time.Now()).Get(context.Background(), "1")
	assert.Equal(t,
		"Hi Premium Motors JHB, I'm interested in the 2022 BMW 320i M Sport listed for R 599 000. Could you please provide more information?",
		InquiryMessage(l.Car, l.Dealership))
}

func TestFormatRand(t *testing.T) {
	assert.Equal(t, "R 0", FormatRand(0))
	assert.Equal(t, "R 999", FormatRand(999))
	assert.Equal(t, "R 1 000", FormatRand(1000))
	assert.Equal(t, "R 1 250 000", FormatRand(1250000))
	assert.Equal(t, "-R 5 000", FormatRand(-5000))
}

// ==========================
// Elasticsearch
// ==========================

func TestBuildQuery(t *testing.T) {
	assert.Contains(t, BuildQuery("", nil)["query"], "match_all")

	f := DefaultFilters()
	f.Makes = []string{"BMW"}
	f.Verified = true
	q := BuildQuery("320i", &f)

	raw, err := json.Marshal(q)
	require.NoError(t, err)
	body := string(raw)
	assert.Contains(t, body, `"multi_match"`)
	assert.Contains(t, body, `"car.make.keyword":["BMW"]`)
	assert.Contains(t, body, `"dealership.verified":true`)
	assert.Contains(t, body, `"car.price":{"gte":0,"lte":2000000}`)
}

func newFakeES(t *testing.T, handler func(w http.ResponseWriter, r *http.Request, body []byte)) *elasticsearch.Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r, body)
	}))
	t.Cleanup(server.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{server.URL}})
	require.NoError(t, err)
	return client
}

func TestElastic_Search(t *testing.T) {
	var gotPath string
	client := newFakeES(t, func(w http.ResponseWriter, r *http.Request, body []byte) {
		gotPath = r.URL.Path
		assert.Contains(t, string(body), "multi_match")
		io.WriteString(w, `{"took":3,"hits":{"total":{"value":1},"hits":[
			{"_id":"1","_source":{"car":{"make":"BMW","model":"320i M Sport","year":2022,"price":599000},
			"dealership":{"name":"Premium Motors JHB","location":"Sandton","verified":true}}}]}}`)
	})

	got, err := NewElastic(client, "car_listings").Search(context.Background(), "bmw", nil)
	require.NoError(t, err)
	assert.Equal(t, "/car_listings/_search", gotPath)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "BMW", got[0].Car.Make)
}

func TestElastic_SearchError(t *testing.T) {
	client := newFakeES(t, func(w http.ResponseWriter, _ *http.Request, _ []byte) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":"parsing_exception"}`)
	})

	_, err := NewElastic(client, "car_listings").Search(context.Background(), "bmw", nil)
	assert.ErrorContains(t, err, "search car_listings")
}

func TestElastic_GetNotFound(t *testing.T) {
	client := newFakeES(t, func(w http.ResponseWriter, _ *http.Request, _ []byte) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"found":false}`)
	})

	_, err := NewElastic(client, "car_listings").Get(context.Background(), "42")
	assert.ErrorIs(t, err, ErrListingNotFound)
}

func TestElastic_Index(t *testing.T) {
	var method, path string
	client := newFakeES(t, func(w http.ResponseWriter, r *http.Request, _ []byte) {
		method, path = r.Method, r.URL.Path
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"result":"created"}`)
	})

	l, _ := NewSample(time.Now()).Get(context.Background(), "2")
	require.NoError(t, NewElastic(client, "car_listings").Index(context.Background(), l))
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/car_listings/_doc/2", path)
}
