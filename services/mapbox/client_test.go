package mapbox

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient("test-token")
	client.baseURL = server.URL
	return client, server
}

func TestGeocode(t *testing.T) {
	client, server := testClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("access_token") != "test-token" {
			t.Errorf("missing access token in %s", r.URL)
		}
		w.Write([]byte(`{"features":[{"place_name":"São Paulo, Brazil","center":[-46.6333,-23.5505]}]}`))
	})
	defer server.Close()

	result, err := client.Geocode(context.Background(), "São Paulo")
	if err != nil {
		t.Fatalf("geocode failed: %v", err)
	}
	if result.PlaceName != "São Paulo, Brazil" {
		t.Errorf("unexpected place name %q", result.PlaceName)
	}
	if result.Longitude != -46.6333 || result.Latitude != -23.5505 {
		t.Errorf("unexpected coordinates %v,%v", result.Longitude, result.Latitude)
	}
}

func TestGeocodeNoResults(t *testing.T) {
	client, server := testClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"features":[]}`))
	})
	defer server.Close()

	_, err := client.Geocode(context.Background(), "nowhere-at-all")
	if !errors.Is(err, ErrNoResults) {
		t.Errorf("expected ErrNoResults, got %v", err)
	}
}

func TestReverseGeocodeUnknownLocation(t *testing.T) {
	client, server := testClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"features":[]}`))
	})
	defer server.Close()

	place, err := client.ReverseGeocode(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("reverse geocode failed: %v", err)
	}
	if place != UnknownLocation {
		t.Errorf("expected %q, got %q", UnknownLocation, place)
	}
}

func TestReverseGeocode(t *testing.T) {
	client, server := testClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"features":[{"place_name":"Avenida Paulista, São Paulo","center":[-46.6554,-23.5630]}]}`))
	})
	defer server.Close()

	place, err := client.ReverseGeocode(context.Background(), -46.6554, -23.5630)
	if err != nil {
		t.Fatalf("reverse geocode failed: %v", err)
	}
	if place != "Avenida Paulista, São Paulo" {
		t.Errorf("unexpected place %q", place)
	}
}

func TestErrorStatus(t *testing.T) {
	client, server := testClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	defer server.Close()

	if _, err := client.Geocode(context.Background(), "anything"); err == nil {
		t.Error("expected an error for a non-200 response")
	}
}
