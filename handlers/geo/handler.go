// Package geo exposes the map feature endpoint and the geocoding
// proxy.
package geo

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rafaelcosta/filantropia-api/services"
	"github.com/rafaelcosta/filantropia-api/services/mapbox"
	"github.com/rafaelcosta/filantropia-api/utils/response"
)

// GeoHandler serves the /map and /geo routes
type GeoHandler struct {
	data   *services.DataService
	mapbox *mapbox.Client
}

// NewGeoHandler creates a new geo handler. mapboxClient may be nil
// when no access token is configured; the map endpoint then serves a
// degraded payload and geocoding returns 503.
func NewGeoHandler(data *services.DataService, mapboxClient *mapbox.Client) *GeoHandler {
	return &GeoHandler{
		data:   data,
		mapbox: mapboxClient,
	}
}

// FeaturesResponse is the map endpoint payload
type FeaturesResponse struct {
	MapEnabled bool                  `json:"map_enabled"`
	Features   []services.MapFeature `json:"features"`
	Bounds     *services.Bounds      `json:"bounds,omitempty"`
}

// Features returns clustered map features for all institutions and
// activities with coordinates. Zoom comes from ?zoom= and defaults to
// city level.
func (h *GeoHandler) Features(c *fiber.Ctx) error {
	zoom := 10.0
	if raw := c.Query("zoom"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return response.BadRequest(c, "Invalid zoom value")
		}
		zoom = parsed
	}

	if h.mapbox == nil {
		return response.Success(c, FeaturesResponse{MapEnabled: false, Features: []services.MapFeature{}})
	}

	includeInstitutions, includeActivities := parseInclude(c.Query("include"))

	var features []services.MapFeature
	if includeInstitutions {
		institutions, err := h.data.ListInstitutions(c.Context())
		if err != nil {
			return response.InternalServerError(c, "Failed to load institutions")
		}
		features = append(features, services.TransformInstitutionsToFeatures(institutions)...)
	}
	if includeActivities {
		activities, err := h.data.ListActivities(c.Context(), c.Query("institution_id"))
		if err != nil {
			return response.InternalServerError(c, "Failed to load activities")
		}
		features = append(features, services.TransformActivitiesToFeatures(activities)...)
	}

	res := FeaturesResponse{
		MapEnabled: true,
		Features:   services.ClusterFeatures(features, zoom),
	}
	if bounds, ok := services.CalculateBounds(features); ok {
		res.Bounds = &bounds
	}

	return response.Success(c, res)
}

// parseInclude interprets the ?include= filter. An empty or unknown
// value keeps both layers on.
func parseInclude(raw string) (institutions, activities bool) {
	if raw == "" {
		return true, true
	}
	for _, part := range strings.Split(raw, ",") {
		switch strings.TrimSpace(part) {
		case "institutions":
			institutions = true
		case "activities":
			activities = true
		}
	}
	if !institutions && !activities {
		return true, true
	}
	return institutions, activities
}

// Geocode resolves a free-text address to coordinates
func (h *GeoHandler) Geocode(c *fiber.Ctx) error {
	if h.mapbox == nil {
		return response.ServiceUnavailable(c, "Geocoding is not configured")
	}

	query := c.Query("q")
	if query == "" {
		return response.BadRequest(c, "Query parameter q is required")
	}

	result, err := h.mapbox.Geocode(c.Context(), query)
	if err != nil {
		if errors.Is(err, mapbox.ErrNoResults) {
			return response.NotFound(c, "No results for the given query")
		}
		return response.InternalServerError(c, "Geocoding request failed")
	}

	return response.Success(c, result)
}

// ReverseGeocode resolves coordinates to a place name
func (h *GeoHandler) ReverseGeocode(c *fiber.Ctx) error {
	if h.mapbox == nil {
		return response.ServiceUnavailable(c, "Geocoding is not configured")
	}

	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	if errLng != nil || errLat != nil {
		return response.BadRequest(c, "Query parameters lng and lat are required")
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return response.BadRequest(c, "Coordinates out of range")
	}

	placeName, err := h.mapbox.ReverseGeocode(c.Context(), lng, lat)
	if err != nil {
		return response.InternalServerError(c, "Reverse geocoding request failed")
	}

	return response.Success(c, fiber.Map{"place_name": placeName})
}
