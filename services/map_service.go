package services

import (
	"fmt"
	"math"
	"strconv"

	"github.com/rafaelcosta/filantropia-api/model"
)

// gridCellSize is the clustering cell size in degrees. It is fixed
// regardless of zoom; clustering simply switches off above maxClusterZoom.
const (
	gridCellSize   = 0.01
	maxClusterZoom = 12
)

// FeatureProperties carries the display attributes of a map point.
type FeatureProperties struct {
	Title              string   `json:"title"`
	Description        string   `json:"description,omitempty"`
	Category           string   `json:"category,omitempty"`
	InstitutionID      string   `json:"institution_id,omitempty"`
	ActivityID         string   `json:"activity_id,omitempty"`
	BeneficiariesCount int      `json:"beneficiaries_count,omitempty"`
	Budget             *float64 `json:"budget,omitempty"`
}

// MapFeature is a derived point for map rendering. Coordinates are
// (longitude, latitude), GeoJSON order.
type MapFeature struct {
	ID          string            `json:"id"`
	Coordinates [2]float64        `json:"coordinates"`
	Properties  FeatureProperties `json:"properties"`
}

// Bounds is an axis-aligned bounding box over feature coordinates.
type Bounds struct {
	MinLng float64 `json:"min_lng"`
	MinLat float64 `json:"min_lat"`
	MaxLng float64 `json:"max_lng"`
	MaxLat float64 `json:"max_lat"`
}

// TransformActivitiesToFeatures maps activities with both coordinates
// present to features; the rest are dropped.
func TransformActivitiesToFeatures(activities []model.Activity) []MapFeature {
	features := make([]MapFeature, 0, len(activities))
	for _, a := range activities {
		if a.Latitude == nil || a.Longitude == nil {
			continue
		}
		var beneficiaries int
		if a.BeneficiariesCount != nil {
			beneficiaries = *a.BeneficiariesCount
		}
		features = append(features, MapFeature{
			ID:          a.ID,
			Coordinates: [2]float64{*a.Longitude, *a.Latitude},
			Properties: FeatureProperties{
				Title:              a.Title,
				Description:        a.Description,
				Category:           a.Category,
				InstitutionID:      a.InstitutionID,
				ActivityID:         a.ID,
				BeneficiariesCount: beneficiaries,
				Budget:             a.Budget,
			},
		})
	}
	return features
}

// TransformInstitutionsToFeatures maps institutions with both
// coordinates present to features with category "institution".
func TransformInstitutionsToFeatures(institutions []model.Institution) []MapFeature {
	features := make([]MapFeature, 0, len(institutions))
	for _, inst := range institutions {
		if inst.Latitude == nil || inst.Longitude == nil {
			continue
		}
		features = append(features, MapFeature{
			ID:          inst.ID,
			Coordinates: [2]float64{*inst.Longitude, *inst.Latitude},
			Properties: FeatureProperties{
				Title:         inst.Name,
				Description:   inst.Description,
				Category:      "institution",
				InstitutionID: inst.ID,
			},
		})
	}
	return features
}

// CalculateBounds returns the minimal bounding box over all feature
// coordinates. The second return is false for an empty list.
func CalculateBounds(features []MapFeature) (Bounds, bool) {
	if len(features) == 0 {
		return Bounds{}, false
	}

	b := Bounds{
		MinLng: features[0].Coordinates[0],
		MinLat: features[0].Coordinates[1],
		MaxLng: features[0].Coordinates[0],
		MaxLat: features[0].Coordinates[1],
	}
	for _, f := range features[1:] {
		b.MinLng = math.Min(b.MinLng, f.Coordinates[0])
		b.MinLat = math.Min(b.MinLat, f.Coordinates[1])
		b.MaxLng = math.Max(b.MaxLng, f.Coordinates[0])
		b.MaxLat = math.Max(b.MaxLat, f.Coordinates[1])
	}
	return b, true
}

// ClusterFeatures buckets features into fixed 0.01 degree grid cells
// keyed by the rounded cell index, so points within half a cell of a
// grid line share the cell. Above maxClusterZoom it returns a copy of
// the input unchanged. A cell with a single member passes through; a
// cell with several collapses into one cluster feature at the cell's
// anchor point. Output follows first-encounter cell order, so
// identical input yields identical output.
func ClusterFeatures(features []MapFeature, zoom float64) []MapFeature {
	if zoom > maxClusterZoom {
		out := make([]MapFeature, len(features))
		copy(out, features)
		return out
	}

	type cell struct {
		lng, lat float64
		members  []MapFeature
	}
	cells := make(map[string]*cell)
	order := []string{}

	for _, f := range features {
		gridLng := math.Round(f.Coordinates[0]/gridCellSize) * gridCellSize
		gridLat := math.Round(f.Coordinates[1]/gridCellSize) * gridCellSize
		key := strconv.FormatFloat(gridLng, 'f', -1, 64) + "," + strconv.FormatFloat(gridLat, 'f', -1, 64)

		c, ok := cells[key]
		if !ok {
			c = &cell{lng: gridLng, lat: gridLat}
			cells[key] = c
			order = append(order, key)
		}
		c.members = append(c.members, f)
	}

	out := make([]MapFeature, 0, len(order))
	for _, key := range order {
		c := cells[key]
		if len(c.members) == 1 {
			out = append(out, c.members[0])
			continue
		}

		var beneficiaries int
		var budget float64
		hasBudget := false
		for _, m := range c.members {
			beneficiaries += m.Properties.BeneficiariesCount
			if m.Properties.Budget != nil {
				budget += *m.Properties.Budget
				hasBudget = true
			}
		}

		cluster := MapFeature{
			ID:          "cluster-" + key,
			Coordinates: [2]float64{c.lng, c.lat},
			Properties: FeatureProperties{
				Title:              fmt.Sprintf("%d atividades", len(c.members)),
				Description:        fmt.Sprintf("%d beneficiários", beneficiaries),
				Category:           "cluster",
				BeneficiariesCount: beneficiaries,
			},
		}
		if hasBudget {
			cluster.Properties.Budget = &budget
		}
		out = append(out, cluster)
	}
	return out
}
