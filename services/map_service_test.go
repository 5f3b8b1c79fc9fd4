package services

import (
	"reflect"
	"testing"

	"github.com/rafaelcosta/filantropia-api/model"
)

func TestTransformActivitiesDropsMissingCoordinates(t *testing.T) {
	activities := []model.Activity{
		{ID: "a1", Title: "with coords", Latitude: f64(-23.55), Longitude: f64(-46.61), InstitutionID: "i1"},
		{ID: "a2", Title: "no latitude", Longitude: f64(-46.61)},
		{ID: "a3", Title: "no longitude", Latitude: f64(-23.55)},
		{ID: "a4", Title: "no coords"},
	}

	features := TransformActivitiesToFeatures(activities)

	if len(features) != 1 {
		t.Fatalf("expected 1 feature, got %d", len(features))
	}
	f := features[0]
	if f.ID != "a1" {
		t.Errorf("expected feature a1, got %s", f.ID)
	}
	// GeoJSON order: longitude first
	if f.Coordinates != [2]float64{-46.61, -23.55} {
		t.Errorf("unexpected coordinates %v", f.Coordinates)
	}
	if f.Properties.ActivityID != "a1" || f.Properties.InstitutionID != "i1" {
		t.Errorf("unexpected properties %+v", f.Properties)
	}
}

func TestTransformInstitutionsSetsCategory(t *testing.T) {
	institutions := []model.Institution{
		{ID: "i1", Name: "Instituto", Category: "education", Latitude: f64(-23.55), Longitude: f64(-46.63)},
	}

	features := TransformInstitutionsToFeatures(institutions)
	if len(features) != 1 {
		t.Fatalf("expected 1 feature, got %d", len(features))
	}
	if features[0].Properties.Category != "institution" {
		t.Errorf("institution features must carry category institution, got %q", features[0].Properties.Category)
	}
}

func TestCalculateBoundsEmpty(t *testing.T) {
	if _, ok := CalculateBounds(nil); ok {
		t.Error("expected no bounds for empty input")
	}
}

func TestCalculateBoundsMinimal(t *testing.T) {
	features := []MapFeature{
		{Coordinates: [2]float64{-46.61, -23.55}},
		{Coordinates: [2]float64{-46.70, -23.40}},
		{Coordinates: [2]float64{-46.50, -23.60}},
	}

	b, ok := CalculateBounds(features)
	if !ok {
		t.Fatal("expected bounds")
	}

	want := Bounds{MinLng: -46.70, MinLat: -23.60, MaxLng: -46.50, MaxLat: -23.40}
	if b != want {
		t.Errorf("expected %+v, got %+v", want, b)
	}

	for _, f := range features {
		if f.Coordinates[0] < b.MinLng || f.Coordinates[0] > b.MaxLng ||
			f.Coordinates[1] < b.MinLat || f.Coordinates[1] > b.MaxLat {
			t.Errorf("feature %v outside bounds %+v", f.Coordinates, b)
		}
	}
}

func TestClusterFeaturesHighZoomPassthrough(t *testing.T) {
	features := []MapFeature{
		{ID: "a", Coordinates: [2]float64{-46.61, -23.55}},
		{ID: "b", Coordinates: [2]float64{-46.6095, -23.5505}},
	}

	out := ClusterFeatures(features, 13)
	if !reflect.DeepEqual(out, features) {
		t.Errorf("zoom above threshold must return input unchanged, got %v", out)
	}
}

func TestClusterFeaturesSameCell(t *testing.T) {
	budget100 := 100.0
	budget200 := 200.0
	features := []MapFeature{
		{ID: "a", Coordinates: [2]float64{-46.61, -23.55}, Properties: FeatureProperties{BeneficiariesCount: 120, Budget: &budget100}},
		{ID: "b", Coordinates: [2]float64{-46.6095, -23.5505}, Properties: FeatureProperties{BeneficiariesCount: 180, Budget: &budget200}},
	}

	out := ClusterFeatures(features, 5)
	if len(out) != 1 {
		t.Fatalf("expected 1 cluster, got %d features", len(out))
	}

	cluster := out[0]
	if cluster.Properties.Category != "cluster" {
		t.Errorf("expected category cluster, got %q", cluster.Properties.Category)
	}
	if cluster.Properties.Title != "2 atividades" {
		t.Errorf("expected title \"2 atividades\", got %q", cluster.Properties.Title)
	}
	if cluster.Properties.Description != "300 beneficiários" {
		t.Errorf("expected description \"300 beneficiários\", got %q", cluster.Properties.Description)
	}
	if cluster.Properties.BeneficiariesCount != 300 {
		t.Errorf("expected 300 beneficiaries, got %d", cluster.Properties.BeneficiariesCount)
	}
	if cluster.Properties.Budget == nil || *cluster.Properties.Budget != 300 {
		t.Errorf("expected summed budget 300, got %v", cluster.Properties.Budget)
	}

	// Cluster sits at the cell's anchor point.
	if cluster.Coordinates != [2]float64{-46.61, -23.55} {
		t.Errorf("unexpected cluster position %v", cluster.Coordinates)
	}
}

func TestClusterFeaturesSingletonPassthrough(t *testing.T) {
	features := []MapFeature{
		{ID: "a", Coordinates: [2]float64{-46.61, -23.55}},
		{ID: "b", Coordinates: [2]float64{-40.00, -20.00}},
	}

	out := ClusterFeatures(features, 5)
	if len(out) != 2 {
		t.Fatalf("expected 2 features, got %d", len(out))
	}
	if out[0].ID != "a" || out[1].ID != "b" {
		t.Errorf("singleton cells must pass features through in order, got %v %v", out[0].ID, out[1].ID)
	}
}

func TestClusterFeaturesIdempotent(t *testing.T) {
	features := []MapFeature{
		{ID: "a", Coordinates: [2]float64{-46.61, -23.55}, Properties: FeatureProperties{BeneficiariesCount: 10}},
		{ID: "b", Coordinates: [2]float64{-46.6095, -23.5505}, Properties: FeatureProperties{BeneficiariesCount: 20}},
		{ID: "c", Coordinates: [2]float64{-40.00, -20.00}},
	}

	first := ClusterFeatures(features, 5)
	second := ClusterFeatures(features, 5)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated calls with identical input must match:\n%v\n%v", first, second)
	}
}

func TestClusterFeaturesIdenticalCoordinatesCoCluster(t *testing.T) {
	features := []MapFeature{
		{ID: "a", Coordinates: [2]float64{-46.61, -23.55}},
		{ID: "b", Coordinates: [2]float64{-46.61, -23.55}},
	}

	out := ClusterFeatures(features, 5)
	if len(out) != 1 || out[0].Properties.Category != "cluster" {
		t.Errorf("identical coordinates must co-cluster, got %v", out)
	}
}
