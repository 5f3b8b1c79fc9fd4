package services

import (
	"testing"
	"time"

	"github.com/rafaelcosta/filantropia-api/model"
)

func f64(v float64) *float64 { return &v }
func i(v int) *int           { return &v }

func activitiesFixture() []model.Activity {
	date := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	return []model.Activity{
		{Title: "a", Category: "education", Status: model.ActivityStatusActive, StartDate: date(2024, time.January, 5), Budget: f64(100), BeneficiariesCount: i(120)},
		{Title: "b", Category: "education", Status: model.ActivityStatusPlanning, StartDate: date(2024, time.January, 20), Budget: f64(200), BeneficiariesCount: i(180)},
		{Title: "c", Category: "", Status: model.ActivityStatusCompleted, StartDate: date(2024, time.February, 1), Budget: f64(50), BeneficiariesCount: i(50)},
	}
}

func TestAggregateMonthly(t *testing.T) {
	buckets := AggregateMonthly(activitiesFixture())

	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(buckets))
	}

	jan := buckets[0]
	if jan.Label != "Jan 2024" {
		t.Errorf("expected label Jan 2024, got %q", jan.Label)
	}
	if jan.Count != 2 || jan.Budget != 300 {
		t.Errorf("expected Jan {count:2, budget:300}, got {count:%d, budget:%v}", jan.Count, jan.Budget)
	}
	if jan.Beneficiaries != 300 {
		t.Errorf("expected Jan 300 beneficiaries, got %d", jan.Beneficiaries)
	}

	feb := buckets[1]
	if feb.Label != "Feb 2024" || feb.Count != 1 || feb.Budget != 50 {
		t.Errorf("expected Feb 2024 {count:1, budget:50}, got %q {count:%d, budget:%v}", feb.Label, feb.Count, feb.Budget)
	}
}

func TestAggregateMonthlyChronologicalAcrossYears(t *testing.T) {
	activities := []model.Activity{
		{StartDate: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)},
		{StartDate: time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC)},
		{StartDate: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)},
	}

	buckets := AggregateMonthly(activities)
	labels := []string{"Dec 2023", "Jan 2024", "Mar 2024"}
	for idx, want := range labels {
		if buckets[idx].Label != want {
			t.Errorf("bucket %d: expected %q, got %q", idx, want, buckets[idx].Label)
		}
	}
}

func TestAggregateMonthlyMissingFieldsAsZero(t *testing.T) {
	activities := []model.Activity{
		{StartDate: time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)},
	}

	buckets := AggregateMonthly(activities)
	if len(buckets) != 1 {
		t.Fatalf("expected 1 bucket, got %d", len(buckets))
	}
	if buckets[0].Budget != 0 || buckets[0].Beneficiaries != 0 {
		t.Errorf("missing budget and beneficiaries should aggregate as zero, got %+v", buckets[0])
	}
}

func TestAggregateByCategory(t *testing.T) {
	buckets := AggregateByCategory(activitiesFixture())

	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(buckets))
	}

	if buckets[0].Category != "education" || buckets[0].Count != 2 || buckets[0].Budget != 300 {
		t.Errorf("unexpected first bucket %+v", buckets[0])
	}
	if buckets[1].Category != "Other" || buckets[1].Count != 1 {
		t.Errorf("empty category should map to Other, got %+v", buckets[1])
	}
}

func TestAggregateByStatus(t *testing.T) {
	activities := append(activitiesFixture(), model.Activity{
		Status:    model.ActivityStatus("archived"),
		StartDate: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
	})

	buckets := AggregateByStatus(activities)

	total := 0
	labels := map[string]string{}
	for _, b := range buckets {
		total += b.Count
		labels[b.Status] = b.Label
	}
	if total != len(activities) {
		t.Errorf("bucket counts sum to %d, expected %d", total, len(activities))
	}
	if labels["active"] != "Active" || labels["planning"] != "Planning" || labels["completed"] != "Completed" {
		t.Errorf("unexpected status labels %v", labels)
	}
	if labels["archived"] != "archived" {
		t.Errorf("unknown status should pass through unmapped, got %q", labels["archived"])
	}
}

func TestBucketCountsSumToInput(t *testing.T) {
	activities := activitiesFixture()

	monthlyTotal := 0
	for _, b := range AggregateMonthly(activities) {
		monthlyTotal += b.Count
	}
	categoryTotal := 0
	for _, b := range AggregateByCategory(activities) {
		categoryTotal += b.Count
	}

	if monthlyTotal != len(activities) || categoryTotal != len(activities) {
		t.Errorf("monthly=%d category=%d, expected both %d", monthlyTotal, categoryTotal, len(activities))
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	if got := AggregateMonthly(nil); len(got) != 0 {
		t.Errorf("expected no monthly buckets, got %v", got)
	}
	if got := AggregateByCategory(nil); len(got) != 0 {
		t.Errorf("expected no category buckets, got %v", got)
	}
	if got := AggregateByStatus(nil); len(got) != 0 {
		t.Errorf("expected no status buckets, got %v", got)
	}

	summary := Summarize(nil, nil, nil)
	if summary != (Summary{}) {
		t.Errorf("expected zero summary, got %+v", summary)
	}
}

func TestSummarize(t *testing.T) {
	institutions := []model.Institution{{Name: "x"}, {Name: "y"}}
	activities := activitiesFixture()
	metrics := []model.Metric{
		{MetricType: model.MetricTypeBeneficiaries, Value: 300},
		{MetricType: model.MetricTypeBeneficiaries, Value: 50},
		{MetricType: "meals-served", Value: 1200},
	}

	summary := Summarize(institutions, activities, metrics)

	if summary.TotalInstitutions != 2 || summary.TotalActivities != 3 || summary.TotalMetrics != 3 {
		t.Errorf("unexpected counts %+v", summary)
	}
	if summary.TotalBudget != 350 {
		t.Errorf("expected total budget 350, got %v", summary.TotalBudget)
	}
	if summary.TotalBeneficiaries != 350 {
		t.Errorf("only beneficiaries metrics should count, expected 350, got %v", summary.TotalBeneficiaries)
	}
}
