package services

import (
	"context"
	"sort"
	"time"

	"github.com/rafaelcosta/filantropia-api/model"
	"github.com/rafaelcosta/filantropia-api/utils/cache"
)

// MonthlyBucket aggregates activities started in one calendar month.
type MonthlyBucket struct {
	Label         string  `json:"label"` // e.g. "Jan 2024"
	Year          int     `json:"year"`
	Month         int     `json:"month"`
	Count         int     `json:"count"`
	Budget        float64 `json:"budget"`
	Beneficiaries int     `json:"beneficiaries"`
}

// CategoryBucket aggregates activities sharing a category.
type CategoryBucket struct {
	Category string  `json:"category"`
	Count    int     `json:"count"`
	Budget   float64 `json:"budget"`
}

// StatusBucket aggregates activities sharing a status.
type StatusBucket struct {
	Status string `json:"status"`
	Label  string `json:"label"`
	Count  int    `json:"count"`
}

// Summary carries the dashboard headline figures.
type Summary struct {
	TotalInstitutions  int     `json:"total_institutions"`
	TotalActivities    int     `json:"total_activities"`
	TotalMetrics       int     `json:"total_metrics"`
	TotalBeneficiaries float64 `json:"total_beneficiaries"`
	TotalBudget        float64 `json:"total_budget"`
}

// Dashboard is the full chart-ready payload.
type Dashboard struct {
	Summary    Summary          `json:"summary"`
	Monthly    []MonthlyBucket  `json:"monthly"`
	ByCategory []CategoryBucket `json:"by_category"`
	ByStatus   []StatusBucket   `json:"by_status"`
}

var statusLabels = map[model.ActivityStatus]string{
	model.ActivityStatusPlanning:  "Planning",
	model.ActivityStatusActive:    "Active",
	model.ActivityStatusCompleted: "Completed",
	model.ActivityStatusCancelled: "Cancelled",
}

// AggregateMonthly groups activities by the calendar month of their
// start date. Buckets come back chronologically sorted.
func AggregateMonthly(activities []model.Activity) []MonthlyBucket {
	byKey := make(map[int]*MonthlyBucket)
	for _, a := range activities {
		key := a.StartDate.Year()*100 + int(a.StartDate.Month())
		b, ok := byKey[key]
		if !ok {
			b = &MonthlyBucket{
				Label: a.StartDate.Format("Jan 2006"),
				Year:  a.StartDate.Year(),
				Month: int(a.StartDate.Month()),
			}
			byKey[key] = b
		}
		b.Count++
		if a.Budget != nil {
			b.Budget += *a.Budget
		}
		if a.BeneficiariesCount != nil {
			b.Beneficiaries += *a.BeneficiariesCount
		}
	}

	buckets := make([]MonthlyBucket, 0, len(byKey))
	for _, b := range byKey {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Year != buckets[j].Year {
			return buckets[i].Year < buckets[j].Year
		}
		return buckets[i].Month < buckets[j].Month
	})
	return buckets
}

// AggregateByCategory groups activities by category. An empty category
// falls into "Other". Output is sorted by descending count, ties by
// category name so results are stable.
func AggregateByCategory(activities []model.Activity) []CategoryBucket {
	byCategory := make(map[string]*CategoryBucket)
	order := []string{}
	for _, a := range activities {
		category := a.Category
		if category == "" {
			category = "Other"
		}
		b, ok := byCategory[category]
		if !ok {
			b = &CategoryBucket{Category: category}
			byCategory[category] = b
			order = append(order, category)
		}
		b.Count++
		if a.Budget != nil {
			b.Budget += *a.Budget
		}
	}

	buckets := make([]CategoryBucket, 0, len(order))
	for _, category := range order {
		buckets = append(buckets, *byCategory[category])
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		if buckets[i].Count != buckets[j].Count {
			return buckets[i].Count > buckets[j].Count
		}
		return buckets[i].Category < buckets[j].Category
	})
	return buckets
}

// AggregateByStatus groups activities by status with display labels.
// Unknown statuses pass through with the raw value as label.
func AggregateByStatus(activities []model.Activity) []StatusBucket {
	byStatus := make(map[model.ActivityStatus]*StatusBucket)
	order := []model.ActivityStatus{}
	for _, a := range activities {
		b, ok := byStatus[a.Status]
		if !ok {
			label, known := statusLabels[a.Status]
			if !known {
				label = string(a.Status)
			}
			b = &StatusBucket{Status: string(a.Status), Label: label}
			byStatus[a.Status] = b
			order = append(order, a.Status)
		}
		b.Count++
	}

	buckets := make([]StatusBucket, 0, len(order))
	for _, status := range order {
		buckets = append(buckets, *byStatus[status])
	}
	return buckets
}

// Summarize computes the headline totals. Beneficiaries come from the
// metric rows typed "beneficiaries"; budget comes from activities.
func Summarize(institutions []model.Institution, activities []model.Activity, metrics []model.Metric) Summary {
	summary := Summary{
		TotalInstitutions: len(institutions),
		TotalActivities:   len(activities),
		TotalMetrics:      len(metrics),
	}
	for _, a := range activities {
		if a.Budget != nil {
			summary.TotalBudget += *a.Budget
		}
	}
	for _, m := range metrics {
		if m.MetricType == model.MetricTypeBeneficiaries {
			summary.TotalBeneficiaries += m.Value
		}
	}
	return summary
}

// DashboardService assembles the dashboard payload from the data
// service, with a short-lived Redis cache in front of the unfiltered
// variant.
type DashboardService struct {
	data  *DataService
	cache *cache.RedisCache
}

const dashboardCacheTTL = 2 * time.Minute

// NewDashboardService creates a dashboard service. cache may be nil.
func NewDashboardService(data *DataService, c *cache.RedisCache) *DashboardService {
	return &DashboardService{data: data, cache: c}
}

// Build returns the dashboard, optionally scoped to one institution.
// Only the unscoped variant is cached.
func (s *DashboardService) Build(ctx context.Context, institutionID string) (*Dashboard, error) {
	unfiltered := institutionID == ""
	if unfiltered && s.cache != nil {
		var cached Dashboard
		if err := s.cache.GetJSON(ctx, cacheKeyDashboard, &cached); err == nil {
			return &cached, nil
		}
	}

	institutions, err := s.data.ListInstitutions(ctx)
	if err != nil {
		return nil, err
	}
	activities, err := s.data.ListActivities(ctx, institutionID)
	if err != nil {
		return nil, err
	}
	metrics, err := s.data.ListMetrics(ctx, "", institutionID)
	if err != nil {
		return nil, err
	}

	dashboard := &Dashboard{
		Summary:    Summarize(institutions, activities, metrics),
		Monthly:    AggregateMonthly(activities),
		ByCategory: AggregateByCategory(activities),
		ByStatus:   AggregateByStatus(activities),
	}

	if unfiltered && s.cache != nil {
		_ = s.cache.SetJSON(ctx, cacheKeyDashboard, dashboard, dashboardCacheTTL)
	}
	return dashboard, nil
}
