package services

import (
	"context"
	"time"

	"github.com/rafaelcosta/filantropia-api/model"
	"github.com/rafaelcosta/filantropia-api/utils/cache"
	"gorm.io/gorm"
)

const listCacheTTL = 2 * time.Minute

// Cache keys are coarse on purpose: only the unfiltered list of each
// entity is cached, and every mutation drops all of them at once.
const (
	cacheKeyDashboard    = "dashboard"
	cacheKeyInstitutions = "institutions"
	cacheKeyActivities   = "activities"
	cacheKeyMetrics      = "metrics"
)

// DataService is the read path for the dashboard entities. Unfiltered
// lists go through Redis when available; filtered queries always hit
// the database.
type DataService struct {
	db    *gorm.DB
	cache *cache.RedisCache
}

// NewDataService creates a data service. cache may be nil when Redis
// is not configured.
func NewDataService(db *gorm.DB, c *cache.RedisCache) *DataService {
	return &DataService{db: db, cache: c}
}

// ListInstitutions returns all institutions, newest first.
func (s *DataService) ListInstitutions(ctx context.Context) ([]model.Institution, error) {
	var institutions []model.Institution
	if s.cacheGet(ctx, cacheKeyInstitutions, &institutions) {
		return institutions, nil
	}

	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&institutions).
		Error
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, cacheKeyInstitutions, institutions)
	return institutions, nil
}

// ListActivities returns activities with their institution preloaded,
// optionally filtered by institution.
func (s *DataService) ListActivities(ctx context.Context, institutionID string) ([]model.Activity, error) {
	var activities []model.Activity
	if institutionID == "" && s.cacheGet(ctx, cacheKeyActivities, &activities) {
		return activities, nil
	}

	query := s.db.WithContext(ctx).
		Preload("Institution").
		Order("created_at DESC")
	if institutionID != "" {
		query = query.Where("institution_id = ?", institutionID)
	}

	if err := query.Find(&activities).Error; err != nil {
		return nil, err
	}

	if institutionID == "" {
		s.cacheSet(ctx, cacheKeyActivities, activities)
	}
	return activities, nil
}

// ListMetrics returns metrics, optionally filtered by activity and/or
// institution.
func (s *DataService) ListMetrics(ctx context.Context, activityID, institutionID string) ([]model.Metric, error) {
	var metrics []model.Metric
	unfiltered := activityID == "" && institutionID == ""
	if unfiltered && s.cacheGet(ctx, cacheKeyMetrics, &metrics) {
		return metrics, nil
	}

	query := s.db.WithContext(ctx).Order("measurement_date DESC")
	if activityID != "" {
		query = query.Where("activity_id = ?", activityID)
	}
	if institutionID != "" {
		query = query.Where("institution_id = ?", institutionID)
	}

	if err := query.Find(&metrics).Error; err != nil {
		return nil, err
	}

	if unfiltered {
		s.cacheSet(ctx, cacheKeyMetrics, metrics)
	}
	return metrics, nil
}

// InvalidateLists drops every cached list after a mutation.
func (s *DataService) InvalidateLists(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Delete(ctx, cacheKeyDashboard, cacheKeyInstitutions, cacheKeyActivities, cacheKeyMetrics)
}

func (s *DataService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	return s.cache.GetJSON(ctx, key, dest) == nil
}

func (s *DataService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	_ = s.cache.SetJSON(ctx, key, value, listCacheTTL)
}
