package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hiraya-scholars/hiraya-api/internal/models"
	appErrors "github.com/hiraya-scholars/hiraya-api/pkg/errors"
)

const (
	dashboardCacheKeyShared = "dashboard:stats:shared"
	dashboardCacheKeyAdmin  = "dashboard:stats:admin"
	dashboardCachePattern   = "dashboard:stats:*"
)

type dashboardRepository interface {
	DashboardStats(ctx context.Context) (*models.DashboardStats, error)
	AdminDashboardExtras(ctx context.Context, stats *models.DashboardStats) error
}

// DashboardService composes the staff dashboard counters. Results are
// cached briefly because every staff page load hits this.
type DashboardService struct {
	repo   dashboardRepository
	cache  *CacheService
	logger *zap.Logger
	ttl    time.Duration
}

// NewDashboardService constructs a DashboardService instance.
func NewDashboardService(repo dashboardRepository, cache *CacheService, logger *zap.Logger, ttl time.Duration) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &DashboardService{repo: repo, cache: cache, logger: logger, ttl: ttl}
}

// Stats returns the dashboard counters scoped to the actor's permission
// set. Administrators get the full applicant and draft totals; reviewers
// only see the review pipeline.
func (s *DashboardService) Stats(ctx context.Context, actor models.PermissionSet) (*models.DashboardStats, error) {
	if !actor.CanReviewApplications {
		return nil, appErrors.Clone(appErrors.ErrPermissionDenied, "not allowed to view the dashboard")
	}

	key := dashboardCacheKeyShared
	if actor.CanManageUsers {
		key = dashboardCacheKeyAdmin
	}

	var cached models.DashboardStats
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	stats, err := s.repo.DashboardStats(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to compute dashboard stats")
	}
	if actor.CanManageUsers {
		if err := s.repo.AdminDashboardExtras(ctx, stats); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to compute admin dashboard stats")
		}
	}

	if err := s.cache.Set(ctx, key, stats, s.ttl); err != nil {
		s.logger.Warn("failed to cache dashboard stats", zap.Error(err))
	}
	return stats, nil
}

// Invalidate drops cached dashboard counters after a mutating operation.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, dashboardCachePattern); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}
