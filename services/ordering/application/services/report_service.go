package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/dineqr/dineqr/pkg/logger"
	"github.com/dineqr/dineqr/services/ordering/domain/models"
	"github.com/dineqr/dineqr/services/ordering/domain/repositories"
)

// SalesSnapshotCache stores DailySales results keyed by date.
// Get returns redis.Nil on a miss.
type SalesSnapshotCache interface {
	Get(ctx context.Context, key string) ([]models.DailySales, error)
	Set(ctx context.Context, key string, v []models.DailySales) error
}

// ReportService serves platform-wide statistics for the superadmin.
type ReportService struct {
	restaurants repositories.RestaurantRepository
	snapshots   SalesSnapshotCache
	log         logger.Logger
}

// NewReportService returns a ReportService. snapshots may be nil.
func NewReportService(restaurants repositories.RestaurantRepository, snapshots SalesSnapshotCache, log logger.Logger) *ReportService {
	return &ReportService{restaurants: restaurants, snapshots: snapshots, log: log}
}

// RestaurantStats returns order count and revenue for every restaurant.
func (s *ReportService) RestaurantStats(ctx context.Context) ([]models.RestaurantStats, error) {
	stats, err := s.restaurants.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("restaurant stats: %w", err)
	}
	return stats, nil
}

// DailySales returns the snapshot for date, building it on a miss.
func (s *ReportService) DailySales(ctx context.Context, date string) ([]models.DailySales, error) {
	if _, _, err := dayBounds(date); err != nil {
		return nil, err
	}
	if s.snapshots != nil {
		sales, err := s.snapshots.Get(ctx, date)
		if err == nil {
			return sales, nil
		}
		if !errors.Is(err, redis.Nil) {
			s.log.WarnContext(ctx, "sales snapshot read failed", "date", date, "error", err)
		}
	}
	return s.BuildDailySales(ctx, date)
}

// BuildDailySales recomputes the snapshot for date and stores it.
func (s *ReportService) BuildDailySales(ctx context.Context, date string) ([]models.DailySales, error) {
	from, to, err := dayBounds(date)
	if err != nil {
		return nil, err
	}
	sales, err := s.restaurants.DailySales(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("daily sales: %w", err)
	}
	if sales == nil {
		sales = []models.DailySales{}
	}
	if s.snapshots != nil {
		if err := s.snapshots.Set(ctx, date, sales); err != nil {
			s.log.WarnContext(ctx, "sales snapshot write failed", "date", date, "error", err)
		}
	}
	return sales, nil
}
