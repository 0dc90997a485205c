package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dineqr/dineqr/pkg/logger"
	"github.com/dineqr/dineqr/services/ordering/domain/models"
	"github.com/dineqr/dineqr/services/ordering/domain/repositories"
)

// DefaultFeedLimit caps the kitchen feed when the caller gives no limit.
const DefaultFeedLimit = 50

// KitchenFeedCache holds the default-sized New feed per restaurant.
// Get returns redis.Nil on a miss.
type KitchenFeedCache interface {
	Get(ctx context.Context, key string) ([]models.KitchenAddition, error)
	Set(ctx context.Context, key string, v []models.KitchenAddition) error
	Delete(ctx context.Context, key string) error
}

// KitchenService serves the kitchen addition feed. Kitchen displays poll it,
// so the default-sized feed is cached briefly and dropped whenever an
// addition is created or acknowledged.
type KitchenService struct {
	repo  repositories.AdditionRepository
	cache KitchenFeedCache
	limit int
	log   logger.Logger
}

// NewKitchenService returns a KitchenService. cache may be nil; limit <= 0
// means DefaultFeedLimit.
func NewKitchenService(repo repositories.AdditionRepository, cache KitchenFeedCache, limit int, log logger.Logger) *KitchenService {
	if limit <= 0 {
		limit = DefaultFeedLimit
	}
	return &KitchenService{repo: repo, cache: cache, limit: limit, log: log}
}

// ListNew returns New additions oldest first, at most limit of them.
func (s *KitchenService) ListNew(ctx context.Context, restaurantID uuid.UUID, limit int) ([]models.KitchenAddition, error) {
	ctx, span := tracer.Start(ctx, "ordering.ListNewAdditions", trace.WithAttributes(
		attribute.String("restaurant_id", restaurantID.String()),
	))
	defer span.End()

	if limit <= 0 || limit > s.limit {
		limit = s.limit
	}
	cacheable := s.cache != nil && limit == s.limit
	key := restaurantID.String()

	if cacheable {
		adds, err := s.cache.Get(ctx, key)
		if err == nil {
			return adds, nil
		}
		if !errors.Is(err, redis.Nil) {
			s.log.WarnContext(ctx, "kitchen feed cache read failed", "restaurant_id", restaurantID, "error", err)
		}
	}

	adds, err := s.repo.ListNew(ctx, restaurantID, limit)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list new additions: %w", err)
	}
	if adds == nil {
		adds = []models.KitchenAddition{}
	}

	// A merge that invalidates between the read above and this Set is
	// hidden until the entry expires, so staleness is bounded by the TTL.
	if cacheable {
		if err := s.cache.Set(ctx, key, adds); err != nil {
			s.log.WarnContext(ctx, "kitchen feed cache write failed", "restaurant_id", restaurantID, "error", err)
		}
	}
	return adds, nil
}

// Acknowledge marks an addition as being prepared. Acknowledging twice is
// harmless; ids from other restaurants are reported as not found.
func (s *KitchenService) Acknowledge(ctx context.Context, restaurantID, additionID uuid.UUID) error {
	ctx, span := tracer.Start(ctx, "ordering.AcknowledgeAddition", trace.WithAttributes(
		attribute.String("addition_id", additionID.String()),
	))
	defer span.End()

	if err := s.repo.Acknowledge(ctx, restaurantID, additionID); err != nil {
		span.RecordError(err)
		return fmt.Errorf("acknowledge addition: %w", err)
	}
	s.invalidate(ctx, restaurantID)
	return nil
}

func (s *KitchenService) invalidate(ctx context.Context, restaurantID uuid.UUID) {
	if s == nil || s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, restaurantID.String()); err != nil {
		s.log.WarnContext(ctx, "kitchen feed cache invalidation failed", "restaurant_id", restaurantID, "error", err)
	}
}
