package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dineqr/dineqr/pkg/logger"
	"github.com/dineqr/dineqr/services/ordering/domain/models"
	"github.com/dineqr/dineqr/services/ordering/domain/repositories"
)

// ProfileService reads and edits the restaurant details printed on bills.
type ProfileService struct {
	restaurants repositories.RestaurantRepository
	log         logger.Logger
}

// NewProfileService returns a ProfileService.
func NewProfileService(restaurants repositories.RestaurantRepository, log logger.Logger) *ProfileService {
	return &ProfileService{restaurants: restaurants, log: log}
}

// Get returns the caller's restaurant.
func (s *ProfileService) Get(ctx context.Context, restaurantID uuid.UUID) (*models.Restaurant, error) {
	r, err := s.restaurants.GetByID(ctx, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return r, nil
}

// Update normalizes and validates p, then stores it. The new values appear on
// every bill computed afterwards, including bills of orders already open.
func (s *ProfileService) Update(ctx context.Context, restaurantID uuid.UUID, p models.RestaurantProfile) (*models.Restaurant, error) {
	p = p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	r, err := s.restaurants.UpdateProfile(ctx, restaurantID, p)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	s.log.InfoContext(ctx, "restaurant profile updated", "restaurant_id", restaurantID)
	return r, nil
}
