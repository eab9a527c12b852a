package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/woolies-greener/backend/internal/domain"
	"github.com/woolies-greener/backend/internal/logger"
	"go.uber.org/zap"
)

// DefaultBaskets are created on an empty database
var DefaultBaskets = []domain.Basket{
	{Name: "value", Description: "Everyday staples at the lowest price"},
	{Name: "quality", Description: "Mid-range picks from trusted brands"},
	{Name: "luxury", Description: "Premium treats and specialty items"},
}

// BasketService is the admin view over baskets
type BasketService struct {
	baskets domain.BasketRepository
	cache   domain.CacheRepository
	newID   func(prefix string) string
}

// NewBasketService creates a new basket admin service
func NewBasketService(baskets domain.BasketRepository, cache domain.CacheRepository) *BasketService {
	return &BasketService{
		baskets: baskets,
		cache:   cache,
		newID:   newID,
	}
}

// List returns baskets in display order
func (s *BasketService) List(ctx context.Context) ([]domain.Basket, error) {
	baskets, err := s.baskets.List(ctx)
	if err != nil {
		return nil, err
	}
	if baskets == nil {
		baskets = []domain.Basket{}
	}
	sortBaskets(baskets)
	return baskets, nil
}

// Create adds a basket. Names are unique since matching resolves baskets by name.
func (s *BasketService) Create(ctx context.Context, name, description string) (*domain.Basket, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if name == "" || description == "" {
		return nil, fmt.Errorf("%w: name and description are required", domain.ErrInvalidRequest)
	}

	existing, err := s.baskets.FindByName(ctx, name)
	if err == nil && existing != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrBasketExists, name)
	}
	if err != nil && !errors.Is(err, domain.ErrBasketNotFound) {
		return nil, err
	}

	basket := &domain.Basket{
		ID:          s.newID(basketIDPrefix),
		Name:        name,
		Description: description,
	}
	if err := s.baskets.Create(ctx, basket); err != nil {
		return nil, err
	}

	invalidateComparisons(ctx, s.cache)
	logger.Info(ctx, "Created basket", zap.String("basket_id", basket.ID), zap.String("name", name))
	return basket, nil
}

// Delete removes a basket together with its product links. Products stay.
func (s *BasketService) Delete(ctx context.Context, id string) error {
	if err := s.baskets.Delete(ctx, id); err != nil {
		return err
	}
	invalidateComparisons(ctx, s.cache)
	logger.Info(ctx, "Deleted basket", zap.String("basket_id", id))
	return nil
}

// SeedDefaults creates DefaultBaskets when no basket exists yet.
// It returns the number of baskets created.
func (s *BasketService) SeedDefaults(ctx context.Context) (int, error) {
	existing, err := s.baskets.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	for i, b := range DefaultBaskets {
		basket := b
		basket.ID = s.newID(basketIDPrefix)
		if err := s.baskets.Create(ctx, &basket); err != nil {
			return i, fmt.Errorf("seed basket %q: %w", basket.Name, err)
		}
	}
	logger.Info(ctx, "Seeded default baskets", zap.Int("count", len(DefaultBaskets)))
	return len(DefaultBaskets), nil
}
