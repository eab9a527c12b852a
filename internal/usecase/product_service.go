package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/woolies-greener/backend/internal/domain"
	"github.com/woolies-greener/backend/internal/logger"
	"go.uber.org/zap"
)

// ProductService is the admin view over matched products
type ProductService struct {
	products domain.ProductRepository
	baskets  domain.BasketRepository
	cache    domain.CacheRepository

	newID func(prefix string) string
	now   func() time.Time
}

// NewProductService creates a new product admin service
func NewProductService(
	products domain.ProductRepository,
	baskets domain.BasketRepository,
	cache domain.CacheRepository,
) *ProductService {
	return &ProductService{
		products: products,
		baskets:  baskets,
		cache:    cache,
		newID:    newID,
		now:      time.Now,
	}
}

func (s *ProductService) List(ctx context.Context) ([]domain.MatchedProduct, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []domain.MatchedProduct{}
	}
	return products, nil
}

// Get returns a product with the IDs of the baskets it belongs to
func (s *ProductService) Get(ctx context.Context, id string) (*domain.ProductDetail, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	basketIDs, err := s.products.BasketIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	if basketIDs == nil {
		basketIDs = []string{}
	}
	return &domain.ProductDetail{Product: *product, BasketIDs: basketIDs}, nil
}

// Create stores a hand-entered product and links it to the given baskets
func (s *ProductService) Create(ctx context.Context, input domain.ProductInput) (*domain.ProductDetail, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	basketIDs := dedupe(input.BasketIDs)
	if err := s.checkBaskets(ctx, basketIDs); err != nil {
		return nil, err
	}

	product := domain.MatchedProduct{ID: s.newID(productIDPrefix)}
	applyProductInput(&product, input)
	product.Updated = s.now()

	if err := s.products.Create(ctx, &product); err != nil {
		return nil, err
	}
	defer invalidateComparisons(ctx, s.cache)

	if err := s.link(ctx, product.ID, basketIDs); err != nil {
		return nil, err
	}

	logger.Info(ctx, "Created product", zap.String("product_id", product.ID), zap.String("title", product.Title))
	return &domain.ProductDetail{Product: product, BasketIDs: basketIDs}, nil
}

// Update overwrites a product's fields and refreshes its timestamp. When
// input.BasketIDs is non-nil it becomes the product's complete basket set.
func (s *ProductService) Update(ctx context.Context, id string, input domain.ProductInput) (*domain.ProductDetail, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.BasketIDs != nil {
		if err := s.checkBaskets(ctx, dedupe(input.BasketIDs)); err != nil {
			return nil, err
		}
	}
	applyProductInput(product, input)
	product.Updated = s.now()

	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}
	defer invalidateComparisons(ctx, s.cache)

	if input.BasketIDs != nil {
		if _, _, err := s.UpdateBaskets(ctx, id, input.BasketIDs); err != nil {
			return nil, err
		}
	}

	return s.Get(ctx, id)
}

// Delete removes a product together with its basket links
func (s *ProductService) Delete(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	invalidateComparisons(ctx, s.cache)
	logger.Info(ctx, "Deleted product", zap.String("product_id", id))
	return nil
}

// UpdateBaskets makes basketIDs the product's basket set by difference:
// newly listed baskets are linked, missing ones unlinked, the rest untouched.
// It returns the IDs linked and unlinked.
func (s *ProductService) UpdateBaskets(ctx context.Context, productID string, basketIDs []string) (added, removed []string, err error) {
	current, err := s.products.BasketIDs(ctx, productID)
	if err != nil {
		return nil, nil, err
	}

	desired := dedupe(basketIDs)
	added = difference(desired, current)
	removed = difference(current, desired)

	if err := s.checkBaskets(ctx, added); err != nil {
		return nil, nil, err
	}
	if err := s.link(ctx, productID, added); err != nil {
		return nil, nil, err
	}
	if err := s.products.UnlinkBaskets(ctx, productID, removed); err != nil {
		return nil, nil, err
	}

	if len(added) > 0 || len(removed) > 0 {
		invalidateComparisons(ctx, s.cache)
	}
	return added, removed, nil
}

// checkBaskets fails on the first ID naming no basket
func (s *ProductService) checkBaskets(ctx context.Context, basketIDs []string) error {
	for _, basketID := range basketIDs {
		if _, err := s.baskets.FindByID(ctx, basketID); err != nil {
			return fmt.Errorf("basket %q: %w", basketID, err)
		}
	}
	return nil
}

func (s *ProductService) link(ctx context.Context, productID string, basketIDs []string) error {
	for _, basketID := range basketIDs {
		link := domain.BasketProduct{
			ID:        s.newID(basketProductIDPrefix),
			BasketID:  basketID,
			ProductID: productID,
		}
		if err := s.products.LinkBasket(ctx, &link); err != nil {
			return err
		}
	}
	return nil
}

func validateProductInput(input domain.ProductInput) error {
	var missing []string
	if strings.TrimSpace(input.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(input.NZSku) == "" {
		missing = append(missing, "nzSku")
	}
	if strings.TrimSpace(input.AUStockcode) == "" {
		missing = append(missing, "auStockcode")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", domain.ErrInvalidRequest, strings.Join(missing, ", "))
	}
	if input.NZPrice < 0 || input.NZPriceOriginal < 0 || input.AUPrice < 0 || input.AUPriceOriginal < 0 {
		return fmt.Errorf("%w: prices must not be negative", domain.ErrInvalidRequest)
	}
	return nil
}

func applyProductInput(p *domain.MatchedProduct, input domain.ProductInput) {
	p.Title = strings.TrimSpace(input.Title)
	p.NZPrice = input.NZPrice
	p.NZPriceOriginal = input.NZPriceOriginal
	p.AUPrice = input.AUPrice
	p.AUPriceOriginal = input.AUPriceOriginal
	p.NZSku = strings.TrimSpace(input.NZSku)
	p.AUStockcode = strings.TrimSpace(input.AUStockcode)
	p.ImageURL = nil
	if input.ImageURL != nil && strings.TrimSpace(*input.ImageURL) != "" {
		img := strings.TrimSpace(*input.ImageURL)
		p.ImageURL = &img
	}
}

// dedupe keeps the first occurrence of each non-empty ID
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// difference returns the IDs of a that are not in b, in a's order
func difference(a, b []string) []string {
	inB := make(map[string]bool, len(b))
	for _, id := range b {
		inB[id] = true
	}
	out := []string{}
	for _, id := range a {
		if !inB[id] {
			out = append(out, id)
		}
	}
	return out
}
