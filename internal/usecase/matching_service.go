package usecase

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/woolies-greener/backend/internal/domain"
	"github.com/woolies-greener/backend/internal/logger"
	"go.uber.org/zap"
)

// ID prefixes of persisted rows
const (
	productIDPrefix       = "p_"
	basketIDPrefix        = "b_"
	basketProductIDPrefix = "bp_"
)

func newID(prefix string) string {
	return prefix + uuid.NewString()
}

// MatchingService searches both retailers and persists the pairs an admin picks
type MatchingService struct {
	products domain.ProductRepository
	baskets  domain.BasketRepository
	searcher domain.RetailerSearcher
	cache    domain.CacheRepository

	newID func(prefix string) string
	now   func() time.Time
}

// NewMatchingService creates a new matching service with dependencies.
// Pass an untyped nil cache to run without comparison caching.
func NewMatchingService(
	products domain.ProductRepository,
	baskets domain.BasketRepository,
	searcher domain.RetailerSearcher,
	cache domain.CacheRepository,
) *MatchingService {
	return &MatchingService{
		products: products,
		baskets:  baskets,
		searcher: searcher,
		cache:    cache,
		newID:    newID,
		now:      time.Now,
	}
}

// Search runs one search against both retailers. A blank term returns an
// empty result without calling out.
func (s *MatchingService) Search(ctx context.Context, query string) *domain.SearchResult {
	q := normalizeQuery(query)
	if q == "" {
		return &domain.SearchResult{AU: []domain.AUProduct{}, NZ: []domain.NZProduct{}}
	}
	result := s.searcher.Search(ctx, q)
	for i := range result.AU {
		result.AU[i].SiteURL = result.AU[i].DetailURL()
	}
	for i := range result.NZ {
		result.NZ[i].SiteURL = result.NZ[i].DetailURL()
	}
	return result
}

// Match applies the request's price overrides and title default, then links the pair
func (s *MatchingService) Match(ctx context.Context, req domain.MatchRequest) (*domain.MatchOutcome, error) {
	for _, override := range []*float64{req.AUPriceOverride, req.NZPriceOverride} {
		if override != nil && (*override < 0 || math.IsNaN(*override) || math.IsInf(*override, 0)) {
			return nil, fmt.Errorf("%w: price override must be a non-negative number", domain.ErrInvalidRequest)
		}
	}

	au := req.AUProduct
	nz := req.NZProduct

	if req.AUPriceOverride != nil {
		price := *req.AUPriceOverride
		au.Price = &price
	}
	if req.NZPriceOverride != nil {
		nz.Price.SalePrice = *req.NZPriceOverride
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = au.Name
	}

	return s.Link(ctx, title, au, nz, req.Categories)
}

// Link writes one product row and one basket link per category, in order.
//
// The AU price is checked before any write. A category naming no basket
// stops the loop with an error wrapping domain.ErrBasketNotFound; rows
// written for earlier categories stay in place and are returned alongside
// the error.
func (s *MatchingService) Link(
	ctx context.Context,
	title string,
	au domain.AUProduct,
	nz domain.NZProduct,
	categories []string,
) (*domain.MatchOutcome, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("%w: at least one category is required", domain.ErrInvalidRequest)
	}
	if au.Price == nil {
		return nil, domain.ErrAUPriceMissing
	}

	outcome := &domain.MatchOutcome{Pairs: make([]domain.MatchedPair, 0, len(categories))}
	defer s.invalidate(ctx, outcome)

	for _, category := range categories {
		basket, err := s.baskets.FindByName(ctx, category)
		if err != nil {
			logger.Warn(ctx, "Basket lookup failed during match",
				zap.String("category", category),
				zap.Int("pairs_written", len(outcome.Pairs)),
				zap.Error(err),
			)
			return outcome, fmt.Errorf("basket %q: %w", category, err)
		}

		product := s.productFromPair(title, au, nz)
		if err := s.products.Create(ctx, &product); err != nil {
			return outcome, fmt.Errorf("insert product for basket %q: %w", category, err)
		}

		link := domain.BasketProduct{
			ID:        s.newID(basketProductIDPrefix),
			BasketID:  basket.ID,
			ProductID: product.ID,
		}
		if err := s.products.LinkBasket(ctx, &link); err != nil {
			return outcome, fmt.Errorf("link product to basket %q: %w", category, err)
		}

		outcome.Pairs = append(outcome.Pairs, domain.MatchedPair{
			Category: category,
			Product:  product,
			Link:     link,
		})
	}

	logger.Info(ctx, "Matched product pair",
		zap.String("title", title),
		zap.Int64("au_stockcode", au.Stockcode),
		zap.String("nz_sku", nz.SKU),
		zap.Strings("categories", categories),
	)
	return outcome, nil
}

// productFromPair builds a fresh product row. The caller has already checked au.Price.
func (s *MatchingService) productFromPair(title string, au domain.AUProduct, nz domain.NZProduct) domain.MatchedProduct {
	var image *string
	if nz.Images.Big != "" {
		big := nz.Images.Big
		image = &big
	}
	return domain.MatchedProduct{
		ID:              s.newID(productIDPrefix),
		Title:           title,
		NZPrice:         nz.Price.SalePrice,
		NZPriceOriginal: nz.Price.OriginalPrice,
		AUPrice:         *au.Price,
		AUPriceOriginal: au.WasPrice,
		NZSku:           nz.SKU,
		AUStockcode:     strconv.FormatInt(au.Stockcode, 10),
		ImageURL:        image,
		Updated:         s.now(),
	}
}

// invalidate drops cached comparisons once anything was written
func (s *MatchingService) invalidate(ctx context.Context, outcome *domain.MatchOutcome) {
	if len(outcome.Pairs) > 0 {
		invalidateComparisons(ctx, s.cache)
	}
}
