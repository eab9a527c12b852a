package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/woolies-greener/backend/internal/currency"
	"github.com/woolies-greener/backend/internal/domain"
	"github.com/woolies-greener/backend/internal/links"
	"github.com/woolies-greener/backend/internal/logger"
	"go.uber.org/zap"
)

// comparisonCacheKey returns the cache key of one display currency's comparison
func comparisonCacheKey(displayCurrency string) string {
	return "comparison:" + displayCurrency
}

// invalidateComparisons drops every cached comparison. Failures are logged only.
func invalidateComparisons(ctx context.Context, cache domain.CacheRepository) {
	if cache == nil {
		return
	}
	for _, c := range []string{domain.CurrencyAUD, domain.CurrencyNZD} {
		if err := cache.Delete(ctx, comparisonCacheKey(c)); err != nil {
			logger.Warn(ctx, "Failed to invalidate cached comparison", zap.String("currency", c), zap.Error(err))
		}
	}
}

// basketRank orders well-known tiers first: value, quality, luxury
var basketRank = []string{"value", "quality", "luxury"}

func rankOf(name string) int {
	lower := normalizeName(name)
	for i, tier := range basketRank {
		if strings.Contains(lower, tier) {
			return i
		}
	}
	return len(basketRank)
}

// sortBaskets orders baskets by tier and then alphabetically
func sortBaskets(baskets []domain.Basket) {
	sort.SliceStable(baskets, func(i, j int) bool {
		ri, rj := rankOf(baskets[i].Name), rankOf(baskets[j].Name)
		if ri != rj {
			return ri < rj
		}
		return normalizeName(baskets[i].Name) < normalizeName(baskets[j].Name)
	})
}

// ComparisonServiceConfig holds configuration for the comparison service
type ComparisonServiceConfig struct {
	CacheTTL time.Duration
}

// ComparisonService builds the public per-basket price comparison
type ComparisonService struct {
	products  domain.ProductRepository
	baskets   domain.BasketRepository
	cache     domain.CacheRepository
	converter *currency.Converter
	cacheTTL  time.Duration
	now       func() time.Time
}

// NewComparisonService creates a new comparison service with dependencies
func NewComparisonService(
	products domain.ProductRepository,
	baskets domain.BasketRepository,
	cache domain.CacheRepository,
	converter *currency.Converter,
	config ComparisonServiceConfig,
) *ComparisonService {
	cacheTTL := config.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &ComparisonService{
		products:  products,
		baskets:   baskets,
		cache:     cache,
		converter: converter,
		cacheTTL:  cacheTTL,
		now:       time.Now,
	}
}

// ParseCurrency accepts "AUD" or "NZD" in any case; empty means AUD
func ParseCurrency(s string) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", domain.CurrencyAUD:
		return domain.CurrencyAUD, nil
	case domain.CurrencyNZD:
		return domain.CurrencyNZD, nil
	default:
		return "", fmt.Errorf("%w: unsupported currency %q", domain.ErrInvalidRequest, s)
	}
}

// Compare returns every basket with its products and totals in the display currency.
// Flow: check cache -> load baskets and products -> total -> cache -> return
func (s *ComparisonService) Compare(ctx context.Context, displayCurrency string) (*domain.Comparison, error) {
	code, err := ParseCurrency(displayCurrency)
	if err != nil {
		return nil, err
	}

	if cached, ok := s.getFromCache(ctx, code); ok {
		return cached, nil
	}

	baskets, err := s.baskets.List(ctx)
	if err != nil {
		return nil, err
	}
	sortBaskets(baskets)

	comparison := &domain.Comparison{
		Currency:    code,
		Rate:        s.converter.Rate(),
		Baskets:     make([]domain.BasketComparison, 0, len(baskets)),
		GeneratedAt: s.now(),
	}

	for _, basket := range baskets {
		products, err := s.products.ListByBasket(ctx, basket.ID)
		if err != nil {
			return nil, err
		}
		comparison.Baskets = append(comparison.Baskets, s.compareBasket(basket, products, code))
	}

	s.setInCache(ctx, code, comparison)
	return comparison, nil
}

// compareBasket totals one basket. Raw totals stay in each retailer's currency;
// display totals convert the foreign side and round to cents.
func (s *ComparisonService) compareBasket(basket domain.Basket, products []domain.MatchedProduct, code string) domain.BasketComparison {
	compared := make([]domain.ComparedProduct, 0, len(products))
	auPrices := make([]float64, 0, len(products))
	nzPrices := make([]float64, 0, len(products))

	for _, p := range products {
		compared = append(compared, domain.ComparedProduct{
			MatchedProduct: p,
			AUURL:          links.AULink(p.AUStockcode),
			NZURL:          links.NZLink(p.NZSku),
		})
		auPrices = append(auPrices, p.AUPrice)
		nzPrices = append(nzPrices, p.NZPrice)
	}

	auTotal := currency.Sum(auPrices...)
	nzTotal := currency.Sum(nzPrices...)

	displayAU, displayNZ := auTotal, s.converter.NzdToAud(nzTotal)
	if code == domain.CurrencyNZD {
		displayAU, displayNZ = s.converter.AudToNzd(auTotal), nzTotal
	}

	return domain.BasketComparison{
		Basket:         basket,
		Products:       compared,
		AUTotal:        auTotal,
		NZTotal:        nzTotal,
		DisplayAUTotal: currency.Round2(displayAU),
		DisplayNZTotal: currency.Round2(displayNZ),
	}
}

func (s *ComparisonService) getFromCache(ctx context.Context, code string) (*domain.Comparison, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, err := s.cache.Get(ctx, comparisonCacheKey(code))
	if err != nil {
		return nil, false
	}
	var comparison domain.Comparison
	if err := json.Unmarshal(data, &comparison); err != nil {
		logger.Warn(ctx, "Discarding unreadable cached comparison", zap.Error(err))
		return nil, false
	}
	return &comparison, true
}

// setInCache stores the comparison; a failure only costs the next request a rebuild
func (s *ComparisonService) setInCache(ctx context.Context, code string, comparison *domain.Comparison) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(comparison)
	if err != nil {
		logger.Warn(ctx, "Failed to encode comparison for cache", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, comparisonCacheKey(code), data, s.cacheTTL); err != nil {
		logger.Warn(ctx, "Failed to cache comparison", zap.Error(err))
	}
}
