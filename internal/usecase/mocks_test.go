package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/woolies-greener/backend/internal/domain"
)

// MockCacheRepository is a mock implementation of domain.CacheRepository
type MockCacheRepository struct {
	data       map[string][]byte
	getError   error
	setError   error
	getCalls   int
	setCalls   int
	deleteKeys []string
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{data: make(map[string][]byte)}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	m.getCalls++
	if m.getError != nil {
		return nil, m.getError
	}
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.setCalls++
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	m.deleteKeys = append(m.deleteKeys, key)
	delete(m.data, key)
	return nil
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.data[key]
	return ok, nil
}

// MockRetailerSearcher is a mock implementation of domain.RetailerSearcher
type MockRetailerSearcher struct {
	result  *domain.SearchResult
	queries []string
}

func (m *MockRetailerSearcher) Search(ctx context.Context, query string) *domain.SearchResult {
	m.queries = append(m.queries, query)
	if m.result == nil {
		return &domain.SearchResult{AU: []domain.AUProduct{}, NZ: []domain.NZProduct{}}
	}
	return m.result
}

// MockProductRepository is an in-memory domain.ProductRepository
type MockProductRepository struct {
	mu       sync.Mutex
	products map[string]domain.MatchedProduct
	links    []domain.BasketProduct

	createError error
	linkError   error
	listError   error

	createCalls int
	linkCalls   int
	unlinkCalls int
}

func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{products: make(map[string]domain.MatchedProduct)}
}

func (m *MockProductRepository) Create(ctx context.Context, product *domain.MatchedProduct) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.createError != nil {
		return m.createError
	}
	m.products[product.ID] = *product
	return nil
}

func (m *MockProductRepository) Update(ctx context.Context, product *domain.MatchedProduct) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[product.ID]; !ok {
		return domain.ErrProductNotFound
	}
	m.products[product.ID] = *product
	return nil
}

func (m *MockProductRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return domain.ErrProductNotFound
	}
	kept := m.links[:0]
	for _, l := range m.links {
		if l.ProductID != id {
			kept = append(kept, l)
		}
	}
	m.links = kept
	delete(m.products, id)
	return nil
}

func (m *MockProductRepository) FindByID(ctx context.Context, id string) (*domain.MatchedProduct, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &p, nil
}

func (m *MockProductRepository) List(ctx context.Context) ([]domain.MatchedProduct, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listError != nil {
		return nil, m.listError
	}
	out := make([]domain.MatchedProduct, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (m *MockProductRepository) ListByBasket(ctx context.Context, basketID string) ([]domain.MatchedProduct, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listError != nil {
		return nil, m.listError
	}
	var out []domain.MatchedProduct
	for _, l := range m.links {
		if l.BasketID == basketID {
			out = append(out, m.products[l.ProductID])
		}
	}
	return out, nil
}

func (m *MockProductRepository) BasketIDs(ctx context.Context, productID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	seen := map[string]bool{}
	for _, l := range m.links {
		if l.ProductID == productID && !seen[l.BasketID] {
			seen[l.BasketID] = true
			ids = append(ids, l.BasketID)
		}
	}
	return ids, nil
}

func (m *MockProductRepository) LinkBasket(ctx context.Context, link *domain.BasketProduct) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.linkCalls++
	if m.linkError != nil {
		return m.linkError
	}
	m.links = append(m.links, *link)
	return nil
}

func (m *MockProductRepository) UnlinkBaskets(ctx context.Context, productID string, basketIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(basketIDs) == 0 {
		return nil
	}
	m.unlinkCalls++
	drop := map[string]bool{}
	for _, id := range basketIDs {
		drop[id] = true
	}
	kept := m.links[:0]
	for _, l := range m.links {
		if l.ProductID == productID && drop[l.BasketID] {
			continue
		}
		kept = append(kept, l)
	}
	m.links = kept
	return nil
}

// MockBasketRepository is an in-memory domain.BasketRepository
type MockBasketRepository struct {
	baskets   []domain.Basket
	listError error
}

func NewMockBasketRepository(baskets ...domain.Basket) *MockBasketRepository {
	return &MockBasketRepository{baskets: baskets}
}

func (m *MockBasketRepository) Create(ctx context.Context, basket *domain.Basket) error {
	m.baskets = append(m.baskets, *basket)
	return nil
}

func (m *MockBasketRepository) Delete(ctx context.Context, id string) error {
	for i, b := range m.baskets {
		if b.ID == id {
			m.baskets = append(m.baskets[:i], m.baskets[i+1:]...)
			return nil
		}
	}
	return domain.ErrBasketNotFound
}

func (m *MockBasketRepository) List(ctx context.Context) ([]domain.Basket, error) {
	if m.listError != nil {
		return nil, m.listError
	}
	return append([]domain.Basket(nil), m.baskets...), nil
}

func (m *MockBasketRepository) FindByID(ctx context.Context, id string) (*domain.Basket, error) {
	for _, b := range m.baskets {
		if b.ID == id {
			found := b
			return &found, nil
		}
	}
	return nil, domain.ErrBasketNotFound
}

func (m *MockBasketRepository) FindByName(ctx context.Context, name string) (*domain.Basket, error) {
	for _, b := range m.baskets {
		if b.Name == name {
			found := b
			return &found, nil
		}
	}
	return nil, domain.ErrBasketNotFound
}

// sequentialIDs returns an ID generator producing prefix1, prefix2, ... per prefix
func sequentialIDs() func(prefix string) string {
	counters := map[string]int{}
	return func(prefix string) string {
		counters[prefix]++
		return fmt.Sprintf("%s%d", prefix, counters[prefix])
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func floatPtr(f float64) *float64 {
	return &f
}

func sampleAU() domain.AUProduct {
	return domain.AUProduct{
		Stockcode:     123456,
		Name:          "Woolworths Full Cream Milk 2l",
		DisplayName:   "Woolworths Full Cream Milk 2l",
		Price:         floatPtr(3.1),
		WasPrice:      3.5,
		IsAvailable:   true,
		IsPurchasable: true,
	}
}

func sampleNZ() domain.NZProduct {
	return domain.NZProduct{
		Type: "Product",
		SKU:  "282819",
		Name: "Woolworths Milk Standard",
		Price: domain.NZPrice{
			OriginalPrice: 4.29,
			SalePrice:     3.99,
		},
		Images: domain.NZImages{
			Small: "https://assets.example/small.jpg",
			Big:   "https://assets.example/big.jpg",
		},
	}
}
