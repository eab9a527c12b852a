package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// RetailerSearcher queries both retailers for one free-text term
type RetailerSearcher interface {
	Search(ctx context.Context, query string) *SearchResult
}

// ProductRepository persists matched products and their basket links
type ProductRepository interface {
	Create(ctx context.Context, product *MatchedProduct) error
	Update(ctx context.Context, product *MatchedProduct) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*MatchedProduct, error)
	List(ctx context.Context) ([]MatchedProduct, error)
	ListByBasket(ctx context.Context, basketID string) ([]MatchedProduct, error)
	BasketIDs(ctx context.Context, productID string) ([]string, error)
	LinkBasket(ctx context.Context, link *BasketProduct) error
	UnlinkBaskets(ctx context.Context, productID string, basketIDs []string) error
}

// BasketRepository persists baskets
type BasketRepository interface {
	Create(ctx context.Context, basket *Basket) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Basket, error)
	FindByID(ctx context.Context, id string) (*Basket, error)
	FindByName(ctx context.Context, name string) (*Basket, error)
}
