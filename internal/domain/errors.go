package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")
	// ErrProductNotFound is returned when a matched product does not exist
	ErrProductNotFound = errors.New("product not found")
	// ErrBasketNotFound is returned when no basket carries the requested id or name
	ErrBasketNotFound = errors.New("basket not found")
	// ErrBasketExists is returned when creating a basket whose name is taken
	ErrBasketExists = errors.New("basket already exists")
	// ErrAUPriceMissing is returned when matching an AU product with no current price
	ErrAUPriceMissing = errors.New("AU product price is null")
	// ErrRetailerFailure is returned when a retailer search request fails
	ErrRetailerFailure = errors.New("retailer request failed")
	// ErrCookieNotFound is returned when the AU root page sets no anti-bot cookie
	ErrCookieNotFound = errors.New("anti-bot cookie not found")
	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
	// ErrPersistence is returned when a database operation fails
	ErrPersistence = errors.New("persistence failure")
)
