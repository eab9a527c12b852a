package domain

import "time"

// MatchedProduct is a persisted pairing of one AU and one NZ catalog item.
// AU prices are in AUD, NZ prices in NZD.
type MatchedProduct struct {
	ID              string    `gorm:"column:id;primaryKey" json:"id"`
	Title           string    `gorm:"column:title;not null" json:"title"`
	NZPrice         float64   `gorm:"column:nzPrice;not null" json:"nzPrice"`
	NZPriceOriginal float64   `gorm:"column:nzPriceOriginal;not null" json:"nzPriceOriginal"`
	AUPrice         float64   `gorm:"column:auPrice;not null" json:"auPrice"`
	AUPriceOriginal float64   `gorm:"column:auPriceOriginal;not null" json:"auPriceOriginal"`
	NZSku           string    `gorm:"column:nzSku;not null" json:"nzSku"`
	AUStockcode     string    `gorm:"column:auStockcode;not null" json:"auStockcode"`
	ImageURL        *string   `gorm:"column:imageUrl" json:"imageUrl"`
	Updated         time.Time `gorm:"column:updated;not null" json:"updated"`
}

// TableName keeps the singular table name
func (MatchedProduct) TableName() string {
	return "product"
}

// Basket is a named grouping of matched products, e.g. "value"
type Basket struct {
	ID          string `gorm:"column:id;primaryKey" json:"id"`
	Name        string `gorm:"column:name;not null" json:"name"`
	Description string `gorm:"column:description;not null" json:"description"`
}

// TableName keeps the singular table name
func (Basket) TableName() string {
	return "basket"
}

// BasketProduct links a basket to a product. The (basketId, productId)
// pair is not unique at the storage level.
type BasketProduct struct {
	ID        string `gorm:"column:id;primaryKey" json:"id"`
	BasketID  string `gorm:"column:basketId;not null;index" json:"basketId"`
	ProductID string `gorm:"column:productId;not null;index" json:"productId"`
}

// TableName keeps the join table name
func (BasketProduct) TableName() string {
	return "basket_product"
}

// MatchRequest is the admin's chosen AU/NZ pair plus basket categories.
// A non-nil override replaces the scraped current price of that side.
type MatchRequest struct {
	Title           string    `json:"title"`
	AUProduct       AUProduct `json:"auProduct"`
	NZProduct       NZProduct `json:"nzProduct"`
	Categories      []string  `json:"categories" binding:"required,min=1,dive,required"`
	AUPriceOverride *float64  `json:"auPriceOverride,omitempty" binding:"omitempty,gte=0"`
	NZPriceOverride *float64  `json:"nzPriceOverride,omitempty" binding:"omitempty,gte=0"`
}

// MatchedPair is one product row and the basket link created for it
type MatchedPair struct {
	Category string         `json:"category"`
	Product  MatchedProduct `json:"product"`
	Link     BasketProduct  `json:"link"`
}

// MatchOutcome lists the rows written by one match, in category order
type MatchOutcome struct {
	Pairs []MatchedPair `json:"pairs"`
}

// ProductInput carries the editable fields of a matched product
type ProductInput struct {
	Title           string  `json:"title" binding:"required"`
	NZPrice         float64 `json:"nzPrice" binding:"gte=0"`
	NZPriceOriginal float64 `json:"nzPriceOriginal" binding:"gte=0"`
	AUPrice         float64 `json:"auPrice" binding:"gte=0"`
	AUPriceOriginal float64 `json:"auPriceOriginal" binding:"gte=0"`
	NZSku           string  `json:"nzSku" binding:"required"`
	AUStockcode     string  `json:"auStockcode" binding:"required"`
	ImageURL        *string `json:"imageUrl,omitempty"`
	// BasketIDs, when non-nil, is the complete desired set of baskets
	BasketIDs []string `json:"basketIds,omitempty"`
}

// ProductDetail is a product together with the IDs of its baskets
type ProductDetail struct {
	Product   MatchedProduct `json:"product"`
	BasketIDs []string       `json:"basketIds"`
}
