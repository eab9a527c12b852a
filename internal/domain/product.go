package domain

import "github.com/woolies-greener/backend/internal/links"

// AUProduct is a snapshot of a Woolworths Australia catalog entry taken at search time
type AUProduct struct {
	Stockcode       int64    `json:"Stockcode"`
	Barcode         *string  `json:"Barcode"`
	Name            string   `json:"Name"`
	DisplayName     string   `json:"DisplayName"`
	Description     string   `json:"Description"`
	SmallImageFile  string   `json:"SmallImageFile"`
	MediumImageFile string   `json:"MediumImageFile"`
	LargeImageFile  string   `json:"LargeImageFile"`
	Price           *float64 `json:"Price"` // nil when sold out
	InstorePrice    *float64 `json:"InstorePrice"`
	WasPrice        float64  `json:"WasPrice"`
	CupString       string   `json:"CupString"`
	PackageSize     string   `json:"PackageSize"`
	Unit            string   `json:"Unit"`
	IsAvailable     bool     `json:"IsAvailable"`
	IsPurchasable   bool     `json:"IsPurchasable"`
	Brand           string   `json:"Brand"`
	// SiteURL is the "view on site" link, filled in for search results
	SiteURL         string   `json:"siteUrl,omitempty"`
}

// DetailURL returns the public product page for this item
func (p AUProduct) DetailURL() string {
	return links.AULinkFromStockcode(p.Stockcode)
}

// NZPrice is the nested price block of an NZ product
type NZPrice struct {
	OriginalPrice  float64 `json:"originalPrice"`
	SalePrice      float64 `json:"salePrice"`
	SavePrice      float64 `json:"savePrice"`
	SavePercentage float64 `json:"savePercentage"`
	IsSpecial      bool    `json:"isSpecial"`
	IsClubPrice    bool    `json:"isClubPrice"`
}

// NZImages holds the NZ product image URLs
type NZImages struct {
	Small string `json:"small"`
	Big   string `json:"big"`
}

// NZSize is the nested size block of an NZ product
type NZSize struct {
	CupPrice    float64 `json:"cupPrice"`
	CupMeasure  string  `json:"cupMeasure"`
	PackageType *string `json:"packageType"`
	VolumeSize  string  `json:"volumeSize"`
}

// NZProduct is a snapshot of a Woolworths New Zealand catalog entry taken at search time
type NZProduct struct {
	Type               string   `json:"type"`
	SKU                string   `json:"sku"`
	Barcode            string   `json:"barcode"`
	Name               string   `json:"name"`
	Brand              string   `json:"brand"`
	Slug               string   `json:"slug"`
	Unit               string   `json:"unit"`
	Variety            *string  `json:"variety"`
	Price              NZPrice  `json:"price"`
	Images             NZImages `json:"images"`
	Size               NZSize   `json:"size"`
	AvailabilityStatus string   `json:"availabilityStatus"`
	StockLevel         float64  `json:"stockLevel"`
	// SiteURL is the "view on site" link, filled in for search results
	SiteURL            string   `json:"siteUrl,omitempty"`
}

// DetailURL returns the public product page for this item
func (p NZProduct) DetailURL() string {
	return links.NZLink(p.SKU)
}

// SearchResult combines both retailer legs of one search.
// Error is empty when both legs succeeded.
type SearchResult struct {
	AU    []AUProduct `json:"auProducts"`
	NZ    []NZProduct `json:"nzProducts"`
	Error string      `json:"error,omitempty"`
}
