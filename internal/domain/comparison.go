package domain

import "time"

// Currency codes understood by the comparison view
const (
	CurrencyAUD = "AUD"
	CurrencyNZD = "NZD"
)

// ComparedProduct is a matched product as shown on the public page
type ComparedProduct struct {
	MatchedProduct
	AUURL string `json:"auUrl"`
	NZURL string `json:"nzUrl"`
}

// BasketComparison is one basket with its products and both retailers' totals
type BasketComparison struct {
	Basket   Basket            `json:"basket"`
	Products []ComparedProduct `json:"products"`
	// Raw totals in each retailer's own currency
	AUTotal float64 `json:"auTotal"`
	NZTotal float64 `json:"nzTotal"`
	// Totals expressed in the display currency, rounded to cents
	DisplayAUTotal float64 `json:"displayAuTotal"`
	DisplayNZTotal float64 `json:"displayNzTotal"`
}

// Comparison is the public basket comparison
type Comparison struct {
	Currency    string             `json:"currency"`
	Rate        float64            `json:"nzdToAudRate"`
	Baskets     []BasketComparison `json:"baskets"`
	GeneratedAt time.Time          `json:"generatedAt"`
}
