// Package links builds the public product detail URLs of both retailers.
package links

import "strconv"

const (
	auDetailBase = "https://www.woolworths.com.au/shop/productdetails/"
	nzDetailBase = "https://www.woolworths.co.nz/shop/productdetails?stockcode="
)

// AULink returns the AU product page for a stockcode as stored on a matched product
func AULink(stockcode string) string {
	return auDetailBase + stockcode
}

// AULinkFromStockcode returns the AU product page for a numeric stockcode
func AULinkFromStockcode(stockcode int64) string {
	return AULink(strconv.FormatInt(stockcode, 10))
}

// NZLink returns the NZ product page for a sku
func NZLink(sku string) string {
	return nzDetailBase + sku
}
