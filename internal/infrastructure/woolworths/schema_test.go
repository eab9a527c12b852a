package woolworths

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validAUItem() map[string]any {
	return map[string]any{
		"Stockcode":       123456,
		"Barcode":         "9300633603219",
		"Name":            "Woolworths Full Cream Milk 2l",
		"DisplayName":     "Woolworths Full Cream Milk 2l",
		"Description":     "Full cream milk",
		"SmallImageFile":  "https://cdn0.woolworths.media/content/wowproductimages/small/123456.jpg",
		"MediumImageFile": "https://cdn0.woolworths.media/content/wowproductimages/medium/123456.jpg",
		"LargeImageFile":  "https://cdn0.woolworths.media/content/wowproductimages/large/123456.jpg",
		"Price":           3.1,
		"InstorePrice":    3.1,
		"WasPrice":        3.5,
		"CupString":       "$1.55 / 1L",
		"PackageSize":     "2L",
		"Unit":            "Each",
		"IsAvailable":     true,
		"IsPurchasable":   true,
		"Brand":           "Woolworths",
	}
}

func validNZItem() map[string]any {
	return map[string]any{
		"type":    "Product",
		"name":    "Woolworths Milk Standard",
		"barcode": "9414742000012",
		"variety": nil,
		"brand":   "woolworths",
		"slug":    "woolworths-milk-standard",
		"sku":     "282819",
		"unit":    "Each",
		"price": map[string]any{
			"originalPrice":  4.29,
			"salePrice":      3.99,
			"savePrice":      0.3,
			"savePercentage": 7,
			"isSpecial":      true,
			"isClubPrice":    false,
		},
		"images": map[string]any{
			"small": "https://assets.woolworths.com.au/images/2010/282819.jpg?impolicy=wowcdxwbjbx&w=200&h=200",
			"big":   "https://assets.woolworths.com.au/images/2010/282819.jpg?impolicy=wowcdxwbjbx&w=900&h=900",
		},
		"size": map[string]any{
			"cupPrice":    1.33,
			"cupMeasure":  "1L",
			"packageType": nil,
			"volumeSize":  "3L",
		},
		"availabilityStatus": "In Stock",
		"stockLevel":         100,
	}
}

func mustRaw(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestParseAUProduct_Valid(t *testing.T) {
	p, err := ParseAUProduct(mustRaw(t, validAUItem()))

	require.NoError(t, err)
	assert.Equal(t, int64(123456), p.Stockcode)
	assert.Equal(t, "Woolworths Full Cream Milk 2l", p.Name)
	require.NotNil(t, p.Price)
	assert.Equal(t, 3.1, *p.Price)
	assert.Equal(t, 3.5, p.WasPrice)
	require.NotNil(t, p.Barcode)
	assert.Equal(t, "9300633603219", *p.Barcode)
}

func TestParseAUProduct_NullPriceAccepted(t *testing.T) {
	item := validAUItem()
	item["Price"] = nil
	item["InstorePrice"] = nil
	item["Barcode"] = nil

	p, err := ParseAUProduct(mustRaw(t, item))

	require.NoError(t, err)
	assert.Nil(t, p.Price)
	assert.Nil(t, p.InstorePrice)
	assert.Nil(t, p.Barcode)
}

func TestParseAUProduct_AbsentPriceRejected(t *testing.T) {
	item := validAUItem()
	delete(item, "Price")

	_, err := ParseAUProduct(mustRaw(t, item))

	assert.Error(t, err)
}

func TestParseAUProduct_ZeroValuesAccepted(t *testing.T) {
	item := validAUItem()
	item["IsAvailable"] = false
	item["WasPrice"] = 0
	item["Description"] = ""

	p, err := ParseAUProduct(mustRaw(t, item))

	require.NoError(t, err)
	assert.False(t, p.IsAvailable)
	assert.Zero(t, p.WasPrice)
}

func TestParseAUProduct_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"missing stockcode", func(m map[string]any) { delete(m, "Stockcode") }},
		{"missing name", func(m map[string]any) { delete(m, "Name") }},
		{"missing barcode key", func(m map[string]any) { delete(m, "Barcode") }},
		{"null was price", func(m map[string]any) { m["WasPrice"] = nil }},
		{"image not a url", func(m map[string]any) { m["LargeImageFile"] = "not a url" }},
		{"stockcode wrong type", func(m map[string]any) { m["Stockcode"] = "123456" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := validAUItem()
			tt.mutate(item)

			_, err := ParseAUProduct(mustRaw(t, item))
			assert.Error(t, err)
		})
	}
}

func TestParseNZProduct_Valid(t *testing.T) {
	p, err := ParseNZProduct(mustRaw(t, validNZItem()))

	require.NoError(t, err)
	assert.Equal(t, "282819", p.SKU)
	assert.Equal(t, 3.99, p.Price.SalePrice)
	assert.Equal(t, 4.29, p.Price.OriginalPrice)
	assert.Nil(t, p.Variety)
	assert.Nil(t, p.Size.PackageType)
	assert.Contains(t, p.Images.Big, "w=900")
}

func TestParseNZProduct_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"wrong type tag", func(m map[string]any) { m["type"] = "Promo" }},
		{"missing sku", func(m map[string]any) { delete(m, "sku") }},
		{"missing price block", func(m map[string]any) { delete(m, "price") }},
		{"missing sale price", func(m map[string]any) { delete(m["price"].(map[string]any), "salePrice") }},
		{"big image not a url", func(m map[string]any) { m["images"].(map[string]any)["big"] = "nope" }},
		{"missing variety key", func(m map[string]any) { delete(m, "variety") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := validNZItem()
			tt.mutate(item)

			_, err := ParseNZProduct(mustRaw(t, item))
			assert.Error(t, err)
		})
	}
}

func TestParseAUItems_DropsInvalidKeepsOrder(t *testing.T) {
	first := validAUItem()
	first["Stockcode"] = 1
	broken := validAUItem()
	delete(broken, "Unit")
	last := validAUItem()
	last["Stockcode"] = 3

	items := []json.RawMessage{mustRaw(t, first), mustRaw(t, broken), mustRaw(t, last), json.RawMessage(`"junk"`)}

	products := parseAUItems(context.Background(), items)

	require.Len(t, products, 2)
	assert.Equal(t, int64(1), products[0].Stockcode)
	assert.Equal(t, int64(3), products[1].Stockcode)
}

func TestParseNZItems_SkipsNonProducts(t *testing.T) {
	banner := map[string]any{"type": "PromoTile", "name": "Specials"}
	broken := validNZItem()
	delete(broken, "images")

	items := []json.RawMessage{mustRaw(t, banner), mustRaw(t, validNZItem()), mustRaw(t, broken)}

	products := parseNZItems(context.Background(), items)

	require.Len(t, products, 1)
	assert.Equal(t, "282819", products[0].SKU)
}

func TestDecodeNZEnvelope(t *testing.T) {
	items, err := decodeNZEnvelope([]byte(`{"products":{"items":[{"type":"Product"},{}]}}`))
	require.NoError(t, err)
	assert.Len(t, items, 2)

	_, err = decodeNZEnvelope([]byte(`{"items":[]}`))
	assert.Error(t, err)

	items, err = decodeNZEnvelope([]byte(`{"products":{"items":[]}}`))
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = decodeNZEnvelope([]byte(`{"products":{}}`))
	assert.Error(t, err, "products without items")

	_, err = decodeNZEnvelope([]byte(`{"products":{"items":null}}`))
	assert.Error(t, err)

	_, err = decodeNZEnvelope([]byte(`<html>blocked</html>`))
	assert.Error(t, err)
}

func TestDecodeAUEnvelope(t *testing.T) {
	body := `{"Products":[{"Products":[{"a":1},{"a":2}]},{"Products":[{"a":3}]}],"SearchResultsCount":3}`
	items, err := decodeAUEnvelope([]byte(body))
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.JSONEq(t, `{"a":3}`, string(items[2]))

	items, err = decodeAUEnvelope([]byte(`{"Products":null,"SearchResultsCount":0}`))
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = decodeAUEnvelope([]byte(`{"Products":[]}`))
	assert.Error(t, err)

	_, err = decodeAUEnvelope([]byte(`{"SearchResultsCount":0}`))
	assert.Error(t, err, "missing Products key")

	_, err = decodeAUEnvelope([]byte(`{"Products":"none","SearchResultsCount":0}`))
	assert.Error(t, err)
}
