package woolworths

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/woolies-greener/backend/internal/domain"
	"github.com/woolies-greener/backend/internal/logger"
	"go.uber.org/zap"
)

// productTypeTag is the NZ discriminator value of a real product item.
// Other values are banners or ad placeholders.
const productTypeTag = "Product"

// nullFloat is a number that may be null but whose key must be present
type nullFloat struct {
	Present bool
	Value   *float64
}

func (n *nullFloat) UnmarshalJSON(b []byte) error {
	n.Present = true
	if string(b) == "null" {
		n.Value = nil
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	n.Value = &f
	return nil
}

// nullString is a string that may be null but whose key must be present
type nullString struct {
	Present bool
	Value   *string
}

func (n *nullString) UnmarshalJSON(b []byte) error {
	n.Present = true
	if string(b) == "null" {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

// auProductWire mirrors one AU search item. Pointer fields make absence
// detectable so "required" fails on a missing key, not on a zero value.
type auProductWire struct {
	Stockcode       *int64     `json:"Stockcode" validate:"required"`
	Barcode         nullString `json:"Barcode" validate:"required"`
	Name            *string    `json:"Name" validate:"required"`
	DisplayName     *string    `json:"DisplayName" validate:"required"`
	Description     *string    `json:"Description" validate:"required"`
	SmallImageFile  *string    `json:"SmallImageFile" validate:"required,url"`
	MediumImageFile *string    `json:"MediumImageFile" validate:"required,url"`
	LargeImageFile  *string    `json:"LargeImageFile" validate:"required,url"`
	Price           nullFloat  `json:"Price" validate:"required"`
	InstorePrice    nullFloat  `json:"InstorePrice" validate:"required"`
	WasPrice        *float64   `json:"WasPrice" validate:"required"`
	CupString       *string    `json:"CupString" validate:"required"`
	PackageSize     *string    `json:"PackageSize" validate:"required"`
	Unit            *string    `json:"Unit" validate:"required"`
	IsAvailable     *bool      `json:"IsAvailable" validate:"required"`
	IsPurchasable   *bool      `json:"IsPurchasable" validate:"required"`
	Brand           *string    `json:"Brand" validate:"required"`
}

type nzPriceWire struct {
	OriginalPrice  *float64 `json:"originalPrice" validate:"required"`
	SalePrice      *float64 `json:"salePrice" validate:"required"`
	SavePrice      *float64 `json:"savePrice" validate:"required"`
	SavePercentage *float64 `json:"savePercentage" validate:"required"`
	IsSpecial      *bool    `json:"isSpecial" validate:"required"`
	IsClubPrice    *bool    `json:"isClubPrice" validate:"required"`
}

type nzImagesWire struct {
	Small *string `json:"small" validate:"required,url"`
	Big   *string `json:"big" validate:"required,url"`
}

type nzSizeWire struct {
	CupPrice    *float64   `json:"cupPrice" validate:"required"`
	CupMeasure  *string    `json:"cupMeasure" validate:"required"`
	PackageType nullString `json:"packageType" validate:"required"`
	VolumeSize  *string    `json:"volumeSize" validate:"required"`
}

// nzProductWire mirrors one NZ search item
type nzProductWire struct {
	Type               *string       `json:"type" validate:"required,eq=Product"`
	Name               *string       `json:"name" validate:"required"`
	Barcode            *string       `json:"barcode" validate:"required"`
	Variety            nullString    `json:"variety" validate:"required"`
	Brand              *string       `json:"brand" validate:"required"`
	Slug               *string       `json:"slug" validate:"required"`
	SKU                *string       `json:"sku" validate:"required"`
	Unit               *string       `json:"unit" validate:"required"`
	Price              *nzPriceWire  `json:"price" validate:"required"`
	Images             *nzImagesWire `json:"images" validate:"required"`
	Size               *nzSizeWire   `json:"size" validate:"required"`
	AvailabilityStatus *string       `json:"availabilityStatus" validate:"required"`
	StockLevel         *float64      `json:"stockLevel" validate:"required"`
}

// nzSearchEnvelope is the outer NZ response; only the envelope must decode for the leg to succeed
type nzSearchEnvelope struct {
	Products *struct {
		Items []json.RawMessage `json:"items" validate:"required"`
	} `json:"products" validate:"required"`
}

type auProductGroup struct {
	Products    []json.RawMessage `json:"Products"`
	Name        string            `json:"Name"`
	DisplayName string            `json:"DisplayName"`
}

// auGroupList is the AU "Products" key. It may be null on an empty
// search but must be present.
type auGroupList struct {
	Present bool
	Groups  []auProductGroup
}

func (l *auGroupList) UnmarshalJSON(b []byte) error {
	l.Present = true
	if string(b) == "null" {
		l.Groups = nil
		return nil
	}
	return json.Unmarshal(b, &l.Groups)
}

// auSearchEnvelope is the outer AU response
type auSearchEnvelope struct {
	Products           auGroupList `json:"Products" validate:"required"`
	SearchResultsCount *int        `json:"SearchResultsCount" validate:"required"`
}

var schemaValidator = newSchemaValidator()

func newSchemaValidator() *validator.Validate {
	v := validator.New()
	// A nullable field passes "required" once its key was seen, even with a null value
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		switch n := field.Interface().(type) {
		case nullFloat:
			if n.Present {
				return "present"
			}
		case nullString:
			if n.Present {
				return "present"
			}
		case auGroupList:
			if n.Present {
				return "present"
			}
		}
		return nil
	}, nullFloat{}, nullString{}, auGroupList{})
	return v
}

// ParseAUProduct validates one raw AU item and converts it to the domain shape
func ParseAUProduct(raw json.RawMessage) (domain.AUProduct, error) {
	var w auProductWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return domain.AUProduct{}, fmt.Errorf("decode AU product: %w", err)
	}
	if err := schemaValidator.Struct(&w); err != nil {
		return domain.AUProduct{}, fmt.Errorf("validate AU product: %w", err)
	}

	return domain.AUProduct{
		Stockcode:       *w.Stockcode,
		Barcode:         w.Barcode.Value,
		Name:            *w.Name,
		DisplayName:     *w.DisplayName,
		Description:     *w.Description,
		SmallImageFile:  *w.SmallImageFile,
		MediumImageFile: *w.MediumImageFile,
		LargeImageFile:  *w.LargeImageFile,
		Price:           w.Price.Value,
		InstorePrice:    w.InstorePrice.Value,
		WasPrice:        *w.WasPrice,
		CupString:       *w.CupString,
		PackageSize:     *w.PackageSize,
		Unit:            *w.Unit,
		IsAvailable:     *w.IsAvailable,
		IsPurchasable:   *w.IsPurchasable,
		Brand:           *w.Brand,
	}, nil
}

// ParseNZProduct validates one raw NZ item and converts it to the domain shape
func ParseNZProduct(raw json.RawMessage) (domain.NZProduct, error) {
	var w nzProductWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return domain.NZProduct{}, fmt.Errorf("decode NZ product: %w", err)
	}
	if err := schemaValidator.Struct(&w); err != nil {
		return domain.NZProduct{}, fmt.Errorf("validate NZ product: %w", err)
	}

	return domain.NZProduct{
		Type:    *w.Type,
		SKU:     *w.SKU,
		Barcode: *w.Barcode,
		Name:    *w.Name,
		Brand:   *w.Brand,
		Slug:    *w.Slug,
		Unit:    *w.Unit,
		Variety: w.Variety.Value,
		Price: domain.NZPrice{
			OriginalPrice:  *w.Price.OriginalPrice,
			SalePrice:      *w.Price.SalePrice,
			SavePrice:      *w.Price.SavePrice,
			SavePercentage: *w.Price.SavePercentage,
			IsSpecial:      *w.Price.IsSpecial,
			IsClubPrice:    *w.Price.IsClubPrice,
		},
		Images: domain.NZImages{
			Small: *w.Images.Small,
			Big:   *w.Images.Big,
		},
		Size: domain.NZSize{
			CupPrice:    *w.Size.CupPrice,
			CupMeasure:  *w.Size.CupMeasure,
			PackageType: w.Size.PackageType.Value,
			VolumeSize:  *w.Size.VolumeSize,
		},
		AvailabilityStatus: *w.AvailabilityStatus,
		StockLevel:         *w.StockLevel,
	}, nil
}

// parseAUItems keeps the items that validate, in order; failures are logged and dropped
func parseAUItems(ctx context.Context, items []json.RawMessage) []domain.AUProduct {
	products := make([]domain.AUProduct, 0, len(items))
	for _, item := range items {
		p, err := ParseAUProduct(item)
		if err != nil {
			logger.Warn(ctx, "Failed to parse AU product",
				zap.ByteString("product", item),
				zap.String("error", err.Error()),
			)
			continue
		}
		products = append(products, p)
	}
	return products
}

// parseNZItems keeps the items that validate, in order. Items whose type is
// not a product are skipped quietly; other failures are logged and dropped.
func parseNZItems(ctx context.Context, items []json.RawMessage) []domain.NZProduct {
	products := make([]domain.NZProduct, 0, len(items))
	for _, item := range items {
		var tag struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(item, &tag); err == nil && tag.Type != "" && tag.Type != productTypeTag {
			logger.Debug(ctx, "Skipping non-product NZ item", zap.String("type", tag.Type))
			continue
		}

		p, err := ParseNZProduct(item)
		if err != nil {
			logger.Warn(ctx, "Failed to parse NZ product",
				zap.ByteString("product", item),
				zap.String("error", err.Error()),
			)
			continue
		}
		products = append(products, p)
	}
	return products
}

// decodeNZEnvelope decodes the NZ response envelope, leaving items raw
func decodeNZEnvelope(body []byte) ([]json.RawMessage, error) {
	var env nzSearchEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode NZ response: %w", err)
	}
	if err := schemaValidator.Struct(&env); err != nil {
		return nil, fmt.Errorf("invalid NZ response: %w", err)
	}
	return env.Products.Items, nil
}

// decodeAUEnvelope decodes the AU response envelope and flattens every group's items in order
func decodeAUEnvelope(body []byte) ([]json.RawMessage, error) {
	var env auSearchEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode AU response: %w", err)
	}
	if err := schemaValidator.Struct(&env); err != nil {
		return nil, fmt.Errorf("invalid AU response: %w", err)
	}

	var items []json.RawMessage
	for _, group := range env.Products.Groups {
		items = append(items, group.Products...)
	}
	return items, nil
}
