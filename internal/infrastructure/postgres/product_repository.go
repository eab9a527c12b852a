package postgres

import (
	"context"
	"fmt"

	"github.com/woolies-greener/backend/internal/domain"
	"gorm.io/gorm"
)

// ProductRepository implements domain.ProductRepository using gorm
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new ProductRepository
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.MatchedProduct) error {
	return wrap(r.db.WithContext(ctx).Create(product).Error, nil, "create product")
}

// Update overwrites the editable columns of an existing product
func (r *ProductRepository) Update(ctx context.Context, product *domain.MatchedProduct) error {
	res := r.db.WithContext(ctx).
		Model(&domain.MatchedProduct{}).
		Where("id = ?", product.ID).
		Updates(map[string]interface{}{
			"title":           product.Title,
			"nzPrice":         product.NZPrice,
			"nzPriceOriginal": product.NZPriceOriginal,
			"auPrice":         product.AUPrice,
			"auPriceOriginal": product.AUPriceOriginal,
			"nzSku":           product.NZSku,
			"auStockcode":     product.AUStockcode,
			"imageUrl":        product.ImageURL,
			"updated":         product.Updated,
		})
	if res.Error != nil {
		return wrap(res.Error, nil, "update product")
	}
	if res.RowsAffected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// Delete removes the product's basket links and then the product, in one transaction
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(map[string]interface{}{"productId": id}).Delete(&domain.BasketProduct{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.MatchedProduct{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return wrap(err, domain.ErrProductNotFound, "delete product")
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.MatchedProduct, error) {
	var p domain.MatchedProduct
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, wrap(err, domain.ErrProductNotFound, "find product")
	}
	return &p, nil
}

// List returns every product ordered by title
func (r *ProductRepository) List(ctx context.Context) ([]domain.MatchedProduct, error) {
	var products []domain.MatchedProduct
	if err := r.db.WithContext(ctx).Order("title").Find(&products).Error; err != nil {
		return nil, wrap(err, nil, "list products")
	}
	return products, nil
}

// ListByBasket returns the products linked to a basket. A product linked
// twice appears twice, matching the join.
func (r *ProductRepository) ListByBasket(ctx context.Context, basketID string) ([]domain.MatchedProduct, error) {
	var products []domain.MatchedProduct
	err := r.db.WithContext(ctx).
		Table("product").
		Select("product.*").
		Joins(`JOIN basket_product ON basket_product."productId" = product.id`).
		Where(`basket_product."basketId" = ?`, basketID).
		Order("product.title").
		Find(&products).Error
	if err != nil {
		return nil, wrap(err, nil, fmt.Sprintf("list products of basket %s", basketID))
	}
	return products, nil
}

// BasketIDs returns the distinct basket IDs a product is linked to
func (r *ProductRepository) BasketIDs(ctx context.Context, productID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&domain.BasketProduct{}).
		Where(map[string]interface{}{"productId": productID}).
		Distinct().
		Pluck("basketId", &ids).Error
	if err != nil {
		return nil, wrap(err, nil, "list product baskets")
	}
	return ids, nil
}

func (r *ProductRepository) LinkBasket(ctx context.Context, link *domain.BasketProduct) error {
	return wrap(r.db.WithContext(ctx).Create(link).Error, nil, "link basket")
}

// UnlinkBaskets removes every link between the product and the given baskets
func (r *ProductRepository) UnlinkBaskets(ctx context.Context, productID string, basketIDs []string) error {
	if len(basketIDs) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Where(map[string]interface{}{"productId": productID, "basketId": basketIDs}).
		Delete(&domain.BasketProduct{}).Error
	return wrap(err, nil, "unlink baskets")
}
