package postgres

import (
	"context"

	"github.com/woolies-greener/backend/internal/domain"
	"gorm.io/gorm"
)

// BasketRepository implements domain.BasketRepository using gorm
type BasketRepository struct {
	db *gorm.DB
}

// NewBasketRepository creates a new BasketRepository
func NewBasketRepository(db *gorm.DB) *BasketRepository {
	return &BasketRepository{db: db}
}

func (r *BasketRepository) Create(ctx context.Context, basket *domain.Basket) error {
	return wrap(r.db.WithContext(ctx).Create(basket).Error, nil, "create basket")
}

// Delete removes the basket's product links and then the basket
func (r *BasketRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(map[string]interface{}{"basketId": id}).Delete(&domain.BasketProduct{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.Basket{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return wrap(err, domain.ErrBasketNotFound, "delete basket")
}

func (r *BasketRepository) List(ctx context.Context) ([]domain.Basket, error) {
	var baskets []domain.Basket
	if err := r.db.WithContext(ctx).Order("name").Find(&baskets).Error; err != nil {
		return nil, wrap(err, nil, "list baskets")
	}
	return baskets, nil
}

func (r *BasketRepository) FindByID(ctx context.Context, id string) (*domain.Basket, error) {
	var b domain.Basket
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, wrap(err, domain.ErrBasketNotFound, "find basket")
	}
	return &b, nil
}

// FindByName returns the first basket with exactly this name
func (r *BasketRepository) FindByName(ctx context.Context, name string) (*domain.Basket, error) {
	var b domain.Basket
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&b).Error; err != nil {
		return nil, wrap(err, domain.ErrBasketNotFound, "find basket")
	}
	return &b, nil
}
