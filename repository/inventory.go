package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"perpus/domain"
)

type inventoryRepository struct {
	database *gorm.DB
}

func (i *inventoryRepository) GetById(ctx context.Context, id string) (domain.InventoryItem, error) {
	var item domain.InventoryItem
	if err := i.database.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return domain.InventoryItem{}, notFound(err, "inventory item", id)
	}
	return item, nil
}

func (i *inventoryRepository) List(ctx context.Context) ([]domain.InventoryItem, error) {
	var items []domain.InventoryItem
	err := i.database.WithContext(ctx).Order("created_at DESC").Order("id").Find(&items).Error
	return items, err
}

func (i *inventoryRepository) Create(ctx context.Context, item *domain.InventoryItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	return i.database.WithContext(ctx).Create(item).Error
}

func (i *inventoryRepository) Update(ctx context.Context, id string, fields map[string]interface{}) (domain.InventoryItem, error) {
	if len(fields) > 0 {
		err := i.database.WithContext(ctx).Model(&domain.InventoryItem{}).Where("id = ?", id).Updates(fields).Error
		if err != nil {
			return domain.InventoryItem{}, err
		}
	}
	return i.GetById(ctx, id)
}

func (i *inventoryRepository) Delete(ctx context.Context, id string) error {
	res := i.database.WithContext(ctx).Where("id = ?", id).Delete(&domain.InventoryItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("inventory item", id)
	}
	return nil
}

type InventoryRepository interface {
	GetById(ctx context.Context, id string) (domain.InventoryItem, error)
	List(ctx context.Context) ([]domain.InventoryItem, error)
	Create(ctx context.Context, item *domain.InventoryItem) error
	Update(ctx context.Context, id string, fields map[string]interface{}) (domain.InventoryItem, error)
	Delete(ctx context.Context, id string) error
}

func NewInventoryRepo(db *gorm.DB) InventoryRepository {
	return &inventoryRepository{database: db}
}
