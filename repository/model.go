package repository

import (
	"errors"

	"gorm.io/gorm"

	"perpus/domain"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.Book{}, &domain.Borrowing{}, &domain.InventoryItem{})
}

func notFound(err error, kind, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NotFound(kind, id)
	}
	return err
}
