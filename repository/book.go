package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"perpus/domain"
)

type bookRepository struct {
	database *gorm.DB
	// lock takes a row lock on reads; only meaningful inside a transaction.
	lock bool
}

func (b *bookRepository) db(ctx context.Context) *gorm.DB {
	return b.database.WithContext(ctx)
}

func (b *bookRepository) GetById(ctx context.Context, id string) (domain.Book, error) {
	var book domain.Book
	query := b.db(ctx)
	if b.lock {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := query.Where("id = ?", id).First(&book).Error; err != nil {
		return domain.Book{}, notFound(err, "book", id)
	}
	return book, nil
}

func (b *bookRepository) List(ctx context.Context) ([]domain.Book, error) {
	var books []domain.Book
	err := b.db(ctx).Order("created_at DESC").Order("id").Find(&books).Error
	return books, err
}

func (b *bookRepository) Search(ctx context.Context, q string) ([]domain.Book, error) {
	var books []domain.Book
	pattern := "%" + strings.ToLower(strings.TrimSpace(q)) + "%"
	err := b.db(ctx).
		Where("LOWER(title) LIKE ? OR LOWER(author) LIKE ? OR LOWER(book_code) LIKE ?", pattern, pattern, pattern).
		Order("title").Order("id").
		Find(&books).Error
	return books, err
}

func (b *bookRepository) Create(ctx context.Context, book *domain.Book) error {
	if book.ID == "" {
		book.ID = uuid.NewString()
	}
	err := b.db(ctx).Create(book).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.Invalid("book code %q already exists", book.BookCode)
	}
	return err
}

func (b *bookRepository) Update(ctx context.Context, id string, fields map[string]interface{}) (domain.Book, error) {
	if len(fields) > 0 {
		err := b.db(ctx).Model(&domain.Book{}).Where("id = ?", id).Updates(fields).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.Book{}, domain.Invalid("book code already exists")
		}
		if err != nil {
			return domain.Book{}, err
		}
	}
	return b.GetById(ctx, id)
}

func (b *bookRepository) Delete(ctx context.Context, id string) error {
	res := b.db(ctx).Where("id = ?", id).Delete(&domain.Book{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("book", id)
	}
	return nil
}

// AdjustAvailability moves available_copies by delta in a single
// conditional UPDATE, so concurrent callers can never drive the counter
// below zero or above total_copies. A decrement that would go negative
// fails with ErrOutOfStock; an increment past total_copies leaves the row
// untouched and returns it as is.
func (b *bookRepository) AdjustAvailability(ctx context.Context, id string, delta int) (domain.Book, error) {
	query := b.db(ctx).Model(&domain.Book{}).Where("id = ?", id)
	if delta < 0 {
		query = query.Where("available_copies >= ?", -delta)
	} else {
		query = query.Where("available_copies + ? <= total_copies", delta)
	}
	res := query.Update("available_copies", gorm.Expr("available_copies + ?", delta))
	if res.Error != nil {
		return domain.Book{}, res.Error
	}
	book, err := b.GetById(ctx, id)
	if err != nil {
		return domain.Book{}, err
	}
	if res.RowsAffected == 0 && delta < 0 {
		return book, fmt.Errorf("book %s has %d available: %w", id, book.AvailableCopies, domain.ErrOutOfStock)
	}
	return book, nil
}

type BookRepository interface {
	GetById(ctx context.Context, id string) (domain.Book, error)
	List(ctx context.Context) ([]domain.Book, error)
	Search(ctx context.Context, q string) ([]domain.Book, error)
	Create(ctx context.Context, book *domain.Book) error
	Update(ctx context.Context, id string, fields map[string]interface{}) (domain.Book, error)
	Delete(ctx context.Context, id string) error
	AdjustAvailability(ctx context.Context, id string, delta int) (domain.Book, error)
}

func NewBookRepo(db *gorm.DB) BookRepository {
	return &bookRepository{database: db}
}
