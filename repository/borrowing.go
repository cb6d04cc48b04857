package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"perpus/domain"
)

type borrowingRepository struct {
	database *gorm.DB
	lock     bool
}

func (r *borrowingRepository) db(ctx context.Context) *gorm.DB {
	return r.database.WithContext(ctx)
}

// GetById loads the loan together with its book. Book stays nil when the
// referenced row no longer exists.
func (r *borrowingRepository) GetById(ctx context.Context, id string) (domain.Borrowing, error) {
	var borrowing domain.Borrowing
	query := r.db(ctx)
	if r.lock {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := query.Preload("Book").Where("id = ?", id).First(&borrowing).Error; err != nil {
		return domain.Borrowing{}, notFound(err, "borrowing", id)
	}
	return borrowing, nil
}

func (r *borrowingRepository) List(ctx context.Context, withBook bool) ([]domain.Borrowing, error) {
	var borrowings []domain.Borrowing
	query := r.db(ctx).Order("created_at DESC").Order("id")
	if withBook {
		query = query.Preload("Book")
	}
	err := query.Find(&borrowings).Error
	return borrowings, err
}

func (r *borrowingRepository) Recent(ctx context.Context, limit int) ([]domain.Borrowing, error) {
	var borrowings []domain.Borrowing
	err := r.db(ctx).Preload("Book").
		Order("created_at DESC").Order("id").
		Limit(limit).
		Find(&borrowings).Error
	return borrowings, err
}

func (r *borrowingRepository) Create(ctx context.Context, borrowing *domain.Borrowing) error {
	if borrowing.ID == "" {
		borrowing.ID = uuid.NewString()
	}
	return r.db(ctx).Omit(clause.Associations).Create(borrowing).Error
}

func (r *borrowingRepository) Update(ctx context.Context, id string, fields map[string]interface{}) (domain.Borrowing, error) {
	if len(fields) > 0 {
		res := r.db(ctx).Model(&domain.Borrowing{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return domain.Borrowing{}, res.Error
		}
	}
	return r.GetById(ctx, id)
}

func (r *borrowingRepository) Delete(ctx context.Context, id string) error {
	res := r.db(ctx).Where("id = ?", id).Delete(&domain.Borrowing{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("borrowing", id)
	}
	return nil
}

func (r *borrowingRepository) DeleteByBook(ctx context.Context, bookID string) (int64, error) {
	res := r.db(ctx).Where("book_id = ?", bookID).Delete(&domain.Borrowing{})
	return res.RowsAffected, res.Error
}

type BorrowingRepository interface {
	GetById(ctx context.Context, id string) (domain.Borrowing, error)
	List(ctx context.Context, withBook bool) ([]domain.Borrowing, error)
	Recent(ctx context.Context, limit int) ([]domain.Borrowing, error)
	Create(ctx context.Context, borrowing *domain.Borrowing) error
	Update(ctx context.Context, id string, fields map[string]interface{}) (domain.Borrowing, error)
	Delete(ctx context.Context, id string) error
	DeleteByBook(ctx context.Context, bookID string) (int64, error)
}

func NewBorrowingRepo(db *gorm.DB) BorrowingRepository {
	return &borrowingRepository{database: db}
}
