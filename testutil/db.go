// Package testutil holds fixtures shared by the package tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"perpus/domain"
	"perpus/repository"
)

// NewDB opens a private in-memory sqlite database with the schema applied.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repository.InitDatabase(repository.DatabaseConfig{
		Driver: "sqlite",
		Path:   fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func Ptr[T any](v T) *T { return &v }

func GivenBook(t *testing.T, db *gorm.DB, total, available int) domain.Book {
	t.Helper()
	book := domain.Book{
		BookCode:        "BK-" + uuid.NewString()[:8],
		Title:           "Laskar Pelangi",
		Author:          "Andrea Hirata",
		Category:        Ptr("Fiksi"),
		TotalCopies:     total,
		AvailableCopies: available,
	}
	require.NoError(t, repository.NewBookRepo(db).Create(context.Background(), &book))
	return book
}

func GivenBorrowing(t *testing.T, db *gorm.DB, bookID string, status domain.BorrowingStatus, due time.Time) domain.Borrowing {
	t.Helper()
	borrowing := domain.Borrowing{
		BorrowerName: "Siti",
		BorrowerUnit: "Kelas 7A",
		BookID:       bookID,
		BorrowDate:   due.AddDate(0, 0, -7),
		DueDate:      due,
		Status:       status,
	}
	if status == domain.StatusReturned {
		borrowing.ReturnDate = Ptr(due)
	}
	require.NoError(t, repository.NewBorrowingRepo(db).Create(context.Background(), &borrowing))
	return borrowing
}

func ReloadBook(t *testing.T, db *gorm.DB, id string) domain.Book {
	t.Helper()
	book, err := repository.NewBookRepo(db).GetById(context.Background(), id)
	require.NoError(t, err)
	return book
}

func CountBorrowings(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&domain.Borrowing{}).Count(&n).Error)
	return n
}
