package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"perpus/domain"
	"perpus/repository"
	"perpus/testutil"
)

func newBooks(db *gorm.DB) *Books {
	return NewBooks(repository.NewBookRepo(db), repository.NewTxScope(db), nil)
}

func Test_Books_CreateStartsFullyAvailable(t *testing.T) {
	db := testutil.NewDB(t)
	books := newBooks(db)

	book, err := books.Create(context.Background(), domain.BookInput{
		BookCode:    " BK-001 ",
		Title:       "Bumi",
		Author:      "Tere Liye",
		TotalCopies: 4,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, book.ID)
	assert.Equal(t, "BK-001", book.BookCode)
	assert.Equal(t, 4, book.AvailableCopies)
	assert.Equal(t, 4, testutil.ReloadBook(t, db, book.ID).AvailableCopies)
}

func Test_Books_CreateValidates(t *testing.T) {
	books := newBooks(testutil.NewDB(t))

	_, err := books.Create(context.Background(), domain.BookInput{BookCode: "X", Title: "T", Author: "A", TotalCopies: 0})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func Test_Books_UpdateShiftsAvailability(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	books := newBooks(db)
	book := testutil.GivenBook(t, db, 5, 3)

	grown, err := books.Update(ctx, book.ID, domain.BookPatch{TotalCopies: testutil.Ptr(8)})
	require.NoError(t, err)
	assert.Equal(t, 8, grown.TotalCopies)
	assert.Equal(t, 6, grown.AvailableCopies)

	shrunk, err := books.Update(ctx, book.ID, domain.BookPatch{TotalCopies: testutil.Ptr(2), Title: testutil.Ptr("Bumi Manusia")})
	require.NoError(t, err)
	assert.Equal(t, 2, shrunk.TotalCopies)
	assert.Equal(t, 0, shrunk.AvailableCopies)
	assert.Equal(t, "Bumi Manusia", shrunk.Title)
}

func Test_Books_UpdateRefusesTotalBelowLoans(t *testing.T) {
	db := testutil.NewDB(t)
	books := newBooks(db)
	book := testutil.GivenBook(t, db, 5, 2)

	_, err := books.Update(context.Background(), book.ID, domain.BookPatch{TotalCopies: testutil.Ptr(2)})

	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Equal(t, 5, testutil.ReloadBook(t, db, book.ID).TotalCopies)
}

type brokenUpdates struct {
	repository.BookRepository
}

func (brokenUpdates) Update(context.Context, string, map[string]interface{}) (domain.Book, error) {
	return domain.Book{}, errors.New("database is locked")
}

func Test_Books_UpdateWrapsStoreFailure(t *testing.T) {
	db := testutil.NewDB(t)
	repo := brokenUpdates{repository.NewBookRepo(db)}
	books := NewBooks(repo, repository.NewDirectScope(repository.Stores{
		Books:      repo,
		Borrowings: repository.NewBorrowingRepo(db),
	}), nil)
	book := testutil.GivenBook(t, db, 2, 2)

	_, err := books.Update(context.Background(), book.ID, domain.BookPatch{Title: testutil.Ptr("Bumi")})

	var perr *domain.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "update book", perr.Op)
	assert.ErrorIs(t, err, domain.ErrPersistence)
}

func Test_Books_DeleteRemovesHistory(t *testing.T) {
	// setup
	ctx := context.Background()
	db := testutil.NewDB(t)
	books := newBooks(db)
	book := testutil.GivenBook(t, db, 2, 2)
	testutil.GivenBorrowing(t, db, book.ID, domain.StatusReturned, testutil.Day(2024, 1, 1))
	testutil.GivenBorrowing(t, db, book.ID, domain.StatusReturned, testutil.Day(2024, 2, 1))

	// act
	err := books.Delete(ctx, book.ID)

	// assert
	require.NoError(t, err)
	assert.Equal(t, int64(0), testutil.CountBorrowings(t, db))
	_, err = books.Get(ctx, book.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func Test_Books_DeleteWithActiveLoansIsRefused(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	books := newBooks(db)
	book := testutil.GivenBook(t, db, 3, 1)
	testutil.GivenBorrowing(t, db, book.ID, domain.StatusBorrowed, testutil.Day(2024, 1, 1))
	testutil.GivenBorrowing(t, db, book.ID, domain.StatusBorrowed, testutil.Day(2024, 1, 2))
	testutil.GivenBorrowing(t, db, book.ID, domain.StatusReturned, testutil.Day(2023, 12, 1))

	err := books.Delete(ctx, book.ID)

	var active *domain.ActiveLoansError
	require.ErrorAs(t, err, &active)
	assert.Equal(t, 2, active.Count)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Equal(t, int64(3), testutil.CountBorrowings(t, db))
	assert.Equal(t, 1, testutil.ReloadBook(t, db, book.ID).AvailableCopies)
}

func Test_Books_DeleteUnknown(t *testing.T) {
	err := newBooks(testutil.NewDB(t)).Delete(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func Test_Books_SearchEmptyListsAll(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.GivenBook(t, db, 1, 1)
	testutil.GivenBook(t, db, 1, 1)

	all, err := newBooks(db).Search(context.Background(), "  ")

	require.NoError(t, err)
	assert.Len(t, all, 2)
}
