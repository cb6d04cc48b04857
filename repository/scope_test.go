package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perpus/domain"
	"perpus/repository"
	"perpus/testutil"
)

func Test_TxScope_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	book := testutil.GivenBook(t, db, 2, 2)
	boom := errors.New("boom")

	err := repository.NewTxScope(db).Run(ctx, func(ctx context.Context, s repository.Stores) error {
		if _, err := s.Books.AdjustAvailability(ctx, book.ID, -1); err != nil {
			return err
		}
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, testutil.ReloadBook(t, db, book.ID).AvailableCopies)
}

func Test_TxScope_Commits(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	book := testutil.GivenBook(t, db, 2, 2)
	scope := repository.NewTxScope(db)

	err := scope.Run(ctx, func(ctx context.Context, s repository.Stores) error {
		if _, err := s.Books.AdjustAvailability(ctx, book.ID, -1); err != nil {
			return err
		}
		return s.Borrowings.Create(ctx, &domain.Borrowing{
			BorrowerName: "Budi", BorrowerUnit: "Guru", BookID: book.ID,
			BorrowDate: testutil.Day(2024, 1, 1), DueDate: testutil.Day(2024, 1, 8),
			Status: domain.StatusBorrowed,
		})
	})

	require.NoError(t, err)
	assert.True(t, scope.Atomic())
	assert.Equal(t, 1, testutil.ReloadBook(t, db, book.ID).AvailableCopies)
	assert.Equal(t, int64(1), testutil.CountBorrowings(t, db))
}

func Test_DirectScope_KeepsEarlierWrites(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	book := testutil.GivenBook(t, db, 2, 2)
	scope := repository.NewDirectScope(repository.Stores{
		Books:      repository.NewBookRepo(db),
		Borrowings: repository.NewBorrowingRepo(db),
	})

	err := scope.Run(ctx, func(ctx context.Context, s repository.Stores) error {
		_, _ = s.Books.AdjustAvailability(ctx, book.ID, -1)
		return errors.New("boom")
	})

	assert.Error(t, err)
	assert.False(t, scope.Atomic())
	assert.Equal(t, 1, testutil.ReloadBook(t, db, book.ID).AvailableCopies)
}
