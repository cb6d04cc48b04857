package repository

import (
	"context"

	"gorm.io/gorm"
)

// Stores are the repositories a unit of work operates on.
type Stores struct {
	Books      BookRepository
	Borrowings BorrowingRepository
}

// Scope runs a unit of work. An atomic scope undoes every write of fn when
// fn returns an error; a non-atomic one leaves undoing to the caller.
type Scope interface {
	Atomic() bool
	Run(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error
}

type txScope struct {
	database *gorm.DB
}

func (s *txScope) Atomic() bool { return true }

// Run opens a transaction and hands fn repositories bound to it. Reads of
// books and loans take row locks so concurrent operations on the same rows
// queue up instead of interleaving.
func (s *txScope) Run(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error {
	return s.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, Stores{
			Books:      &bookRepository{database: tx, lock: true},
			Borrowings: &borrowingRepository{database: tx, lock: true},
		})
	})
}

func NewTxScope(db *gorm.DB) Scope {
	return &txScope{database: db}
}

type directScope struct {
	stores Stores
}

func (s *directScope) Atomic() bool { return false }

func (s *directScope) Run(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error {
	return fn(ctx, s.stores)
}

// NewDirectScope applies each statement on its own.
func NewDirectScope(stores Stores) Scope {
	return &directScope{stores: stores}
}
