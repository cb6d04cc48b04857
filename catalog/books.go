package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"perpus/domain"
	"perpus/events"
	"perpus/log"
	"perpus/repository"
)

type Books struct {
	books     repository.BookRepository
	scope     repository.Scope
	publisher events.Publisher
	validate  *validator.Validate
}

func (b *Books) Get(ctx context.Context, id string) (domain.Book, error) {
	return b.books.GetById(ctx, id)
}

func (b *Books) List(ctx context.Context) ([]domain.Book, error) {
	return b.books.List(ctx)
}

// Search matches title, author and book code case-insensitively. An empty
// query lists everything.
func (b *Books) Search(ctx context.Context, q string) ([]domain.Book, error) {
	if strings.TrimSpace(q) == "" {
		return b.books.List(ctx)
	}
	return b.books.Search(ctx, q)
}

func (b *Books) Create(ctx context.Context, in domain.BookInput) (domain.Book, error) {
	if err := b.validate.Struct(in); err != nil {
		return domain.Book{}, domain.Invalid("%s", err)
	}
	book := domain.Book{
		BookCode:        strings.TrimSpace(in.BookCode),
		Title:           in.Title,
		Author:          in.Author,
		Publisher:       in.Publisher,
		PublicationYear: in.PublicationYear,
		Category:        in.Category,
		TotalCopies:     in.TotalCopies,
		AvailableCopies: in.TotalCopies,
		ShelfLocation:   in.ShelfLocation,
		Description:     in.Description,
		CoverURL:        in.CoverURL,
	}
	if err := b.books.Create(ctx, &book); err != nil {
		return domain.Book{}, err
	}
	b.publish(ctx, events.New(events.BookCreated, book.ID, book.ID))
	return book, nil
}

// Update applies patch. A change of total_copies moves available_copies by
// the same amount, never below zero, and is refused when it would leave
// fewer copies than are out on loan.
func (b *Books) Update(ctx context.Context, id string, patch domain.BookPatch) (domain.Book, error) {
	if err := b.validate.Struct(patch); err != nil {
		return domain.Book{}, domain.Invalid("%s", err)
	}
	fields := bookFields(patch)

	var updated domain.Book
	err := b.scope.Run(ctx, func(ctx context.Context, s repository.Stores) error {
		current, err := s.Books.GetById(ctx, id)
		if err != nil {
			return err
		}
		if patch.TotalCopies != nil && *patch.TotalCopies != current.TotalCopies {
			total := *patch.TotalCopies
			if total < current.OnLoan() {
				return fmt.Errorf("book %s has %d copies on loan, cannot shrink to %d: %w",
					id, current.OnLoan(), total, domain.ErrInvalidState)
			}
			available := current.AvailableCopies + total - current.TotalCopies
			if available < 0 {
				available = 0
			}
			fields["total_copies"] = total
			fields["available_copies"] = available
		}
		updated, err = s.Books.Update(ctx, id, fields)
		return err
	})
	if err != nil {
		if !domain.IsDomain(err) {
			return domain.Book{}, &domain.PersistenceError{Op: "update book", Err: err}
		}
		return domain.Book{}, err
	}
	b.publish(ctx, events.New(events.BookUpdated, id, id))
	return updated, nil
}

// Delete removes a book and its loan history. Books with copies out on
// loan are kept and an ActiveLoansError names how many.
func (b *Books) Delete(ctx context.Context, id string) error {
	logger := log.GetLogger(ctx)
	err := b.scope.Run(ctx, func(ctx context.Context, s repository.Stores) error {
		book, err := s.Books.GetById(ctx, id)
		if err != nil {
			return err
		}
		if book.AvailableCopies != book.TotalCopies {
			return &domain.ActiveLoansError{BookID: id, Count: book.OnLoan()}
		}
		n, err := s.Borrowings.DeleteByBook(ctx, id)
		if err != nil {
			return err
		}
		logger.Infof("removed %d borrowing record(s) of book %s", n, id)
		return s.Books.Delete(ctx, id)
	})
	if err != nil {
		if !domain.IsDomain(err) {
			return &domain.PersistenceError{Op: "delete book", Err: err}
		}
		return err
	}
	b.publish(ctx, events.New(events.BookDeleted, id, id))
	return nil
}

func (b *Books) publish(ctx context.Context, e events.Event) {
	if err := b.publisher.Publish(ctx, e); err != nil {
		log.GetLogger(ctx).WithError(err).Warnf("publish %s for %s fail", e.Type, e.EntityID)
	}
}

func bookFields(p domain.BookPatch) map[string]interface{} {
	fields := map[string]interface{}{}
	if p.BookCode != nil {
		fields["book_code"] = strings.TrimSpace(*p.BookCode)
	}
	if p.Title != nil {
		fields["title"] = *p.Title
	}
	if p.Author != nil {
		fields["author"] = *p.Author
	}
	if p.Publisher != nil {
		fields["publisher"] = *p.Publisher
	}
	if p.PublicationYear != nil {
		fields["publication_year"] = *p.PublicationYear
	}
	if p.Category != nil {
		fields["category"] = *p.Category
	}
	if p.ShelfLocation != nil {
		fields["shelf_location"] = *p.ShelfLocation
	}
	if p.Description != nil {
		fields["description"] = *p.Description
	}
	if p.CoverURL != nil {
		fields["cover_url"] = *p.CoverURL
	}
	return fields
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	return v
}

func NewBooks(books repository.BookRepository, scope repository.Scope, publisher events.Publisher) *Books {
	if publisher == nil {
		publisher = events.Nop()
	}
	return &Books{
		books:     books,
		scope:     scope,
		publisher: publisher,
		validate:  newValidator(),
	}
}
