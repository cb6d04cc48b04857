package circulation

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"perpus/clock"
	"perpus/domain"
	"perpus/events"
	"perpus/log"
	"perpus/repository"
)

// Coordinator runs the loan operations that touch both a book's stock and
// the borrowing ledger. Each operation executes inside a repository.Scope.
// When the scope is atomic a failed step rolls back the whole operation;
// otherwise the coordinator issues one compensating write per completed
// step and reports the outcome.
type Coordinator struct {
	scope     repository.Scope
	clock     clock.Clock
	publisher events.Publisher
	validate  *validator.Validate
}

func (c *Coordinator) CreateBorrowing(ctx context.Context, req domain.BorrowingRequest) (domain.Borrowing, error) {
	const op = "create borrowing"
	logger := log.GetLogger(ctx)
	if err := c.validateRequest(req); err != nil {
		return domain.Borrowing{}, err
	}

	var created domain.Borrowing
	err := c.scope.Run(ctx, func(ctx context.Context, s repository.Stores) error {
		book, err := s.Books.GetById(ctx, req.BookID)
		if err != nil {
			return err
		}
		if book.AvailableCopies <= 0 {
			return fmt.Errorf("book %s: %w", book.ID, domain.ErrOutOfStock)
		}

		logger.Infof("Lend phase: take one copy of book %s", book.ID)
		book, err = s.Books.AdjustAvailability(ctx, book.ID, -1)
		if err != nil {
			logger.WithError(err).Errorf("Lend phase: stock deduct fail: %s", err)
			return err
		}

		borrowDate := req.BorrowDate
		if borrowDate.IsZero() {
			borrowDate = c.clock.Today()
		}
		borrowing := domain.Borrowing{
			BorrowerName: req.BorrowerName,
			BorrowerUnit: req.BorrowerUnit,
			BookID:       book.ID,
			BorrowDate:   clock.Date(borrowDate),
			DueDate:      clock.Date(req.DueDate),
			Status:       domain.StatusBorrowed,
			Notes:        req.Notes,
		}
		if err = s.Borrowings.Create(ctx, &borrowing); err != nil {
			logger.WithError(err).Errorf("Lend phase: insert borrowing fail: %s", err)
			return c.compensate(ctx, op, err, func() error {
				logger.Infof("Lend phase: give back copy of book %s", book.ID)
				_, rerr := s.Books.AdjustAvailability(ctx, book.ID, 1)
				return rerr
			})
		}
		borrowing.Book = &book
		created = borrowing
		return nil
	})
	if err != nil {
		return domain.Borrowing{}, persistence(op, err)
	}
	c.publish(ctx, events.New(events.BorrowingCreated, created.ID, created.BookID))
	return created, nil
}

// ReturnBook closes an outstanding loan and puts the copy back on the shelf.
// Returning a loan that is already closed fails with ErrInvalidState.
func (c *Coordinator) ReturnBook(ctx context.Context, id string) (domain.Borrowing, error) {
	const op = "return book"
	logger := log.GetLogger(ctx)

	var returned domain.Borrowing
	err := c.scope.Run(ctx, func(ctx context.Context, s repository.Stores) error {
		borrowing, err := s.Borrowings.GetById(ctx, id)
		if err != nil {
			return err
		}
		if !borrowing.Status.Outstanding() {
			return fmt.Errorf("borrowing %s is %s: %w", id, borrowing.Status, domain.ErrInvalidState)
		}

		restocked := borrowing.Book != nil
		if restocked {
			logger.Infof("Return phase: put back copy of book %s", borrowing.BookID)
			if _, err = s.Books.AdjustAvailability(ctx, borrowing.BookID, 1); err != nil {
				logger.WithError(err).Errorf("Return phase: stock revert fail: %s", err)
				return err
			}
		} else {
			logger.Warnf("Return phase: book %s of borrowing %s is gone, stock untouched", borrowing.BookID, id)
		}

		returned, err = s.Borrowings.Update(ctx, id, map[string]interface{}{
			"status":      domain.StatusReturned,
			"return_date": c.clock.Today(),
		})
		if err != nil {
			logger.WithError(err).Errorf("Return phase: update borrowing fail: %s", err)
			if !restocked {
				return err
			}
			return c.compensate(ctx, op, err, func() error {
				logger.Infof("Return phase: take copy of book %s again", borrowing.BookID)
				_, rerr := s.Books.AdjustAvailability(ctx, borrowing.BookID, -1)
				return rerr
			})
		}
		return nil
	})
	if err != nil {
		return domain.Borrowing{}, persistence(op, err)
	}
	c.publish(ctx, events.New(events.BorrowingReturned, returned.ID, returned.BookID))
	return returned, nil
}

// DeleteBorrowing removes a loan record. An outstanding loan gives its copy
// back; a closed one leaves stock as it is.
func (c *Coordinator) DeleteBorrowing(ctx context.Context, id string) error {
	const op = "delete borrowing"
	logger := log.GetLogger(ctx)

	var deleted domain.Borrowing
	err := c.scope.Run(ctx, func(ctx context.Context, s repository.Stores) error {
		borrowing, err := s.Borrowings.GetById(ctx, id)
		if err != nil {
			return err
		}
		deleted = borrowing

		logger.Infof("Delete phase: remove borrowing %s", id)
		if err = s.Borrowings.Delete(ctx, id); err != nil {
			logger.WithError(err).Errorf("Delete phase: delete borrowing fail: %s", err)
			return err
		}
		if !borrowing.Status.Outstanding() || borrowing.Book == nil {
			return nil
		}

		if _, err = s.Books.AdjustAvailability(ctx, borrowing.BookID, 1); err != nil {
			logger.WithError(err).Errorf("Delete phase: stock revert fail: %s", err)
			return c.compensate(ctx, op, err, func() error {
				logger.Infof("Delete phase: restore borrowing %s", id)
				restored := borrowing
				restored.Book = nil
				return s.Borrowings.Create(ctx, &restored)
			})
		}
		return nil
	})
	if err != nil {
		return persistence(op, err)
	}
	c.publish(ctx, events.New(events.BorrowingDeleted, deleted.ID, deleted.BookID))
	return nil
}

// UpdateBorrowing edits the fields of a loan that do not affect stock.
func (c *Coordinator) UpdateBorrowing(ctx context.Context, id string, patch domain.BorrowingPatch) (domain.Borrowing, error) {
	const op = "update borrowing"
	if err := c.validate.Struct(patch); err != nil {
		return domain.Borrowing{}, domain.Invalid("%s", err)
	}

	fields := map[string]interface{}{}
	if patch.BorrowerName != nil {
		fields["borrower_name"] = *patch.BorrowerName
	}
	if patch.BorrowerUnit != nil {
		fields["borrower_unit"] = *patch.BorrowerUnit
	}
	if patch.Notes != nil {
		fields["notes"] = *patch.Notes
	}

	var updated domain.Borrowing
	err := c.scope.Run(ctx, func(ctx context.Context, s repository.Stores) error {
		current, err := s.Borrowings.GetById(ctx, id)
		if err != nil {
			return err
		}
		if patch.DueDate != nil {
			due := clock.Date(*patch.DueDate)
			if due.Before(current.BorrowDate) {
				return domain.Invalid("due date %s is before borrow date %s",
					due.Format(time.DateOnly), current.BorrowDate.Format(time.DateOnly))
			}
			fields["due_date"] = due
		}
		updated, err = s.Borrowings.Update(ctx, id, fields)
		return err
	})
	if err != nil {
		return domain.Borrowing{}, persistence(op, err)
	}
	c.publish(ctx, events.New(events.BorrowingUpdated, updated.ID, updated.BookID))
	return updated, nil
}

func (c *Coordinator) validateRequest(req domain.BorrowingRequest) error {
	if err := c.validate.Struct(req); err != nil {
		return domain.Invalid("%s", err)
	}
	if req.DueDate.IsZero() {
		return domain.Invalid("due date is required")
	}
	borrowDate := req.BorrowDate
	if borrowDate.IsZero() {
		borrowDate = c.clock.Today()
	}
	if clock.Date(req.DueDate).Before(clock.Date(borrowDate)) {
		return domain.Invalid("due date %s is before borrow date %s",
			req.DueDate.Format(time.DateOnly), borrowDate.Format(time.DateOnly))
	}
	return nil
}

// compensate undoes the last completed step after cause. Inside an atomic
// scope the transaction rollback already does that.
func (c *Coordinator) compensate(ctx context.Context, op string, cause error, rollback func() error) error {
	logger := log.GetLogger(ctx)
	if c.scope.Atomic() {
		return &domain.PersistenceError{Op: op, Err: cause}
	}
	logger.Infof("Cancel phase: %s", op)
	if rerr := rollback(); rerr != nil {
		logger.WithError(rerr).Errorf("Cancel phase: compensation for %s fail, data may be inconsistent: %s", op, rerr)
		return &domain.CompensationError{Op: op, Cause: cause, Rollback: rerr}
	}
	return &domain.PersistenceError{Op: op, Err: cause}
}

func (c *Coordinator) publish(ctx context.Context, e events.Event) {
	if err := c.publisher.Publish(ctx, e); err != nil {
		log.GetLogger(ctx).WithError(err).Warnf("publish %s for %s fail", e.Type, e.EntityID)
	}
}

// persistence wraps store errors that carry no domain meaning yet.
func persistence(op string, err error) error {
	if domain.IsDomain(err) {
		return err
	}
	return &domain.PersistenceError{Op: op, Err: err}
}

func NewCoordinator(
	scope repository.Scope,
	clk clock.Clock,
	publisher events.Publisher,
) *Coordinator {
	if publisher == nil {
		publisher = events.Nop()
	}
	v := validator.New()
	v.SetTagName("binding")
	return &Coordinator{
		scope:     scope,
		clock:     clk,
		publisher: publisher,
		validate:  v,
	}
}
