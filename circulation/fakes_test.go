package circulation

import (
	"context"
	"sync"

	"perpus/domain"
	"perpus/events"
	"perpus/repository"
)

// flakyBooks fails AdjustAvailability for the deltas listed in fail.
type flakyBooks struct {
	repository.BookRepository
	fail map[int]error
}

func (f *flakyBooks) AdjustAvailability(ctx context.Context, id string, delta int) (domain.Book, error) {
	if err, ok := f.fail[delta]; ok {
		return domain.Book{}, err
	}
	return f.BookRepository.AdjustAvailability(ctx, id, delta)
}

type flakyBorrowings struct {
	repository.BorrowingRepository
	failCreate error
	failUpdate error
	failDelete error
}

func (f *flakyBorrowings) Create(ctx context.Context, b *domain.Borrowing) error {
	if f.failCreate != nil {
		return f.failCreate
	}
	return f.BorrowingRepository.Create(ctx, b)
}

func (f *flakyBorrowings) Update(ctx context.Context, id string, fields map[string]interface{}) (domain.Borrowing, error) {
	if f.failUpdate != nil {
		return domain.Borrowing{}, f.failUpdate
	}
	return f.BorrowingRepository.Update(ctx, id, fields)
}

func (f *flakyBorrowings) Delete(ctx context.Context, id string) error {
	if f.failDelete != nil {
		return f.failDelete
	}
	return f.BorrowingRepository.Delete(ctx, id)
}

// wrappedScope swaps the stores handed to each unit of work.
type wrappedScope struct {
	repository.Scope
	wrap func(repository.Stores) repository.Stores
}

func (w wrappedScope) Run(ctx context.Context, fn func(ctx context.Context, stores repository.Stores) error) error {
	return w.Scope.Run(ctx, func(ctx context.Context, s repository.Stores) error {
		return fn(ctx, w.wrap(s))
	})
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}
