package report

import (
	"context"
	"fmt"
	"time"

	"perpus/clock"
	"perpus/domain"
	"perpus/events"
	"perpus/log"
	"perpus/repository"
)

const (
	DashboardCategoryLimit = 6
	ReportCategoryLimit    = 8
	DashboardPopularLimit  = 5
	ReportPopularLimit     = 10
	RecentLimit            = 5
	MaxMonthlySpan         = 60
)

// Service loads snapshots from the repositories and feeds them to the
// aggregation functions, caching results until the next change.
type Service struct {
	books      repository.BookRepository
	borrowings repository.BorrowingRepository
	inventory  repository.InventoryRepository
	clock      clock.Clock
	cache      Cache
}

func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	today := s.clock.Today()
	return cached(ctx, s, "dashboard:"+today.Format(time.DateOnly), func() (Dashboard, error) {
		books, borrowings, err := s.snapshot(ctx)
		if err != nil {
			return Dashboard{}, err
		}
		items, err := s.inventory.List(ctx)
		if err != nil {
			return Dashboard{}, err
		}
		return BuildDashboard(books, borrowings, items, today), nil
	})
}

func (s *Service) Summary(ctx context.Context) (Summary, error) {
	today := s.clock.Today()
	return cached(ctx, s, "summary:"+today.Format(time.DateOnly), func() (Summary, error) {
		books, borrowings, err := s.snapshot(ctx)
		if err != nil {
			return Summary{}, err
		}
		return BuildSummary(books, borrowings, today), nil
	})
}

// Monthly covers at most MaxMonthlySpan months.
func (s *Service) Monthly(ctx context.Context, from, to time.Time) ([]MonthlyStat, error) {
	if span := monthsBetween(from, to) + 1; span > MaxMonthlySpan {
		return nil, domain.Invalid("monthly report spans %d months, at most %d allowed", span, MaxMonthlySpan)
	}
	key := fmt.Sprintf("monthly:%s:%s", from.Format(monthLayout), to.Format(monthLayout))
	return cached(ctx, s, key, func() ([]MonthlyStat, error) {
		books, borrowings, err := s.snapshot(ctx)
		if err != nil {
			return nil, err
		}
		return MonthlyStats(books, borrowings, from, to, s.clock.Now().Location()), nil
	})
}

func (s *Service) Categories(ctx context.Context, limit int) ([]CategoryStat, error) {
	return cached(ctx, s, fmt.Sprintf("categories:%d", limit), func() ([]CategoryStat, error) {
		books, err := s.books.List(ctx)
		if err != nil {
			return nil, err
		}
		return CategoryStats(books, limit), nil
	})
}

func (s *Service) BorrowingsByCategory(ctx context.Context) ([]CategoryStat, error) {
	return cached(ctx, s, "borrowings-by-category", func() ([]CategoryStat, error) {
		books, borrowings, err := s.snapshot(ctx)
		if err != nil {
			return nil, err
		}
		return BorrowingsByCategory(books, borrowings), nil
	})
}

func (s *Service) Popular(ctx context.Context, limit int) ([]PopularBook, error) {
	return cached(ctx, s, fmt.Sprintf("popular:%d", limit), func() ([]PopularBook, error) {
		books, borrowings, err := s.snapshot(ctx)
		if err != nil {
			return nil, err
		}
		return PopularBooks(books, borrowings, limit), nil
	})
}

func (s *Service) Overdue(ctx context.Context) (OverdueReport, error) {
	today := s.clock.Today()
	return cached(ctx, s, "overdue:"+today.Format(time.DateOnly), func() (OverdueReport, error) {
		borrowings, err := s.borrowings.List(ctx, true)
		if err != nil {
			return OverdueReport{}, err
		}
		return OverdueAnalysis(borrowings, today), nil
	})
}

func (s *Service) Recent(ctx context.Context, limit int) ([]domain.Borrowing, error) {
	if limit <= 0 {
		limit = RecentLimit
	}
	return s.borrowings.Recent(ctx, limit)
}

func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Invalidate(ctx)
}

// Handle drops cached reports whenever the catalog, the ledger or the
// inventory changes.
func (s *Service) Handle(ctx context.Context, e events.Event) error {
	log.GetLogger(ctx).Debugf("invalidating reports after %s", e.Type)
	return s.Invalidate(ctx)
}

func (s *Service) snapshot(ctx context.Context) ([]domain.Book, []domain.Borrowing, error) {
	books, err := s.books.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	borrowings, err := s.borrowings.List(ctx, false)
	if err != nil {
		return nil, nil, err
	}
	return books, borrowings, nil
}

func cached[T any](ctx context.Context, s *Service, key string, load func() (T, error)) (T, error) {
	logger := log.GetLogger(ctx)
	gen, err := s.cache.Generation(ctx)
	if err != nil {
		logger.WithError(err).Warnf("report cache generation fail, computing %s uncached", key)
		return load()
	}

	var hit T
	ok, err := s.cache.Get(ctx, gen, key, &hit)
	if err != nil {
		logger.WithError(err).Warnf("report cache read %s fail", key)
	} else if ok {
		return hit, nil
	}

	out, err := load()
	if err != nil {
		return out, err
	}
	if err = s.cache.Set(ctx, gen, key, out); err != nil {
		logger.WithError(err).Warnf("report cache write %s fail", key)
	}
	return out, nil
}

func NewService(
	books repository.BookRepository,
	borrowings repository.BorrowingRepository,
	inventory repository.InventoryRepository,
	clk clock.Clock,
	cache Cache,
) *Service {
	if cache == nil {
		cache = NoCache()
	}
	return &Service{
		books:      books,
		borrowings: borrowings,
		inventory:  inventory,
		clock:      clk,
		cache:      cache,
	}
}
