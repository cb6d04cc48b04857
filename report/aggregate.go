// Package report turns snapshots of the catalog and the borrowing ledger
// into the figures shown on the dashboard and the reports page. The
// aggregation functions are pure: equal input sets give equal output
// whatever their order.
package report

import (
	"math"
	"sort"
	"time"

	"github.com/samber/lo"

	"perpus/clock"
	"perpus/domain"
)

const (
	UncategorizedLabel = "Lainnya"
	monthLayout        = "2006-01"
)

type MonthlyStat struct {
	Month    string `json:"month"`
	Borrowed int    `json:"borrowed"`
	Returned int    `json:"returned"`
	NewBooks int    `json:"new_books"`
}

type CategoryStat struct {
	Category   string `json:"category"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

type PopularBook struct {
	BookID     string `json:"book_id"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

type OverdueMonth struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

type OverdueItem struct {
	BorrowingID  string    `json:"borrowing_id"`
	BorrowerName string    `json:"borrower_name"`
	BorrowerUnit string    `json:"borrower_unit"`
	BookID       string    `json:"book_id"`
	Title        string    `json:"title,omitempty"`
	DueDate      time.Time `json:"due_date"`
	DaysOverdue  int       `json:"days_overdue"`
}

type OverdueReport struct {
	Total              int            `json:"total"`
	AverageDaysOverdue float64        `json:"average_days_overdue"`
	ByMonth            []OverdueMonth `json:"by_month"`
	Items              []OverdueItem  `json:"items"`
}

type MostPopular struct {
	Title string `json:"title"`
	Count int    `json:"count"`
}

type Summary struct {
	TotalBorrowings    int          `json:"total_borrowings"`
	ActiveBorrowings   int          `json:"active_borrowings"`
	ReturnedBorrowings int          `json:"returned_borrowings"`
	OverdueBorrowings  int          `json:"overdue_borrowings"`
	OverdueRate        float64      `json:"overdue_rate"`
	AveragePerDay      float64      `json:"average_per_day"`
	MostPopular        *MostPopular `json:"most_popular"`
	TotalBooks         int          `json:"total_books"`
	TotalCopies        int          `json:"total_copies"`
	AvailableCopies    int          `json:"available_copies"`
}

type Dashboard struct {
	BookTitles        int `json:"book_titles"`
	TotalCopies       int `json:"total_copies"`
	AvailableCopies   int `json:"available_copies"`
	ActiveBorrowings  int `json:"active_borrowings"`
	OverdueBorrowings int `json:"overdue_borrowings"`
	TotalBorrowings   int `json:"total_borrowings"`
	InventoryQuantity int `json:"inventory_quantity"`
	InventoryItems    int `json:"inventory_items"`
	InventoryGood     int `json:"inventory_good"`
}

// MonthlyStats has one row per calendar month from the month of from to
// the month of to, both included. Book creation times are read in loc.
func MonthlyStats(books []domain.Book, borrowings []domain.Borrowing, from, to time.Time, loc *time.Location) []MonthlyStat {
	if loc == nil {
		loc = time.UTC
	}
	first := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, time.UTC)
	if last.Before(first) {
		return []MonthlyStat{}
	}

	borrowed := lo.CountValuesBy(borrowings, func(b domain.Borrowing) string {
		return b.BorrowDate.Format(monthLayout)
	})
	returned := lo.CountValuesBy(lo.Filter(borrowings, func(b domain.Borrowing, _ int) bool {
		return b.Status == domain.StatusReturned && b.ReturnDate != nil
	}), func(b domain.Borrowing) string {
		return b.ReturnDate.Format(monthLayout)
	})
	added := lo.CountValuesBy(books, func(b domain.Book) string {
		return b.CreatedAt.In(loc).Format(monthLayout)
	})

	stats := make([]MonthlyStat, 0)
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		key := m.Format(monthLayout)
		stats = append(stats, MonthlyStat{
			Month:    key,
			Borrowed: borrowed[key],
			Returned: returned[key],
			NewBooks: added[key],
		})
	}
	return stats
}

// CategoryStats ranks categories by number of titles, then by name. A
// limit of zero or less keeps every category.
func CategoryStats(books []domain.Book, limit int) []CategoryStat {
	if len(books) == 0 {
		return []CategoryStat{}
	}
	counts := lo.CountValuesBy(books, func(b domain.Book) string {
		return b.CategoryOr(UncategorizedLabel)
	})
	return capped(rankCategories(counts, len(books)), limit)
}

func rankCategories(counts map[string]int, total int) []CategoryStat {
	stats := lo.MapToSlice(counts, func(category string, count int) CategoryStat {
		return CategoryStat{
			Category:   category,
			Count:      count,
			Percentage: percent(count, total),
		}
	})
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Category < stats[j].Category
	})
	return stats
}

// BorrowingsByCategory counts loans per category of the borrowed book,
// ranked like CategoryStats. Loans of books missing from the catalog are
// left out.
func BorrowingsByCategory(books []domain.Book, borrowings []domain.Borrowing) []CategoryStat {
	byID := lo.KeyBy(books, func(b domain.Book) string { return b.ID })
	known := lo.Filter(borrowings, func(b domain.Borrowing, _ int) bool {
		_, ok := byID[b.BookID]
		return ok
	})
	if len(known) == 0 {
		return []CategoryStat{}
	}
	counts := lo.CountValuesBy(known, func(b domain.Borrowing) string {
		return byID[b.BookID].CategoryOr(UncategorizedLabel)
	})
	return rankCategories(counts, len(known))
}

// PopularBooks ranks books by number of loans. Loans of books missing from
// the catalog still count toward the percentage base.
func PopularBooks(books []domain.Book, borrowings []domain.Borrowing, limit int) []PopularBook {
	if len(borrowings) == 0 {
		return []PopularBook{}
	}
	byID := lo.KeyBy(books, func(b domain.Book) string { return b.ID })
	counts := lo.CountValuesBy(borrowings, func(b domain.Borrowing) string { return b.BookID })

	ranked := make([]PopularBook, 0, len(counts))
	for id, count := range counts {
		book, ok := byID[id]
		if !ok {
			continue
		}
		ranked = append(ranked, PopularBook{
			BookID:     id,
			Title:      book.Title,
			Author:     book.Author,
			Count:      count,
			Percentage: percent(count, len(borrowings)),
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		if ranked[i].Title != ranked[j].Title {
			return ranked[i].Title < ranked[j].Title
		}
		return ranked[i].BookID < ranked[j].BookID
	})
	return capped(ranked, limit)
}

// OverdueAnalysis lists outstanding loans past their due date, grouped by
// the month they fell due.
func OverdueAnalysis(borrowings []domain.Borrowing, today time.Time) OverdueReport {
	today = clock.Date(today)
	overdue := lo.Filter(borrowings, func(b domain.Borrowing, _ int) bool {
		return b.IsOverdue(today)
	})

	items := lo.Map(overdue, func(b domain.Borrowing, _ int) OverdueItem {
		item := OverdueItem{
			BorrowingID:  b.ID,
			BorrowerName: b.BorrowerName,
			BorrowerUnit: b.BorrowerUnit,
			BookID:       b.BookID,
			DueDate:      b.DueDate,
			DaysOverdue:  b.DaysOverdue(today),
		}
		if b.Book != nil {
			item.Title = b.Book.Title
		}
		return item
	})
	sort.Slice(items, func(i, j int) bool {
		if !items[i].DueDate.Equal(items[j].DueDate) {
			return items[i].DueDate.Before(items[j].DueDate)
		}
		return items[i].BorrowingID < items[j].BorrowingID
	})

	perMonth := lo.CountValuesBy(overdue, func(b domain.Borrowing) string {
		return b.DueDate.Format(monthLayout)
	})
	byMonth := lo.MapToSlice(perMonth, func(month string, count int) OverdueMonth {
		return OverdueMonth{Month: month, Count: count}
	})
	sort.Slice(byMonth, func(i, j int) bool { return byMonth[i].Month < byMonth[j].Month })

	report := OverdueReport{
		Total:   len(items),
		ByMonth: byMonth,
		Items:   items,
	}
	if len(items) > 0 {
		days := lo.SumBy(items, func(i OverdueItem) int { return i.DaysOverdue })
		report.AverageDaysOverdue = float64(days) / float64(len(items))
	}
	return report
}

// BuildSummary computes the headline figures of the reports page. The
// per-day average covers loans started in the last 30 days.
func BuildSummary(books []domain.Book, borrowings []domain.Borrowing, today time.Time) Summary {
	today = clock.Date(today)
	since := today.AddDate(0, 0, -30)

	s := Summary{
		TotalBorrowings: len(borrowings),
		ActiveBorrowings: lo.CountBy(borrowings, func(b domain.Borrowing) bool {
			return b.Status.Outstanding()
		}),
		ReturnedBorrowings: lo.CountBy(borrowings, func(b domain.Borrowing) bool {
			return b.Status == domain.StatusReturned
		}),
		OverdueBorrowings: lo.CountBy(borrowings, func(b domain.Borrowing) bool {
			return b.IsOverdue(today)
		}),
		TotalBooks:      len(books),
		TotalCopies:     lo.SumBy(books, func(b domain.Book) int { return b.TotalCopies }),
		AvailableCopies: lo.SumBy(books, func(b domain.Book) int { return b.AvailableCopies }),
	}
	recent := lo.CountBy(borrowings, func(b domain.Borrowing) bool {
		return !b.BorrowDate.Before(since)
	})
	s.AveragePerDay = round1(float64(recent) / 30)
	if s.TotalBorrowings > 0 {
		s.OverdueRate = round1(float64(s.OverdueBorrowings) * 100 / float64(s.TotalBorrowings))
	}
	if top := PopularBooks(books, borrowings, 1); len(top) > 0 {
		s.MostPopular = &MostPopular{Title: top[0].Title, Count: top[0].Count}
	}
	return s
}

func BuildDashboard(books []domain.Book, borrowings []domain.Borrowing, items []domain.InventoryItem, today time.Time) Dashboard {
	today = clock.Date(today)
	return Dashboard{
		BookTitles:      len(books),
		TotalCopies:     lo.SumBy(books, func(b domain.Book) int { return b.TotalCopies }),
		AvailableCopies: lo.SumBy(books, func(b domain.Book) int { return b.AvailableCopies }),
		ActiveBorrowings: lo.CountBy(borrowings, func(b domain.Borrowing) bool {
			return b.Status.Outstanding()
		}),
		OverdueBorrowings: lo.CountBy(borrowings, func(b domain.Borrowing) bool {
			return b.IsOverdue(today)
		}),
		TotalBorrowings:   len(borrowings),
		InventoryQuantity: lo.SumBy(items, func(i domain.InventoryItem) int { return i.Quantity }),
		InventoryItems:    len(items),
		InventoryGood: lo.CountBy(items, func(i domain.InventoryItem) bool {
			return i.Condition == domain.ConditionGood
		}),
	}
}

func percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(whole)))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func monthsBetween(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}

func capped[T any](s []T, limit int) []T {
	if limit > 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}
