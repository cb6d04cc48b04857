package report

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perpus/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func str(s string) *string { return &s }

func book(id, title, category string, created time.Time) domain.Book {
	b := domain.Book{ID: id, Title: title, Author: "Penulis " + id, TotalCopies: 2, AvailableCopies: 1, CreatedAt: created}
	if category != "" {
		b.Category = str(category)
	}
	return b
}

func loan(id, bookID string, status domain.BorrowingStatus, borrowed, due time.Time) domain.Borrowing {
	b := domain.Borrowing{ID: id, BookID: bookID, Status: status, BorrowDate: borrowed, DueDate: due, BorrowerName: "Peminjam " + id}
	if status == domain.StatusReturned {
		r := due
		b.ReturnDate = &r
	}
	return b
}

func shuffled[T any](in []T, seed int64) []T {
	out := append([]T(nil), in...)
	rand.New(rand.NewSource(seed)).Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

var (
	books = []domain.Book{
		book("b1", "Bumi", "Fiksi", day(2024, 1, 5)),
		book("b2", "Atomic Habits", "Pengembangan Diri", day(2024, 1, 20)),
		book("b3", "Cantik Itu Luka", "Fiksi", day(2024, 2, 2)),
		book("b4", "Kamus", "", day(2024, 3, 1)),
		book("b5", "Ensiklopedia", "", day(2024, 3, 9)),
		book("b6", "Sejarah Indonesia", "Sejarah", day(2023, 12, 31)),
	}
	borrowings = []domain.Borrowing{
		loan("l1", "b1", domain.StatusReturned, day(2024, 1, 2), day(2024, 1, 9)),
		loan("l2", "b1", domain.StatusBorrowed, day(2024, 2, 1), day(2024, 2, 8)),
		loan("l3", "b2", domain.StatusBorrowed, day(2024, 2, 3), day(2024, 3, 3)),
		loan("l4", "b3", domain.StatusReturned, day(2024, 2, 10), day(2024, 3, 1)),
		loan("l5", "b3", domain.StatusBorrowed, day(2024, 3, 5), day(2024, 3, 20)),
		loan("l6", "gone", domain.StatusReturned, day(2024, 1, 3), day(2024, 1, 10)),
	}
)

func Test_CategoryStats_BucketsAndRanks(t *testing.T) {
	stats := CategoryStats(books, 8)

	assert.Equal(t, []CategoryStat{
		{Category: "Fiksi", Count: 2, Percentage: 33},
		{Category: UncategorizedLabel, Count: 2, Percentage: 33},
		{Category: "Pengembangan Diri", Count: 1, Percentage: 17},
		{Category: "Sejarah", Count: 1, Percentage: 17},
	}, stats)
}

func Test_CategoryStats_IsOrderIndependent(t *testing.T) {
	want := CategoryStats(books, 6)

	for seed := int64(1); seed <= 5; seed++ {
		assert.Equal(t, want, CategoryStats(shuffled(books, seed), 6))
	}
}

func Test_CategoryStats_Limit(t *testing.T) {
	assert.Len(t, CategoryStats(books, 2), 2)
	assert.Empty(t, CategoryStats(nil, 6))
}

func Test_BorrowingsByCategory_IsOrderIndependent(t *testing.T) {
	stats := BorrowingsByCategory(books, borrowings)

	// l6 borrows a book that is no longer in the catalog.
	assert.Equal(t, []CategoryStat{
		{Category: "Fiksi", Count: 4, Percentage: 80},
		{Category: "Pengembangan Diri", Count: 1, Percentage: 20},
	}, stats)
	for seed := int64(1); seed <= 5; seed++ {
		assert.Equal(t, stats, BorrowingsByCategory(shuffled(books, seed), shuffled(borrowings, seed+10)))
	}
}

func Test_BorrowingsByCategory_BucketsUncategorized(t *testing.T) {
	stats := BorrowingsByCategory(books, []domain.Borrowing{
		loan("k1", "b4", domain.StatusBorrowed, day(2024, 3, 2), day(2024, 3, 9)),
		loan("k2", "b5", domain.StatusBorrowed, day(2024, 3, 10), day(2024, 3, 17)),
		loan("k3", "b6", domain.StatusReturned, day(2024, 1, 2), day(2024, 1, 9)),
	})

	assert.Equal(t, []CategoryStat{
		{Category: UncategorizedLabel, Count: 2, Percentage: 67},
		{Category: "Sejarah", Count: 1, Percentage: 33},
	}, stats)
	assert.Empty(t, BorrowingsByCategory(books, nil))
}

func Test_PopularBooks_RanksAndDropsUnknown(t *testing.T) {
	popular := PopularBooks(books, borrowings, 10)

	require.Len(t, popular, 3)
	// b1 and b3 tie on count; title breaks the tie.
	assert.Equal(t, "b1", popular[0].BookID)
	assert.Equal(t, 2, popular[0].Count)
	assert.Equal(t, 33, popular[0].Percentage)
	assert.Equal(t, "b3", popular[1].BookID)
	assert.Equal(t, "b2", popular[2].BookID)
	assert.Equal(t, 17, popular[2].Percentage)

	for seed := int64(1); seed <= 5; seed++ {
		assert.Equal(t, popular, PopularBooks(shuffled(books, seed), shuffled(borrowings, seed+10), 10))
	}
	assert.Len(t, PopularBooks(books, borrowings, 1), 1)
}

func Test_MonthlyStats(t *testing.T) {
	stats := MonthlyStats(books, borrowings, day(2024, 1, 15), day(2024, 4, 2), time.UTC)

	assert.Equal(t, []MonthlyStat{
		{Month: "2024-01", Borrowed: 2, Returned: 2, NewBooks: 2},
		{Month: "2024-02", Borrowed: 3, Returned: 0, NewBooks: 1},
		{Month: "2024-03", Borrowed: 1, Returned: 1, NewBooks: 2},
		{Month: "2024-04", Borrowed: 0, Returned: 0, NewBooks: 0},
	}, stats)
	assert.Empty(t, MonthlyStats(books, borrowings, day(2024, 4, 1), day(2024, 1, 1), time.UTC))
}

func Test_MonthlyStats_ReadsCreationTimeInLocation(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	late := book("b9", "Malam", "", time.Date(2024, 1, 31, 20, 0, 0, 0, time.UTC))

	stats := MonthlyStats([]domain.Book{late}, nil, day(2024, 1, 1), day(2024, 2, 1), jakarta)

	assert.Equal(t, 0, stats[0].NewBooks)
	assert.Equal(t, 1, stats[1].NewBooks)
}

func Test_OverdueAnalysis(t *testing.T) {
	today := day(2024, 3, 10)

	report := OverdueAnalysis(shuffled(borrowings, 3), today)

	require.Equal(t, 2, report.Total)
	assert.Equal(t, "l2", report.Items[0].BorrowingID)
	assert.Equal(t, 31, report.Items[0].DaysOverdue)
	assert.Equal(t, "l3", report.Items[1].BorrowingID)
	assert.Equal(t, 7, report.Items[1].DaysOverdue)
	assert.Equal(t, 19.0, report.AverageDaysOverdue)
	assert.Equal(t, []OverdueMonth{{Month: "2024-02", Count: 1}, {Month: "2024-03", Count: 1}}, report.ByMonth)
}

func Test_OverdueAnalysis_Empty(t *testing.T) {
	report := OverdueAnalysis(borrowings, day(2024, 1, 1))

	assert.Zero(t, report.Total)
	assert.Zero(t, report.AverageDaysOverdue)
	assert.Empty(t, report.Items)
}

func Test_OverdueAnalysis_SingleLoanScenario(t *testing.T) {
	l := loan("x", "b1", domain.StatusBorrowed, day(2023, 12, 20), day(2024, 1, 1))

	report := OverdueAnalysis([]domain.Borrowing{l}, day(2024, 1, 10))

	require.Equal(t, 1, report.Total)
	assert.Equal(t, 9, report.Items[0].DaysOverdue)
	assert.Equal(t, domain.StatusBorrowed, l.Status)
}

func Test_BuildSummary(t *testing.T) {
	s := BuildSummary(books, borrowings, day(2024, 3, 10))

	assert.Equal(t, 6, s.TotalBorrowings)
	assert.Equal(t, 3, s.ActiveBorrowings)
	assert.Equal(t, 3, s.ReturnedBorrowings)
	assert.Equal(t, 2, s.OverdueBorrowings)
	assert.Equal(t, 33.3, s.OverdueRate)
	// The 30-day window starts Feb 9 and holds l4 and l5.
	assert.Equal(t, 0.1, s.AveragePerDay)
	require.NotNil(t, s.MostPopular)
	assert.Equal(t, "Bumi", s.MostPopular.Title)
	assert.Equal(t, 6, s.TotalBooks)
	assert.Equal(t, 12, s.TotalCopies)
	assert.Equal(t, 6, s.AvailableCopies)
}

func Test_BuildDashboard(t *testing.T) {
	items := []domain.InventoryItem{
		{ID: "i1", Quantity: 3, Condition: domain.ConditionGood},
		{ID: "i2", Quantity: 1, Condition: domain.ConditionLost},
	}

	d := BuildDashboard(books, borrowings, items, day(2024, 3, 10))

	assert.Equal(t, Dashboard{
		BookTitles:        6,
		TotalCopies:       12,
		AvailableCopies:   6,
		ActiveBorrowings:  3,
		OverdueBorrowings: 2,
		TotalBorrowings:   6,
		InventoryQuantity: 4,
		InventoryItems:    2,
		InventoryGood:     1,
	}, d)
}
