package domain

import "time"

type BorrowingStatus string

const (
	StatusBorrowed BorrowingStatus = "borrowed"
	StatusReturned BorrowingStatus = "returned"
	// StatusOverdue only appears on rows written by older clients. This
	// service never stores it; overdue is derived from the due date.
	StatusOverdue BorrowingStatus = "overdue"
)

// Outstanding reports whether the copy is still out.
func (s BorrowingStatus) Outstanding() bool {
	return s == StatusBorrowed || s == StatusOverdue
}

type Borrowing struct {
	ID           string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	BorrowerName string          `json:"borrower_name" gorm:"type:varchar(255);not null"`
	BorrowerUnit string          `json:"borrower_unit" gorm:"type:varchar(255);not null"`
	BookID       string          `json:"book_id" gorm:"type:varchar(36);index;not null"`
	Book         *Book           `json:"book" gorm:"foreignKey:BookID;references:ID"`
	BorrowDate   time.Time       `json:"borrow_date" gorm:"type:date;not null"`
	DueDate      time.Time       `json:"due_date" gorm:"type:date;not null"`
	ReturnDate   *time.Time      `json:"return_date" gorm:"type:date"`
	Status       BorrowingStatus `json:"status" gorm:"type:varchar(16);index;not null"`
	Notes        *string         `json:"notes" gorm:"type:text"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (Borrowing) TableName() string { return "borrowings" }

// IsOverdue derives the overdue view of a loan against the given day.
func (b Borrowing) IsOverdue(today time.Time) bool {
	return b.Status.Outstanding() && b.DueDate.Before(today)
}

// DaysOverdue counts started days past the due date, 0 when not overdue.
func (b Borrowing) DaysOverdue(today time.Time) int {
	if !b.IsOverdue(today) {
		return 0
	}
	d := today.Sub(b.DueDate)
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	return days
}
