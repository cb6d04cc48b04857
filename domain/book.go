package domain

import "time"

type Book struct {
	ID              string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	BookCode        string    `json:"book_code" gorm:"type:varchar(64);uniqueIndex;not null"`
	Title           string    `json:"title" gorm:"type:varchar(255);not null"`
	Author          string    `json:"author" gorm:"type:varchar(255);not null"`
	Publisher       *string   `json:"publisher" gorm:"type:varchar(255)"`
	PublicationYear *int      `json:"publication_year"`
	Category        *string   `json:"category" gorm:"type:varchar(100);index"`
	TotalCopies     int       `json:"total_copies" gorm:"not null"`
	AvailableCopies int       `json:"available_copies" gorm:"not null"`
	ShelfLocation   *string   `json:"shelf_location" gorm:"type:varchar(100)"`
	Description     *string   `json:"description" gorm:"type:text"`
	CoverURL        *string   `json:"cover_url" gorm:"type:text"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Book) TableName() string { return "books" }

// OnLoan is the number of copies currently out.
func (b Book) OnLoan() int {
	return b.TotalCopies - b.AvailableCopies
}

func (b Book) CategoryOr(fallback string) string {
	if b.Category == nil || *b.Category == "" {
		return fallback
	}
	return *b.Category
}
