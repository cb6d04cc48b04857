package domain

import "time"

// BorrowingRequest is the input of a new loan. BorrowDate defaults to today.
type BorrowingRequest struct {
	BorrowerName string    `json:"borrower_name" binding:"required,max=255"`
	BorrowerUnit string    `json:"borrower_unit" binding:"required,max=255"`
	BookID       string    `json:"book_id" binding:"required"`
	BorrowDate   time.Time `json:"borrow_date"`
	DueDate      time.Time `json:"due_date"`
	Notes        *string   `json:"notes"`
}

// BorrowingPatch carries the fields of a loan that can change without
// touching stock.
type BorrowingPatch struct {
	BorrowerName *string    `json:"borrower_name" binding:"omitempty,min=1,max=255"`
	BorrowerUnit *string    `json:"borrower_unit" binding:"omitempty,min=1,max=255"`
	DueDate      *time.Time `json:"due_date"`
	Notes        *string    `json:"notes"`
}

type BookInput struct {
	BookCode        string  `json:"book_code" binding:"required,max=64"`
	Title           string  `json:"title" binding:"required,max=255"`
	Author          string  `json:"author" binding:"required,max=255"`
	Publisher       *string `json:"publisher"`
	PublicationYear *int    `json:"publication_year" binding:"omitempty,gte=0,lte=9999"`
	Category        *string `json:"category"`
	TotalCopies     int     `json:"total_copies" binding:"required,gte=1"`
	ShelfLocation   *string `json:"shelf_location"`
	Description     *string `json:"description"`
	CoverURL        *string `json:"cover_url"`
}

type BookPatch struct {
	BookCode        *string `json:"book_code" binding:"omitempty,min=1,max=64"`
	Title           *string `json:"title" binding:"omitempty,min=1,max=255"`
	Author          *string `json:"author" binding:"omitempty,min=1,max=255"`
	Publisher       *string `json:"publisher"`
	PublicationYear *int    `json:"publication_year" binding:"omitempty,gte=0,lte=9999"`
	Category        *string `json:"category"`
	TotalCopies     *int    `json:"total_copies" binding:"omitempty,gte=1"`
	ShelfLocation   *string `json:"shelf_location"`
	Description     *string `json:"description"`
	CoverURL        *string `json:"cover_url"`
}

type InventoryInput struct {
	ItemName  string    `json:"item_name" binding:"required,max=255"`
	Category  string    `json:"category" binding:"required,max=100"`
	Condition Condition `json:"condition" binding:"required,oneof=baik rusak_ringan rusak_berat hilang"`
	Quantity  int       `json:"quantity" binding:"gte=0"`
	Location  *string   `json:"location"`
	Notes     *string   `json:"notes"`
	ImageURL  *string   `json:"image_url"`
}

type InventoryPatch struct {
	ItemName  *string    `json:"item_name" binding:"omitempty,min=1,max=255"`
	Category  *string    `json:"category" binding:"omitempty,min=1,max=100"`
	Condition *Condition `json:"condition" binding:"omitempty,oneof=baik rusak_ringan rusak_berat hilang"`
	Quantity  *int       `json:"quantity" binding:"omitempty,gte=0"`
	Location  *string    `json:"location"`
	Notes     *string    `json:"notes"`
	ImageURL  *string    `json:"image_url"`
}
