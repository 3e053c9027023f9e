package dto

import "time"

// BorrowResponse is the public representation of a loan.
type BorrowResponse struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	BookID     *int64     `json:"book_id"`
	BorrowDate time.Time  `json:"borrow_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date"`
	// Book is null once the book has been removed from the catalog.
	Book *BookResponse `json:"book"`
}

// BorrowsResponse lists loans.
type BorrowsResponse struct {
	Borrows []BorrowResponse `json:"borrows"`
}
