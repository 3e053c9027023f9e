package dto

// AddBookRequest is the payload an administrator sends to catalog a book.
type AddBookRequest struct {
	Title       string `json:"title" form:"title" binding:"required,max=200"`
	Author      string `json:"author" form:"author" binding:"max=100"`
	ISBN        string `json:"isbn" form:"isbn" binding:"max=20"`
	Category    string `json:"category" form:"category" binding:"max=50"`
	TotalCopies *int   `json:"total_copies" form:"total_copies" binding:"required,gte=0"`
}

// BookResponse is the public representation of a catalog entry.
type BookResponse struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	ISBN            string `json:"isbn"`
	Category        string `json:"category"`
	TotalCopies     int    `json:"total_copies"`
	AvailableCopies int    `json:"available_copies"`
}

// StudentDashboard lists the catalog for members.
type StudentDashboard struct {
	Books []BookResponse `json:"books"`
}

// AdminDashboard lists the catalog and every loan.
type AdminDashboard struct {
	Books   []BookResponse   `json:"books"`
	Borrows []BorrowResponse `json:"borrows"`
}
