package model

import "time"

// DefaultLoanPeriod is the time a member may keep a borrowed copy.
const DefaultLoanPeriod = 14 * 24 * time.Hour

// Borrow is a loan of one book copy to one user. BookID is zero when the
// book has since been removed from the catalog.
type Borrow struct {
	ID         int64
	UserID     int64
	BookID     int64
	BorrowedAt time.Time
	DueAt      time.Time
	ReturnedAt *time.Time

	// Book is the catalog entry behind BookID once it has been looked up.
	Book *Book
}

// IsOpen reports whether the copy has not been returned yet.
func (b Borrow) IsOpen() bool {
	return b.ReturnedAt == nil
}

// IsOverdue reports whether the loan is still open past its due date.
func (b Borrow) IsOverdue(now time.Time) bool {
	return b.IsOpen() && now.After(b.DueAt)
}

// OverdueCursor returns the position of the loan in the overdue listing.
func (b Borrow) OverdueCursor() OverdueCursor {
	return OverdueCursor{DueAt: b.DueAt, ID: b.ID}
}

// OverdueCursor pages through overdue loans ordered by due date, then id.
// The zero value starts at the oldest loan.
type OverdueCursor struct {
	DueAt time.Time
	ID    int64
}

// Precedes reports whether the loan sorts strictly after the cursor.
func (c OverdueCursor) Precedes(b Borrow) bool {
	if !b.DueAt.Equal(c.DueAt) {
		return b.DueAt.After(c.DueAt)
	}
	return b.ID > c.ID
}
