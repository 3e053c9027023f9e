package repository

import (
	"context"
	"time"

	"github.com/polkiloo/library/internal/domain/model"
)

// BorrowRepository manages loan records together with the copy counters they affect.
type BorrowRepository interface {
	// Open takes one available copy of the book and records the loan atomically.
	Open(ctx context.Context, userID, bookID int64, borrowedAt, dueAt time.Time) (*model.Borrow, error)
	// Close stamps the return date and puts the copy back atomically.
	Close(ctx context.Context, borrowID int64, returnedAt time.Time) (*model.Borrow, error)
	GetByID(ctx context.Context, id int64) (*model.Borrow, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Borrow, error)
	List(ctx context.Context) ([]model.Borrow, error)
	// ListOverdue returns up to limit open loans due before now that sort
	// after the cursor, ordered by due date and id.
	ListOverdue(ctx context.Context, now time.Time, after model.OverdueCursor, limit int) ([]model.Borrow, error)
}
