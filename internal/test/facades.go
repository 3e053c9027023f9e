package test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/polkiloo/library/internal/domain/model"
)

// CatalogFacadeStub provides controllable behaviour for catalog endpoints.
type CatalogFacadeStub struct {
	AddBookFn    func(context.Context, model.Identity, model.NewBook) (*model.Book, error)
	DeleteBookFn func(context.Context, model.Identity, int64) error
	BooksFn      func(context.Context) ([]model.Book, error)
	AllBorrowsFn func(context.Context, model.Identity) ([]model.Borrow, error)
}

// AddBook echoes the input as a stored book by default.
func (s CatalogFacadeStub) AddBook(ctx context.Context, identity model.Identity, book model.NewBook) (*model.Book, error) {
	if s.AddBookFn != nil {
		return s.AddBookFn(ctx, identity, book)
	}
	return &model.Book{
		ID:              1,
		Title:           book.Title,
		Author:          book.Author,
		ISBN:            book.ISBN,
		Category:        book.Category,
		TotalCopies:     book.TotalCopies,
		AvailableCopies: book.TotalCopies,
	}, nil
}

// DeleteBook succeeds unless overridden.
func (s CatalogFacadeStub) DeleteBook(ctx context.Context, identity model.Identity, id int64) error {
	if s.DeleteBookFn != nil {
		return s.DeleteBookFn(ctx, identity, id)
	}
	return nil
}

// Books returns a single book by default.
func (s CatalogFacadeStub) Books(ctx context.Context) ([]model.Book, error) {
	if s.BooksFn != nil {
		return s.BooksFn(ctx)
	}
	return []model.Book{{ID: 1, Title: "Dune", TotalCopies: 2, AvailableCopies: 1}}, nil
}

// AllBorrows returns a single open borrow of a resolved book by default.
func (s CatalogFacadeStub) AllBorrows(ctx context.Context, identity model.Identity) ([]model.Borrow, error) {
	if s.AllBorrowsFn != nil {
		return s.AllBorrowsFn(ctx, identity)
	}
	return []model.Borrow{{
		ID:         1,
		UserID:     1,
		BookID:     1,
		BorrowedAt: time.Unix(0, 0),
		DueAt:      time.Unix(0, 0),
		Book:       &model.Book{ID: 1, Title: "Dune", TotalCopies: 1},
	}}, nil
}

// LendingFacadeStub simulates borrow and return operations.
type LendingFacadeStub struct {
	BorrowFn    func(context.Context, model.Identity, int64) (*model.Borrow, error)
	ReturnFn    func(context.Context, model.Identity, int64) (*model.Borrow, error)
	MyBorrowsFn func(context.Context, model.Identity) ([]model.Borrow, error)
}

// Borrow returns an open loan for the caller by default.
func (s LendingFacadeStub) Borrow(ctx context.Context, identity model.Identity, bookID int64) (*model.Borrow, error) {
	if s.BorrowFn != nil {
		return s.BorrowFn(ctx, identity, bookID)
	}
	return &model.Borrow{ID: 1, UserID: identity.UserID, BookID: bookID, BorrowedAt: time.Unix(0, 0), DueAt: time.Unix(0, 0)}, nil
}

// ReturnBook returns a closed loan by default.
func (s LendingFacadeStub) ReturnBook(ctx context.Context, identity model.Identity, borrowID int64) (*model.Borrow, error) {
	if s.ReturnFn != nil {
		return s.ReturnFn(ctx, identity, borrowID)
	}
	returned := time.Unix(0, 0)
	return &model.Borrow{ID: borrowID, UserID: identity.UserID, BookID: 1, ReturnedAt: &returned}, nil
}

// MyBorrows returns preconfigured history.
func (s LendingFacadeStub) MyBorrows(ctx context.Context, identity model.Identity) ([]model.Borrow, error) {
	if s.MyBorrowsFn != nil {
		return s.MyBorrowsFn(ctx, identity)
	}
	return []model.Borrow{{ID: 1, UserID: identity.UserID, BookID: 1}}, nil
}

// HealthCheckerStub reports the configured database state.
type HealthCheckerStub struct {
	Err error
}

// HealthCheck returns the configured error.
func (s HealthCheckerStub) HealthCheck(context.Context) error {
	return s.Err
}

// LibraryFacadeStub aggregates facade dependencies for HTTP layer tests.
type LibraryFacadeStub struct {
	AuthFacadeStub
	CatalogFacadeStub
	LendingFacadeStub
	HealthCheckerStub
}

// OverdueSourceStub serves a changeable set of overdue loans page by page.
type OverdueSourceStub struct {
	OverdueFn func(context.Context, model.OverdueCursor, int) ([]model.Borrow, error)

	mu      sync.Mutex
	overdue []model.Borrow
	limits  []int
	calls   int32
}

// SetOverdue replaces the loans that are currently past due.
func (s *OverdueSourceStub) SetOverdue(borrows ...model.Borrow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overdue = append([]model.Borrow(nil), borrows...)
}

// OverdueBorrows returns the page of loans after the cursor.
func (s *OverdueSourceStub) OverdueBorrows(ctx context.Context, after model.OverdueCursor, limit int) ([]model.Borrow, error) {
	s.mu.Lock()
	s.limits = append(s.limits, limit)
	overdue := s.overdue
	s.mu.Unlock()
	atomic.AddInt32(&s.calls, 1)
	if s.OverdueFn != nil {
		return s.OverdueFn(ctx, after, limit)
	}
	return PageOverdue(overdue, after, limit), nil
}

// Limits returns the page sizes requested so far.
func (s *OverdueSourceStub) Limits() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.limits...)
}

// Calls reports how many pages were requested.
func (s *OverdueSourceStub) Calls() int {
	return int(atomic.LoadInt32(&s.calls))
}
