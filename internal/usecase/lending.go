package usecase

import (
	"context"
	"time"

	domainErrors "github.com/polkiloo/library/internal/domain/errors"
	"github.com/polkiloo/library/internal/domain/model"
	"github.com/polkiloo/library/internal/domain/repository"
	"github.com/polkiloo/library/internal/pkg/retry"
)

// LendingPolicy holds the rules applied to loans.
type LendingPolicy struct {
	LoanPeriod time.Duration
	// OwnerReturnsOnly restricts returns to the borrower and administrators.
	OwnerReturnsOnly bool
	// MaxAttempts bounds retries of transactions lost to concurrent writers.
	MaxAttempts int
}

// LendingUseCase moves copies between the shelf and members.
type LendingUseCase struct {
	books      repository.BookRepository
	borrows    repository.BorrowRepository
	policy     LendingPolicy
	now        func() time.Time
	retryDelay time.Duration
}

// NewLendingUseCase constructs LendingUseCase.
func NewLendingUseCase(books repository.BookRepository, borrows repository.BorrowRepository, policy LendingPolicy) *LendingUseCase {
	if policy.LoanPeriod <= 0 {
		policy.LoanPeriod = model.DefaultLoanPeriod
	}
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}
	return &LendingUseCase{
		books:      books,
		borrows:    borrows,
		policy:     policy,
		now:        time.Now,
		retryDelay: 10 * time.Millisecond,
	}
}

// Borrow lends one copy of the book to the caller.
func (u *LendingUseCase) Borrow(ctx context.Context, identity model.Identity, bookID int64) (*model.Borrow, error) {
	if !identity.IsRegisteredUser() {
		return nil, domainErrors.ErrUnauthorized
	}
	if bookID <= 0 {
		return nil, domainErrors.ErrNotFound
	}

	var borrow *model.Borrow
	err := u.withRetry(ctx, func(ctx context.Context) error {
		borrowedAt := u.now().UTC()
		var err error
		borrow, err = u.borrows.Open(ctx, identity.UserID, bookID, borrowedAt, borrowedAt.Add(u.policy.LoanPeriod))
		return err
	})
	if err != nil {
		return nil, err
	}
	return borrow, nil
}

// ReturnBook closes an open loan and puts the copy back on the shelf.
func (u *LendingUseCase) ReturnBook(ctx context.Context, identity model.Identity, borrowID int64) (*model.Borrow, error) {
	if borrowID <= 0 {
		return nil, domainErrors.ErrNotFound
	}
	if u.policy.OwnerReturnsOnly {
		if err := u.checkOwner(ctx, identity, borrowID); err != nil {
			return nil, err
		}
	}

	var borrow *model.Borrow
	err := u.withRetry(ctx, func(ctx context.Context) error {
		var err error
		borrow, err = u.borrows.Close(ctx, borrowID, u.now().UTC())
		return err
	})
	if err != nil {
		return nil, err
	}
	return borrow, nil
}

func (u *LendingUseCase) checkOwner(ctx context.Context, identity model.Identity, borrowID int64) error {
	if identity.IsAnonymous() {
		return domainErrors.ErrUnauthorized
	}
	if identity.IsAdministrator() {
		return nil
	}
	borrow, err := u.borrows.GetByID(ctx, borrowID)
	if err != nil {
		return err
	}
	if borrow.UserID != identity.UserID {
		return domainErrors.ErrForbidden
	}
	return nil
}

// ListMyBorrows returns the caller's loans, open and closed, oldest first,
// with their books resolved.
func (u *LendingUseCase) ListMyBorrows(ctx context.Context, identity model.Identity) ([]model.Borrow, error) {
	if !identity.IsRegisteredUser() {
		return nil, domainErrors.ErrUnauthorized
	}
	borrows, err := u.borrows.ListByUser(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	if borrows == nil {
		borrows = []model.Borrow{}
	}
	if err := attachBooks(ctx, u.books, borrows); err != nil {
		return nil, err
	}
	return borrows, nil
}

// OverdueBorrows returns up to limit open loans past their due date that
// sort after the cursor.
func (u *LendingUseCase) OverdueBorrows(ctx context.Context, after model.OverdueCursor, limit int) ([]model.Borrow, error) {
	return u.borrows.ListOverdue(ctx, u.now().UTC(), after, limit)
}

func (u *LendingUseCase) withRetry(ctx context.Context, fn retry.Func) error {
	return retry.Do(ctx, fn,
		retry.WithMaxAttempts(u.policy.MaxAttempts),
		retry.WithBaseDelay(u.retryDelay),
	)
}
