package usecase

import (
	"context"
	"fmt"
	"strings"

	domainErrors "github.com/polkiloo/library/internal/domain/errors"
	"github.com/polkiloo/library/internal/domain/model"
	"github.com/polkiloo/library/internal/domain/repository"
)

// CatalogUseCase manages the book catalog on behalf of administrators.
type CatalogUseCase struct {
	books   repository.BookRepository
	borrows repository.BorrowRepository
}

// NewCatalogUseCase constructs CatalogUseCase.
func NewCatalogUseCase(books repository.BookRepository, borrows repository.BorrowRepository) *CatalogUseCase {
	return &CatalogUseCase{books: books, borrows: borrows}
}

// AddBook stores a new title with every copy available.
func (u *CatalogUseCase) AddBook(ctx context.Context, identity model.Identity, book model.NewBook) (*model.Book, error) {
	if !identity.IsAdministrator() {
		return nil, domainErrors.ErrUnauthorized
	}

	book.Title = strings.TrimSpace(book.Title)
	book.Author = strings.TrimSpace(book.Author)
	book.ISBN = strings.TrimSpace(book.ISBN)
	book.Category = strings.TrimSpace(book.Category)

	if book.Title == "" {
		return nil, fmt.Errorf("%w: title is required", domainErrors.ErrInvalidInput)
	}
	if book.TotalCopies < 0 {
		return nil, fmt.Errorf("%w: total copies must not be negative", domainErrors.ErrInvalidInput)
	}

	return u.books.Create(ctx, book)
}

// DeleteBook removes a title that has no copies on loan.
func (u *CatalogUseCase) DeleteBook(ctx context.Context, identity model.Identity, bookID int64) error {
	if !identity.IsAdministrator() {
		return domainErrors.ErrUnauthorized
	}
	if bookID <= 0 {
		return domainErrors.ErrNotFound
	}
	return u.books.Delete(ctx, bookID)
}

// ListBooks returns the whole catalog ordered by id.
func (u *CatalogUseCase) ListBooks(ctx context.Context) ([]model.Book, error) {
	books, err := u.books.List(ctx)
	if err != nil {
		return nil, err
	}
	if books == nil {
		books = []model.Book{}
	}
	return books, nil
}

// ListBorrows returns every loan ever recorded with its book resolved.
func (u *CatalogUseCase) ListBorrows(ctx context.Context, identity model.Identity) ([]model.Borrow, error) {
	if !identity.IsAdministrator() {
		return nil, domainErrors.ErrUnauthorized
	}
	borrows, err := u.borrows.List(ctx)
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
