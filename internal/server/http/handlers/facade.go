package handlers

import (
	"context"

	"github.com/polkiloo/library/internal/domain/model"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, username, password string) (*model.User, error)
	Authenticate(ctx context.Context, username, password string) (model.Identity, string, error)
	ParseToken(token string) (model.Identity, error)
}

// CatalogFacade encapsulates catalog administration exposed via HTTP.
type CatalogFacade interface {
	AddBook(ctx context.Context, identity model.Identity, book model.NewBook) (*model.Book, error)
	DeleteBook(ctx context.Context, identity model.Identity, bookID int64) error
	Books(ctx context.Context) ([]model.Book, error)
	AllBorrows(ctx context.Context, identity model.Identity) ([]model.Borrow, error)
}

// LendingFacade provides borrow and return operations.
type LendingFacade interface {
	Borrow(ctx context.Context, identity model.Identity, bookID int64) (*model.Borrow, error)
	ReturnBook(ctx context.Context, identity model.Identity, borrowID int64) (*model.Borrow, error)
	MyBorrows(ctx context.Context, identity model.Identity) ([]model.Borrow, error)
}

// HealthChecker reports storage availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// LibraryFacade aggregates the full set of operations used across handlers.
type LibraryFacade interface {
	AuthFacade
	CatalogFacade
	LendingFacade
	HealthChecker
}
