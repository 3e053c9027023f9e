package app

import (
	"context"

	"github.com/polkiloo/library/internal/domain/model"
	"github.com/polkiloo/library/internal/usecase"
)

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// LibraryFacade is the single entry point the HTTP layer and the worker use.
type LibraryFacade struct {
	auth    *usecase.AuthUseCase
	catalog *usecase.CatalogUseCase
	lending *usecase.LendingUseCase
	health  HealthChecker
}

func NewLibraryFacade(auth *usecase.AuthUseCase, catalog *usecase.CatalogUseCase, lending *usecase.LendingUseCase, health HealthChecker) *LibraryFacade {
	return &LibraryFacade{auth: auth, catalog: catalog, lending: lending, health: health}
}

func (f *LibraryFacade) Register(ctx context.Context, username, password string) (*model.User, error) {
	return f.auth.Register(ctx, username, password)
}

func (f *LibraryFacade) Authenticate(ctx context.Context, username, password string) (model.Identity, string, error) {
	return f.auth.Authenticate(ctx, username, password)
}

func (f *LibraryFacade) ParseToken(token string) (model.Identity, error) {
	return f.auth.ParseToken(token)
}

func (f *LibraryFacade) AddBook(ctx context.Context, identity model.Identity, book model.NewBook) (*model.Book, error) {
	return f.catalog.AddBook(ctx, identity, book)
}

func (f *LibraryFacade) DeleteBook(ctx context.Context, identity model.Identity, bookID int64) error {
	return f.catalog.DeleteBook(ctx, identity, bookID)
}

func (f *LibraryFacade) Books(ctx context.Context) ([]model.Book, error) {
	return f.catalog.ListBooks(ctx)
}

func (f *LibraryFacade) AllBorrows(ctx context.Context, identity model.Identity) ([]model.Borrow, error) {
	return f.catalog.ListBorrows(ctx, identity)
}

func (f *LibraryFacade) Borrow(ctx context.Context, identity model.Identity, bookID int64) (*model.Borrow, error) {
	return f.lending.Borrow(ctx, identity, bookID)
}

func (f *LibraryFacade) ReturnBook(ctx context.Context, identity model.Identity, borrowID int64) (*model.Borrow, error) {
	return f.lending.ReturnBook(ctx, identity, borrowID)
}

func (f *LibraryFacade) MyBorrows(ctx context.Context, identity model.Identity) ([]model.Borrow, error) {
	return f.lending.ListMyBorrows(ctx, identity)
}

func (f *LibraryFacade) OverdueBorrows(ctx context.Context, after model.OverdueCursor, limit int) ([]model.Borrow, error) {
	return f.lending.OverdueBorrows(ctx, after, limit)
}

func (f *LibraryFacade) HealthCheck(ctx context.Context) error {
	if f.health == nil {
		return nil
	}
	return f.health.HealthCheck(ctx)
}
