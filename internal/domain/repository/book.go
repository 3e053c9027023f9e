package repository

import (
	"context"

	"github.com/polkiloo/library/internal/domain/model"
)

// BookRepository describes catalog persistence.
type BookRepository interface {
	Create(ctx context.Context, book model.NewBook) (*model.Book, error)
	GetByID(ctx context.Context, id int64) (*model.Book, error)
	List(ctx context.Context) ([]model.Book, error)
	// Delete removes a book that has no open borrows. It returns ErrConflict otherwise.
	Delete(ctx context.Context, id int64) error
}
