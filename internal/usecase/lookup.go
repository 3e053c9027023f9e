package usecase

import (
	"context"
	"errors"

	domainErrors "github.com/polkiloo/library/internal/domain/errors"
	"github.com/polkiloo/library/internal/domain/model"
	"github.com/polkiloo/library/internal/domain/repository"
)

// attachBooks looks up the catalog entry of every loan, once per book.
// Loans of removed books keep a nil Book.
func attachBooks(ctx context.Context, books repository.BookRepository, borrows []model.Borrow) error {
	resolved := make(map[int64]*model.Book)
	for i := range borrows {
		id := borrows[i].BookID
		if id == 0 {
			continue
		}
		book, ok := resolved[id]
		if !ok {
			var err error
			book, err = books.GetByID(ctx, id)
			if err != nil && !errors.Is(err, domainErrors.ErrNotFound) {
				return err
			}
			resolved[id] = book
		}
		borrows[i].Book = book
	}
	return nil
}
