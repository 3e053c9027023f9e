package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/library/internal/domain/errors"
	"github.com/polkiloo/library/internal/domain/model"
)

const bookColumns = `id, title, author, isbn, category, total_copies, available_copies`

type bookRepository struct {
	storage *Storage
}

func scanBook(row scanner) (model.Book, error) {
	var b model.Book
	err := row.Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.Category, &b.TotalCopies, &b.AvailableCopies)
	return b, err
}

func (r *bookRepository) Create(ctx context.Context, book model.NewBook) (*model.Book, error) {
	const query = `INSERT INTO books (title, author, isbn, category, total_copies, available_copies)
                   VALUES ($1, $2, $3, $4, $5, $5)
                   RETURNING ` + bookColumns
	created, err := scanBook(r.storage.pool.QueryRow(ctx, query, book.Title, book.Author, book.ISBN, book.Category, book.TotalCopies))
	if err != nil {
		return nil, classify(err)
	}
	return &created, nil
}

func (r *bookRepository) GetByID(ctx context.Context, id int64) (*model.Book, error) {
	const query = `SELECT ` + bookColumns + ` FROM books WHERE id=$1`
	book, err := scanBook(r.storage.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) List(ctx context.Context) ([]model.Book, error) {
	const query = `SELECT ` + bookColumns + ` FROM books ORDER BY id`
	rows, err := r.storage.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete locks the book row so no loan can be opened while open loans are counted.
func (r *bookRepository) Delete(ctx context.Context, id int64) error {
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const lockBook = `SELECT id FROM books WHERE id=$1 FOR UPDATE`
		var locked int64
		if err := tx.QueryRow(ctx, lockBook, id).Scan(&locked); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domainErrors.ErrNotFound
			}
			return err
		}

		const countOpen = `SELECT COUNT(*) FROM borrows WHERE book_id=$1 AND return_date IS NULL`
		var open int64
		if err := tx.QueryRow(ctx, countOpen, id).Scan(&open); err != nil {
			return err
		}
		if open > 0 {
			return domainErrors.ErrConflict
		}

		if _, err := tx.Exec(ctx, `DELETE FROM books WHERE id=$1`, id); err != nil {
			return err
		}
		return nil
	})
}
