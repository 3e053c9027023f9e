package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/library/internal/domain/errors"
	"github.com/polkiloo/library/internal/domain/model"
)

const borrowColumns = `id, user_id, COALESCE(book_id, 0), borrow_date, due_date, return_date`

type borrowRepository struct {
	storage *Storage
}

func scanBorrow(row scanner) (model.Borrow, error) {
	var b model.Borrow
	err := row.Scan(&b.ID, &b.UserID, &b.BookID, &b.BorrowedAt, &b.DueAt, &b.ReturnedAt)
	return b, err
}

// Open decrements the copy counter only while it is positive, so two
// concurrent loans of the last copy cannot both succeed.
func (r *borrowRepository) Open(ctx context.Context, userID, bookID int64, borrowedAt, dueAt time.Time) (*model.Borrow, error) {
	var borrow model.Borrow
	err := r.storage.withinTx(ctx, serializable, func(tx pgx.Tx) error {
		const takeCopy = `UPDATE books SET available_copies = available_copies - 1
                          WHERE id=$1 AND available_copies > 0`
		tag, err := tx.Exec(ctx, takeCopy, bookID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM books WHERE id=$1)`, bookID).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return domainErrors.ErrNotFound
			}
			return domainErrors.ErrNoCopiesAvailable
		}

		const insertBorrow = `INSERT INTO borrows (user_id, book_id, borrow_date, due_date)
                              VALUES ($1, $2, $3, $4) RETURNING id`
		if err := tx.QueryRow(ctx, insertBorrow, userID, bookID, borrowedAt, dueAt).Scan(&borrow.ID); err != nil {
			return err
		}
		borrow.UserID = userID
		borrow.BookID = bookID
		borrow.BorrowedAt = borrowedAt
		borrow.DueAt = dueAt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &borrow, nil
}

// Close locks the loan row so a copy is put back at most once.
func (r *borrowRepository) Close(ctx context.Context, borrowID int64, returnedAt time.Time) (*model.Borrow, error) {
	var borrow model.Borrow
	err := r.storage.withinTx(ctx, serializable, func(tx pgx.Tx) error {
		const lockBorrow = `SELECT ` + borrowColumns + ` FROM borrows WHERE id=$1 FOR UPDATE`
		var err error
		borrow, err = scanBorrow(tx.QueryRow(ctx, lockBorrow, borrowID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domainErrors.ErrNotFound
			}
			return err
		}
		if !borrow.IsOpen() {
			return domainErrors.ErrAlreadyReturned
		}

		if _, err := tx.Exec(ctx, `UPDATE borrows SET return_date=$1 WHERE id=$2`, returnedAt, borrowID); err != nil {
			return err
		}
		borrow.ReturnedAt = &returnedAt

		if borrow.BookID == 0 {
			return nil
		}
		const putBack = `UPDATE books SET available_copies = available_copies + 1
                         WHERE id=$1 AND available_copies < total_copies`
		if _, err := tx.Exec(ctx, putBack, borrow.BookID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &borrow, nil
}

func (r *borrowRepository) GetByID(ctx context.Context, id int64) (*model.Borrow, error) {
	const query = `SELECT ` + borrowColumns + ` FROM borrows WHERE id=$1`
	borrow, err := scanBorrow(r.storage.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &borrow, nil
}

func (r *borrowRepository) ListByUser(ctx context.Context, userID int64) ([]model.Borrow, error) {
	const query = `SELECT ` + borrowColumns + ` FROM borrows WHERE user_id=$1 ORDER BY id`
	return r.list(ctx, query, userID)
}

func (r *borrowRepository) List(ctx context.Context) ([]model.Borrow, error) {
	const query = `SELECT ` + borrowColumns + ` FROM borrows ORDER BY id`
	return r.list(ctx, query)
}

func (r *borrowRepository) ListOverdue(ctx context.Context, now time.Time, after model.OverdueCursor, limit int) ([]model.Borrow, error) {
	const query = `SELECT ` + borrowColumns + ` FROM borrows
                   WHERE return_date IS NULL AND due_date < $1
                     AND (due_date, id) > ($2, $3)
                   ORDER BY due_date, id
                   LIMIT $4`
	return r.list(ctx, query, now, after.DueAt, after.ID, limit)
}

func (r *borrowRepository) list(ctx context.Context, query string, args ...any) ([]model.Borrow, error) {
	rows, err := r.storage.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Borrow
	for rows.Next() {
		b, err := scanBorrow(rows)
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
