package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmockv3 "github.com/pashagolub/pgxmock/v3"

	domainErrors "github.com/polkiloo/library/internal/domain/errors"
	"github.com/polkiloo/library/internal/domain/model"
)

var borrowRowColumns = []string{"id", "user_id", "book_id", "borrow_date", "due_date", "return_date"}

func TestBorrowRepositoryOpen(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &borrowRepository{storage: storage}

	borrowedAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	dueAt := borrowedAt.Add(14 * 24 * time.Hour)

	mock.ExpectBeginTx(serializable)
	mock.ExpectExec("UPDATE books SET available_copies").WithArgs(int64(1)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectQuery("INSERT INTO borrows").WithArgs(int64(7), int64(1), borrowedAt, dueAt).WillReturnRows(pgxmockv3.NewRows([]string{"id"}).AddRow(int64(42)))
	mock.ExpectCommit()
	borrow, err := repo.Open(context.Background(), 7, 1, borrowedAt, dueAt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if borrow.ID != 42 || borrow.UserID != 7 || borrow.BookID != 1 || !borrow.DueAt.Equal(dueAt) || !borrow.IsOpen() {
		t.Fatalf("unexpected borrow: %+v", borrow)
	}

	mock.ExpectBeginTx(serializable)
	mock.ExpectExec("UPDATE books SET available_copies").WithArgs(int64(2)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	mock.ExpectQuery("SELECT EXISTS").WithArgs(int64(2)).WillReturnRows(pgxmockv3.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()
	if _, err := repo.Open(context.Background(), 7, 2, borrowedAt, dueAt); !errors.Is(err, domainErrors.ErrNoCopiesAvailable) {
		t.Fatalf("expected no copies available, got %v", err)
	}

	mock.ExpectBeginTx(serializable)
	mock.ExpectExec("UPDATE books SET available_copies").WithArgs(int64(3)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	mock.ExpectQuery("SELECT EXISTS").WithArgs(int64(3)).WillReturnRows(pgxmockv3.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectRollback()
	if _, err := repo.Open(context.Background(), 7, 3, borrowedAt, dueAt); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectBeginTx(serializable)
	mock.ExpectExec("UPDATE books SET available_copies").WithArgs(int64(4)).WillReturnError(&pgconn.PgError{Code: "40001", Message: "could not serialize access"})
	mock.ExpectRollback()
	if _, err := repo.Open(context.Background(), 7, 4, borrowedAt, dueAt); !errors.Is(err, domainErrors.ErrConcurrentUpdate) {
		t.Fatalf("expected concurrent update, got %v", err)
	}

	mock.ExpectBeginTx(serializable)
	mock.ExpectExec("UPDATE books SET available_copies").WithArgs(int64(5)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	mock.ExpectQuery("SELECT EXISTS").WithArgs(int64(5)).WillReturnError(errors.New("exists"))
	mock.ExpectRollback()
	if _, err := repo.Open(context.Background(), 7, 5, borrowedAt, dueAt); err == nil {
		t.Fatal("expected exists error")
	}

	mock.ExpectBeginTx(serializable)
	mock.ExpectExec("UPDATE books SET available_copies").WithArgs(int64(6)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectQuery("INSERT INTO borrows").WithArgs(int64(99), int64(6), borrowedAt, dueAt).WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "borrows_user_id_fkey"})
	mock.ExpectRollback()
	if _, err := repo.Open(context.Background(), 99, 6, borrowedAt, dueAt); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found for missing user, got %v", err)
	}

	mock.ExpectBeginTx(serializable).WillReturnError(errors.New("begin"))
	if _, err := repo.Open(context.Background(), 7, 1, borrowedAt, dueAt); err == nil {
		t.Fatal("expected begin error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestBorrowRepositoryClose(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &borrowRepository{storage: storage}

	borrowedAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	dueAt := borrowedAt.Add(14 * 24 * time.Hour)
	returnedAt := borrowedAt.Add(3 * 24 * time.Hour)

	mock.ExpectBeginTx(serializable)
	mock.ExpectQuery("FROM borrows WHERE id=.* FOR UPDATE").WithArgs(int64(5)).WillReturnRows(
		pgxmockv3.NewRows(borrowRowColumns).AddRow(int64(5), int64(7), int64(1), borrowedAt, dueAt, nil))
	mock.ExpectExec("UPDATE borrows SET return_date").WithArgs(returnedAt, int64(5)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE books SET available_copies").WithArgs(int64(1)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectCommit()
	borrow, err := repo.Close(context.Background(), 5, returnedAt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if borrow.IsOpen() || !borrow.ReturnedAt.Equal(returnedAt) || borrow.BookID != 1 {
		t.Fatalf("unexpected borrow: %+v", borrow)
	}

	earlier := returnedAt.Add(-time.Hour)
	mock.ExpectBeginTx(serializable)
	mock.ExpectQuery("FROM borrows WHERE id=.* FOR UPDATE").WithArgs(int64(6)).WillReturnRows(
		pgxmockv3.NewRows(borrowRowColumns).AddRow(int64(6), int64(7), int64(1), borrowedAt, dueAt, &earlier))
	mock.ExpectRollback()
	if _, err := repo.Close(context.Background(), 6, returnedAt); !errors.Is(err, domainErrors.ErrAlreadyReturned) {
		t.Fatalf("expected already returned, got %v", err)
	}

	mock.ExpectBeginTx(serializable)
	mock.ExpectQuery("FROM borrows WHERE id=.* FOR UPDATE").WithArgs(int64(7)).WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()
	if _, err := repo.Close(context.Background(), 7, returnedAt); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectBeginTx(serializable)
	mock.ExpectQuery("FROM borrows WHERE id=.* FOR UPDATE").WithArgs(int64(8)).WillReturnRows(
		pgxmockv3.NewRows(borrowRowColumns).AddRow(int64(8), int64(7), int64(0), borrowedAt, dueAt, nil))
	mock.ExpectExec("UPDATE borrows SET return_date").WithArgs(returnedAt, int64(8)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectCommit()
	borrow, err = repo.Close(context.Background(), 8, returnedAt)
	if err != nil || borrow.BookID != 0 || borrow.IsOpen() {
		t.Fatalf("expected deleted book loan to close, got %+v err=%v", borrow, err)
	}

	mock.ExpectBeginTx(serializable)
	mock.ExpectQuery("FROM borrows WHERE id=.* FOR UPDATE").WithArgs(int64(9)).WillReturnRows(
		pgxmockv3.NewRows(borrowRowColumns).AddRow(int64(9), int64(7), int64(1), borrowedAt, dueAt, nil))
	mock.ExpectExec("UPDATE borrows SET return_date").WithArgs(returnedAt, int64(9)).WillReturnError(errors.New("update"))
	mock.ExpectRollback()
	if _, err := repo.Close(context.Background(), 9, returnedAt); err == nil {
		t.Fatal("expected update error")
	}

	mock.ExpectBeginTx(serializable)
	mock.ExpectQuery("FROM borrows WHERE id=.* FOR UPDATE").WithArgs(int64(10)).WillReturnRows(
		pgxmockv3.NewRows(borrowRowColumns).AddRow(int64(10), int64(7), int64(1), borrowedAt, dueAt, nil))
	mock.ExpectExec("UPDATE borrows SET return_date").WithArgs(returnedAt, int64(10)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE books SET available_copies").WithArgs(int64(1)).WillReturnError(&pgconn.PgError{Code: "40P01", Message: "deadlock detected"})
	mock.ExpectRollback()
	if _, err := repo.Close(context.Background(), 10, returnedAt); !errors.Is(err, domainErrors.ErrConcurrentUpdate) {
		t.Fatalf("expected concurrent update, got %v", err)
	}

	mock.ExpectBeginTx(serializable)
	mock.ExpectQuery("FROM borrows WHERE id=.* FOR UPDATE").WithArgs(int64(11)).WillReturnError(errors.New("lock"))
	mock.ExpectRollback()
	if _, err := repo.Close(context.Background(), 11, returnedAt); err == nil {
		t.Fatal("expected lock error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestBorrowRepositoryQueries(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &borrowRepository{storage: storage}

	borrowedAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	dueAt := borrowedAt.Add(14 * 24 * time.Hour)
	returnedAt := borrowedAt.Add(24 * time.Hour)

	mock.ExpectQuery("FROM borrows WHERE id=").WithArgs(int64(1)).WillReturnRows(
		pgxmockv3.NewRows(borrowRowColumns).AddRow(int64(1), int64(7), int64(2), borrowedAt, dueAt, &returnedAt))
	borrow, err := repo.GetByID(context.Background(), 1)
	if err != nil || borrow.IsOpen() || borrow.BookID != 2 {
		t.Fatalf("unexpected borrow: %+v err=%v", borrow, err)
	}

	mock.ExpectQuery("FROM borrows WHERE id=").WithArgs(int64(2)).WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByID(context.Background(), 2); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery("FROM borrows WHERE id=").WithArgs(int64(3)).WillReturnError(errors.New("fail"))
	if _, err := repo.GetByID(context.Background(), 3); err == nil {
		t.Fatal("expected error")
	}

	mock.ExpectQuery("FROM borrows WHERE user_id=").WithArgs(int64(7)).WillReturnRows(
		pgxmockv3.NewRows(borrowRowColumns).
			AddRow(int64(1), int64(7), int64(2), borrowedAt, dueAt, &returnedAt).
			AddRow(int64(2), int64(7), int64(3), borrowedAt, dueAt, nil))
	borrows, err := repo.ListByUser(context.Background(), 7)
	if err != nil || len(borrows) != 2 || !borrows[1].IsOpen() {
		t.Fatalf("unexpected list: %v err=%v", borrows, err)
	}

	mock.ExpectQuery("FROM borrows WHERE user_id=").WithArgs(int64(8)).WillReturnError(errors.New("query"))
	if _, err := repo.ListByUser(context.Background(), 8); err == nil {
		t.Fatal("expected error")
	}

	mock.ExpectQuery("FROM borrows ORDER BY id").WillReturnRows(
		pgxmockv3.NewRows(borrowRowColumns).AddRow(int64(1), int64(7), int64(2), borrowedAt, dueAt, nil))
	borrows, err = repo.List(context.Background())
	if err != nil || len(borrows) != 1 {
		t.Fatalf("unexpected list: %v err=%v", borrows, err)
	}

	mock.ExpectQuery("FROM borrows ORDER BY id").WillReturnRows(
		pgxmockv3.NewRows(borrowRowColumns).AddRow("bad", int64(7), int64(2), borrowedAt, dueAt, nil))
	if _, err := repo.List(context.Background()); err == nil {
		t.Fatal("expected scan error")
	}

	mock.ExpectQuery("FROM borrows ORDER BY id").WillReturnRows(
		pgxmockv3.NewRows(borrowRowColumns).
			AddRow(int64(1), int64(7), int64(2), borrowedAt, dueAt, nil).
			AddRow(int64(2), int64(8), int64(2), borrowedAt, dueAt, nil).
			RowError(1, errors.New("row err")))
	if _, err := repo.List(context.Background()); err == nil || err.Error() != "row err" {
		t.Fatalf("expected row err, got %v", err)
	}

	now := dueAt.Add(time.Hour)
	mock.ExpectQuery(`WHERE return_date IS NULL AND due_date < \$1\s+AND \(due_date, id\) > \(\$2, \$3\)\s+ORDER BY due_date, id`).
		WithArgs(now, time.Time{}, int64(0), 10).
		WillReturnRows(pgxmockv3.NewRows(borrowRowColumns).AddRow(int64(2), int64(7), int64(3), borrowedAt, dueAt, nil))
	overdue, err := repo.ListOverdue(context.Background(), now, model.OverdueCursor{}, 10)
	if err != nil || len(overdue) != 1 || !overdue[0].IsOverdue(now) {
		t.Fatalf("unexpected overdue list: %v err=%v", overdue, err)
	}

	cursor := overdue[0].OverdueCursor()
	mock.ExpectQuery("AND \\(due_date, id\\) >").
		WithArgs(now, dueAt, int64(2), 10).
		WillReturnRows(pgxmockv3.NewRows(borrowRowColumns))
	overdue, err = repo.ListOverdue(context.Background(), now, cursor, 10)
	if err != nil || len(overdue) != 0 {
		t.Fatalf("expected empty page after cursor, got %v err=%v", overdue, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestBorrowRepositoryListRowsError(t *testing.T) {
	storage := &Storage{pool: &rowsErrorPool{rows: &errorRows{err: errors.New("rows err")}}}
	repo := &borrowRepository{storage: storage}

	if _, err := repo.ListByUser(context.Background(), 1); err == nil || err.Error() != "rows err" {
		t.Fatalf("expected rows err, got %v", err)
	}
}
