package test

import (
	"context"
	"sort"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/library/internal/domain/errors"
	"github.com/polkiloo/library/internal/domain/model"
	"github.com/polkiloo/library/internal/domain/repository"
)

// LibraryStore keeps users, books and borrows in memory behind one mutex so
// that copy counters and loan records change together, like a database transaction.
type LibraryStore struct {
	mu sync.Mutex

	users       map[int64]*model.User
	usersByName map[string]int64
	books       map[int64]*model.Book
	borrows     map[int64]*model.Borrow
	nextUser    int64
	nextBook    int64
	nextBorrow  int64

	// Err, when set, is returned by every repository call.
	Err error
	// OpenErrs and CloseErrs are returned, one per call, before the store is touched.
	OpenErrs  []error
	CloseErrs []error

	OpenCalls  int
	CloseCalls int
}

// NewLibraryStore creates an empty store.
func NewLibraryStore() *LibraryStore {
	return &LibraryStore{
		users:       make(map[int64]*model.User),
		usersByName: make(map[string]int64),
		books:       make(map[int64]*model.Book),
		borrows:     make(map[int64]*model.Borrow),
	}
}

// Users returns the user repository view of the store.
func (s *LibraryStore) Users() repository.UserRepository { return storeUsers{s} }

// Books returns the book repository view of the store.
func (s *LibraryStore) Books() repository.BookRepository { return storeBooks{s} }

// Borrows returns the borrow repository view of the store.
func (s *LibraryStore) Borrows() repository.BorrowRepository { return storeBorrows{s} }

// SeedBook stores a book with all copies available.
func (s *LibraryStore) SeedBook(title string, copies int) model.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextBook++
	book := &model.Book{ID: s.nextBook, Title: title, TotalCopies: copies, AvailableCopies: copies}
	s.books[book.ID] = book
	return *book
}

// SeedUser stores a user with the given admin flag.
func (s *LibraryStore) SeedUser(username string, admin bool) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextUser++
	user := &model.User{ID: s.nextUser, Username: username, PasswordHash: "hash:" + username, IsAdmin: admin, CreatedAt: time.Unix(0, 0)}
	s.users[user.ID] = user
	s.usersByName[username] = user.ID
	return *user
}

// Book returns a copy of the stored book.
func (s *LibraryStore) Book(id int64) (model.Book, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	book, ok := s.books[id]
	if !ok {
		return model.Book{}, false
	}
	return *book, true
}

// OpenBorrowsFor counts open loans of a book.
func (s *LibraryStore) OpenBorrowsFor(bookID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openBorrowsLocked(bookID)
}

func (s *LibraryStore) openBorrowsLocked(bookID int64) int {
	n := 0
	for _, b := range s.borrows {
		if b.BookID == bookID && b.IsOpen() {
			n++
		}
	}
	return n
}

func popErr(queue *[]error) error {
	if len(*queue) == 0 {
		return nil
	}
	err := (*queue)[0]
	*queue = (*queue)[1:]
	return err
}

func (s *LibraryStore) sortedBorrowsLocked(keep func(model.Borrow) bool) []model.Borrow {
	result := make([]model.Borrow, 0, len(s.borrows))
	for _, b := range s.borrows {
		if keep(*b) {
			result = append(result, *b)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

type storeUsers struct{ s *LibraryStore }

func (r storeUsers) Create(ctx context.Context, username, passwordHash string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	if _, exists := r.s.usersByName[username]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	r.s.nextUser++
	user := &model.User{ID: r.s.nextUser, Username: username, PasswordHash: passwordHash, CreatedAt: time.Now()}
	r.s.users[user.ID] = user
	r.s.usersByName[username] = user.ID
	out := *user
	return &out, nil
}

func (r storeUsers) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	id, ok := r.s.usersByName[username]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	out := *r.s.users[id]
	return &out, nil
}

type storeBooks struct{ s *LibraryStore }

func (r storeBooks) Create(ctx context.Context, book model.NewBook) (*model.Book, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	r.s.nextBook++
	created := &model.Book{
		ID:              r.s.nextBook,
		Title:           book.Title,
		Author:          book.Author,
		ISBN:            book.ISBN,
		Category:        book.Category,
		TotalCopies:     book.TotalCopies,
		AvailableCopies: book.TotalCopies,
	}
	r.s.books[created.ID] = created
	out := *created
	return &out, nil
}

func (r storeBooks) GetByID(ctx context.Context, id int64) (*model.Book, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	book, ok := r.s.books[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	out := *book
	return &out, nil
}

func (r storeBooks) List(ctx context.Context) ([]model.Book, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	result := make([]model.Book, 0, len(r.s.books))
	for _, b := range r.s.books {
		result = append(result, *b)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r storeBooks) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if _, ok := r.s.books[id]; !ok {
		return domainErrors.ErrNotFound
	}
	if r.s.openBorrowsLocked(id) > 0 {
		return domainErrors.ErrConflict
	}
	delete(r.s.books, id)
	for _, b := range r.s.borrows {
		if b.BookID == id {
			b.BookID = 0
		}
	}
	return nil
}

type storeBorrows struct{ s *LibraryStore }

func (r storeBorrows) Open(ctx context.Context, userID, bookID int64, borrowedAt, dueAt time.Time) (*model.Borrow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.OpenCalls++
	if err := popErr(&r.s.OpenErrs); err != nil {
		return nil, err
	}
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	if _, ok := r.s.users[userID]; !ok {
		return nil, domainErrors.ErrNotFound
	}
	book, ok := r.s.books[bookID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if book.AvailableCopies <= 0 {
		return nil, domainErrors.ErrNoCopiesAvailable
	}
	book.AvailableCopies--
	r.s.nextBorrow++
	borrow := &model.Borrow{ID: r.s.nextBorrow, UserID: userID, BookID: bookID, BorrowedAt: borrowedAt, DueAt: dueAt}
	r.s.borrows[borrow.ID] = borrow
	out := *borrow
	return &out, nil
}

func (r storeBorrows) Close(ctx context.Context, borrowID int64, returnedAt time.Time) (*model.Borrow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.CloseCalls++
	if err := popErr(&r.s.CloseErrs); err != nil {
		return nil, err
	}
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	borrow, ok := r.s.borrows[borrowID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if !borrow.IsOpen() {
		return nil, domainErrors.ErrAlreadyReturned
	}
	stamp := returnedAt
	borrow.ReturnedAt = &stamp
	if book, ok := r.s.books[borrow.BookID]; ok && book.AvailableCopies < book.TotalCopies {
		book.AvailableCopies++
	}
	out := *borrow
	return &out, nil
}

func (r storeBorrows) GetByID(ctx context.Context, id int64) (*model.Borrow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	borrow, ok := r.s.borrows[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	out := *borrow
	return &out, nil
}

func (r storeBorrows) ListByUser(ctx context.Context, userID int64) ([]model.Borrow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	return r.s.sortedBorrowsLocked(func(b model.Borrow) bool { return b.UserID == userID }), nil
}

func (r storeBorrows) List(ctx context.Context) ([]model.Borrow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	return r.s.sortedBorrowsLocked(func(model.Borrow) bool { return true }), nil
}

func (r storeBorrows) ListOverdue(ctx context.Context, now time.Time, after model.OverdueCursor, limit int) ([]model.Borrow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	overdue := r.s.sortedBorrowsLocked(func(b model.Borrow) bool { return b.IsOverdue(now) })
	return PageOverdue(overdue, after, limit), nil
}

// PageOverdue orders loans by due date and id and returns up to limit of
// those after the cursor.
func PageOverdue(borrows []model.Borrow, after model.OverdueCursor, limit int) []model.Borrow {
	result := make([]model.Borrow, 0, len(borrows))
	for _, b := range borrows {
		if after.Precedes(b) {
			result = append(result, b)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].OverdueCursor().Precedes(result[j]) })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

var _ repository.Factory = (*LibraryStore)(nil)
