package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/library/internal/domain/errors"
	"github.com/polkiloo/library/internal/domain/model"
	"github.com/polkiloo/library/internal/server/http/dto"
	"github.com/polkiloo/library/internal/server/http/middleware"
)

// CurrentIdentity extracts the caller identity from context.
func CurrentIdentity(c *gin.Context) model.Identity {
	return middleware.IdentityFrom(c)
}

func message(c *gin.Context, status int, text string) {
	c.JSON(status, dto.MessageResponse{Message: text})
}

// respondError translates domain errors into HTTP responses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainErrors.ErrUnauthorized):
		middleware.RedirectToLogin(c)
	case errors.Is(err, domainErrors.ErrForbidden):
		message(c, http.StatusForbidden, "You can only return your own books")
	case errors.Is(err, domainErrors.ErrNotFound):
		message(c, http.StatusNotFound, "Not found")
	case errors.Is(err, domainErrors.ErrNoCopiesAvailable):
		message(c, http.StatusOK, "No copies available")
	case errors.Is(err, domainErrors.ErrAlreadyReturned):
		message(c, http.StatusOK, "Book already returned")
	case errors.Is(err, domainErrors.ErrAlreadyExists):
		message(c, http.StatusConflict, "Username already exists")
	case errors.Is(err, domainErrors.ErrInvalidInput):
		message(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domainErrors.ErrInvalidCredentials):
		message(c, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, domainErrors.ErrConflict):
		message(c, http.StatusConflict, "Book has borrows that are not returned yet")
	case errors.Is(err, domainErrors.ErrConcurrentUpdate):
		_ = c.Error(err)
		message(c, http.StatusServiceUnavailable, "Library is busy, try again")
	default:
		_ = c.Error(err)
		message(c, http.StatusInternalServerError, "Internal server error")
	}
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.MessageResponse{
		Message: "Invalid input",
		Details: ValidationDetails(err),
	})
}

// pathID parses a positive numeric path parameter.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func toBookResponse(book model.Book) dto.BookResponse {
	return dto.BookResponse{
		ID:              book.ID,
		Title:           book.Title,
		Author:          book.Author,
		ISBN:            book.ISBN,
		Category:        book.Category,
		TotalCopies:     book.TotalCopies,
		AvailableCopies: book.AvailableCopies,
	}
}

func toBookResponses(books []model.Book) []dto.BookResponse {
	response := make([]dto.BookResponse, 0, len(books))
	for _, b := range books {
		response = append(response, toBookResponse(b))
	}
	return response
}

func toBorrowResponse(borrow model.Borrow) dto.BorrowResponse {
	resp := dto.BorrowResponse{
		ID:         borrow.ID,
		UserID:     borrow.UserID,
		BorrowDate: borrow.BorrowedAt,
		DueDate:    borrow.DueAt,
		ReturnDate: borrow.ReturnedAt,
	}
	if borrow.BookID != 0 {
		bookID := borrow.BookID
		resp.BookID = &bookID
	}
	if borrow.Book != nil {
		book := toBookResponse(*borrow.Book)
		resp.Book = &book
	}
	return resp
}

func toBorrowResponses(borrows []model.Borrow) []dto.BorrowResponse {
	response := make([]dto.BorrowResponse, 0, len(borrows))
	for _, b := range borrows {
		response = append(response, toBorrowResponse(b))
	}
	return response
}
