package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/library/internal/server/http/dto"
)

// LendingHandler serves the member pages and the loan endpoints.
type LendingHandler struct {
	catalog CatalogFacade
	lending LendingFacade
}

// NewLendingHandler constructs LendingHandler.
func NewLendingHandler(catalog CatalogFacade, lending LendingFacade) *LendingHandler {
	return &LendingHandler{catalog: catalog, lending: lending}
}

// Dashboard handles GET /student.
func (h *LendingHandler) Dashboard(c *gin.Context) {
	books, err := h.catalog.Books(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.StudentDashboard{Books: toBookResponses(books)})
}

// Borrow handles GET /borrow/:book_id.
func (h *LendingHandler) Borrow(c *gin.Context) {
	bookID, ok := pathID(c, "book_id")
	if !ok {
		message(c, http.StatusNotFound, "Not found")
		return
	}

	borrow, err := h.lending.Borrow(c.Request.Context(), CurrentIdentity(c), bookID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toBorrowResponse(*borrow))
}

// Return handles GET /return/:borrow_id.
func (h *LendingHandler) Return(c *gin.Context) {
	borrowID, ok := pathID(c, "borrow_id")
	if !ok {
		message(c, http.StatusNotFound, "Not found")
		return
	}

	borrow, err := h.lending.ReturnBook(c.Request.Context(), CurrentIdentity(c), borrowID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toBorrowResponse(*borrow))
}

// MyBooks handles GET /mybooks.
func (h *LendingHandler) MyBooks(c *gin.Context) {
	borrows, err := h.lending.MyBorrows(c.Request.Context(), CurrentIdentity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.BorrowsResponse{Borrows: toBorrowResponses(borrows)})
}
