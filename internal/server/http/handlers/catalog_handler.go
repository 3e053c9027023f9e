package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/library/internal/domain/model"
	"github.com/polkiloo/library/internal/server/http/dto"
)

// CatalogHandler serves the administrator pages.
type CatalogHandler struct {
	facade CatalogFacade
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(facade CatalogFacade) *CatalogHandler {
	return &CatalogHandler{facade: facade}
}

// Dashboard handles GET /admin.
func (h *CatalogHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	books, err := h.facade.Books(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	borrows, err := h.facade.AllBorrows(ctx, CurrentIdentity(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AdminDashboard{
		Books:   toBookResponses(books),
		Borrows: toBorrowResponses(borrows),
	})
}

// AddBook handles POST /admin/add_book.
func (h *CatalogHandler) AddBook(c *gin.Context) {
	var req dto.AddBookRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	book, err := h.facade.AddBook(c.Request.Context(), CurrentIdentity(c), model.NewBook{
		Title:       req.Title,
		Author:      req.Author,
		ISBN:        req.ISBN,
		Category:    req.Category,
		TotalCopies: *req.TotalCopies,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toBookResponse(*book))
}

// DeleteBook handles GET /admin/delete_book/:id.
func (h *CatalogHandler) DeleteBook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		message(c, http.StatusNotFound, "Not found")
		return
	}

	if err := h.facade.DeleteBook(c.Request.Context(), CurrentIdentity(c), id); err != nil {
		respondError(c, err)
		return
	}

	message(c, http.StatusOK, "Book deleted successfully")
}
