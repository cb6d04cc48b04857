package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"perpus/domain"
)

func (h *Handler) listBooks(c *gin.Context) {
	books, err := h.books.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, books)
}

func (h *Handler) getBook(c *gin.Context) {
	book, err := h.books.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, book)
}

func (h *Handler) createBook(c *gin.Context) {
	var in domain.BookInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	book, err := h.books.Create(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, book)
}

func (h *Handler) updateBook(c *gin.Context) {
	var patch domain.BookPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	book, err := h.books.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, book)
}

func (h *Handler) deleteBook(c *gin.Context) {
	if err := h.books.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
