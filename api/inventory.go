package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"perpus/domain"
)

func (h *Handler) listInventory(c *gin.Context) {
	items, err := h.inventory.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, items)
}

func (h *Handler) getInventory(c *gin.Context) {
	item, err := h.inventory.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, item)
}

func (h *Handler) createInventory(c *gin.Context) {
	var in domain.InventoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	item, err := h.inventory.Create(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, item)
}

func (h *Handler) updateInventory(c *gin.Context) {
	var patch domain.InventoryPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	item, err := h.inventory.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, item)
}

func (h *Handler) deleteInventory(c *gin.Context) {
	if err := h.inventory.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
