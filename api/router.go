package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"perpus/catalog"
	"perpus/circulation"
	"perpus/clock"
	"perpus/repository"
	"perpus/report"
)

type Handler struct {
	books       *catalog.Books
	inventory   *catalog.Inventory
	circulation *circulation.Coordinator
	borrowings  repository.BorrowingRepository
	reports     *report.Service
	clock       clock.Clock
}

func NewHandler(
	books *catalog.Books,
	inventory *catalog.Inventory,
	coordinator *circulation.Coordinator,
	borrowings repository.BorrowingRepository,
	reports *report.Service,
	clk clock.Clock,
) *Handler {
	return &Handler{
		books:       books,
		inventory:   inventory,
		circulation: coordinator,
		borrowings:  borrowings,
		reports:     reports,
		clock:       clk,
	}
}

func NewRouter(h *Handler, timeout time.Duration) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestContext(timeout))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	books := router.Group("/books")
	books.GET("", h.listBooks)
	books.GET("/:id", h.getBook)
	books.POST("", h.createBook)
	books.PATCH("/:id", h.updateBook)
	books.DELETE("/:id", h.deleteBook)

	borrowings := router.Group("/borrowings")
	borrowings.GET("", h.listBorrowings)
	borrowings.GET("/:id", h.getBorrowing)
	borrowings.POST("", h.createBorrowing)
	borrowings.PATCH("/:id", h.updateBorrowing)
	borrowings.POST("/:id/return", h.returnBook)
	borrowings.DELETE("/:id", h.deleteBorrowing)

	inventory := router.Group("/inventory")
	inventory.GET("", h.listInventory)
	inventory.GET("/:id", h.getInventory)
	inventory.POST("", h.createInventory)
	inventory.PATCH("/:id", h.updateInventory)
	inventory.DELETE("/:id", h.deleteInventory)

	reports := router.Group("/reports")
	reports.GET("/dashboard", h.dashboard)
	reports.GET("/summary", h.summary)
	reports.GET("/monthly", h.monthly)
	reports.GET("/categories", h.categories)
	reports.GET("/categories/borrowings", h.borrowingsByCategory)
	reports.GET("/popular", h.popular)
	reports.GET("/overdue", h.overdue)
	reports.GET("/recent", h.recent)

	return router
}
