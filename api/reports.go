package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"perpus/domain"
	"perpus/report"
)

func queryLimit(c *gin.Context, fallback int) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, domain.Invalid("limit must be a positive integer")
	}
	return n, nil
}

func queryMonth(c *gin.Context, key string, fallback time.Time) (time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	t, err := time.Parse("2006-01", raw)
	if err != nil {
		return time.Time{}, domain.Invalid("%s must look like 2024-01", key)
	}
	return t, nil
}

func (h *Handler) dashboard(c *gin.Context) {
	d, err := h.reports.Dashboard(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, d)
}

func (h *Handler) summary(c *gin.Context) {
	s, err := h.reports.Summary(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, s)
}

// monthly defaults to the six months ending with the current one.
func (h *Handler) monthly(c *gin.Context) {
	today := h.clock.Today()
	to, err := queryMonth(c, "to", today)
	if err != nil {
		fail(c, err)
		return
	}
	from, err := queryMonth(c, "from", to.AddDate(0, -5, 1-to.Day()))
	if err != nil {
		fail(c, err)
		return
	}
	stats, err := h.reports.Monthly(c.Request.Context(), from, to)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, stats)
}

func (h *Handler) categories(c *gin.Context) {
	limit, err := queryLimit(c, report.ReportCategoryLimit)
	if err != nil {
		fail(c, err)
		return
	}
	stats, err := h.reports.Categories(c.Request.Context(), limit)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, stats)
}

func (h *Handler) borrowingsByCategory(c *gin.Context) {
	stats, err := h.reports.BorrowingsByCategory(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, stats)
}

func (h *Handler) popular(c *gin.Context) {
	limit, err := queryLimit(c, report.ReportPopularLimit)
	if err != nil {
		fail(c, err)
		return
	}
	books, err := h.reports.Popular(c.Request.Context(), limit)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, books)
}

func (h *Handler) overdue(c *gin.Context) {
	r, err := h.reports.Overdue(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, r)
}

func (h *Handler) recent(c *gin.Context) {
	limit, err := queryLimit(c, report.RecentLimit)
	if err != nil {
		fail(c, err)
		return
	}
	borrowings, err := h.reports.Recent(c.Request.Context(), limit)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, borrowings)
}
