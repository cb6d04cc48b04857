package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"perpus/domain"
)

type borrowingPayload struct {
	BorrowerName string  `json:"borrower_name" binding:"required,max=255"`
	BorrowerUnit string  `json:"borrower_unit" binding:"required,max=255"`
	BookID       string  `json:"book_id" binding:"required"`
	BorrowDate   string  `json:"borrow_date" binding:"omitempty,datetime=2006-01-02"`
	DueDate      string  `json:"due_date" binding:"required,datetime=2006-01-02"`
	Notes        *string `json:"notes"`
}

type borrowingPatchPayload struct {
	BorrowerName *string `json:"borrower_name"`
	BorrowerUnit *string `json:"borrower_unit"`
	DueDate      *string `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
	Notes        *string `json:"notes"`
}

// borrowingView adds the overdue classification, which is never stored.
type borrowingView struct {
	domain.Borrowing
	IsOverdue   bool `json:"is_overdue"`
	DaysOverdue int  `json:"days_overdue"`
}

func (h *Handler) view(b domain.Borrowing) borrowingView {
	today := h.clock.Today()
	return borrowingView{
		Borrowing:   b,
		IsOverdue:   b.IsOverdue(today),
		DaysOverdue: b.DaysOverdue(today),
	}
}

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	// Already checked by the datetime binding.
	t, _ := time.Parse(time.DateOnly, s)
	return t
}

func (h *Handler) listBorrowings(c *gin.Context) {
	borrowings, err := h.borrowings.List(c.Request.Context(), true)
	if err != nil {
		fail(c, err)
		return
	}
	views := lo.Map(borrowings, func(b domain.Borrowing, _ int) borrowingView { return h.view(b) })
	switch c.Query("status") {
	case "":
	case string(domain.StatusOverdue):
		views = lo.Filter(views, func(v borrowingView, _ int) bool { return v.IsOverdue })
	default:
		status := domain.BorrowingStatus(c.Query("status"))
		views = lo.Filter(views, func(v borrowingView, _ int) bool { return v.Status == status })
	}
	ok(c, http.StatusOK, views)
}

func (h *Handler) getBorrowing(c *gin.Context) {
	borrowing, err := h.borrowings.GetById(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, h.view(borrowing))
}

func (h *Handler) createBorrowing(c *gin.Context) {
	var in borrowingPayload
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	borrowing, err := h.circulation.CreateBorrowing(c.Request.Context(), domain.BorrowingRequest{
		BorrowerName: in.BorrowerName,
		BorrowerUnit: in.BorrowerUnit,
		BookID:       in.BookID,
		BorrowDate:   parseDate(in.BorrowDate),
		DueDate:      parseDate(in.DueDate),
		Notes:        in.Notes,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, h.view(borrowing))
}

func (h *Handler) updateBorrowing(c *gin.Context) {
	var in borrowingPatchPayload
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	patch := domain.BorrowingPatch{
		BorrowerName: in.BorrowerName,
		BorrowerUnit: in.BorrowerUnit,
		Notes:        in.Notes,
	}
	if in.DueDate != nil {
		due := parseDate(*in.DueDate)
		patch.DueDate = &due
	}
	borrowing, err := h.circulation.UpdateBorrowing(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, h.view(borrowing))
}

func (h *Handler) returnBook(c *gin.Context) {
	borrowing, err := h.circulation.ReturnBook(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, h.view(borrowing))
}

func (h *Handler) deleteBorrowing(c *gin.Context) {
	if err := h.circulation.DeleteBorrowing(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
