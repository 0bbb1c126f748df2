package controllers

import (
	"errors"
	"net/http"

	"library-management-api/app"
	"library-management-api/db"
	"library-management-api/models"

	"github.com/gin-gonic/gin"
)

type TransactionController struct{ *Srv }

func NewTransactionController(s *Srv) *TransactionController {
	return &TransactionController{Srv: s}
}

// GET /transactions and GET /admin/transactions
// ?status=&overdue=&page=&per_page= — admins see everything, users see
// their own rows only.
func (tc *TransactionController) Index(c *gin.Context) {
	u := currentUser(c)
	page, perPage := pageParams(c)

	q := db.TransactionQuery{
		Status:  c.Query("status"),
		Overdue: c.Query("overdue") != "",
		Page:    page,
		PerPage: perPage,
	}
	if !u.IsAdmin() {
		q.UserID = u.ID
	}

	res, err := tc.Repo.ListTransactions(c.Request.Context(), q)
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	paginated(c, res.Transactions, meta(page, perPage, res.Total))
}

// GET /transactions/stats
func (tc *TransactionController) UserStats(c *gin.Context) {
	u := currentUser(c)
	stats, err := tc.Repo.UserStats(c.Request.Context(), u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{
			"success": false,
			"message": "Failed to load user statistics",
			"error":   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, app.H{"success": true, "data": stats})
}

// POST /transactions/:id/return
func (tc *TransactionController) Return(c *gin.Context) {
	u := currentUser(c)
	ctx := c.Request.Context()
	id := c.Param("id")

	t, err := tc.Repo.FindTransactionByID(ctx, id)
	if err != nil {
		if db.IsRecordNotFound(err) {
			fail(c, http.StatusNotFound, "Transaction not found")
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	// 已归还先报，再查归属，与原有顺序一致
	if t.Status == models.StatusReturned {
		fail(c, http.StatusBadRequest, "Book already returned")
		return
	}
	if !u.IsAdmin() && t.UserID != u.ID {
		fail(c, http.StatusForbidden, "Forbidden")
		return
	}

	tc.finishReturn(c, id)
}

// POST /admin/transactions/:id/mark-returned — 无归属校验
func (tc *TransactionController) MarkAsReturned(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	t, err := tc.Repo.FindTransactionByID(ctx, id)
	if err != nil {
		if db.IsRecordNotFound(err) {
			fail(c, http.StatusNotFound, "Transaction not found")
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	if t.Status == models.StatusReturned {
		fail(c, http.StatusBadRequest, "Book already returned")
		return
	}

	tc.finishReturn(c, id)
}

func (tc *TransactionController) finishReturn(c *gin.Context, id string) {
	t, err := tc.Repo.ReturnTransaction(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrAlreadyReturned) {
			fail(c, http.StatusBadRequest, "Book already returned")
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	success(c, http.StatusOK, "Book returned successfully", t)
}
