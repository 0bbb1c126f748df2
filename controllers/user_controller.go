package controllers

import (
	"net/http"

	"library-management-api/app"
	"library-management-api/db"

	"github.com/gin-gonic/gin"
)

type UserController struct{ *Srv }

func NewUserController(s *Srv) *UserController { return &UserController{Srv: s} }

// GET /admin/users — ?search=&page=&per_page=
func (uc *UserController) Index(c *gin.Context) {
	page, perPage := pageParams(c)
	res, err := uc.Repo.ListUsers(c.Request.Context(), c.Query("search"), page, perPage)
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	paginated(c, res.Users, meta(page, perPage, res.Total))
}

// GET /admin/users/:id — 用户详情 + 最近 3 条借阅
func (uc *UserController) Show(c *gin.Context) {
	ctx := c.Request.Context()

	u, err := uc.Repo.FindUserByID(ctx, c.Param("id"))
	if err != nil {
		if db.IsRecordNotFound(err) {
			fail(c, http.StatusNotFound, "User not found")
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	ts, err := uc.Repo.RecentTransactionsByUser(ctx, u.ID, 3)
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	recent := make([]app.H, 0, len(ts))
	for _, t := range ts {
		var book app.H // null when the book was deleted
		if t.Book != nil {
			book = app.H{"id": t.Book.ID, "title": t.Book.Title}
		}
		recent = append(recent, app.H{
			"id":            t.ID,
			"book":          book,
			"borrowed_date": t.BorrowedDate,
			"due_date":      t.DueDate,
			"returned_date": t.ReturnedDate,
			"status":        t.Status,
		})
	}

	success(c, http.StatusOK, "", app.H{
		"id":           u.ID,
		"name":         u.Name,
		"email":        u.Email,
		"role":         u.Role,
		"transactions": recent,
	})
}

// PUT /auth/users/:id — 本人或管理员可改
func (uc *UserController) Update(c *gin.Context) {
	actor := currentUser(c)
	id := c.Param("id")

	if !actor.IsAdmin() && actor.ID != id {
		fail(c, http.StatusForbidden, "Forbidden")
		return
	}

	var in struct {
		Name  *string `json:"name" binding:"omitempty,max=255"`
		Email *string `json:"email" binding:"omitempty,email,max=255"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusUnprocessableEntity, app.H{"message": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if _, err := uc.Repo.FindUserByID(ctx, id); err != nil {
		if db.IsRecordNotFound(err) {
			fail(c, http.StatusNotFound, "User not found")
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.Email != nil {
		taken, err := uc.Repo.EmailTaken(ctx, *in.Email, id)
		if err != nil {
			fail(c, http.StatusInternalServerError, err.Error())
			return
		}
		if taken {
			c.JSON(http.StatusUnprocessableEntity, app.H{"message": "The email has already been taken."})
			return
		}
		updates["email"] = *in.Email
	}

	u, err := uc.Repo.UpdateUser(ctx, id, updates)
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	success(c, http.StatusOK, "Profile updated successfully", u)
}

// DELETE /admin/users/:id
func (uc *UserController) Destroy(c *gin.Context) {
	actor := currentUser(c)
	id := c.Param("id")

	// 不允许删除自己，避免锁死
	if actor.ID == id {
		fail(c, http.StatusBadRequest, "Cannot delete yourself")
		return
	}

	ctx := c.Request.Context()
	if _, err := uc.Repo.FindUserByID(ctx, id); err != nil {
		if db.IsRecordNotFound(err) {
			fail(c, http.StatusNotFound, "User not found")
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	if err := uc.Repo.DeleteUserByID(ctx, id); err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	// 删除用户即撤销其全部令牌
	_ = uc.Tokens.RevokeAllForUser(ctx, id)

	c.JSON(http.StatusOK, app.H{"message": "User deleted successfully"})
}

// PUT /admin/users/:id/role — 提权/降权只走这里
func (uc *UserController) SetRole(c *gin.Context) {
	var in struct {
		Role string `json:"role" binding:"required,oneof=user admin"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusUnprocessableEntity, app.H{"message": err.Error()})
		return
	}

	ctx := c.Request.Context()
	id := c.Param("id")
	if _, err := uc.Repo.FindUserByID(ctx, id); err != nil {
		if db.IsRecordNotFound(err) {
			fail(c, http.StatusNotFound, "User not found")
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	if err := uc.Repo.SetUserRole(ctx, id, in.Role); err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	u, err := uc.Repo.FindUserByID(ctx, id)
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	success(c, http.StatusOK, "Role updated successfully", u)
}
