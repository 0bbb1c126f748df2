// controllers/srv.go
package controllers

import (
	"context"
	"net/http"
	"strconv"

	"library-management-api/app"
	"library-management-api/db"
	"library-management-api/mail"
	"library-management-api/models"
	"library-management-api/ratelimit"
	"library-management-api/session"

	"github.com/gin-gonic/gin"
)

type Srv struct {
	Repo    *db.Repo
	Tokens  session.Store
	Limiter ratelimit.Limiter
	Mailer  mail.Mailer
	Cfg     app.Config
}

func GetSrv(a *app.App) *Srv {
	return &Srv{
		Repo:    db.NewRepo(a.DB),
		Tokens:  session.NewRedisStore(a.RDB, a.Config.TokenTTL),
		Limiter: ratelimit.NewRedisLimiter(a.RDB),
		Mailer:  mail.LogMailer{},
		Cfg:     a.Config,
	}
}

// --- helpers ---

func currentUser(c *gin.Context) *models.User { return app.CurrentUser(c) }

func (s *Srv) issueToken(ctx context.Context, userID string) (string, error) {
	token := session.NewToken()
	if err := s.Tokens.Create(ctx, token, userID); err != nil {
		return "", err
	}
	return token, nil
}

// 统一响应外壳，对齐前端的约定
func success(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, app.H{"success": true, "message": message, "data": data})
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, app.H{"success": false, "message": message})
}

type pageMeta struct {
	CurrentPage int   `json:"current_page"`
	LastPage    int   `json:"last_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
}

func meta(page, perPage int, total int64) pageMeta {
	last := int((total + int64(perPage) - 1) / int64(perPage))
	if last < 1 {
		last = 1
	}
	return pageMeta{CurrentPage: page, LastPage: last, PerPage: perPage, Total: total}
}

func paginated(c *gin.Context, data interface{}, m pageMeta) {
	c.JSON(http.StatusOK, app.H{"success": true, "data": data, "meta": m})
}

func pageParams(c *gin.Context) (page, perPage int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "10"))
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 || perPage > 100 {
		perPage = 10
	}
	return page, perPage
}

// publicUser is the profile shape returned by auth endpoints.
func publicUser(u *models.User) app.H {
	return app.H{"id": u.ID, "name": u.Name, "email": u.Email, "role": u.Role}
}
