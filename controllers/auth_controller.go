package controllers

import (
	"net/http"
	"net/url"
	"time"

	"library-management-api/app"
	"library-management-api/models"
	"library-management-api/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	maxAttempts     = 5
	decayWindow     = 60 * time.Second
	resetTokenTTL   = 60 * time.Minute
	genericResetMsg = "If this email exists in our system, a reset link has been sent."
)

type AuthController struct{ *Srv }

func NewAuthController(s *Srv) *AuthController { return &AuthController{Srv: s} }

// POST /auth/register
func (ac *AuthController) Register(c *gin.Context) {
	var in struct {
		Name     string `json:"name" binding:"required,max=255"`
		Email    string `json:"email" binding:"required,email,max=255"`
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusUnprocessableEntity, app.H{"message": err.Error()})
		return
	}

	taken, err := ac.Repo.EmailTaken(c.Request.Context(), in.Email, "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"message": err.Error()})
		return
	}
	if taken {
		c.JSON(http.StatusUnprocessableEntity, app.H{"message": "The email has already been taken."})
		return
	}

	// 注册一律是普通用户；提权只走管理员接口
	u := &models.User{
		ID:    uuid.NewString(),
		Name:  in.Name,
		Email: in.Email,
		Role:  models.RoleUser,
	}
	if err := u.SetPassword(in.Password); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"message": err.Error()})
		return
	}
	if err := ac.Repo.CreateUser(c.Request.Context(), u); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"message": err.Error()})
		return
	}

	token, err := ac.issueToken(c.Request.Context(), u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, app.H{
		"access_token": token,
		"token_type":   "Bearer",
		"user":         u,
	})
}

// POST /auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var in struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusUnprocessableEntity, app.H{"message": err.Error()})
		return
	}

	ctx := c.Request.Context()
	key := "login:" + c.ClientIP()

	// 限流在校验凭据之前
	if limited, err := ac.Limiter.TooManyAttempts(ctx, key, maxAttempts); err == nil && limited {
		c.JSON(http.StatusTooManyRequests, app.H{"message": "Too many login attempts. Please try again later."})
		return
	}

	u, err := ac.Repo.FindUserByEmail(ctx, in.Email)
	if err != nil || !u.CheckPassword(in.Password) {
		_ = ac.Limiter.Hit(ctx, key, decayWindow)
		c.JSON(http.StatusUnauthorized, app.H{"message": "Invalid login details"})
		return
	}

	_ = ac.Limiter.Clear(ctx, key)

	token, err := ac.issueToken(ctx, u.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, app.H{
		"access_token": token,
		"token_type":   "Bearer",
		"user":         u,
	})
}

// GET /auth/me
func (ac *AuthController) Me(c *gin.Context) {
	u := currentUser(c)
	c.JSON(http.StatusOK, app.H{"user": publicUser(u)})
}

// POST /auth/logout — 只撤销本次请求携带的令牌，其它会话保留
func (ac *AuthController) Logout(c *gin.Context) {
	if raw := c.GetString("token"); raw != "" {
		_ = ac.Tokens.Delete(c.Request.Context(), raw)
	}
	c.JSON(http.StatusOK, app.H{"message": "Logged out successfully"})
}

// POST /auth/forgot-password
// The response body must not reveal whether the email exists.
func (ac *AuthController) ForgotPassword(c *gin.Context) {
	var in struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusUnprocessableEntity, app.H{"message": err.Error()})
		return
	}

	ctx := c.Request.Context()
	key := "password-reset:" + c.ClientIP()

	if limited, err := ac.Limiter.TooManyAttempts(ctx, key, maxAttempts); err == nil && limited {
		c.JSON(http.StatusTooManyRequests, app.H{"message": "Too many password reset attempts. Please try again later."})
		return
	}

	u, err := ac.Repo.FindUserByEmail(ctx, in.Email)
	if err != nil {
		_ = ac.Limiter.Hit(ctx, key, decayWindow)
		c.JSON(http.StatusOK, app.H{"message": genericResetMsg})
		return
	}

	token := session.NewToken()
	if _, err := ac.Repo.CreatePasswordReset(ctx, u.Email, token, time.Now().UTC().Add(resetTokenTTL)); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"message": err.Error()})
		return
	}

	resetURL := ac.Cfg.FrontendURL + "/reset-password?token=" + token + "&email=" + url.QueryEscape(u.Email)
	_ = ac.Mailer.SendPasswordReset(ctx, u.Email, resetURL)

	_ = ac.Limiter.Hit(ctx, key, decayWindow)
	c.JSON(http.StatusOK, app.H{"message": genericResetMsg})
}

// POST /auth/reset-password
// Shares the password-reset:{ip} throttle key with ForgotPassword on purpose.
func (ac *AuthController) ResetPassword(c *gin.Context) {
	var in struct {
		Token                string `json:"token" binding:"required"`
		Email                string `json:"email" binding:"required,email"`
		Password             string `json:"password" binding:"required,min=8"`
		PasswordConfirmation string `json:"password_confirmation" binding:"required,eqfield=Password"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusUnprocessableEntity, app.H{"message": err.Error()})
		return
	}

	ctx := c.Request.Context()
	key := "password-reset:" + c.ClientIP()

	if limited, err := ac.Limiter.TooManyAttempts(ctx, key, maxAttempts); err == nil && limited {
		c.JSON(http.StatusTooManyRequests, app.H{"message": "Too many password reset attempts. Please try again later."})
		return
	}
	_ = ac.Limiter.Hit(ctx, key, decayWindow)

	pr, err := ac.Repo.FindValidPasswordReset(ctx, in.Email, in.Token)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"message": "This password reset token is invalid or has expired."})
		return
	}

	u, err := ac.Repo.FindUserByEmail(ctx, pr.Email)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"message": "This password reset token is invalid or has expired."})
		return
	}

	tmp := models.User{}
	if err := tmp.SetPassword(in.Password); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"message": err.Error()})
		return
	}
	if err := ac.Repo.UpdateUserPassword(ctx, u.ID, tmp.Password); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"message": err.Error()})
		return
	}
	if err := ac.Repo.ConsumePasswordReset(ctx, pr.Token); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"message": "This password reset token is invalid or has expired."})
		return
	}

	// 撤销该用户所有令牌
	_ = ac.Tokens.RevokeAllForUser(ctx, u.ID)

	c.JSON(http.StatusOK, app.H{"message": "Your password has been reset successfully."})
}

// POST /auth/change-password (authenticated)
func (ac *AuthController) ChangePassword(c *gin.Context) {
	var in struct {
		CurrentPassword         string `json:"current_password" binding:"required"`
		NewPassword             string `json:"new_password" binding:"required,min=8"`
		NewPasswordConfirmation string `json:"new_password_confirmation" binding:"required,eqfield=NewPassword"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusUnprocessableEntity, app.H{"message": err.Error()})
		return
	}

	ctx := c.Request.Context()
	u := currentUser(c)

	if !u.CheckPassword(in.CurrentPassword) {
		fail(c, http.StatusUnauthorized, "Current password is incorrect")
		return
	}

	if err := u.SetPassword(in.NewPassword); err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	if err := ac.Repo.UpdateUserPassword(ctx, u.ID, u.Password); err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	// 与 reset-password 同一策略：凭据变更即撤销全部令牌
	_ = ac.Tokens.RevokeAllForUser(ctx, u.ID)

	success(c, http.StatusOK, "Password changed successfully", nil)
}
