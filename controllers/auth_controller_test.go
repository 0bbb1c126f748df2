package controllers_test

import (
	"net/http"
	"testing"

	"library-management-api/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterLoginMeLogout(t *testing.T) {
	e := newTestEnv(t)

	// role in the payload is ignored; everyone registers as a plain user
	w := e.do(t, http.MethodPost, "/auth/register", "", gin.H{
		"name": "Alice", "email": "alice@example.com",
		"password": "password123", "role": "admin",
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	body := decode(t, w)
	token := body["access_token"].(string)
	assert.NotEmpty(t, token)
	assert.Equal(t, "Bearer", body["token_type"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "user", user["role"])
	assert.NotContains(t, user, "password")

	w = e.do(t, http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode(t, w)["user"].(map[string]interface{})
	assert.Equal(t, "alice@example.com", me["email"])

	w = e.do(t, http.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodGet, "/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unauthenticated", decode(t, w)["message"])
}

func TestRegisterValidation(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, "Alice", "alice@example.com", "password123")

	// 邮箱重复
	w := e.do(t, http.MethodPost, "/auth/register", "", gin.H{
		"name": "Alice Again", "email": "alice@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "The email has already been taken.", decode(t, w)["message"])

	// 密码太短
	w = e.do(t, http.MethodPost, "/auth/register", "", gin.H{
		"name": "Bob", "email": "bob@example.com", "password": "short",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// 邮箱格式不对
	w = e.do(t, http.MethodPost, "/auth/register", "", gin.H{
		"name": "Bob", "email": "not-an-email", "password": "password123",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, "Alice", "alice@example.com", "password123")

	w := e.do(t, http.MethodPost, "/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid login details", decode(t, w)["message"])

	// 不存在的邮箱给同样的回应
	w = e.do(t, http.MethodPost, "/auth/login", "", gin.H{
		"email": "nobody@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid login details", decode(t, w)["message"])
}

func TestLoginRateLimiting(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, "Alice", "alice@example.com", "password123")

	bad := gin.H{"email": "alice@example.com", "password": "wrong-password"}
	good := gin.H{"email": "alice@example.com", "password": "password123"}

	for i := 0; i < 5; i++ {
		w := e.doFrom(t, http.MethodPost, "/auth/login", "10.0.0.9:1000", "", bad)
		require.Equal(t, http.StatusUnauthorized, w.Code, "attempt %d", i+1)
	}

	// 第 6 次即使密码正确也被限流
	w := e.doFrom(t, http.MethodPost, "/auth/login", "10.0.0.9:1000", "", good)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "Too many login attempts. Please try again later.", decode(t, w)["message"])

	// 换一个 IP 不受影响
	w = e.doFrom(t, http.MethodPost, "/auth/login", "10.0.0.10:1000", "", good)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginClearsCounterOnSuccess(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, "Alice", "alice@example.com", "password123")

	bad := gin.H{"email": "alice@example.com", "password": "wrong-password"}
	good := gin.H{"email": "alice@example.com", "password": "password123"}

	for i := 0; i < 4; i++ {
		w := e.doFrom(t, http.MethodPost, "/auth/login", "10.0.0.9:1000", "", bad)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}
	w := e.doFrom(t, http.MethodPost, "/auth/login", "10.0.0.9:1000", "", good)
	require.Equal(t, http.StatusOK, w.Code)

	// 成功后窗口清零，失败从头计
	w = e.doFrom(t, http.MethodPost, "/auth/login", "10.0.0.9:1000", "", bad)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestForgotPasswordDoesNotLeakAccounts(t *testing.T) {
	e := newTestEnv(t)
	e.register(t, "Alice", "alice@example.com", "password123")

	known := e.do(t, http.MethodPost, "/auth/forgot-password", "", gin.H{"email": "alice@example.com"})
	unknown := e.do(t, http.MethodPost, "/auth/forgot-password", "", gin.H{"email": "nobody@example.com"})

	assert.Equal(t, http.StatusOK, known.Code)
	assert.Equal(t, http.StatusOK, unknown.Code)
	assert.Equal(t, known.Body.String(), unknown.Body.String())
}

func TestResetPasswordFlow(t *testing.T) {
	e := newTestEnv(t)
	oldToken, _ := e.register(t, "Alice", "alice@example.com", "OldPass1234")

	w := e.do(t, http.MethodPost, "/auth/forgot-password", "", gin.H{"email": "alice@example.com"})
	require.Equal(t, http.StatusOK, w.Code)

	var pr models.PasswordReset
	require.NoError(t, e.repo.DB.Where("email = ?", "alice@example.com").First(&pr).Error)

	// 错误的 token 什么都不改
	w = e.do(t, http.MethodPost, "/auth/reset-password", "", gin.H{
		"token": "bogus", "email": "alice@example.com",
		"password": "NewPass1234", "password_confirmation": "NewPass1234",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "This password reset token is invalid or has expired.", decode(t, w)["message"])

	w = e.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": "alice@example.com", "password": "OldPass1234"})
	require.Equal(t, http.StatusOK, w.Code, "old password must still work after a failed reset")

	// 两次密码不一致
	w = e.do(t, http.MethodPost, "/auth/reset-password", "", gin.H{
		"token": pr.Token, "email": "alice@example.com",
		"password": "NewPass1234", "password_confirmation": "Different1234",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = e.do(t, http.MethodPost, "/auth/reset-password", "", gin.H{
		"token": pr.Token, "email": "alice@example.com",
		"password": "NewPass1234", "password_confirmation": "NewPass1234",
	})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	assert.Equal(t, "Your password has been reset successfully.", decode(t, w)["message"])

	// 旧令牌全部撤销
	w = e.do(t, http.MethodGet, "/auth/me", oldToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": "alice@example.com", "password": "OldPass1234"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = e.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": "alice@example.com", "password": "NewPass1234"})
	assert.Equal(t, http.StatusOK, w.Code)

	// 一次性令牌不可复用
	w = e.do(t, http.MethodPost, "/auth/reset-password", "", gin.H{
		"token": pr.Token, "email": "alice@example.com",
		"password": "AnotherPass1", "password_confirmation": "AnotherPass1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChangePassword(t *testing.T) {
	e := newTestEnv(t)
	token, _ := e.register(t, "Alice", "alice@example.com", "OldPass1234")

	w := e.do(t, http.MethodPost, "/auth/change-password", token, gin.H{
		"current_password":          "wrong-password",
		"new_password":              "NewPass1234",
		"new_password_confirmation": "NewPass1234",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Current password is incorrect", decode(t, w)["message"])

	w = e.do(t, http.MethodPost, "/auth/change-password", token, gin.H{
		"current_password":          "OldPass1234",
		"new_password":              "NewPass1234",
		"new_password_confirmation": "NewPass1234",
	})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	// 凭据变更即撤销全部令牌
	w = e.do(t, http.MethodGet, "/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": "alice@example.com", "password": "NewPass1234"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUnauthenticatedRequests(t *testing.T) {
	e := newTestEnv(t)

	for _, path := range []string{"/auth/me", "/books", "/transactions", "/transactions/stats"} {
		w := e.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	// 畸形的 Authorization 头
	w := e.do(t, http.MethodGet, "/books", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = e.do(t, http.MethodGet, "/books", "not-a-known-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// /status 无需登录
	w = e.do(t, http.MethodGet, "/status", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "operational", decode(t, w)["status"])
}
