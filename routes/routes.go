package routes

import (
	"net/http"
	"time"

	"library-management-api/app"
	"library-management-api/controllers"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires the full route table onto the engine.
func RegisterRoutes(r *gin.Engine, a *app.App) {
	Register(r, controllers.GetSrv(a))
}

// Register is split out so tests can supply their own Srv (sqlite DB,
// in-memory token store and limiter).
func Register(r *gin.Engine, s *controllers.Srv) {
	authCtl := controllers.NewAuthController(s)
	bookCtl := controllers.NewBookController(s)
	txCtl := controllers.NewTransactionController(s)
	userCtl := controllers.NewUserController(s)
	adminCtl := controllers.NewAdminController(s)

	// 复用的中间件
	authMW := app.AuthRequired(s.Tokens, s.Repo)
	adminMW := app.AdminOnly()

	// 公开
	r.GET("/status", func(c *app.Ctx) {
		c.JSON(http.StatusOK, app.H{
			"status":    "operational",
			"version":   "1.0.0",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	auth := r.Group("/auth")
	{
		auth.POST("/register", authCtl.Register)
		auth.POST("/login", authCtl.Login)
		auth.POST("/forgot-password", authCtl.ForgotPassword)
		auth.POST("/reset-password", authCtl.ResetPassword)
	}

	// 登录后
	authed := auth.Group("", authMW)
	{
		authed.GET("/me", authCtl.Me)
		authed.POST("/logout", authCtl.Logout)
		authed.POST("/change-password", authCtl.ChangePassword)
		authed.PUT("/users/:id", userCtl.Update)
	}

	books := r.Group("/books", authMW)
	{
		books.GET("", bookCtl.Index)
		books.GET("/:id", bookCtl.Show)
		books.POST("/:id/borrow", bookCtl.Borrow)
	}

	transactions := r.Group("/transactions", authMW)
	{
		transactions.GET("/stats", txCtl.UserStats)
		transactions.GET("", txCtl.Index)
		transactions.POST("/:id/return", txCtl.Return)
	}

	// 仅管理员
	admin := r.Group("/admin", authMW, adminMW)
	{
		admin.GET("/dashboard-stats", adminCtl.DashboardStats)

		adminBooks := admin.Group("/books")
		{
			adminBooks.GET("", bookCtl.Index)
			adminBooks.POST("", bookCtl.Store)
			adminBooks.GET("/:id", bookCtl.Show)
			adminBooks.PUT("/:id", bookCtl.Update)
			adminBooks.DELETE("/:id", bookCtl.Destroy)
		}

		adminUsers := admin.Group("/users")
		{
			adminUsers.GET("", userCtl.Index)
			adminUsers.GET("/:id", userCtl.Show)
			adminUsers.DELETE("/:id", userCtl.Destroy)
			adminUsers.PUT("/:id/role", userCtl.SetRole)
		}

		adminTx := admin.Group("/transactions")
		{
			adminTx.GET("", txCtl.Index)
			adminTx.POST("/:id/mark-returned", txCtl.MarkAsReturned)
		}
	}
}
