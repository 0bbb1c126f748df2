package controllers

import (
	"net/http"

	"library-management-api/app"

	"github.com/gin-gonic/gin"
)

type AdminController struct{ *Srv }

func NewAdminController(s *Srv) *AdminController { return &AdminController{Srv: s} }

// GET /admin/dashboard-stats
func (ad *AdminController) DashboardStats(c *gin.Context) {
	stats, err := ad.Repo.DashboardStats(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, app.H{"success": true, "data": stats})
}
