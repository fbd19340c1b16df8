package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/calyptra/units-backend/internal/middleware"
	"github.com/calyptra/units-backend/internal/services"
)

type AppHandler struct {
	appService   services.AppService
	usageService services.UsageService
}

func NewAppHandler(appService services.AppService, usageService services.UsageService) *AppHandler {
	return &AppHandler{appService: appService, usageService: usageService}
}

type registerAppRequest struct {
	Name        string  `json:"name" binding:"required"`
	CostPerUnit float64 `json:"cost_per_unit"`
	Plan        string  `json:"plan"`
	Profit      float64 `json:"profit"`
}

func (ah *AppHandler) Register(c *gin.Context) {
	var req registerAppRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	ctx := c.Request.Context()
	tenant := middleware.Tenant(c)
	if err := ah.appService.RegisterApp(ctx, tenant, req.Name, req.CostPerUnit, req.Plan, req.Profit); err != nil {
		RespondServiceError(c, err)
		return
	}
	app, err := ah.appService.DescribeApp(ctx, tenant, req.Name)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, app)
}

type updateAppRequest struct {
	CostPerUnit float64 `json:"cost_per_unit" binding:"required"`
}

func (ah *AppHandler) Update(c *gin.Context) {
	var req updateAppRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	prev, err := ah.appService.UpdateApp(c.Request.Context(), middleware.Tenant(c), c.Param("name"), req.CostPerUnit)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"previous_cost_per_unit": prev})
}

func (ah *AppHandler) Unregister(c *gin.Context) {
	if err := ah.appService.UnregisterApp(c.Request.Context(), middleware.Tenant(c), c.Param("name")); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"ok": true})
}

func (ah *AppHandler) Get(c *gin.Context) {
	app, err := ah.appService.DescribeApp(c.Request.Context(), middleware.Tenant(c), c.Param("name"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	if app == nil {
		RespondError(c, http.StatusNotFound, "app_not_found", nil)
		return
	}
	RespondOK(c, app)
}

func (ah *AppHandler) List(c *gin.Context) {
	apps, err := ah.appService.ListApps(c.Request.Context(), middleware.Tenant(c), c.Query("publisher"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"apps": apps})
}

// Usage serves the in-memory usage series for one app.
func (ah *AppHandler) Usage(c *gin.Context) {
	samples := ah.usageService.GetAppUsage(middleware.Tenant(c), c.Param("name"))
	RespondOK(c, gin.H{"usage": samples})
}

// AllUsage serves every usage series of the tenant.
func (ah *AppHandler) AllUsage(c *gin.Context) {
	RespondOK(c, gin.H{"usage": ah.usageService.GetAllAppUsage(middleware.Tenant(c))})
}
