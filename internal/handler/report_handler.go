package handler

import (
	"net/http"
	"time"

	"portal/internal/middleware"
	"portal/internal/model"
	"portal/internal/service"
	"portal/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportService service.ReportService
}

func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/api/reports")
	reports.Use(middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleHead))
	{
		reports.GET("/dashboard", h.GetDashboard)
		reports.GET("/operations", h.GetOperations)
	}
}

// GetOperations returns task workload, fleet utilisation and the recent
// completed-task timeline.
func (h *ReportHandler) GetOperations(c *gin.Context) {
	report, err := h.reportService.GetOperationsReport(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, report))
}

// GetDashboard returns aggregated sales and cash-flow figures. Defaults to
// the current month when no window is given.
func (h *ReportHandler) GetDashboard(c *gin.Context) {
	now := time.Now().UTC()
	startDate := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	endDate := startDate.AddDate(0, 1, -1)

	if raw := c.Query("start_date"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "start_date must be YYYY-MM-DD"))
			return
		}
		startDate = t
	}
	if raw := c.Query("end_date"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "end_date must be YYYY-MM-DD"))
			return
		}
		endDate = t
	}
	if endDate.Before(startDate) {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "end_date must not precede start_date"))
		return
	}

	dashboard, err := h.reportService.GetSalesDashboard(c.Request.Context(), startDate, endDate)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, dashboard))
}
