package handler

import (
	"net/http"
	"strconv"

	"portal/internal/middleware"
	"portal/internal/model"
	"portal/internal/repository"
	"portal/internal/service"
	"portal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CommissionHandler struct {
	commissionService service.CommissionService
}

func NewCommissionHandler(commissionService service.CommissionService) *CommissionHandler {
	return &CommissionHandler{commissionService: commissionService}
}

func (h *CommissionHandler) RegisterRoutes(router *gin.RouterGroup) {
	rules := router.Group("/api/commission-rules")
	rules.Use(middleware.RequireRole(model.RoleAdmin, model.RoleManager))
	{
		rules.GET("", h.ListRules)
		rules.POST("", h.CreateRule)
		rules.DELETE("/:id", h.DeactivateRule)
	}

	commissions := router.Group("/api/commissions")
	commissions.Use(middleware.RequireRole(model.RoleAdmin, model.RoleManager))
	{
		commissions.POST("/calculate", h.Calculate)
	}

	summaries := router.Group("/api/commission-summaries")
	summaries.Use(middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleHead, model.RolePillar, model.RoleAgent))
	{
		summaries.GET("", h.ListSummaries)
		summaries.GET("/:id", h.GetSummary)
	}
}

// ListRules returns active commission rules, optionally for one employee
func (h *CommissionHandler) ListRules(c *gin.Context) {
	var employeeID *uuid.UUID
	if raw := c.Query("employee_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid employee_id"))
			return
		}
		employeeID = &id
	}

	rules, err := h.commissionService.ListRules(c.Request.Context(), employeeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rules))
}

// CreateRule adds a commission rule for an employee
func (h *CommissionHandler) CreateRule(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	var req service.CreateCommissionRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	rule, err := h.commissionService.CreateRule(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, rule))
}

// DeactivateRule disables a rule without deleting its history
func (h *CommissionHandler) DeactivateRule(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	rule, err := h.commissionService.DeactivateRule(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rule))
}

// Calculate runs the monthly commission calculation for one employee-month
func (h *CommissionHandler) Calculate(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	var req service.CalculateCommissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	summary, err := h.commissionService.Calculate(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}

// ListSummaries returns monthly summaries. Agents only see their own.
func (h *CommissionHandler) ListSummaries(c *gin.Context) {
	var filter repository.SummaryFilter
	if raw := c.Query("employee_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid employee_id"))
			return
		}
		filter.EmployeeID = &id
	}
	if raw := c.Query("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid year"))
			return
		}
		filter.Year = &year
	}
	if raw := c.Query("month"); raw != "" {
		month, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid month"))
			return
		}
		filter.Month = &month
	}

	if middleware.CurrentUserRole(c) == model.RoleAgent {
		userID, _ := middleware.CurrentUserID(c)
		filter.EmployeeID = &userID
	}

	summaries, err := h.commissionService.ListSummaries(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, summaries))
}

// GetSummary returns one monthly summary with its breakdown
func (h *CommissionHandler) GetSummary(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	summary, err := h.commissionService.GetSummary(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if middleware.CurrentUserRole(c) == model.RoleAgent {
		userID, ok := middleware.CurrentUserID(c)
		if !ok || summary.EmployeeID != userID {
			c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied"))
			return
		}
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}
