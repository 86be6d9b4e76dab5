package handler

import (
	"net/http"
	"time"

	"portal/internal/middleware"
	"portal/internal/model"
	"portal/internal/repository"
	"portal/internal/service"
	"portal/pkg/pagination"
	"portal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SaleHandler struct {
	saleService service.SaleService
}

func NewSaleHandler(saleService service.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

func (h *SaleHandler) RegisterRoutes(router *gin.RouterGroup) {
	sales := router.Group("/api/sales")
	sales.Use(middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleHead, model.RolePillar, model.RoleAgent))
	{
		sales.GET("", h.ListSales)
		sales.POST("", h.CreateSale)
		sales.GET("/:id", h.GetSale)
		sales.PUT("/:id", h.UpdateSale)
		sales.PUT("/:id/status", h.UpdateSaleStatus)
	}

	admin := router.Group("/api/sales")
	admin.Use(middleware.RequireRole(model.RoleAdmin, model.RoleManager))
	{
		admin.DELETE("/:id", h.DeleteSale)
	}
}

// ListSales returns a filtered, paginated page of the pipeline. Agents only
// see their own sales; other roles see everything.
func (h *SaleHandler) ListSales(c *gin.Context) {
	params := pagination.Parse(c)
	sortBy, sortDesc := pagination.ParseSort(c, "created_at", "lead_date", "close_date", "sale_amount", "status")

	filter := repository.SaleFilter{
		Status:   c.Query("status"),
		SaleType: c.Query("sale_type"),
		Search:   c.Query("search"),
		SortBy:   sortBy,
		SortDesc: sortDesc,
	}
	if raw := c.Query("salesperson_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid salesperson_id"))
			return
		}
		filter.SalespersonID = &id
	}
	if raw := c.Query("company_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid company_id"))
			return
		}
		filter.CompanyID = &id
	}
	if raw := c.Query("from_lead_date"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "from_lead_date must be YYYY-MM-DD"))
			return
		}
		filter.FromLeadDate = &t
	}
	if raw := c.Query("to_lead_date"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "to_lead_date must be YYYY-MM-DD"))
			return
		}
		filter.ToLeadDate = &t
	}

	if middleware.CurrentUserRole(c) == model.RoleAgent {
		userID, _ := middleware.CurrentUserID(c)
		filter.SalespersonID = &userID
	}

	sales, total, err := h.saleService.List(c.Request.Context(), filter, params.Offset, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.List(http.StatusOK, sales, params.Page, params.Limit, total))
}

// CreateSale registers a new opportunity in the pipeline
func (h *SaleHandler) CreateSale(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	var req service.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	// Agents can only file sales under their own name.
	if middleware.CurrentUserRole(c) == model.RoleAgent {
		req.SalespersonID = userID.String()
	}

	sale, err := h.saleService.Create(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, sale))
}

// GetSale returns one sale with its relations
func (h *SaleHandler) GetSale(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	sale, err := h.saleService.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !canAccessSale(c, sale) {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied"))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, sale))
}

// UpdateSale edits an open sale's details
func (h *SaleHandler) UpdateSale(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	sale, err := h.saleService.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !canAccessSale(c, sale) {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied"))
		return
	}

	var req service.UpdateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	updated, err := h.saleService.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, updated))
}

// UpdateSaleStatus advances a sale through the pipeline
func (h *SaleHandler) UpdateSaleStatus(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	sale, err := h.saleService.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !canAccessSale(c, sale) {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied"))
		return
	}

	var req service.UpdateSaleStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	updated, err := h.saleService.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, updated))
}

// DeleteSale removes a sale that never entered a commission calculation
func (h *SaleHandler) DeleteSale(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.saleService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "sale deleted"}))
}

// canAccessSale restricts agents to sales they own.
func canAccessSale(c *gin.Context, sale *model.Sale) bool {
	if middleware.CurrentUserRole(c) != model.RoleAgent {
		return true
	}
	userID, ok := middleware.CurrentUserID(c)
	return ok && sale.SalespersonID == userID
}
