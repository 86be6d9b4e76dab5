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

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

func (h *PaymentHandler) RegisterRoutes(router *gin.RouterGroup) {
	payments := router.Group("/api/payments")
	payments.Use(middleware.RequireRole(model.RoleAdmin, model.RoleManager))
	{
		payments.GET("", h.ListPayments)
		payments.POST("", h.CreatePayment)
		payments.POST("/from-summary", h.GenerateFromSummary)
		payments.GET("/:id", h.GetPayment)
		payments.PUT("/:id", h.UpdatePayment)
		payments.PUT("/:id/status", h.UpdateStatus)
		payments.DELETE("/:id", h.DeletePayment)
	}
}

// ListPayments returns a filtered, paginated page of the money ledger
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	params := pagination.Parse(c)
	sortBy, sortDesc := pagination.ParseSort(c, "created_at", "due_date", "paid_date", "amount", "status")

	filter := repository.PaymentFilter{
		PaymentType: c.Query("payment_type"),
		Status:      c.Query("status"),
		Search:      c.Query("search"),
		SortBy:      sortBy,
		SortDesc:    sortDesc,
	}
	if raw := c.Query("employee_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid employee_id"))
			return
		}
		filter.EmployeeID = &id
	}
	if raw := c.Query("company_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid company_id"))
			return
		}
		filter.CompanyID = &id
	}
	if raw := c.Query("from_due_date"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "from_due_date must be YYYY-MM-DD"))
			return
		}
		filter.FromDueDate = &t
	}
	if raw := c.Query("to_due_date"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "to_due_date must be YYYY-MM-DD"))
			return
		}
		filter.ToDueDate = &t
	}

	payments, total, err := h.paymentService.List(c.Request.Context(), filter, params.Offset, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.List(http.StatusOK, payments, params.Page, params.Limit, total))
}

// CreatePayment records an ad-hoc income or expense entry
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	var req service.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	payment, err := h.paymentService.Create(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, payment))
}

// GenerateFromSummary creates the payout entry for a commission summary
func (h *PaymentHandler) GenerateFromSummary(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	var req service.GenerateCommissionPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	payment, err := h.paymentService.GenerateFromSummary(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, payment))
}

// GetPayment returns one payment with its relations
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	payment, err := h.paymentService.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, payment))
}

// UpdatePayment edits an unpaid payment
func (h *PaymentHandler) UpdatePayment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req service.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	payment, err := h.paymentService.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, payment))
}

// UpdateStatus moves a payment through its lifecycle
func (h *PaymentHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	userID, okUser := middleware.CurrentUserID(c)
	if !okUser {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	payment, err := h.paymentService.UpdateStatus(c.Request.Context(), id, req.Status, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, payment))
}

// DeletePayment removes an unpaid payment
func (h *PaymentHandler) DeletePayment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.paymentService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "payment deleted"}))
}
