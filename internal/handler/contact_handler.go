package handler

import (
	"net/http"

	"portal/internal/middleware"
	"portal/internal/model"
	"portal/internal/service"
	"portal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ContactHandler struct {
	contactService service.ContactService
}

func NewContactHandler(contactService service.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

func (h *ContactHandler) RegisterRoutes(router *gin.RouterGroup) {
	contacts := router.Group("/api/contacts")
	contacts.Use(middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleHead, model.RolePillar, model.RoleAgent))
	{
		contacts.GET("", h.ListContacts)
		contacts.POST("", h.CreateContact)
		contacts.POST("/batch-import", h.BatchImport)
		contacts.POST("/batch-delete", h.BatchDelete)
		contacts.GET("/:id", h.GetContact)
		contacts.PUT("/:id", h.UpdateContact)
		contacts.DELETE("/:id", h.DeleteContact)
	}

	calls := router.Group("/api/daily-calls")
	calls.Use(middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleHead, model.RolePillar, model.RoleAgent))
	{
		calls.GET("", h.ListDailyCalls)
		calls.POST("", h.ScheduleDailyCall)
		calls.PUT("/:id/complete", h.CompleteDailyCall)
		calls.DELETE("/:id", h.RemoveDailyCall)
	}
}

func (h *ContactHandler) ListContacts(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	contacts, err := h.contactService.List(c.Request.Context(), userID, c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, contacts))
}

func (h *ContactHandler) CreateContact(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	var req service.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	contact, err := h.contactService.Create(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, contact))
}

func (h *ContactHandler) BatchImport(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	var req struct {
		Contacts []service.CreateContactRequest `json:"contacts" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.contactService.BatchImport(c.Request.Context(), req.Contacts, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

func (h *ContactHandler) BatchDelete(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	var req struct {
		IDs []uuid.UUID `json:"ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	deleted, err := h.contactService.BatchDelete(c.Request.Context(), req.IDs, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": deleted}))
}

func (h *ContactHandler) GetContact(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	userID, okUser := middleware.CurrentUserID(c)
	if !okUser {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	contact, err := h.contactService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, contact))
}

func (h *ContactHandler) UpdateContact(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	userID, okUser := middleware.CurrentUserID(c)
	if !okUser {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	var req service.UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	contact, err := h.contactService.Update(c.Request.Context(), id, userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, contact))
}

func (h *ContactHandler) DeleteContact(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	userID, okUser := middleware.CurrentUserID(c)
	if !okUser {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	if err := h.contactService.Delete(c.Request.Context(), id, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "contact deleted"}))
}

func (h *ContactHandler) ListDailyCalls(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	calls, err := h.contactService.ListDailyCalls(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, calls))
}

func (h *ContactHandler) ScheduleDailyCall(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	var req service.ScheduleDailyCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	call, err := h.contactService.ScheduleDailyCall(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, call))
}

func (h *ContactHandler) CompleteDailyCall(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	userID, okUser := middleware.CurrentUserID(c)
	if !okUser {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	call, err := h.contactService.CompleteDailyCall(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, call))
}

func (h *ContactHandler) RemoveDailyCall(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	userID, okUser := middleware.CurrentUserID(c)
	if !okUser {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	if err := h.contactService.RemoveDailyCall(c.Request.Context(), id, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "daily call removed"}))
}
