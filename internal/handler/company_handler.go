package handler

import (
	"net/http"

	"portal/internal/middleware"
	"portal/internal/model"
	"portal/internal/service"
	"portal/pkg/response"

	"github.com/gin-gonic/gin"
)

type CompanyHandler struct {
	companyService service.CompanyService
}

func NewCompanyHandler(companyService service.CompanyService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

func (h *CompanyHandler) RegisterRoutes(router *gin.RouterGroup) {
	companies := router.Group("/api/companies")
	companies.Use(middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleHead, model.RolePillar, model.RoleAgent))
	{
		companies.GET("", h.ListCompanies)
		companies.GET("/:id", h.GetCompany)
	}

	admin := router.Group("/api/companies")
	admin.Use(middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleHead))
	{
		admin.POST("", h.CreateCompany)
		admin.PUT("/:id", h.UpdateCompany)
		admin.DELETE("/:id", h.DeleteCompany)
	}
}

func (h *CompanyHandler) ListCompanies(c *gin.Context) {
	companies, err := h.companyService.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, companies))
}

func (h *CompanyHandler) GetCompany(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	company, err := h.companyService.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, company))
}

func (h *CompanyHandler) CreateCompany(c *gin.Context) {
	var req service.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	company, err := h.companyService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, company))
}

func (h *CompanyHandler) UpdateCompany(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req service.UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	company, err := h.companyService.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, company))
}

func (h *CompanyHandler) DeleteCompany(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.companyService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "company deleted"}))
}
