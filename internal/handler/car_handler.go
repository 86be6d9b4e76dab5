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

type CarHandler struct {
	carService service.CarService
}

func NewCarHandler(carService service.CarService) *CarHandler {
	return &CarHandler{carService: carService}
}

func (h *CarHandler) RegisterRoutes(router *gin.RouterGroup) {
	cars := router.Group("/api/cars")
	cars.Use(middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleHead, model.RolePillar))
	{
		cars.GET("", h.ListCars)
		cars.POST("", h.CreateCar)
		cars.GET("/:id", h.GetCar)
		cars.DELETE("/:id", h.DeleteCar)
	}

	rentals := router.Group("/api/rentals")
	rentals.Use(middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleHead, model.RolePillar))
	{
		rentals.GET("", h.ListRentals)
		rentals.POST("", h.StartRental)
		rentals.PUT("/:id/close", h.CloseRental)
	}
}

func (h *CarHandler) ListCars(c *gin.Context) {
	var companyID *uuid.UUID
	if raw := c.Query("company_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid company_id"))
			return
		}
		companyID = &id
	}

	cars, err := h.carService.ListCars(c.Request.Context(), companyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, cars))
}

func (h *CarHandler) CreateCar(c *gin.Context) {
	var req service.CreateCarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	car, err := h.carService.CreateCar(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, car))
}

func (h *CarHandler) GetCar(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	car, err := h.carService.GetCar(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, car))
}

func (h *CarHandler) DeleteCar(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.carService.DeleteCar(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "car deleted"}))
}

func (h *CarHandler) ListRentals(c *gin.Context) {
	var carID *uuid.UUID
	if raw := c.Query("car_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid car_id"))
			return
		}
		carID = &id
	}
	openOnly := c.DefaultQuery("open_only", "false") == "true"

	rentals, err := h.carService.ListRentals(c.Request.Context(), carID, openOnly)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rentals))
}

func (h *CarHandler) StartRental(c *gin.Context) {
	var req service.StartRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	rental, err := h.carService.StartRental(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, rental))
}

func (h *CarHandler) CloseRental(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req service.CloseRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	rental, err := h.carService.CloseRental(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rental))
}
