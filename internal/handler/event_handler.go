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

type EventHandler struct {
	eventService service.EventService
}

func NewEventHandler(eventService service.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

func (h *EventHandler) RegisterRoutes(router *gin.RouterGroup) {
	events := router.Group("/api/events")
	events.Use(middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleHead, model.RolePillar, model.RoleAgent))
	{
		events.GET("", h.ListEvents)
		events.GET("/upcoming", h.UpcomingEvent)
		events.GET("/:id", h.GetEvent)
	}

	admin := router.Group("/api/events")
	admin.Use(middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleHead))
	{
		admin.POST("", h.CreateEvent)
		admin.PUT("/:id", h.UpdateEvent)
		admin.DELETE("/:id", h.DeleteEvent)
	}

	calendar := router.Group("/api/calendar")
	calendar.Use(middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleHead, model.RolePillar, model.RoleAgent))
	{
		calendar.GET("", h.GetCalendar)
	}
}

func (h *EventHandler) ListEvents(c *gin.Context) {
	var from, to *time.Time
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "from must be YYYY-MM-DD"))
			return
		}
		from = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "to must be YYYY-MM-DD"))
			return
		}
		to = &t
	}

	events, err := h.eventService.List(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, events))
}

func (h *EventHandler) GetEvent(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	event, err := h.eventService.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, event))
}

func (h *EventHandler) CreateEvent(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	var req service.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	event, err := h.eventService.Create(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, event))
}

func (h *EventHandler) UpcomingEvent(c *gin.Context) {
	event, err := h.eventService.Upcoming(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, event))
}

func (h *EventHandler) UpdateEvent(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req service.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	event, err := h.eventService.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, event))
}

func (h *EventHandler) DeleteEvent(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.eventService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "event deleted"}))
}

// GetCalendar merges events, task deadlines and birthdays for a date window.
// Defaults to the current month.
func (h *EventHandler) GetCalendar(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "from must be YYYY-MM-DD"))
			return
		}
		from = t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "to must be YYYY-MM-DD"))
			return
		}
		to = t
	}

	entries, err := h.eventService.Calendar(c.Request.Context(), userID, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, entries))
}
