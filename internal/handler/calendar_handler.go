package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lifeos/internal/domain/calendar"
	"lifeos/internal/services"
	"lifeos/internal/transport/httpdto"
)

// CalendarHandler handles calendar event HTTP endpoints.
type CalendarHandler struct {
	service *services.CalendarService
}

func NewCalendarHandler(service *services.CalendarService) *CalendarHandler {
	return &CalendarHandler{service: service}
}

// CreateEvent handles POST /api/calendar/events.
func (h *CalendarHandler) CreateEvent(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req httpdto.CalendarEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	event, err := h.service.CreateEvent(c.Request.Context(), userID, services.CalendarEventInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(toCalendarEventDTO(event)))
}

// UpdateEvent handles PUT /api/calendar/events/:id.
func (h *CalendarHandler) UpdateEvent(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	eventID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req httpdto.CalendarEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	event, err := h.service.UpdateEvent(c.Request.Context(), userID, eventID, services.CalendarEventInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(toCalendarEventDTO(event)))
}

// GetEvent handles GET /api/calendar/events/:id.
func (h *CalendarHandler) GetEvent(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	eventID, ok := pathID(c, "id")
	if !ok {
		return
	}

	event, err := h.service.GetEvent(c.Request.Context(), userID, eventID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(toCalendarEventDTO(event)))
}

// ListEvents handles GET /api/calendar/events.
func (h *CalendarHandler) ListEvents(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	events, err := h.service.ListEvents(c.Request.Context(), userID, queryLimit(c, 50, 200))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	dtos := make([]httpdto.CalendarEventDTO, 0, len(events))
	for _, event := range events {
		dtos = append(dtos, toCalendarEventDTO(event))
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(dtos))
}

func toCalendarEventDTO(event calendar.Event) httpdto.CalendarEventDTO {
	return httpdto.CalendarEventDTO{
		ID:          event.ID,
		Title:       event.Title,
		Description: event.Description,
		Location:    event.Location,
		StartTime:   event.StartTime,
		EndTime:     event.EndTime,
		CreatedAt:   event.CreatedAt,
		UpdatedAt:   event.UpdatedAt,
	}
}
