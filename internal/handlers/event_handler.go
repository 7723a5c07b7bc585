package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gatherly/gatherly-api/internal/helpers"
	"github.com/gatherly/gatherly-api/internal/models"
	"github.com/gatherly/gatherly-api/internal/services"
	"github.com/gin-gonic/gin"
)

type createEventForm struct {
	Name        string    `form:"name"`
	Tagline     string    `form:"tagline"`
	Description string    `form:"description"`
	Category    string    `form:"category"`
	Location    string    `form:"location"`
	DateStarted time.Time `form:"dateStarted" binding:"required"`
	DateEnded   time.Time `form:"dateEnded" binding:"required"`
	TicketTypes string    `form:"ticketTypes" binding:"required"`
}

func CreateEvent(e EventServiceInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := requireUser(c)
		if !ok {
			return
		}

		var form createEventForm
		if err := c.ShouldBind(&form); err != nil {
			badRequest(c, "dateStarted, dateEnded (RFC 3339) and ticketTypes are required")
			return
		}
		var ticketTypes []models.TicketType
		if err := json.Unmarshal([]byte(form.TicketTypes), &ticketTypes); err != nil {
			badRequest(c, "ticketTypes must be a JSON array of {name, price, quantity}")
			return
		}

		image, closeImage, err := formFile(c, "image")
		if err != nil {
			badRequest(c, "could not read image upload")
			return
		}
		defer closeImage()

		event, err := e.CreateEvent(c.Request.Context(), claims, services.CreateEventInput{
			Name:        form.Name,
			Tagline:     form.Tagline,
			Description: form.Description,
			Category:    form.Category,
			Location:    form.Location,
			DateStarted: form.DateStarted,
			DateEnded:   form.DateEnded,
			TicketTypes: ticketTypes,
		}, image)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, models.SuccessResponse(event, "Event created successfully"))
	}
}

func ListEvents(e EventServiceInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit := helpers.ParsePage(c.Query("page"), c.Query("limit"),
			services.DefaultEventsPageSize, services.MaxEventsPageSize)

		events, p, err := e.ListOpenEvents(c.Request.Context(), page, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		if events == nil {
			events = []*models.Event{}
		}
		c.JSON(http.StatusOK, models.PaginatedResponse(events, p))
	}
}

func GetEvent(e EventServiceInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := eventIDParam(c)
		if !ok {
			return
		}
		event, err := e.GetEvent(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(event, ""))
	}
}

// CancelEvent lets an organizer cancel their own open event.
func CancelEvent(e EventServiceInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := requireUser(c)
		if !ok {
			return
		}
		id, ok := eventIDParam(c)
		if !ok {
			return
		}
		event, err := e.CancelEvent(c.Request.Context(), claims, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(event, "Event cancelled"))
	}
}
