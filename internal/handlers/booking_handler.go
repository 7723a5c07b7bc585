package handlers

import (
	"net/http"
	"strings"

	"github.com/gatherly/gatherly-api/internal/models"
	"github.com/gatherly/gatherly-api/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type bookTicketRequest struct {
	TicketTypeName    string `json:"ticketTypeName" form:"ticketTypeName"`
	QuantityPurchased int    `json:"quantityPurchased" form:"quantityPurchased"`
}

// BookTicket handles a ticket purchase for the event in the :id path
// parameter on behalf of the signed-in caller.
func BookTicket(b BookingServiceInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := requireUser(c)
		if !ok {
			return
		}
		userID, _ := claims.ObjectID()

		eventID, ok := eventIDParam(c)
		if !ok {
			return
		}

		var req bookTicketRequest
		if err := c.ShouldBind(&req); err != nil {
			badRequest(c, "ticketTypeName and a whole-number quantityPurchased are required")
			return
		}

		res, err := b.BookTicket(c.Request.Context(), services.BookTicketInput{
			UserID:         userID,
			EventID:        eventID,
			TicketTypeName: req.TicketTypeName,
			Quantity:       req.QuantityPurchased,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":          true,
			"message":          "Booking successful",
			"remainingTickets": res.RemainingTickets,
		})
	}
}

// eventIDParam parses :id. Malformed ids cannot name an event, so they are
// reported as not found.
func eventIDParam(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
	if err != nil {
		respondError(c, models.ErrEventNotFound)
		return primitive.NilObjectID, false
	}
	return id, true
}
