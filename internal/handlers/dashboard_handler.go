package handlers

import (
	"net/http"

	"github.com/gatherly/gatherly-api/internal/models"
	"github.com/gin-gonic/gin"
)

// GetMyEvents returns the caller's booked and organized events.
func GetMyEvents(d DashboardServiceInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := requireUser(c)
		if !ok {
			return
		}
		userID, _ := claims.ObjectID()

		out, err := d.GetMyEvents(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(out, ""))
	}
}
