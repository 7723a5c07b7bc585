package handlers

import (
	"net/http"
	"time"

	"github.com/gatherly/gatherly-api/internal/models"
	"github.com/gin-gonic/gin"
)

const AccessTokenCookie = "access_token"

// SignIn checks an email-or-username and password pair and sets the access
// token cookie. secure marks the cookie HTTPS-only.
func SignIn(u UserServiceInterface, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Identifier string `json:"identifier" binding:"required"`
			Password   string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "identifier and password are required")
			return
		}

		session, err := u.Authenticate(c.Request.Context(), req.Identifier, req.Password)
		if err != nil {
			respondError(c, err)
			return
		}

		maxAge := int(time.Until(session.ExpiresAt).Seconds())
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(AccessTokenCookie, session.Token, maxAge, "/", "", secure, true)

		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{
			"token":     session.Token,
			"expiresAt": session.ExpiresAt,
			"user":      session.User.Profile(),
		}, "Signed in"))
	}
}

func SignOut(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(AccessTokenCookie, "", -1, "/", "", secure, true)
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Logged out successfully"))
	}
}
