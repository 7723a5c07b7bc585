package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gatherly/gatherly-api/internal/models"
	"github.com/gatherly/gatherly-api/internal/services"
	"github.com/gin-gonic/gin"
)

type signUpForm struct {
	Name        string `form:"name"`
	Email       string `form:"email"`
	Username    string `form:"username"`
	Password    string `form:"password"`
	IsOrganizer bool   `form:"isOrganizer"`
}

func SignUp(u UserServiceInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form signUpForm
		if err := c.ShouldBind(&form); err != nil {
			badRequest(c, "invalid sign-up form")
			return
		}

		avatar, closeAvatar, err := formFile(c, "avatar")
		if err != nil {
			badRequest(c, "could not read avatar upload")
			return
		}
		defer closeAvatar()

		err = u.SignUp(c.Request.Context(), services.SignUpInput{
			Name:        form.Name,
			Email:       form.Email,
			Username:    form.Username,
			Password:    form.Password,
			IsOrganizer: form.IsOrganizer,
		}, avatar)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, models.SuccessResponse(nil, "User registered successfully. Please verify your email"))
	}
}

func ResendCode(u UserServiceInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Username string `json:"username" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "username is required")
			return
		}
		if err := u.ResendCode(c.Request.Context(), req.Username); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Verification code sent"))
	}
}

func CheckUsernameUnique(u UserServiceInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		available, err := u.IsUsernameAvailable(c.Request.Context(), strings.TrimSpace(c.Query("username")))
		if err != nil {
			respondError(c, err)
			return
		}
		if !available {
			badRequest(c, "Username is already taken")
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Username is available"))
	}
}

// VerifyCode activates an account from the emailed six-digit code.
func VerifyCode(u UserServiceInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Username string `json:"username"`
			Code     string `json:"code"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "username and code are required")
			return
		}

		// Verify links carry the username percent-encoded.
		username, err := url.PathUnescape(strings.TrimSpace(req.Username))
		if err != nil {
			badRequest(c, "username is not valid")
			return
		}

		if err := u.VerifyCode(c.Request.Context(), username, strings.TrimSpace(req.Code)); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "User verified"))
	}
}

func GetUser(u UserServiceInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := strings.TrimSpace(c.Query("username"))
		if username == "" {
			badRequest(c, "username is required")
			return
		}
		profile, err := u.GetProfile(c.Request.Context(), username)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(profile, ""))
	}
}

type updateUserForm struct {
	Name     *string `form:"name"`
	Username *string `form:"username"`
}

func UpdateUser(u UserServiceInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := requireUser(c)
		if !ok {
			return
		}
		userID, _ := claims.ObjectID()

		var form updateUserForm
		if err := c.ShouldBind(&form); err != nil {
			badRequest(c, "invalid profile form")
			return
		}
		avatar, closeAvatar, err := formFile(c, "avatar")
		if err != nil {
			badRequest(c, "could not read avatar upload")
			return
		}
		defer closeAvatar()

		user, err := u.UpdateUser(c.Request.Context(), userID, services.UpdateUserInput{
			Name:     form.Name,
			Username: form.Username,
		}, avatar)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(user.Profile(), "Profile updated"))
	}
}

func UpdatePassword(u UserServiceInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := requireUser(c)
		if !ok {
			return
		}
		userID, _ := claims.ObjectID()

		var req struct {
			OldPassword     string `json:"oldPassword"`
			NewPassword     string `json:"newPassword"`
			ConfirmPassword string `json:"confirmPassword"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request payload")
			return
		}

		err := u.UpdatePassword(c.Request.Context(), userID, services.UpdatePasswordInput{
			OldPassword:     req.OldPassword,
			NewPassword:     req.NewPassword,
			ConfirmPassword: req.ConfirmPassword,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Password updated successfully"))
	}
}
