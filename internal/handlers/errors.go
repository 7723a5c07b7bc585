package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gatherly/gatherly-api/internal/helpers"
	"github.com/gatherly/gatherly-api/internal/models"
	"github.com/gin-gonic/gin"
)

const internalErrorMessage = "Internal server error"

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidTicketType),
		errors.Is(err, models.ErrInsufficientInventory),
		errors.Is(err, models.ErrDuplicateBooking),
		errors.Is(err, models.ErrInvalidCode),
		errors.Is(err, models.ErrCodeExpired),
		errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrConflict):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the failure envelope for err. Unclassified errors are
// recorded on the context for ErrorHandler to log and never reach the client.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		msg = internalErrorMessage
	}
	c.JSON(status, models.ErrorResponse(msg))
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse(msg))
}

func currentUser(c *gin.Context) (*helpers.CustomClaims, bool) {
	v, ok := c.Get(helpers.ContextUserKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*helpers.CustomClaims)
	return claims, ok && claims != nil
}

// requireUser resolves the caller or writes a 401 and returns false.
func requireUser(c *gin.Context) (*helpers.CustomClaims, bool) {
	claims, ok := currentUser(c)
	if !ok {
		respondError(c, models.ErrUnauthenticated)
		return nil, false
	}
	if _, err := claims.ObjectID(); err != nil {
		respondError(c, models.ErrUnauthenticated)
		return nil, false
	}
	return claims, true
}

// formFile reads an optional multipart file. A missing field yields nil.
func formFile(c *gin.Context, field string) (*helpers.FileUpload, func(), error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, func() {}, nil
		}
		return nil, func() {}, err
	}
	return openUpload(fh)
}

func openUpload(fh *multipart.FileHeader) (*helpers.FileUpload, func(), error) {
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, err
	}
	return &helpers.FileUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}, func() { _ = f.Close() }, nil
}
