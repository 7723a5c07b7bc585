package handlers

import (
	"context"

	"github.com/gatherly/gatherly-api/internal/helpers"
	"github.com/gatherly/gatherly-api/internal/models"
	"github.com/gatherly/gatherly-api/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingServiceInterface interface {
	BookTicket(ctx context.Context, in services.BookTicketInput) (*services.BookTicketResult, error)
}

type EventServiceInterface interface {
	CreateEvent(ctx context.Context, organizer *helpers.CustomClaims, in services.CreateEventInput, image *helpers.FileUpload) (*models.Event, error)
	GetEvent(ctx context.Context, id primitive.ObjectID) (*models.Event, error)
	ListOpenEvents(ctx context.Context, page, limit int) ([]*models.Event, *models.Pagination, error)
	CancelEvent(ctx context.Context, caller *helpers.CustomClaims, id primitive.ObjectID) (*models.Event, error)
}

type UserServiceInterface interface {
	SignUp(ctx context.Context, in services.SignUpInput, avatar *helpers.FileUpload) error
	ResendCode(ctx context.Context, username string) error
	IsUsernameAvailable(ctx context.Context, username string) (bool, error)
	VerifyCode(ctx context.Context, username, code string) error
	Authenticate(ctx context.Context, identifier, password string) (*services.Session, error)
	GetProfile(ctx context.Context, username string) (*models.PublicProfile, error)
	UpdateUser(ctx context.Context, userID primitive.ObjectID, in services.UpdateUserInput, avatar *helpers.FileUpload) (*models.User, error)
	UpdatePassword(ctx context.Context, userID primitive.ObjectID, in services.UpdatePasswordInput) error
}

type DashboardServiceInterface interface {
	GetMyEvents(ctx context.Context, userID primitive.ObjectID) (*services.MyEvents, error)
}
