package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gatherly/gatherly-api/internal/helpers"
	"github.com/gatherly/gatherly-api/internal/models"
	"github.com/gatherly/gatherly-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) BookTicket(ctx context.Context, in services.BookTicketInput) (*services.BookTicketResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.BookTicketResult), args.Error(1)
}

type MockEventService struct {
	mock.Mock
}

func (m *MockEventService) CreateEvent(ctx context.Context, organizer *helpers.CustomClaims, in services.CreateEventInput, image *helpers.FileUpload) (*models.Event, error) {
	args := m.Called(ctx, organizer, in, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockEventService) GetEvent(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockEventService) ListOpenEvents(ctx context.Context, page, limit int) ([]*models.Event, *models.Pagination, error) {
	args := m.Called(ctx, page, limit)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]*models.Event), args.Get(1).(*models.Pagination), args.Error(2)
}

func (m *MockEventService) CancelEvent(ctx context.Context, caller *helpers.CustomClaims, id primitive.ObjectID) (*models.Event, error) {
	args := m.Called(ctx, caller, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) SignUp(ctx context.Context, in services.SignUpInput, avatar *helpers.FileUpload) error {
	return m.Called(ctx, in, avatar).Error(0)
}

func (m *MockUserService) ResendCode(ctx context.Context, username string) error {
	return m.Called(ctx, username).Error(0)
}

func (m *MockUserService) IsUsernameAvailable(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserService) VerifyCode(ctx context.Context, username, code string) error {
	return m.Called(ctx, username, code).Error(0)
}

func (m *MockUserService) Authenticate(ctx context.Context, identifier, password string) (*services.Session, error) {
	args := m.Called(ctx, identifier, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Session), args.Error(1)
}

func (m *MockUserService) GetProfile(ctx context.Context, username string) (*models.PublicProfile, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PublicProfile), args.Error(1)
}

func (m *MockUserService) UpdateUser(ctx context.Context, userID primitive.ObjectID, in services.UpdateUserInput, avatar *helpers.FileUpload) (*models.User, error) {
	args := m.Called(ctx, userID, in, avatar)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) UpdatePassword(ctx context.Context, userID primitive.ObjectID, in services.UpdatePasswordInput) error {
	return m.Called(ctx, userID, in).Error(0)
}

type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) GetMyEvents(ctx context.Context, userID primitive.ObjectID) (*services.MyEvents, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.MyEvents), args.Error(1)
}

// withUser stands in for AuthMiddleware.
func withUser(claims *helpers.CustomClaims) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims != nil {
			c.Set(helpers.ContextUserKey, claims)
		}
		c.Next()
	}
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}
