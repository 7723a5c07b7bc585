package container

import (
	"log/slog"

	"github.com/gatherly/gatherly-api/internal/config"
	"github.com/gatherly/gatherly-api/internal/helpers"
	"github.com/gatherly/gatherly-api/internal/mailer"
	"github.com/gatherly/gatherly-api/internal/metrics"
	"github.com/gatherly/gatherly-api/internal/models"
	"github.com/gatherly/gatherly-api/internal/services"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container holds all application dependencies
type Container struct {
	Config        *config.Config
	Logger        *slog.Logger
	MongoDBClient *mongo.Client
	Tokens        *helpers.TokenManager
	Metrics       *metrics.Metrics

	BookingService   *services.BookingService
	EventService     *services.EventService
	UserService      *services.UserService
	DashboardService *services.DashboardService
}

// NewContainer creates a new dependency injection container
func NewContainer(
	cfg *config.Config,
	logger *slog.Logger,
	mongoDBClient *mongo.Client,
	uploader helpers.Uploader,
	mail mailer.Mailer,
	tokens *helpers.TokenManager,
	m *metrics.Metrics,
) *Container {
	repo := models.MongodbNewRepo(mongoDBClient, cfg.MongoDBDatabase)

	return &Container{
		Config:           cfg,
		Logger:           logger,
		MongoDBClient:    mongoDBClient,
		Tokens:           tokens,
		Metrics:          m,
		BookingService:   services.NewBookingService(repo, repo, services.BookingMode(cfg.BookingMode), logger, m),
		EventService:     services.NewEventService(repo, uploader, logger),
		UserService:      services.NewUserService(repo, mail, uploader, tokens, cfg.VerifyCodeTTL, logger, m),
		DashboardService: services.NewDashboardService(repo, repo, logger),
	}
}
