package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gatherly/gatherly-api/internal/helpers"
	"github.com/gatherly/gatherly-api/internal/mailer"
	"github.com/gatherly/gatherly-api/internal/metrics"
	"github.com/gatherly/gatherly-api/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const DefaultVerifyCodeTTL = time.Hour

type SignUpInput struct {
	Name        string `validate:"required,min=3"`
	Email       string `validate:"required,email"`
	Username    string `validate:"required,username"`
	Password    string `validate:"required,min=6"`
	IsOrganizer bool
}

type UpdateUserInput struct {
	Name     *string
	Username *string
}

type UpdatePasswordInput struct {
	OldPassword     string
	NewPassword     string
	ConfirmPassword string
}

type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      models.User `json:"user"`
}

type UserService struct {
	userRepo      models.UserRepo
	mailer        mailer.Mailer
	uploader      helpers.Uploader
	tokens        *helpers.TokenManager
	verifyCodeTTL time.Duration
	logger        *slog.Logger
	metrics       *metrics.Metrics
	now           func() time.Time
	newCode       func() (string, error)
}

func NewUserService(
	userRepo models.UserRepo,
	m mailer.Mailer,
	uploader helpers.Uploader,
	tokens *helpers.TokenManager,
	verifyCodeTTL time.Duration,
	logger *slog.Logger,
	mx *metrics.Metrics,
) *UserService {
	if verifyCodeTTL <= 0 {
		verifyCodeTTL = DefaultVerifyCodeTTL
	}
	return &UserService{
		userRepo:      userRepo,
		mailer:        m,
		uploader:      uploader,
		tokens:        tokens,
		verifyCodeTTL: verifyCodeTTL,
		logger:        logger,
		metrics:       mx,
		now:           time.Now,
		newCode:       helpers.GenerateVerifyCode,
	}
}

// SignUp registers a new account, or refreshes the credentials and code of
// an existing unverified account with the same email, then emails a
// verification code.
func (us *UserService) SignUp(ctx context.Context, in SignUpInput, avatar *helpers.FileUpload) error {
	in.Email = models.NormalizeEmail(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	in.Name = strings.TrimSpace(in.Name)
	if err := models.Validate.Struct(in); err != nil {
		return models.NewValidationError("invalid sign-up data: %v", err)
	}

	taken, err := us.userRepo.IsUsernameTaken(ctx, in.Username, primitive.NilObjectID)
	if err != nil {
		return err
	}
	if taken {
		return models.ErrUsernameTaken
	}

	existing, err := us.userRepo.GetUserByEmail(ctx, in.Email)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return err
	}
	if existing != nil && existing.IsVerified {
		return models.ErrAlreadyVerified
	}

	if avatar == nil || avatar.Size == 0 {
		return models.NewValidationError("avatar is required")
	}

	code, err := us.newCode()
	if err != nil {
		return err
	}
	hashed, err := helpers.HashPassword(in.Password)
	if err != nil {
		return err
	}
	avatarURL, err := us.uploader.Upload(ctx, helpers.AvatarFolder, avatar)
	if err != nil {
		return fmt.Errorf("avatar upload failed: %w", err)
	}

	now := us.now()
	if existing != nil {
		existing.Password = hashed
		existing.VerifyCode = code
		existing.VerifyCodeExpiry = now.Add(us.verifyCodeTTL)
		existing.Avatar = avatarURL
		existing.UpdatedAt = now
		if err := us.userRepo.SaveUser(ctx, existing); err != nil {
			return err
		}
	} else {
		user := &models.User{
			ID:               primitive.NewObjectID(),
			Name:             in.Name,
			Email:            in.Email,
			Username:         in.Username,
			IsOrganizer:      in.IsOrganizer,
			Avatar:           avatarURL,
			Password:         hashed,
			VerifyCode:       code,
			VerifyCodeExpiry: now.Add(us.verifyCodeTTL),
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := us.userRepo.CreateUser(ctx, user); err != nil {
			return err
		}
	}

	if err := us.mailer.SendVerificationEmail(ctx, in.Email, in.Username, code); err != nil {
		return err
	}
	return nil
}

// ResendCode issues a fresh code for an unverified account.
func (us *UserService) ResendCode(ctx context.Context, username string) error {
	user, err := us.userRepo.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return err
	}
	if user.IsVerified {
		return models.ErrAlreadyVerified
	}

	code, err := us.newCode()
	if err != nil {
		return err
	}
	now := us.now()
	user.VerifyCode = code
	user.VerifyCodeExpiry = now.Add(us.verifyCodeTTL)
	user.UpdatedAt = now
	if err := us.userRepo.SaveUser(ctx, user); err != nil {
		return err
	}
	return us.mailer.SendVerificationEmail(ctx, user.Email, user.Username, code)
}

func (us *UserService) IsUsernameAvailable(ctx context.Context, username string) (bool, error) {
	if !models.ValidUsername(username) {
		return false, models.NewValidationError("username must be 3-20 letters, digits, '_' or '-'")
	}
	taken, err := us.userRepo.IsUsernameTaken(ctx, username, primitive.NilObjectID)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

// VerifyCode activates the account when code matches and has not expired.
// The stored code is left in place after a successful verification.
func (us *UserService) VerifyCode(ctx context.Context, username, code string) (err error) {
	defer func() {
		us.metrics.ObserveVerification(verificationOutcome(err))
	}()

	if !models.ValidUsername(username) {
		return models.NewValidationError("invalid username")
	}
	if !helpers.IsVerifyCode(code) {
		return models.NewValidationError("verification code must be 6 digits")
	}

	user, err := us.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		return err
	}
	if err := user.CheckVerifyCode(code, us.now()); err != nil {
		return err
	}

	user.IsVerified = true
	user.UpdatedAt = us.now()
	return us.userRepo.SaveUser(ctx, user)
}

// Authenticate checks credentials by email or username and issues a token.
func (us *UserService) Authenticate(ctx context.Context, identifier, password string) (*Session, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, models.NewValidationError("identifier and password are required")
	}

	user, err := us.userRepo.GetUserByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, err
	}
	if !helpers.CheckPassword(user.Password, password) {
		return nil, models.ErrInvalidCredentials
	}

	token, expires, err := us.tokens.Issue(user.ID.Hex(), user.Username, user.Email, user.IsOrganizer, us.now())
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expires, User: *user}, nil
}

func (us *UserService) GetProfile(ctx context.Context, username string) (*models.PublicProfile, error) {
	user, err := us.userRepo.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	p := user.Profile()
	return &p, nil
}

func (us *UserService) UpdateUser(ctx context.Context, userID primitive.ObjectID, in UpdateUserInput, avatar *helpers.FileUpload) (*models.User, error) {
	user, err := us.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if len(name) < 3 {
			return nil, models.NewValidationError("name should be at least 3 characters")
		}
		user.Name = name
	}
	if in.Username != nil && strings.TrimSpace(*in.Username) != user.Username {
		username := strings.TrimSpace(*in.Username)
		if !models.ValidUsername(username) {
			return nil, models.NewValidationError("username must be 3-20 letters, digits, '_' or '-'")
		}
		taken, err := us.userRepo.IsUsernameTaken(ctx, username, user.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, models.ErrUsernameTaken
		}
		user.Username = username
	}
	if avatar != nil && avatar.Size > 0 {
		url, err := us.uploader.Upload(ctx, helpers.AvatarFolder, avatar)
		if err != nil {
			return nil, fmt.Errorf("avatar upload failed: %w", err)
		}
		user.Avatar = url
	}

	user.UpdatedAt = us.now()
	if err := us.userRepo.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (us *UserService) UpdatePassword(ctx context.Context, userID primitive.ObjectID, in UpdatePasswordInput) error {
	if in.OldPassword == "" || in.NewPassword == "" || in.ConfirmPassword == "" {
		return models.NewValidationError("old password, new password, and confirm password are required")
	}
	if in.NewPassword != in.ConfirmPassword {
		return models.NewValidationError("new password and confirm password do not match")
	}
	if len(in.NewPassword) < helpers.MinPasswordLength {
		return models.NewValidationError("new password must be at least %d characters long", helpers.MinPasswordLength)
	}

	user, err := us.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !helpers.CheckPassword(user.Password, in.OldPassword) {
		return models.NewValidationError("old password is incorrect")
	}
	hashed, err := helpers.HashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	user.Password = hashed
	user.UpdatedAt = us.now()
	return us.userRepo.SaveUser(ctx, user)
}

func verificationOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, models.ErrCodeExpired):
		return metrics.OutcomeCodeExpired
	case errors.Is(err, models.ErrInvalidCode):
		return metrics.OutcomeInvalidCode
	case errors.Is(err, models.ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, models.ErrValidation):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeError
	}
}
