package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/config"
	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/metrics"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
	RefreshToken(ctx context.Context, req *models.RefreshTokenRequest) (*models.LoginResponse, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type userService struct {
	repo       repository.UserRepository
	rateLimit  repository.RateLimitRepository
	tokens     repository.TokenRepository
	jwtKey     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewUserService(repo repository.UserRepository, rateLimit repository.RateLimitRepository, tokens repository.TokenRepository, security config.Security) UserService {
	return &userService{
		repo:       repo,
		rateLimit:  rateLimit,
		tokens:     tokens,
		jwtKey:     []byte(security.JWTKey),
		accessTTL:  security.AccessTokenTTL,
		refreshTTL: security.RefreshTokenTTL,
	}
}

func (s *userService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.InternalError("Failed to secure password").WithError(err)
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashedPassword),
		Role:     models.RoleCustomer,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.DuplicateEntryError("Email already registered").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to create user").WithError(err)
	}

	return user, nil
}

func (s *userService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	logger := middleware.LoggerFromContext(ctx)

	allowed, remaining, retryAfter, err := s.rateLimit.CheckLoginRateLimit(ctx, req.Email)
	if err != nil {
		return nil, appErrors.ThirdPartyError("Rate limit check failed").WithError(err)
	}

	if !allowed {
		metrics.RecordLogin("rate_limited")

		return &models.LoginResponse{
			Success:    false,
			Message:    "Too many login attempts. Please try again later.",
			RetryAfter: retryAfter,
		}, nil
	}

	// Retrieve the user from the DB and compare the passwords
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		metrics.RecordLogin("failure")

		return &models.LoginResponse{
			Success:        false,
			Message:        "Invalid email or password",
			RemainingTries: remaining,
		}, nil
	}

	if err := s.rateLimit.ResetLoginAttempts(ctx, req.Email); err != nil {
		logger.Warn("Failed to reset login attempts", slog.String("email", req.Email), slog.Any("error", err))
	}

	metrics.RecordLogin("success")

	return s.issueTokens(ctx, user)
}

// RefreshToken exchanges a refresh token for a new token pair. The old
// refresh token is consumed and cannot be used again.
func (s *userService) RefreshToken(ctx context.Context, req *models.RefreshTokenRequest) (*models.LoginResponse, error) {
	userID, err := s.tokens.ConsumeRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return nil, appErrors.UnauthorizedError("Invalid or expired refresh token").WithError(err)
		}

		return nil, appErrors.ThirdPartyError("Failed to read refresh token").WithError(err)
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, appErrors.UnauthorizedError("Invalid or expired refresh token").WithError(err)
	}

	return s.issueTokens(ctx, user)
}

func (s *userService) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "User not found")
	}

	return user, nil
}

func (s *userService) issueTokens(ctx context.Context, user *models.User) (*models.LoginResponse, error) {
	now := time.Now()

	claims := &models.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtKey)
	if err != nil {
		return nil, appErrors.InternalError("Failed to generate authentication token").WithError(err)
	}

	refreshToken := uuid.NewString()
	if err := s.tokens.StoreRefreshToken(ctx, refreshToken, user.ID, s.refreshTTL); err != nil {
		return nil, appErrors.ThirdPartyError("Failed to store refresh token").WithError(err)
	}

	return &models.LoginResponse{
		Success:      true,
		AccessToken:  tokenString,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.accessTTL.Seconds()),
	}, nil
}
