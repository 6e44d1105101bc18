package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/cache"
	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/google/uuid"
)

type ShippingService interface {
	ListMethods(ctx context.Context, activeOnly bool) ([]*models.ShippingMethod, error)
	GetMethod(ctx context.Context, id uuid.UUID) (*models.ShippingMethod, error)
	CreateMethod(ctx context.Context, req *models.ShippingMethodRequest) (*models.ShippingMethod, error)
	UpdateMethod(ctx context.Context, id uuid.UUID, req *models.ShippingMethodRequest) (*models.ShippingMethod, error)
}

type shippingService struct {
	repo  repository.ShippingRepository
	cache cache.Cache
	ttl   time.Duration
}

func NewShippingService(repo repository.ShippingRepository, c cache.Cache, ttl time.Duration) ShippingService {
	return &shippingService{repo: repo, cache: c, ttl: ttl}
}

func shippingListKey(activeOnly bool) string {
	if activeOnly {
		return cache.Key(cache.ShippingKeyPrefix, "active")
	}

	return cache.Key(cache.ShippingKeyPrefix, "all")
}

func (s *shippingService) ListMethods(ctx context.Context, activeOnly bool) ([]*models.ShippingMethod, error) {
	methods, err := cache.Remember(ctx, s.cache, shippingListKey(activeOnly), s.ttl, func(ctx context.Context) ([]*models.ShippingMethod, error) {
		return s.repo.ListMethods(ctx, activeOnly)
	})
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to fetch shipping methods").WithError(err)
	}

	return methods, nil
}

func (s *shippingService) GetMethod(ctx context.Context, id uuid.UUID) (*models.ShippingMethod, error) {
	method, err := s.repo.GetMethodByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "Shipping method not found")
	}

	return method, nil
}

func (s *shippingService) CreateMethod(ctx context.Context, req *models.ShippingMethodRequest) (*models.ShippingMethod, error) {
	if req.Cost.IsNegative() {
		return nil, appErrors.AddValidationError("cost", "cannot be negative")
	}

	method := &models.ShippingMethod{ID: uuid.New(), Active: true}
	applyShippingMethod(method, req)

	if err := s.repo.CreateMethod(ctx, method); err != nil {
		return nil, appErrors.DatabaseError("Failed to create shipping method").WithError(err)
	}

	s.invalidate(ctx)

	return method, nil
}

func (s *shippingService) UpdateMethod(ctx context.Context, id uuid.UUID, req *models.ShippingMethodRequest) (*models.ShippingMethod, error) {
	if req.Cost.IsNegative() {
		return nil, appErrors.AddValidationError("cost", "cannot be negative")
	}

	method, err := s.GetMethod(ctx, id)
	if err != nil {
		return nil, err
	}

	applyShippingMethod(method, req)

	if err := s.repo.UpdateMethod(ctx, method); err != nil {
		return nil, appErrors.DatabaseError("Failed to update shipping method").WithError(err)
	}

	s.invalidate(ctx)

	return method, nil
}

func (s *shippingService) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, shippingListKey(true), shippingListKey(false)); err != nil {
		middleware.LoggerFromContext(ctx).Warn("Failed to invalidate shipping cache", slog.Any("error", err))
	}
}

func applyShippingMethod(method *models.ShippingMethod, req *models.ShippingMethodRequest) {
	method.Name = req.Name
	method.Description = req.Description
	method.Cost = req.Cost
	method.EstimatedDays = req.EstimatedDays
	if req.Active != nil {
		method.Active = *req.Active
	}
}
