package service

import (
	"context"

	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/google/uuid"
)

type AddressService interface {
	CreateAddress(ctx context.Context, userID uuid.UUID, req *models.AddressRequest) (*models.Address, error)
	GetAddress(ctx context.Context, userID, id uuid.UUID) (*models.Address, error)
	ListAddresses(ctx context.Context, userID uuid.UUID) ([]*models.Address, error)
	UpdateAddress(ctx context.Context, userID, id uuid.UUID, req *models.AddressRequest) (*models.Address, error)
	DeleteAddress(ctx context.Context, userID, id uuid.UUID) error
}

type addressService struct {
	repo repository.AddressRepository
}

func NewAddressService(repo repository.AddressRepository) AddressService {
	return &addressService{repo: repo}
}

func (s *addressService) CreateAddress(ctx context.Context, userID uuid.UUID, req *models.AddressRequest) (*models.Address, error) {
	address := &models.Address{ID: uuid.New(), UserID: userID}
	applyAddress(address, req)

	if err := s.repo.CreateAddress(ctx, address); err != nil {
		return nil, appErrors.DatabaseError("Failed to create address").WithError(err)
	}

	return address, nil
}

// GetAddress only returns addresses owned by userID; anything else is
// reported as missing.
func (s *addressService) GetAddress(ctx context.Context, userID, id uuid.UUID) (*models.Address, error) {
	address, err := s.repo.GetAddressByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "Address not found")
	}

	if address.UserID != userID {
		return nil, appErrors.NotFoundError("Address not found")
	}

	return address, nil
}

func (s *addressService) ListAddresses(ctx context.Context, userID uuid.UUID) ([]*models.Address, error) {
	addresses, err := s.repo.ListAddressesByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to fetch addresses").WithError(err)
	}

	return addresses, nil
}

func (s *addressService) UpdateAddress(ctx context.Context, userID, id uuid.UUID, req *models.AddressRequest) (*models.Address, error) {
	address, err := s.GetAddress(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	applyAddress(address, req)

	if err := s.repo.UpdateAddress(ctx, address); err != nil {
		return nil, appErrors.DatabaseError("Failed to update address").WithError(err)
	}

	return address, nil
}

func (s *addressService) DeleteAddress(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.GetAddress(ctx, userID, id); err != nil {
		return err
	}

	if err := s.repo.DeleteAddress(ctx, id); err != nil {
		return lookupError(err, "Address not found")
	}

	return nil
}

func applyAddress(address *models.Address, req *models.AddressRequest) {
	address.Recipient = req.Recipient
	address.Phone = req.Phone
	address.Street = req.Street
	address.City = req.City
	address.State = req.State
	address.PostalCode = req.PostalCode
	address.Country = req.Country
	address.IsDefault = req.IsDefault
}
