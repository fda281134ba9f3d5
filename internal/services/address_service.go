package services

import (
	"fmt"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// AddressService handles business logic for the user address book.
type AddressService struct {
	repo repositories.AddressRepository
}

// NewAddressService creates a new AddressService.
func NewAddressService(repo repositories.AddressRepository) *AddressService {
	return &AddressService{
		repo: repo,
	}
}

// ListAddresses retrieves the user's saved addresses.
func (s *AddressService) ListAddresses(userID string) ([]models.Address, error) {
	return s.repo.GetByUserID(userID)
}

// CreateAddress saves a new address for the user.
func (s *AddressService) CreateAddress(userID string, address *models.Address) error {
	address.UserID = userID
	return s.repo.Create(address)
}

// UpdateAddress updates an address after checking ownership.
func (s *AddressService) UpdateAddress(userID string, address *models.Address) error {
	existing, err := s.repo.GetByID(address.ID)
	if err != nil {
		return err
	}
	if existing.UserID != userID {
		return fmt.Errorf("address %s does not belong to user %s", address.ID, userID)
	}
	address.UserID = userID
	return s.repo.Update(address)
}

// DeleteAddress removes an address after checking ownership.
func (s *AddressService) DeleteAddress(userID, addressID string) error {
	existing, err := s.repo.GetByID(addressID)
	if err != nil {
		return err
	}
	if existing.UserID != userID {
		return fmt.Errorf("address %s does not belong to user %s", addressID, userID)
	}
	return s.repo.Delete(addressID)
}
