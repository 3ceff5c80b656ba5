package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/unitnode/unitnode/internal/model"
	"github.com/unitnode/unitnode/internal/repository"
)

var (
	ErrPropertyNotFound = repository.ErrPropertyNotFound
	ErrAddressRequired  = errors.New("address is required")
)

// PropertyUpdate carries a partial update; nil fields are left unchanged.
type PropertyUpdate struct {
	MainTenant      *string
	MainTenantPhone *string
	Rent            *float64
	Occupied        *bool
	OwnerName       *string
	OwnerEmail      *string
	OwnerPhone      *string
}

type PropertyService struct {
	repo repository.PropertyRepository
}

func NewPropertyService(repo repository.PropertyRepository) *PropertyService {
	return &PropertyService{repo: repo}
}

func (s *PropertyService) List(userID string) ([]model.Property, error) {
	return s.repo.ByUser(userID)
}

func (s *PropertyService) Create(userID string, property *model.Property) (*model.Property, error) {
	if strings.TrimSpace(property.Address) == "" {
		return nil, ErrAddressRequired
	}
	if property.MainTenant == "" {
		property.MainTenant = "N/A"
	}

	property.ID = uuid.New().String()
	property.UserID = userID
	property.CreatedAt = time.Now()

	err := s.repo.Create(property)
	if err != nil {
		return nil, fmt.Errorf("failed to create property: %w", err)
	}

	slog.Info("property created", "property_id", property.ID, "user_id", userID)
	return property, nil
}

// ByID returns the property only if it belongs to userID. A property owned
// by someone else reads as not found.
func (s *PropertyService) ByID(userID, id string) (*model.Property, error) {
	property, err := s.repo.ByID(id)
	if err != nil {
		return nil, err
	}
	if property.UserID != userID {
		return nil, ErrPropertyNotFound
	}
	return property, nil
}

func (s *PropertyService) Update(userID, id string, update PropertyUpdate) (*model.Property, error) {
	property, err := s.ByID(userID, id)
	if err != nil {
		return nil, err
	}

	if update.MainTenant != nil && *update.MainTenant != "" {
		property.MainTenant = *update.MainTenant
	}
	if update.MainTenantPhone != nil {
		property.MainTenantPhone = update.MainTenantPhone
	}
	if update.Rent != nil {
		property.Rent = *update.Rent
	}
	if update.Occupied != nil {
		property.Occupied = *update.Occupied
	}
	if update.OwnerName != nil {
		property.OwnerName = update.OwnerName
	}
	if update.OwnerEmail != nil {
		property.OwnerEmail = update.OwnerEmail
	}
	if update.OwnerPhone != nil {
		property.OwnerPhone = update.OwnerPhone
	}

	err = s.repo.Update(property)
	if err != nil {
		return nil, fmt.Errorf("failed to update property: %w", err)
	}

	return property, nil
}

func (s *PropertyService) Delete(userID, id string) error {
	_, err := s.ByID(userID, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(id)
}
