package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/unitnode/unitnode/internal/model"
)

var ErrPropertyNotFound = errors.New("property not found")

type PropertyRepository interface {
	Create(property *model.Property) error
	ByID(id string) (*model.Property, error)
	ByUser(userID string) ([]model.Property, error)
	Update(property *model.Property) error
	Delete(id string) error
}

type propertyRepository struct {
	db *sqlx.DB
}

func NewPropertyRepository(db *sqlx.DB) PropertyRepository {
	return &propertyRepository{db: db}
}

func (r *propertyRepository) Create(property *model.Property) error {
	if property.ID == "" {
		property.ID = uuid.New().String()
	}
	now := time.Now()
	if property.CreatedAt.IsZero() {
		property.CreatedAt = now
	}
	property.UpdatedAt = now

	query := `
		INSERT INTO properties (id, user_id, address, main_tenant, main_tenant_phone, rent, occupied, owner_name, owner_email, owner_phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.Exec(query,
		property.ID,
		property.UserID,
		property.Address,
		property.MainTenant,
		property.MainTenantPhone,
		property.Rent,
		property.Occupied,
		property.OwnerName,
		property.OwnerEmail,
		property.OwnerPhone,
		property.CreatedAt,
		property.UpdatedAt,
	)
	return err
}

func (r *propertyRepository) ByID(id string) (*model.Property, error) {
	property := &model.Property{}
	query := `SELECT * FROM properties WHERE id = $1`

	err := r.db.Get(property, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrPropertyNotFound
	}

	return property, err
}

func (r *propertyRepository) ByUser(userID string) ([]model.Property, error) {
	properties := []model.Property{}
	query := `SELECT * FROM properties WHERE user_id = $1 ORDER BY created_at DESC`

	err := r.db.Select(&properties, query, userID)
	return properties, err
}

func (r *propertyRepository) Update(property *model.Property) error {
	property.UpdatedAt = time.Now()

	query := `
		UPDATE properties
		SET address = $1, main_tenant = $2, main_tenant_phone = $3, rent = $4, occupied = $5, owner_name = $6, owner_email = $7, owner_phone = $8, updated_at = $9
		WHERE id = $10
	`
	result, err := r.db.Exec(query,
		property.Address,
		property.MainTenant,
		property.MainTenantPhone,
		property.Rent,
		property.Occupied,
		property.OwnerName,
		property.OwnerEmail,
		property.OwnerPhone,
		property.UpdatedAt,
		property.ID,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrPropertyNotFound
	}

	return nil
}

func (r *propertyRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrPropertyNotFound
	}

	return nil
}
