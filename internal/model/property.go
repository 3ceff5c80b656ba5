package model

import (
	"time"
)

type Property struct {
	ID              string    `db:"id"`
	UserID          string    `db:"user_id"`
	Address         string    `db:"address"`
	MainTenant      string    `db:"main_tenant"`
	MainTenantPhone *string   `db:"main_tenant_phone"`
	Rent            float64   `db:"rent"`
	Occupied        bool      `db:"occupied"`
	OwnerName       *string   `db:"owner_name"`
	OwnerEmail      *string   `db:"owner_email"`
	OwnerPhone      *string   `db:"owner_phone"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}
