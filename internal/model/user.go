package model

import (
	"time"
)

// RolePropertyManager is the only role this service assigns; the column
// stays free-form for roles granted out of band.
const RolePropertyManager = "property_manager"

type User struct {
	ID              string     `db:"id"`
	Email           string     `db:"email"`
	PasswordHash    string     `db:"password_hash"`
	Name            *string    `db:"name"`
	CompanyName     *string    `db:"company_name"`
	Role            string     `db:"role"`
	IsActive        bool       `db:"is_active"`
	EmailVerifiedAt *time.Time `db:"email_verified_at"`
	CreatedAt       time.Time  `db:"created_at"`
}

func (u *User) IsVerified() bool {
	return u.EmailVerifiedAt != nil
}

func (u *User) DisplayName() string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	return "there"
}

func (u *User) Company() string {
	if u.CompanyName != nil {
		return *u.CompanyName
	}
	return ""
}

func (u *User) HasCompanyName() bool {
	return u.CompanyName != nil && *u.CompanyName != ""
}
