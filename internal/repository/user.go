package repository

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/unitnode/unitnode/internal/model"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

type UserRepository interface {
	Create(user *model.User) error
	ByID(id string) (*model.User, error)
	ByEmail(email string) (*model.User, error)
	Update(user *model.User) error
	MarkVerified(email string, verifiedAt time.Time) error
	SetCompanyName(email, companyName string) error
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, name, company_name, role, is_active, email_verified_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.CompanyName,
		user.Role,
		user.IsActive,
		user.EmailVerifiedAt,
		user.CreatedAt,
	)
	if err != nil {
		// Check for unique constraint violation (works for both SQLite and PostgreSQL)
		errStr := err.Error()
		if strings.Contains(errStr, "UNIQUE constraint failed") || strings.Contains(errStr, "duplicate key value") {
			return ErrDuplicateEmail
		}
		return err
	}

	return nil
}

func (r *userRepository) ByID(id string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT * FROM users WHERE id = $1`

	err := r.db.Get(user, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}

	return user, err
}

func (r *userRepository) ByEmail(email string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT * FROM users WHERE email = $1`

	err := r.db.Get(user, query, email)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}

	return user, err
}

func (r *userRepository) Update(user *model.User) error {
	query := `
		UPDATE users
		SET password_hash = $1, name = $2, company_name = $3, role = $4, is_active = $5, email_verified_at = $6
		WHERE id = $7
	`

	_, err := r.db.Exec(query,
		user.PasswordHash,
		user.Name,
		user.CompanyName,
		user.Role,
		user.IsActive,
		user.EmailVerifiedAt,
		user.ID,
	)
	return err
}

// MarkVerified activates the account and records the verification time.
// Idempotent: re-verifying an already verified user keeps the original timestamp.
func (r *userRepository) MarkVerified(email string, verifiedAt time.Time) error {
	query := `
		UPDATE users
		SET is_active = TRUE, email_verified_at = COALESCE(email_verified_at, $1)
		WHERE email = $2
	`

	result, err := r.db.Exec(query, verifiedAt, email)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (r *userRepository) SetCompanyName(email, companyName string) error {
	query := `UPDATE users SET company_name = $1 WHERE email = $2`

	result, err := r.db.Exec(query, companyName, email)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}
