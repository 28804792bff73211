package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/civigo/grievance-backend/internal/models"
)

// UserRepository is the credential store. Email is unique; duplicates
// surface ErrDuplicateEmail.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// PostgresUserRepository stores users in the users table.
type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) Create(ctx context.Context, u *models.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, created_at, updated_at, name, email, password, role, phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, u.ID, u.CreatedAt, u.UpdatedAt, u.Name, u.Email, u.Password, u.Role, u.Phone)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	var phone sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT id, created_at, updated_at, name, email, password, role, phone
		FROM users WHERE email = $1
	`, email).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt, &u.Name, &u.Email, &u.Password, &u.Role, &phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.Phone = phone.String
	return &u, nil
}
