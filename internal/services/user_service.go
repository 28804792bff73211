package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/civigo/grievance-backend/internal/auth"
	"github.com/civigo/grievance-backend/internal/models"
	"github.com/civigo/grievance-backend/internal/repository"
	"github.com/civigo/grievance-backend/pkg/utils"
)

// SignupRequest is the signup payload. Role defaults to citizen and is
// immutable after creation.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
	Role     string `json:"role,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserService owns credential validation and local token issuance.
type UserService struct {
	repo   repository.UserRepository
	secret []byte

	now func() time.Time // test hook
}

func NewUserService(repo repository.UserRepository, secret []byte) *UserService {
	return &UserService{repo: repo, secret: secret, now: time.Now}
}

// Signup creates a user with a salted password hash and returns a local
// bearer token alongside the stored user.
func (s *UserService) Signup(ctx context.Context, req SignupRequest) (string, *models.User, error) {
	var fields []string
	if req.Name == "" {
		fields = append(fields, "name")
	}
	if req.Email == "" {
		fields = append(fields, "email")
	}
	if req.Password == "" {
		fields = append(fields, "password")
	}
	if req.Role != "" && !models.ValidRole(req.Role) {
		fields = append(fields, "role")
	}
	if len(fields) > 0 {
		return "", nil, &ValidationError{Fields: fields}
	}

	role := req.Role
	if role == "" {
		role = models.RoleCitizen
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return "", nil, err
	}

	now := s.now()
	user := &models.User{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		Name:      req.Name,
		Email:     req.Email,
		Password:  hashed,
		Role:      role,
		Phone:     req.Phone,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return "", nil, err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Login verifies the credentials and returns a fresh local token.
func (s *UserService) Login(ctx context.Context, req LoginRequest) (string, *models.User, error) {
	var fields []string
	if req.Email == "" {
		fields = append(fields, "email")
	}
	if req.Password == "" {
		fields = append(fields, "password")
	}
	if len(fields) > 0 {
		return "", nil, &ValidationError{Fields: fields}
	}

	user, err := s.repo.FindByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil, ErrBadCredentials
	}
	if err != nil {
		return "", nil, err
	}

	ok, err := utils.VerifyPassword(req.Password, user.Password)
	if err != nil || !ok {
		return "", nil, ErrBadCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *UserService) issueToken(user *models.User) (string, error) {
	return auth.IssueLocalToken(s.secret, auth.Identity{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	})
}
