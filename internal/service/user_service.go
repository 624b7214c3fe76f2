package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"techorbit/internal/auth"
	"techorbit/internal/models"
	"techorbit/internal/store"
	"techorbit/internal/util"

	"go.uber.org/zap"
)

// ErrInvalidRole rejects role values outside user/seller/admin.
var ErrInvalidRole = errors.New("unknown role")

// UserService handles accounts and authentication.
type UserService struct {
	store  *store.Store
	tokens *auth.Manager
	logger *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(st *store.Store, tokens *auth.Manager) *UserService {
	return &UserService{store: st, tokens: tokens, logger: util.GetLogger()}
}

// SignupRequest carries a new account registration
type SignupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role,omitempty"`
}

// AuthResponse is returned on signup and login
type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Signup registers a new account. Self-registration may pick the user or
// seller role; admin accounts are never created this way.
func (s *UserService) Signup(ctx context.Context, req *SignupRequest) (*AuthResponse, error) {
	ctx, span := util.StartSpan(ctx, "UserService.Signup")
	defer span.End()

	role := strings.ToLower(req.Role)
	if role != models.RoleSeller {
		role = models.RoleUser
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         req.Name,
		Email:        strings.ToLower(req.Email),
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.tokens.IssueToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("User registered",
		zap.Int64("user_id", user.ID),
		zap.String("role", user.Role))
	return &AuthResponse{Token: token, User: user}, nil
}

// LoginRequest carries account credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and issues a token.
func (s *UserService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	ctx, span := util.StartSpan(ctx, "UserService.Login")
	defer span.End()

	user, err := s.store.GetUserByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		// Same error for unknown email and wrong password.
		return nil, auth.ErrInvalidCredentials
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, auth.ErrInvalidCredentials
	}

	token, err := s.tokens.IssueToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &AuthResponse{Token: token, User: user}, nil
}

// ListUsers returns all accounts (admin view)
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.store.GetUsers(ctx)
}

// UpdateUserRequest carries profile changes. Role is applied only when the
// actor is an admin.
type UpdateUserRequest struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Role    string `json:"role,omitempty"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	Pincode string `json:"pincode,omitempty"`
}

// UpdateUser edits a profile. Users may edit themselves; admins may edit
// anyone. Role changes are admin-only and never read from a non-admin body.
func (s *UserService) UpdateUser(ctx context.Context, userID, actorID int64, actorRole string, req *UpdateUserRequest) (*models.User, error) {
	if actorRole != models.RoleAdmin && actorID != userID {
		return nil, ErrForbidden
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = strings.ToLower(req.Email)
	}
	if req.Address != "" {
		user.Address = req.Address
	}
	if req.City != "" {
		user.City = req.City
	}
	if req.Pincode != "" {
		user.Pincode = req.Pincode
	}
	if req.Role != "" {
		if actorRole != models.RoleAdmin {
			return nil, ErrForbidden
		}
		role := strings.ToLower(req.Role)
		if role != models.RoleUser && role != models.RoleSeller && role != models.RoleAdmin {
			return nil, ErrInvalidRole
		}
		user.Role = role
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes an account (admin only, enforced at the API boundary)
func (s *UserService) DeleteUser(ctx context.Context, userID int64) error {
	return s.store.DeleteUser(ctx, userID)
}
