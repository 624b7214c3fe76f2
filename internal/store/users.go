package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"techorbit/internal/models"
)

// CreateUser inserts a new account and fills in its generated ID.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, role, address, city, pincode)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.Name, user.Email, user.PasswordHash, user.Role,
		user.Address, user.City, user.Pincode)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.ID, err = res.LastInsertId()
	return err
}

// GetUserByID retrieves a user by ID
func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, "SELECT * FROM users WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, "SELECT * FROM users WHERE email = ?", email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUsers retrieves all accounts, newest first
func (s *Store) GetUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.SelectContext(ctx, &users, "SELECT * FROM users ORDER BY created_at DESC")
	return users, err
}

// UpdateUser updates profile fields and role.
func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET name = ?, email = ?, role = ?, address = ?, city = ?, pincode = ?
		 WHERE id = ?`,
		user.Name, user.Email, user.Role, user.Address, user.City, user.Pincode, user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser removes an account
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
