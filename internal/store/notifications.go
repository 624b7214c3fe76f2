package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"techorbit/internal/models"
)

// CreateNotification inserts an inbox message for a user.
func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO notifications (user_id, message) VALUES (?, ?)",
		n.UserID, n.Message)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	n.ID, err = res.LastInsertId()
	return err
}

// GetNotificationByID retrieves a single notification
func (s *Store) GetNotificationByID(ctx context.Context, id int64) (*models.Notification, error) {
	var n models.Notification
	err := s.db.GetContext(ctx, &n, "SELECT * FROM notifications WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// GetNotificationsByUserID retrieves a user's notifications, newest first
func (s *Store) GetNotificationsByUserID(ctx context.Context, userID int64) ([]models.Notification, error) {
	var notifications []models.Notification
	err := s.db.SelectContext(ctx, &notifications,
		"SELECT * FROM notifications WHERE user_id = ? ORDER BY created_at DESC", userID)
	return notifications, err
}

// MarkNotificationRead flags a notification as read
func (s *Store) MarkNotificationRead(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET is_read = 1 WHERE id = ?", id)
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
