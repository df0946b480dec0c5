package service

import (
	"context"
	"fmt"
	"time"

	"kyc_arena/internal/domain"
)

// ListNotifications returns a user's notifications, newest first.
func (s *Service) ListNotifications(ctx context.Context, userID uint) ([]domain.Notification, error) {
	notes := []domain.Notification{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Find(&notes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notes, nil
}

// MarkNotificationsRead marks all of a user's notifications as read.
func (s *Service) MarkNotificationsRead(ctx context.Context, userID uint) error {
	err := s.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

// PruneNotifications deletes read notifications created before the cut-off.
func (s *Service) PruneNotifications(ctx context.Context, before time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("is_read = ? AND created_at < ?", true, before).
		Delete(&domain.Notification{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to prune notifications: %w", res.Error)
	}
	return res.RowsAffected, nil
}
