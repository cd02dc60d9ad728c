package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/drift-desk/driftdesk/internal/models"
)

// CreateNotification inserts an unread notification row.
func CreateNotification(tx *gorm.DB, userID, driftID uint, title, message string) (*models.Notification, error) {
	notification := models.Notification{
		UserID:  userID,
		DriftID: driftID,
		Title:   title,
		Message: message,
		IsRead:  false,
	}

	if err := tx.Create(&notification).Error; err != nil {
		return nil, err
	}

	return &notification, nil
}

// NotifyAssignment tells a user they were assigned to a drift.
func NotifyAssignment(tx *gorm.DB, drift *models.Drift, assignedUserID uint) (*models.Notification, error) {
	return CreateNotification(
		tx,
		assignedUserID,
		drift.ID,
		"Assigned to drift",
		fmt.Sprintf("You have been assigned to drift #%d: %s", drift.ID, drift.Title),
	)
}

// NotifyStatusChange notifies the assignee and, when distinct, the creator
// that a drift was resolved or closed. Other transitions notify nobody.
func NotifyStatusChange(tx *gorm.DB, drift *models.Drift, newStatus string) ([]models.Notification, error) {
	if newStatus != models.StatusResolved && newStatus != models.StatusClosed {
		return nil, nil
	}

	var notifications []models.Notification
	title := fmt.Sprintf("Drift %s", FormatStatus(newStatus))

	if drift.AssignedToID != nil {
		notification, err := CreateNotification(
			tx,
			*drift.AssignedToID,
			drift.ID,
			title,
			fmt.Sprintf("Drift #%d has been %s: %s", drift.ID, newStatus, drift.Title),
		)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, *notification)
	}

	if drift.AssignedToID == nil || drift.CreatedByID != *drift.AssignedToID {
		notification, err := CreateNotification(
			tx,
			drift.CreatedByID,
			drift.ID,
			title,
			fmt.Sprintf("Your drift #%d has been %s: %s", drift.ID, newStatus, drift.Title),
		)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, *notification)
	}

	return notifications, nil
}

// NotifyComment notifies the assignee (when present and not the author) and
// the creator (when neither the author nor the assignee). At most one row
// per person per comment.
func NotifyComment(tx *gorm.DB, drift *models.Drift, author *models.User) ([]models.Notification, error) {
	var notifications []models.Notification

	if drift.AssignedToID != nil && *drift.AssignedToID != author.ID {
		notification, err := CreateNotification(
			tx,
			*drift.AssignedToID,
			drift.ID,
			"New comment on assigned drift",
			fmt.Sprintf("%s commented on drift #%d: %s", author.DisplayName(), drift.ID, drift.Title),
		)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, *notification)
	}

	creatorIsAssignee := drift.AssignedToID != nil && drift.CreatedByID == *drift.AssignedToID

	if drift.CreatedByID != author.ID && !creatorIsAssignee {
		notification, err := CreateNotification(
			tx,
			drift.CreatedByID,
			drift.ID,
			"New comment on your drift",
			fmt.Sprintf("%s commented on your drift #%d: %s", author.DisplayName(), drift.ID, drift.Title),
		)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, *notification)
	}

	return notifications, nil
}

// MarkNotificationRead flips an owner's notification to read. Returns
// gorm.ErrRecordNotFound when the row is absent or owned by someone else.
func MarkNotificationRead(tx *gorm.DB, notificationID, userID uint) (*models.Notification, error) {
	var notification models.Notification

	err := tx.Where("id = ? AND user_id = ?", notificationID, userID).First(&notification).Error
	if err != nil {
		return nil, err
	}

	now := time.Now()
	notification.IsRead = true
	notification.ReadAt = &now

	if err := tx.Save(&notification).Error; err != nil {
		return nil, err
	}

	return &notification, nil
}

// MarkAllNotificationsRead flips every unread row for the user and reports
// how many were affected. Calling it again immediately reports zero.
func MarkAllNotificationsRead(tx *gorm.DB, userID uint) (int64, error) {
	result := tx.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": time.Now()})

	return result.RowsAffected, result.Error
}

// UnreadNotificationCount counts the user's unread rows.
func UnreadNotificationCount(tx *gorm.DB, userID uint) (int64, error) {
	var count int64

	err := tx.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error

	return count, err
}

// DeleteNotification removes an owner's notification row.
func DeleteNotification(tx *gorm.DB, notificationID, userID uint) error {
	result := tx.Where("id = ? AND user_id = ?", notificationID, userID).
		Delete(&models.Notification{})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// CleanupNotifications deletes read notifications whose read_at precedes
// now minus the retention window. Returns the number of rows deleted.
func CleanupNotifications(tx *gorm.DB, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, errors.New("retention days must be positive")
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	result := tx.Where("is_read = ? AND read_at < ?", true, cutoff).
		Delete(&models.Notification{})

	return result.RowsAffected, result.Error
}
