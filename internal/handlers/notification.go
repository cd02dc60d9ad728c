package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/drift-desk/driftdesk/db"
	"github.com/drift-desk/driftdesk/internal/models"
	"github.com/drift-desk/driftdesk/internal/services"
	"github.com/drift-desk/driftdesk/internal/types"
	"github.com/drift-desk/driftdesk/internal/utils"
)

// ListNotifications returns the principal's notifications newest first,
// optionally unread only, plus the overall unread count.
func ListNotifications(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	query := db.DB.Model(&models.Notification{}).Where("user_id = ?", currentUser.ID)

	if ctx.Query("unread_only") == "true" {
		query = query.Where("is_read = ?", false)
	}

	var total int64

	if err := query.Count(&total).Error; err != nil {
		log.Printf("Failed to count notifications: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	unreadCount, err := services.UnreadNotificationCount(db.DB, currentUser.ID)

	if err != nil {
		log.Printf("Failed to count unread notifications: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	limit, offset := utils.ParsePagination(ctx, 20)

	var notifications []models.Notification

	err = query.Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&notifications).Error

	if err != nil {
		log.Printf("Failed to list notifications: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	responses := make([]types.NotificationResponse, 0, len(notifications))

	for i := range notifications {
		responses = append(responses, notificationResponse(&notifications[i]))
	}

	ctx.JSON(http.StatusOK, gin.H{
		"notifications": responses,
		"total":         total,
		"unread_count":  unreadCount,
	})
}

// MarkNotificationRead flips one of the principal's notifications to read.
func MarkNotificationRead(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, ok := parseIDParam(ctx, "notification_id")

	if !ok {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	notification, err := services.MarkNotificationRead(db.DB, id, currentUser.ID)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		} else {
			log.Printf("Failed to mark notification read: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Notification marked as read",
		"notification": gin.H{
			"id":      notification.ID,
			"is_read": notification.IsRead,
			"read_at": notification.ReadAt,
		},
	})
}

// MarkAllNotificationsRead flips every unread notification for the
// principal and reports how many rows changed.
func MarkAllNotificationsRead(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	count, err := services.MarkAllNotificationsRead(db.DB, currentUser.ID)

	if err != nil {
		log.Printf("Failed to mark notifications read: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "All notifications marked as read",
		"count":   count,
	})
}

// UnreadNotificationCount returns the principal's unread total.
func UnreadNotificationCount(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	count, err := services.UnreadNotificationCount(db.DB, currentUser.ID)

	if err != nil {
		log.Printf("Failed to count unread notifications: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"unread_count": count})
}

// DeleteNotification removes one of the principal's notifications.
func DeleteNotification(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, ok := parseIDParam(ctx, "notification_id")

	if !ok {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	if err := services.DeleteNotification(db.DB, id, currentUser.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		} else {
			log.Printf("Failed to delete notification: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	ctx.Status(http.StatusNoContent)
}

func notificationResponse(n *models.Notification) types.NotificationResponse {
	return types.NotificationResponse{
		ID:        n.ID,
		UserID:    n.UserID,
		DriftID:   n.DriftID,
		Title:     n.Title,
		Message:   n.Message,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
		ReadAt:    n.ReadAt,
	}
}
