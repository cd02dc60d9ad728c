package handlers

import (
	"encoding/json"
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

// ListDriftEvents returns a drift's audit trail, newest first.
func ListDriftEvents(ctx *gin.Context) {
	var drift models.Drift

	if err := db.DB.First(&drift, "id = ?", ctx.Param("drift_id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Drift not found"})
		} else {
			log.Printf("Failed to fetch drift: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	limit, offset := utils.ParsePagination(ctx, 50)

	events, total, err := services.DriftEvents(db.DB, drift.ID, limit, offset)

	if err != nil {
		log.Printf("Failed to list drift events: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"events": eventResponses(events),
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// ListUserEvents returns the events a user performed, newest first.
// Admin only.
func ListUserEvents(ctx *gin.Context) {
	userID, ok := parseIDParam(ctx, "user_id")

	if !ok {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var user models.User

	if err := db.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			log.Printf("Failed to fetch user: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	limit, offset := utils.ParsePagination(ctx, 50)

	events, total, err := services.UserEvents(db.DB, user.ID, limit, offset)

	if err != nil {
		log.Printf("Failed to list user events: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"events": eventResponses(events),
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func eventResponses(events []models.Event) []types.EventResponse {
	responses := make([]types.EventResponse, 0, len(events))

	for i := range events {
		responses = append(responses, types.EventResponse{
			ID:          events[i].ID,
			DriftID:     events[i].DriftID,
			UserID:      events[i].UserID,
			EventType:   events[i].EventType,
			OldValue:    json.RawMessage(events[i].OldValue),
			NewValue:    json.RawMessage(events[i].NewValue),
			Description: events[i].Description,
			CreatedAt:   events[i].CreatedAt,
		})
	}

	return responses
}
