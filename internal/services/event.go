package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/drift-desk/driftdesk/internal/models"
)

const commentDescriptionLimit = 100

// CreateEvent appends an audit row. Old and new values are serialized as
// JSON, never free text. Callers pass their transaction handle so the event
// commits or rolls back with the write that triggered it.
func CreateEvent(tx *gorm.DB, driftID, userID uint, eventType, description string, oldValue, newValue interface{}) (*models.Event, error) {
	event := models.Event{
		DriftID:     driftID,
		UserID:      userID,
		EventType:   eventType,
		Description: description,
	}

	if oldValue != nil {
		encoded, err := json.Marshal(oldValue)
		if err != nil {
			return nil, err
		}
		event.OldValue = datatypes.JSON(encoded)
	}

	if newValue != nil {
		encoded, err := json.Marshal(newValue)
		if err != nil {
			return nil, err
		}
		event.NewValue = datatypes.JSON(encoded)
	}

	if err := tx.Create(&event).Error; err != nil {
		return nil, err
	}

	return &event, nil
}

// LogDriftCreation records the full snapshot of a newly created drift.
func LogDriftCreation(tx *gorm.DB, drift *models.Drift) error {
	_, err := CreateEvent(
		tx,
		drift.ID,
		drift.CreatedByID,
		models.EventCreated,
		fmt.Sprintf("Created drift: %s", drift.Title),
		nil,
		map[string]interface{}{
			"title":          drift.Title,
			"description":    drift.Description,
			"priority":       drift.Priority,
			"assigned_to_id": drift.AssignedToID,
		},
	)
	return err
}

// LogDriftUpdate records one event per changed field. Status and assignment
// changes get their specialized event types, everything else is a generic
// field update.
func LogDriftUpdate(tx *gorm.DB, driftID, userID uint, oldValues, newValues map[string]interface{}) error {
	for field, newValue := range newValues {
		oldValue, tracked := oldValues[field]
		if !tracked {
			continue
		}

		var err error

		switch field {
		case "status":
			_, err = CreateEvent(
				tx,
				driftID,
				userID,
				models.EventStatusChanged,
				fmt.Sprintf("Status changed from %s to %s", FormatStatus(oldValue), FormatStatus(newValue)),
				map[string]interface{}{"status": oldValue},
				map[string]interface{}{"status": newValue},
			)
		case "assigned_to_id":
			eventType := models.EventAssigned
			description := fmt.Sprintf("Assigned to user %v", newValue)

			if isUnassigned(newValue) {
				eventType = models.EventUnassigned
				description = "Drift unassigned"
			}

			_, err = CreateEvent(
				tx,
				driftID,
				userID,
				eventType,
				description,
				map[string]interface{}{"assigned_to_id": oldValue},
				map[string]interface{}{"assigned_to_id": newValue},
			)
		default:
			_, err = CreateEvent(
				tx,
				driftID,
				userID,
				models.EventUpdated,
				fmt.Sprintf("Updated %s: %v → %v", field, oldValue, newValue),
				map[string]interface{}{field: oldValue},
				map[string]interface{}{field: newValue},
			)
		}

		if err != nil {
			return err
		}
	}

	return nil
}

// LogCommentAdded records a comment event with the content truncated for the
// description; the full content goes into the structured value.
func LogCommentAdded(tx *gorm.DB, driftID, userID uint, content string) error {
	excerpt := content
	if len(excerpt) > commentDescriptionLimit {
		excerpt = excerpt[:commentDescriptionLimit] + "..."
	}

	_, err := CreateEvent(
		tx,
		driftID,
		userID,
		models.EventCommentAdded,
		fmt.Sprintf("Added comment: %s", excerpt),
		nil,
		map[string]interface{}{"comment_content": content},
	)
	return err
}

// FormatStatus renders a status value for humans: underscores become spaces
// and each word is capitalized ("in_progress" reads "In Progress").
func FormatStatus(status interface{}) string {
	text := fmt.Sprintf("%v", status)
	words := strings.Fields(strings.ReplaceAll(text, "_", " "))

	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}

	return strings.Join(words, " ")
}

// DriftEvents returns a drift's audit trail, newest first.
func DriftEvents(tx *gorm.DB, driftID uint, limit, offset int) ([]models.Event, int64, error) {
	query := tx.Model(&models.Event{}).Where("drift_id = ?", driftID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []models.Event
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&events).Error; err != nil {
		return nil, 0, err
	}

	return events, total, nil
}

// UserEvents returns the events a user performed, newest first.
func UserEvents(tx *gorm.DB, userID uint, limit, offset int) ([]models.Event, int64, error) {
	query := tx.Model(&models.Event{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []models.Event
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&events).Error; err != nil {
		return nil, 0, err
	}

	return events, total, nil
}

func isUnassigned(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case *uint:
		return v == nil || *v == 0
	case uint:
		return v == 0
	case int:
		return v == 0
	default:
		return false
	}
}
