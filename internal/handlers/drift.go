package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/drift-desk/driftdesk/db"
	"github.com/drift-desk/driftdesk/internal/models"
	"github.com/drift-desk/driftdesk/internal/services"
	"github.com/drift-desk/driftdesk/internal/types"
	"github.com/drift-desk/driftdesk/internal/utils"
)

type CreateDriftRequest struct {
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description"`
	Priority     string `json:"priority" binding:"omitempty,oneof=low medium high critical"`
	AssignedToID *uint  `json:"assigned_to_id"`
}

type UpdateDriftRequest struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	Status       *string `json:"status" binding:"omitempty,oneof=open in_progress resolved closed"`
	Priority     *string `json:"priority" binding:"omitempty,oneof=low medium high critical"`
	AssignedToID *uint   `json:"assigned_to_id"`
}

// Allowed sort keys for drift listings. Unknown keys are rejected rather
// than silently mapped to a default.
var driftSortColumns = map[string]string{
	"id":         "id",
	"title":      "title",
	"status":     "status",
	"priority":   "priority",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

var (
	errDriftNotFound    = errors.New("drift not found")
	errAssigneeNotFound = errors.New("assigned user not found")
)

// CreateDrift persists a new drift together with its creation event and, if
// an assignee was given, the assignment notification. All three rows commit
// or roll back as one unit.
func CreateDrift(ctx *gin.Context) {
	var req CreateDriftRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	assignedToID := normalizeAssignee(req.AssignedToID)

	drift := models.Drift{
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		Status:       models.StatusOpen,
		Priority:     priority,
		CreatedByID:  currentUser.ID,
		AssignedToID: assignedToID,
	}

	if drift.Title == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}

	var notified []uint

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if assignedToID != nil {
			var assignee models.User
			if err := tx.First(&assignee, *assignedToID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return errAssigneeNotFound
				}
				return err
			}
		}

		if err := tx.Create(&drift).Error; err != nil {
			return err
		}

		if err := services.LogDriftCreation(tx, &drift); err != nil {
			return err
		}

		if assignedToID != nil {
			if _, err := services.NotifyAssignment(tx, &drift, *assignedToID); err != nil {
				return err
			}
			notified = append(notified, *assignedToID)
		}

		return nil
	})

	if errors.Is(err, errAssigneeNotFound) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Assigned user not found"})
		return
	}

	if err != nil {
		log.Printf("Failed to create drift: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	notifyUsers(notified)

	response, err := buildDriftResponse(&drift)

	if err != nil {
		log.Printf("Failed to load drift relations: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusCreated, response)
}

// ListDrifts applies filters, search, sorting and pagination. The total
// reflects the filtered set, not the page.
func ListDrifts(ctx *gin.Context) {
	query := db.DB.Model(&models.Drift{})

	if status := ctx.Query("status"); status != "" {
		if !validStatus(status) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
			return
		}
		query = query.Where("status = ?", status)
	}

	if priority := ctx.Query("priority"); priority != "" {
		if !validPriority(priority) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority filter"})
			return
		}
		query = query.Where("priority = ?", priority)
	}

	if raw := ctx.Query("assigned_to"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assigned_to filter"})
			return
		}
		query = query.Where("assigned_to_id = ?", id)
	}

	if raw := ctx.Query("created_by"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid created_by filter"})
			return
		}
		query = query.Where("created_by_id = ?", id)
	}

	if search := ctx.Query("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	sortBy := ctx.DefaultQuery("sort_by", "created_at")
	sortColumn, ok := driftSortColumns[sortBy]

	if !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sort field"})
		return
	}

	sortOrder := ctx.DefaultQuery("sort_order", "desc")

	if sortOrder != "asc" && sortOrder != "desc" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sort order"})
		return
	}

	limit, offset := utils.ParsePagination(ctx, 20)

	var total int64

	if err := query.Count(&total).Error; err != nil {
		log.Printf("Failed to count drifts: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var drifts []models.Drift

	err := query.Order(sortColumn + " " + strings.ToUpper(sortOrder)).
		Limit(limit).
		Offset(offset).
		Find(&drifts).Error

	if err != nil {
		log.Printf("Failed to list drifts: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	items, err := buildDriftListItems(drifts)

	if err != nil {
		log.Printf("Failed to load drift relations: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"drifts": items,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// GetDrift returns one drift with resolved creator/assignee summaries.
func GetDrift(ctx *gin.Context) {
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

	response, err := buildDriftResponse(&drift)

	if err != nil {
		log.Printf("Failed to load drift relations: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// UpdateDrift applies a partial update. The assignee is validated before any
// field is touched, every changed field gets exactly one audit event, and
// status/assignment changes fan out their notifications, all inside one
// transaction.
func UpdateDrift(ctx *gin.Context) {
	var req UpdateDriftRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var (
		drift    models.Drift
		notified []uint
	)

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&drift, "id = ?", ctx.Param("drift_id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errDriftNotFound
			}
			return err
		}

		// Validate the assignee before mutating anything so a bad id
		// leaves the drift untouched.
		if req.AssignedToID != nil && *req.AssignedToID != 0 {
			var assignee models.User
			if err := tx.First(&assignee, *req.AssignedToID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return errAssigneeNotFound
				}
				return err
			}
		}

		oldValues := make(map[string]interface{})
		newValues := make(map[string]interface{})

		if req.Title != nil && *req.Title != drift.Title {
			oldValues["title"] = drift.Title
			newValues["title"] = *req.Title
			drift.Title = *req.Title
		}

		if req.Description != nil && *req.Description != drift.Description {
			oldValues["description"] = drift.Description
			newValues["description"] = *req.Description
			drift.Description = *req.Description
		}

		if req.Priority != nil && *req.Priority != drift.Priority {
			oldValues["priority"] = drift.Priority
			newValues["priority"] = *req.Priority
			drift.Priority = *req.Priority
		}

		statusChanged := req.Status != nil && *req.Status != drift.Status

		if statusChanged {
			oldValues["status"] = drift.Status
			newValues["status"] = *req.Status
			drift.Status = *req.Status

			now := time.Now()
			switch drift.Status {
			case models.StatusResolved:
				drift.ResolvedAt = &now
			case models.StatusClosed:
				drift.ClosedAt = &now
			}
		}

		newAssignee := normalizeAssignee(req.AssignedToID)
		assignmentChanged := req.AssignedToID != nil && !sameAssignee(drift.AssignedToID, newAssignee)

		if assignmentChanged {
			oldValues["assigned_to_id"] = assigneeValue(drift.AssignedToID)
			newValues["assigned_to_id"] = assigneeValue(newAssignee)
			drift.AssignedToID = newAssignee
		}

		if len(newValues) == 0 {
			return nil
		}

		if err := tx.Save(&drift).Error; err != nil {
			return err
		}

		if err := services.LogDriftUpdate(tx, drift.ID, currentUser.ID, oldValues, newValues); err != nil {
			return err
		}

		if statusChanged {
			notifications, err := services.NotifyStatusChange(tx, &drift, drift.Status)
			if err != nil {
				return err
			}
			for _, n := range notifications {
				notified = append(notified, n.UserID)
			}
		}

		if assignmentChanged && drift.AssignedToID != nil {
			if _, err := services.NotifyAssignment(tx, &drift, *drift.AssignedToID); err != nil {
				return err
			}
			notified = append(notified, *drift.AssignedToID)
		}

		return nil
	})

	switch {
	case errors.Is(err, errDriftNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Drift not found"})
		return
	case errors.Is(err, errAssigneeNotFound):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Assigned user not found"})
		return
	case err != nil:
		log.Printf("Failed to update drift: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	notifyUsers(notified)

	response, err := buildDriftResponse(&drift)

	if err != nil {
		log.Printf("Failed to load drift relations: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, response)
}

func validStatus(status string) bool {
	switch status {
	case models.StatusOpen, models.StatusInProgress, models.StatusResolved, models.StatusClosed:
		return true
	}
	return false
}

func validPriority(priority string) bool {
	switch priority {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityCritical:
		return true
	}
	return false
}

// normalizeAssignee maps an explicit zero to "unassigned".
func normalizeAssignee(id *uint) *uint {
	if id == nil || *id == 0 {
		return nil
	}
	return id
}

func sameAssignee(a, b *uint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func assigneeValue(id *uint) interface{} {
	if id == nil {
		return nil
	}
	return *id
}

// buildDriftResponse resolves the creator and assignee with explicit
// queries; relations are never lazily loaded.
func buildDriftResponse(drift *models.Drift) (types.DriftResponse, error) {
	users, err := loadUserSummaries(collectUserIDs([]models.Drift{*drift}))

	if err != nil {
		return types.DriftResponse{}, err
	}

	return driftResponse(drift, users), nil
}

func buildDriftListItems(drifts []models.Drift) ([]types.DriftListItem, error) {
	users, err := loadUserSummaries(collectUserIDs(drifts))

	if err != nil {
		return nil, err
	}

	driftIDs := make([]uint, 0, len(drifts))
	for i := range drifts {
		driftIDs = append(driftIDs, drifts[i].ID)
	}

	commentCounts, err := countByDrift(&models.Comment{}, driftIDs)
	if err != nil {
		return nil, err
	}

	eventCounts, err := countByDrift(&models.Event{}, driftIDs)
	if err != nil {
		return nil, err
	}

	items := make([]types.DriftListItem, 0, len(drifts))

	for i := range drifts {
		items = append(items, types.DriftListItem{
			DriftResponse: driftResponse(&drifts[i], users),
			CommentCount:  commentCounts[drifts[i].ID],
			EventCount:    eventCounts[drifts[i].ID],
		})
	}

	return items, nil
}

func driftResponse(drift *models.Drift, users map[uint]types.UserSummary) types.DriftResponse {
	response := types.DriftResponse{
		ID:           drift.ID,
		Title:        drift.Title,
		Description:  drift.Description,
		Status:       drift.Status,
		Priority:     drift.Priority,
		CreatedByID:  drift.CreatedByID,
		AssignedToID: drift.AssignedToID,
		CreatedAt:    drift.CreatedAt,
		UpdatedAt:    drift.UpdatedAt,
		ResolvedAt:   drift.ResolvedAt,
		ClosedAt:     drift.ClosedAt,
		CreatedBy:    users[drift.CreatedByID],
	}

	if drift.AssignedToID != nil {
		if summary, ok := users[*drift.AssignedToID]; ok {
			response.AssignedTo = &summary
		}
	}

	return response
}

func collectUserIDs(drifts []models.Drift) []uint {
	seen := make(map[uint]bool)
	ids := make([]uint, 0, len(drifts)*2)

	for i := range drifts {
		if !seen[drifts[i].CreatedByID] {
			seen[drifts[i].CreatedByID] = true
			ids = append(ids, drifts[i].CreatedByID)
		}
		if drifts[i].AssignedToID != nil && !seen[*drifts[i].AssignedToID] {
			seen[*drifts[i].AssignedToID] = true
			ids = append(ids, *drifts[i].AssignedToID)
		}
	}

	return ids
}

func loadUserSummaries(ids []uint) (map[uint]types.UserSummary, error) {
	summaries := make(map[uint]types.UserSummary, len(ids))

	if len(ids) == 0 {
		return summaries, nil
	}

	var users []models.User

	if err := db.DB.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}

	for i := range users {
		summaries[users[i].ID] = userSummary(&users[i])
	}

	return summaries, nil
}

func countByDrift(model interface{}, driftIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(driftIDs))

	if len(driftIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		DriftID uint
		Total   int64
	}

	err := db.DB.Model(model).
		Select("drift_id, COUNT(*) AS total").
		Where("drift_id IN ?", driftIDs).
		Group("drift_id").
		Scan(&rows).Error

	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.DriftID] = row.Total
	}

	return counts, nil
}
