package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/drift-desk/driftdesk/db"
	"github.com/drift-desk/driftdesk/internal/models"
	"github.com/drift-desk/driftdesk/internal/services"
	"github.com/drift-desk/driftdesk/internal/types"
	"github.com/drift-desk/driftdesk/internal/utils"
)

type AddCommentRequest struct {
	Content string `json:"content"`
}

var errEmptyComment = errors.New("comment content cannot be empty")

// AddComment stores a comment plus its audit event and notifications in one
// transaction.
func AddComment(ctx *gin.Context) {
	var req AddCommentRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	content := strings.TrimSpace(req.Content)

	var (
		comment  models.Comment
		notified []uint
	)

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		var drift models.Drift

		if err := tx.First(&drift, "id = ?", ctx.Param("drift_id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errDriftNotFound
			}
			return err
		}

		if content == "" {
			return errEmptyComment
		}

		var author models.User

		if err := tx.First(&author, currentUser.ID).Error; err != nil {
			return err
		}

		comment = models.Comment{
			DriftID:  drift.ID,
			AuthorID: author.ID,
			Content:  content,
		}

		if err := tx.Create(&comment).Error; err != nil {
			return err
		}

		if err := services.LogCommentAdded(tx, drift.ID, author.ID, content); err != nil {
			return err
		}

		notifications, err := services.NotifyComment(tx, &drift, &author)
		if err != nil {
			return err
		}

		for _, n := range notifications {
			notified = append(notified, n.UserID)
		}

		return nil
	})

	switch {
	case errors.Is(err, errDriftNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Drift not found"})
		return
	case errors.Is(err, errEmptyComment):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Comment content cannot be empty"})
		return
	case err != nil:
		log.Printf("Failed to add comment: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	notifyUsers(notified)

	ctx.JSON(http.StatusCreated, types.CommentResponse{
		ID:        comment.ID,
		DriftID:   comment.DriftID,
		AuthorID:  comment.AuthorID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
		Author: types.UserSummary{
			ID:       currentUser.ID,
			Username: currentUser.Username,
			FullName: currentUser.FullName,
		},
	})
}

// ListComments returns a drift's comments oldest first.
func ListComments(ctx *gin.Context) {
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

	var total int64

	if err := db.DB.Model(&models.Comment{}).Where("drift_id = ?", drift.ID).Count(&total).Error; err != nil {
		log.Printf("Failed to count comments: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	var comments []models.Comment

	err := db.DB.Where("drift_id = ?", drift.ID).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error

	if err != nil {
		log.Printf("Failed to list comments: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	responses, err := buildCommentResponses(comments)

	if err != nil {
		log.Printf("Failed to load comment authors: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"comments": responses,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

// GetComment returns a single comment.
func GetComment(ctx *gin.Context) {
	var comment models.Comment

	if err := db.DB.First(&comment, "id = ?", ctx.Param("comment_id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		} else {
			log.Printf("Failed to fetch comment: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	responses, err := buildCommentResponses([]models.Comment{comment})

	if err != nil {
		log.Printf("Failed to load comment author: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, responses[0])
}

// DeleteComment removes a comment; only its author may do so.
func DeleteComment(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var comment models.Comment

	if err := db.DB.First(&comment, "id = ?", ctx.Param("comment_id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		} else {
			log.Printf("Failed to fetch comment: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	if comment.AuthorID != currentUser.ID {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Not authorized to delete this comment"})
		return
	}

	if err := db.DB.Delete(&comment).Error; err != nil {
		log.Printf("Failed to delete comment: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.Status(http.StatusNoContent)
}

func buildCommentResponses(comments []models.Comment) ([]types.CommentResponse, error) {
	ids := make([]uint, 0, len(comments))
	seen := make(map[uint]bool)

	for i := range comments {
		if !seen[comments[i].AuthorID] {
			seen[comments[i].AuthorID] = true
			ids = append(ids, comments[i].AuthorID)
		}
	}

	authors, err := loadUserSummaries(ids)

	if err != nil {
		return nil, err
	}

	responses := make([]types.CommentResponse, 0, len(comments))

	for i := range comments {
		responses = append(responses, types.CommentResponse{
			ID:        comments[i].ID,
			DriftID:   comments[i].DriftID,
			AuthorID:  comments[i].AuthorID,
			Content:   comments[i].Content,
			CreatedAt: comments[i].CreatedAt,
			UpdatedAt: comments[i].UpdatedAt,
			Author:    authors[comments[i].AuthorID],
		})
	}

	return responses, nil
}
