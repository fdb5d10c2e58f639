package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/streakmate/streakmate/middleware"
	"github.com/streakmate/streakmate/models"
	"github.com/streakmate/streakmate/utils"
)

// NotificationController lists and acknowledges stored notifications.
type NotificationController struct {
	db *gorm.DB
}

// NewNotificationController creates a NotificationController.
func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{db: db}
}

// List returns the caller's notifications, newest first. unread=true filters
// to unacknowledged ones.
func (n *NotificationController) List(ctx *gin.Context) {
	userID := middleware.CurrentUserID(ctx)

	limit := 50
	if v := strings.TrimSpace(ctx.Query("limit")); v != "" {
		if x, err := strconv.Atoi(v); err == nil && x > 0 && x <= 100 {
			limit = x
		}
	}

	q := n.db.Where("user_id = ?", userID)
	if ctx.Query("unread") == "true" {
		q = q.Where("`read` = ?", false)
	}

	var items []models.Notification
	if err := q.Order("created_at DESC").Limit(limit).Find(&items).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50140, "failed to load notifications")
		return
	}

	var unread int64
	_ = n.db.Model(&models.Notification{}).Where("user_id = ? AND `read` = ?", userID, false).Count(&unread).Error

	utils.Success(ctx, gin.H{"items": items, "unread_count": unread})
}

// MarkRead acknowledges a single notification owned by the caller.
func (n *NotificationController) MarkRead(ctx *gin.Context) {
	userID := middleware.CurrentUserID(ctx)
	id, err := parseUintParam(ctx, "id")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40140, "invalid notification id")
		return
	}

	res := n.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50141, "failed to update notification")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40460, "notification not found")
		return
	}
	utils.Success(ctx, gin.H{"message": "marked read"})
}

// MarkAllRead acknowledges all of the caller's notifications.
func (n *NotificationController) MarkAllRead(ctx *gin.Context) {
	userID := middleware.CurrentUserID(ctx)

	res := n.db.Model(&models.Notification{}).
		Where("user_id = ? AND `read` = ?", userID, false).
		Update("read", true)
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50142, "failed to update notifications")
		return
	}
	utils.Success(ctx, gin.H{"marked": res.RowsAffected})
}
