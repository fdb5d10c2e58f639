package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/streakmate/streakmate/middleware"
	"github.com/streakmate/streakmate/models"
	"github.com/streakmate/streakmate/services"
	"github.com/streakmate/streakmate/utils"
)

// FriendController handles friend requests and the friend list.
type FriendController struct {
	db       *gorm.DB
	notifier services.Notifier
}

// NewFriendController creates a FriendController.
func NewFriendController(db *gorm.DB, notifier services.Notifier) *FriendController {
	return &FriendController{db: db, notifier: notifier}
}

// Request sends a friend request to another user.
func (f *FriendController) Request(ctx *gin.Context) {
	userID := middleware.CurrentUserID(ctx)

	var req struct {
		FriendID uint `json:"friend_id" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40110, "invalid request payload")
		return
	}
	if req.FriendID == userID {
		utils.Error(ctx, http.StatusBadRequest, 40111, "cannot befriend yourself")
		return
	}

	var target models.User
	if err := f.db.First(&target, req.FriendID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40412, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50110, "failed to look up user")
		return
	}

	var existing models.Friendship
	err := f.db.Where(
		"(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)",
		userID, req.FriendID, req.FriendID, userID,
	).First(&existing).Error
	if err == nil {
		if existing.Status == models.FriendshipDeclined {
			// A declined pair may try again; the new request replaces the old row.
			existing.UserID = userID
			existing.FriendID = req.FriendID
			existing.Status = models.FriendshipPending
			if err := f.db.Save(&existing).Error; err != nil {
				utils.Error(ctx, http.StatusInternalServerError, 50111, "failed to send friend request")
				return
			}
			f.notifyRequest(ctx, req.FriendID, userID)
			utils.Success(ctx, existing)
			return
		}
		utils.Error(ctx, http.StatusConflict, 40905, "friendship already exists or is pending")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusInternalServerError, 50110, "failed to look up friendship")
		return
	}

	friendship := models.Friendship{
		UserID:   userID,
		FriendID: req.FriendID,
		Status:   models.FriendshipPending,
	}
	if err := f.db.Create(&friendship).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50111, "failed to send friend request")
		return
	}
	f.notifyRequest(ctx, req.FriendID, userID)
	utils.Success(ctx, friendship)
}

func (f *FriendController) notifyRequest(ctx *gin.Context, to, from uint) {
	f.notifier.Notify(ctx.Request.Context(), to, models.NotifyFriendRequest,
		"You received a friend request",
		map[string]any{"from_user_id": from})
}

// Accept approves a pending friend request addressed to the caller.
func (f *FriendController) Accept(ctx *gin.Context) {
	f.answer(ctx, models.FriendshipAccepted)
}

// Decline rejects a pending friend request addressed to the caller.
func (f *FriendController) Decline(ctx *gin.Context) {
	f.answer(ctx, models.FriendshipDeclined)
}

func (f *FriendController) answer(ctx *gin.Context, status models.FriendshipStatus) {
	userID := middleware.CurrentUserID(ctx)
	id, err := parseUintParam(ctx, "id")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40112, "invalid friendship id")
		return
	}

	var friendship models.Friendship
	if err := f.db.First(&friendship, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40440, "friend request not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50112, "failed to load friend request")
		return
	}
	if friendship.FriendID != userID {
		utils.Error(ctx, http.StatusForbidden, 40306, "this request is not addressed to you")
		return
	}
	if friendship.Status != models.FriendshipPending {
		utils.Error(ctx, http.StatusConflict, 40906, "friend request already answered")
		return
	}

	friendship.Status = status
	if err := f.db.Save(&friendship).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50113, "failed to update friend request")
		return
	}

	if status == models.FriendshipAccepted {
		f.notifier.Notify(ctx.Request.Context(), friendship.UserID, models.NotifyFriendAccepted,
			"Your friend request was accepted",
			map[string]any{"friend_id": userID})
	}
	utils.Success(ctx, friendship)
}

// List returns the caller's accepted friends.
func (f *FriendController) List(ctx *gin.Context) {
	userID := middleware.CurrentUserID(ctx)

	var friendships []models.Friendship
	if err := f.db.Where("(user_id = ? OR friend_id = ?) AND status = ?",
		userID, userID, models.FriendshipAccepted).Find(&friendships).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50114, "failed to load friends")
		return
	}

	ids := make([]uint, 0, len(friendships))
	for _, fr := range friendships {
		if fr.UserID == userID {
			ids = append(ids, fr.FriendID)
		} else {
			ids = append(ids, fr.UserID)
		}
	}

	items := []gin.H{}
	if len(ids) > 0 {
		var users []models.User
		if err := f.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50114, "failed to load friends")
			return
		}
		for _, u := range users {
			items = append(items, userResponse(u))
		}
	}
	utils.Success(ctx, gin.H{"items": items})
}

// Pending returns friend requests waiting on the caller's answer.
func (f *FriendController) Pending(ctx *gin.Context) {
	userID := middleware.CurrentUserID(ctx)

	var items []models.Friendship
	if err := f.db.Where("friend_id = ? AND status = ?", userID, models.FriendshipPending).
		Order("created_at").Find(&items).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50115, "failed to load pending requests")
		return
	}
	utils.Success(ctx, gin.H{"items": items})
}
