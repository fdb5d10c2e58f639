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

// ChatController serves the clan chat room. Only members of a clan can read
// or post to it.
type ChatController struct {
	db *gorm.DB
}

// NewChatController creates a ChatController.
func NewChatController(db *gorm.DB) *ChatController {
	return &ChatController{db: db}
}

// Post writes a message to the caller's clan chat. Content is sanitized
// before storage so stored markup can never reach other clients unescaped.
func (c *ChatController) Post(ctx *gin.Context) {
	userID := middleware.CurrentUserID(ctx)

	var req struct {
		Content string `json:"content" binding:"required,min=1"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40130, "invalid request payload")
		return
	}

	clanID, ok := c.memberClan(ctx, userID)
	if !ok {
		return
	}

	content := utils.Sanitize(strings.TrimSpace(req.Content))
	if content == "" {
		utils.Error(ctx, http.StatusBadRequest, 40131, "message is empty after sanitization")
		return
	}
	if rs := []rune(content); len(rs) > 1000 {
		content = string(rs[:1000])
	}

	msg := models.ChatMessage{
		ClanID:  clanID,
		UserID:  userID,
		Content: content,
	}
	if err := c.db.Create(&msg).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50130, "failed to post message")
		return
	}
	utils.Success(ctx, msg)
}

// List returns the caller's clan chat, newest first, with before-id paging.
func (c *ChatController) List(ctx *gin.Context) {
	userID := middleware.CurrentUserID(ctx)

	clanID, ok := c.memberClan(ctx, userID)
	if !ok {
		return
	}

	limit := 50
	if v := strings.TrimSpace(ctx.Query("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	q := c.db.Where("clan_id = ?", clanID)
	if v := strings.TrimSpace(ctx.Query("before_id")); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			q = q.Where("id < ?", uint(n))
		}
	}

	var msgs []models.ChatMessage
	if err := q.Preload("User").Order("id DESC").Limit(limit).Find(&msgs).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50131, "failed to load messages")
		return
	}

	items := make([]gin.H, 0, len(msgs))
	for _, m := range msgs {
		items = append(items, gin.H{
			"id":         m.ID,
			"content":    m.Content,
			"created_at": m.CreatedAt,
			"author": gin.H{
				"id":         m.User.ID,
				"username":   m.User.Username,
				"avatar_url": m.User.AvatarURL,
			},
		})
	}
	utils.Success(ctx, gin.H{"items": items})
}

// memberClan resolves the caller's clan, writing the error response itself
// when the user is not in one.
func (c *ChatController) memberClan(ctx *gin.Context, userID uint) (uint, bool) {
	var user models.User
	if err := c.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
		return 0, false
	}
	if user.ClanID == nil {
		utils.Error(ctx, http.StatusForbidden, 40307, "join a clan to use chat")
		return 0, false
	}
	return *user.ClanID, true
}
