package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/streakmate/streakmate/middleware"
	"github.com/streakmate/streakmate/models"
	"github.com/streakmate/streakmate/utils"
)

// ClanController manages clans and the clan chat room.
type ClanController struct {
	db *gorm.DB
}

// NewClanController creates a ClanController.
func NewClanController(db *gorm.DB) *ClanController {
	return &ClanController{db: db}
}

// Create founds a new clan with the caller as leader. A user can only belong
// to one clan at a time.
func (c *ClanController) Create(ctx *gin.Context) {
	userID := middleware.CurrentUserID(ctx)

	var req struct {
		Name        string `json:"name" binding:"required,min=2,max=64"`
		Description string `json:"description"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40120, "invalid request payload")
		return
	}

	var user models.User
	if err := c.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
		return
	}
	if user.ClanID != nil {
		utils.Error(ctx, http.StatusConflict, 40907, "leave your current clan first")
		return
	}

	clan := models.Clan{
		Name:        strings.TrimSpace(req.Name),
		Description: utils.Sanitize(strings.TrimSpace(req.Description)),
		LeaderID:    userID,
	}
	err := c.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&clan).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", userID).Update("clan_id", clan.ID).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusConflict, 40908, "clan name already taken")
		return
	}
	utils.Success(ctx, clan)
}

// List returns clans with member counts, paginated.
func (c *ClanController) List(ctx *gin.Context) {
	page, pageSize := 1, 20
	if v := strings.TrimSpace(ctx.Query("page")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	if v := strings.TrimSpace(ctx.Query("page_size")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			pageSize = n
		}
	}

	var total int64
	if err := c.db.Model(&models.Clan{}).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50120, "failed to count clans")
		return
	}

	var clans []models.Clan
	if err := c.db.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&clans).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50121, "failed to load clans")
		return
	}

	items := make([]gin.H, 0, len(clans))
	for _, clan := range clans {
		var members int64
		_ = c.db.Model(&models.User{}).Where("clan_id = ?", clan.ID).Count(&members).Error
		// Clan XP is the sum of member XP, computed on read.
		var clanXP int64
		_ = c.db.Model(&models.User{}).Where("clan_id = ?", clan.ID).
			Select("COALESCE(SUM(xp),0)").Scan(&clanXP).Error
		items = append(items, gin.H{
			"id":           clan.ID,
			"name":         clan.Name,
			"description":  clan.Description,
			"leader_id":    clan.LeaderID,
			"member_count": members,
			"clan_xp":      clanXP,
			"created_at":   clan.CreatedAt,
		})
	}

	utils.Success(ctx, gin.H{
		"items": items,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	})
}

// Members returns the roster of one clan.
func (c *ClanController) Members(ctx *gin.Context) {
	id, err := parseUintParam(ctx, "id")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40121, "invalid clan id")
		return
	}

	var clan models.Clan
	if err := c.db.First(&clan, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40450, "clan not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50122, "failed to load clan")
		return
	}

	var users []models.User
	if err := c.db.Where("clan_id = ?", id).Order("xp DESC").Find(&users).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50123, "failed to load members")
		return
	}
	items := make([]gin.H, 0, len(users))
	for _, u := range users {
		items = append(items, userResponse(u))
	}
	utils.Success(ctx, gin.H{"clan": clan, "members": items})
}

// Join adds the caller to a clan.
func (c *ClanController) Join(ctx *gin.Context) {
	userID := middleware.CurrentUserID(ctx)
	id, err := parseUintParam(ctx, "id")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40121, "invalid clan id")
		return
	}

	var clan models.Clan
	if err := c.db.First(&clan, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40450, "clan not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50122, "failed to load clan")
		return
	}

	var user models.User
	if err := c.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
		return
	}
	if user.ClanID != nil {
		utils.Error(ctx, http.StatusConflict, 40907, "leave your current clan first")
		return
	}

	if err := c.db.Model(&user).Update("clan_id", clan.ID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50124, "failed to join clan")
		return
	}
	utils.Success(ctx, gin.H{"message": "joined clan", "clan_id": clan.ID})
}

// Leave removes the caller from their clan. If the leader leaves, leadership
// passes to the longest-standing remaining member; an empty clan is deleted.
func (c *ClanController) Leave(ctx *gin.Context) {
	userID := middleware.CurrentUserID(ctx)

	var user models.User
	if err := c.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
		return
	}
	if user.ClanID == nil {
		utils.Error(ctx, http.StatusBadRequest, 40122, "you are not in a clan")
		return
	}
	clanID := *user.ClanID

	err := c.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Update("clan_id", nil).Error; err != nil {
			return err
		}

		var clan models.Clan
		if err := tx.First(&clan, clanID).Error; err != nil {
			return err
		}
		if clan.LeaderID != userID {
			return nil
		}

		var successor models.User
		err := tx.Where("clan_id = ?", clanID).Order("created_at").First(&successor).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Delete(&models.Clan{}, clanID).Error
		}
		if err != nil {
			return err
		}
		return tx.Model(&clan).Update("leader_id", successor.ID).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50125, "failed to leave clan")
		return
	}
	utils.Success(ctx, gin.H{"message": "left clan"})
}
