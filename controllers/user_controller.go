package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/streakmate/streakmate/middleware"
	"github.com/streakmate/streakmate/models"
	"github.com/streakmate/streakmate/services"
	"github.com/streakmate/streakmate/utils"
)

// UserController serves public profiles, the XP leaderboard and peer transfers.
type UserController struct {
	db       *gorm.DB
	notifier services.Notifier
}

// NewUserController creates a UserController.
func NewUserController(db *gorm.DB, notifier services.Notifier) *UserController {
	return &UserController{db: db, notifier: notifier}
}

// GetUserPublic returns public user info by ID
func (u *UserController) GetUserPublic(ctx *gin.Context) {
	idStr := strings.TrimSpace(ctx.Param("id"))
	if idStr == "" {
		utils.Error(ctx, http.StatusBadRequest, 40050, "missing user id")
		return
	}
	// try cache first
	if b, ok := utils.CacheGetBytes("cache:user:public:" + idStr); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}
	var user models.User
	if err := u.db.First(&user, idStr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to get user")
		return
	}
	payload := userResponse(user)
	utils.CacheSetJSON("cache:user:public:"+idStr, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, time.Hour)
	utils.Success(ctx, payload)
}

// GetUserPublicByUsername returns public user info by username
func (u *UserController) GetUserPublicByUsername(ctx *gin.Context) {
	uname := strings.TrimSpace(ctx.Param("username"))
	if uname == "" {
		utils.Error(ctx, http.StatusBadRequest, 40051, "missing username")
		return
	}
	if b, ok := utils.CacheGetBytes("cache:user:public:uname:" + uname); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}
	var user models.User
	if err := u.db.Where("username = ?", uname).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40411, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to get user")
		return
	}
	payload := userResponse(user)
	utils.CacheSetJSON("cache:user:public:uname:"+uname, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, time.Hour)
	utils.Success(ctx, payload)
}

// Leaderboard returns the top users ranked by XP, cached briefly.
func (u *UserController) Leaderboard(ctx *gin.Context) {
	limit := 20
	if v := strings.TrimSpace(ctx.Query("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	cacheKey := "cache:leaderboard:" + strconv.Itoa(limit)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var users []models.User
	if err := u.db.Order("xp DESC, overall_streak DESC, id ASC").Limit(limit).Find(&users).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to load leaderboard")
		return
	}

	items := make([]gin.H, 0, len(users))
	for i, user := range users {
		entry := userResponse(user)
		entry["rank"] = i + 1
		items = append(items, entry)
	}
	payload := gin.H{"items": items}
	utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, time.Minute)
	utils.Success(ctx, payload)
}

// TransferXP moves XP from the caller to a friend. Both rows are locked in
// ascending ID order inside one transaction so concurrent transfers between
// the same pair cannot deadlock or double-spend.
func (u *UserController) TransferXP(ctx *gin.Context) {
	fromID := middleware.CurrentUserID(ctx)

	var req struct {
		ToUserID uint   `json:"to_user_id" binding:"required"`
		Amount   int    `json:"amount" binding:"required,gt=0"`
		Note     string `json:"note"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid request payload")
		return
	}
	if req.ToUserID == fromID {
		utils.Error(ctx, http.StatusBadRequest, 40061, "cannot transfer XP to yourself")
		return
	}

	var friendship models.Friendship
	err := u.db.Where(
		"((user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)) AND status = ?",
		fromID, req.ToUserID, req.ToUserID, fromID, models.FriendshipAccepted,
	).First(&friendship).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusForbidden, 40302, "XP can only be sent to friends")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to check friendship")
		return
	}

	err = u.db.Transaction(func(tx *gorm.DB) error {
		var users []models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ?", []uint{fromID, req.ToUserID}).
			Order("id").Find(&users).Error; err != nil {
			return err
		}
		if len(users) != 2 {
			return gorm.ErrRecordNotFound
		}
		var sender, receiver *models.User
		for i := range users {
			if users[i].ID == fromID {
				sender = &users[i]
			} else {
				receiver = &users[i]
			}
		}
		if sender.XP < req.Amount {
			return services.ErrInsufficientXP
		}
		sender.XP -= req.Amount
		receiver.XP += req.Amount
		if err := tx.Save(sender).Error; err != nil {
			return err
		}
		if err := tx.Save(receiver).Error; err != nil {
			return err
		}
		return tx.Create(&models.XPTransfer{
			FromUserID: fromID,
			ToUserID:   req.ToUserID,
			Amount:     req.Amount,
			Note:       utils.Sanitize(strings.TrimSpace(req.Note)),
		}).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInsufficientXP):
			utils.Error(ctx, http.StatusBadRequest, 40062, "insufficient XP balance")
		case errors.Is(err, gorm.ErrRecordNotFound):
			utils.Error(ctx, http.StatusNotFound, 40412, "user not found")
		default:
			utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to transfer XP")
		}
		return
	}

	u.notifier.Notify(ctx.Request.Context(), req.ToUserID, models.NotifyXPReceived,
		"You received XP from a friend",
		map[string]any{"from_user_id": fromID, "amount": req.Amount})

	utils.InvalidateByPrefix("cache:leaderboard:")
	utils.Success(ctx, gin.H{"message": "transfer complete", "amount": req.Amount})
}

// Transfers lists XP transfers the caller sent or received.
func (u *UserController) Transfers(ctx *gin.Context) {
	userID := middleware.CurrentUserID(ctx)

	var items []models.XPTransfer
	if err := u.db.Where("from_user_id = ? OR to_user_id = ?", userID, userID).
		Order("created_at DESC").Limit(100).Find(&items).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to load transfers")
		return
	}
	utils.Success(ctx, gin.H{"items": items})
}
