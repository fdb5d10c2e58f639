package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/streakmate/streakmate/middleware"
	"github.com/streakmate/streakmate/models"
	"github.com/streakmate/streakmate/services"
	"github.com/streakmate/streakmate/utils"
)

// ChallengeController exposes friend challenges: both sides stake the same
// amount, the first streak to break loses.
type ChallengeController struct {
	db     *gorm.DB
	wagers *services.WagerService
}

// NewChallengeController creates a ChallengeController.
func NewChallengeController(db *gorm.DB, wagers *services.WagerService) *ChallengeController {
	return &ChallengeController{db: db, wagers: wagers}
}

// Send creates a pending challenge against a friend. No XP moves until the
// opponent accepts.
func (c *ChallengeController) Send(ctx *gin.Context) {
	userID := middleware.CurrentUserID(ctx)

	var req struct {
		OpponentID uint   `json:"opponent_id" binding:"required"`
		Amount     int    `json:"amount" binding:"required,gt=0"`
		EndDate    string `json:"end_date" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40100, "invalid request payload")
		return
	}
	endDate, err := parseBetEndDate(req.EndDate)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40091, err.Error())
		return
	}

	ch, err := c.wagers.SendChallenge(ctx.Request.Context(), userID, req.OpponentID, req.Amount, endDate)
	if err != nil {
		wagerErrorResponse(ctx, err)
		return
	}
	utils.Success(ctx, ch)
}

// Accept activates a pending challenge; both stakes are debited here.
func (c *ChallengeController) Accept(ctx *gin.Context) {
	userID := middleware.CurrentUserID(ctx)
	id, err := parseUintParam(ctx, "id")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40101, "invalid challenge id")
		return
	}

	ch, err := c.wagers.AcceptChallenge(ctx.Request.Context(), id, userID)
	if err != nil {
		wagerErrorResponse(ctx, err)
		return
	}
	utils.Success(ctx, ch)
}

// Decline rejects a pending challenge without moving XP.
func (c *ChallengeController) Decline(ctx *gin.Context) {
	userID := middleware.CurrentUserID(ctx)
	id, err := parseUintParam(ctx, "id")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40101, "invalid challenge id")
		return
	}

	ch, err := c.wagers.DeclineChallenge(ctx.Request.Context(), id, userID)
	if err != nil {
		wagerErrorResponse(ctx, err)
		return
	}
	utils.Success(ctx, ch)
}

// Pending lists challenges waiting on the caller's answer.
func (c *ChallengeController) Pending(ctx *gin.Context) {
	userID := middleware.CurrentUserID(ctx)

	var items []models.Challenge
	if err := c.db.Where("opponent_id = ? AND challenge_status = ?", userID, models.ChallengePending).
		Order("created_at").Find(&items).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50100, "failed to load pending challenges")
		return
	}
	utils.Success(ctx, gin.H{"items": items})
}

// Active lists running challenges the caller is part of, either side.
func (c *ChallengeController) Active(ctx *gin.Context) {
	userID := middleware.CurrentUserID(ctx)

	var items []models.Challenge
	if err := c.db.Where("(user_id = ? OR opponent_id = ?) AND challenge_status = ?",
		userID, userID, models.ChallengeActive).
		Order("bet_end_date").Find(&items).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50101, "failed to load active challenges")
		return
	}
	utils.Success(ctx, gin.H{"items": items})
}

// History lists the caller's finished challenges, newest first.
func (c *ChallengeController) History(ctx *gin.Context) {
	userID := middleware.CurrentUserID(ctx)

	var items []models.Challenge
	if err := c.db.Where("(user_id = ? OR opponent_id = ?) AND challenge_status IN ?",
		userID, userID, []models.ChallengeStatus{models.ChallengeCompleted, models.ChallengeDeclined}).
		Order("updated_at DESC").Limit(100).Find(&items).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50102, "failed to load challenge history")
		return
	}
	utils.Success(ctx, gin.H{"items": items})
}
