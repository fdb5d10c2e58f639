package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/streakmate/streakmate/middleware"
	"github.com/streakmate/streakmate/models"
	"github.com/streakmate/streakmate/services"
	"github.com/streakmate/streakmate/utils"
)

// WagerController exposes solo bets: stake XP against your own streak.
type WagerController struct {
	db     *gorm.DB
	wagers *services.WagerService
}

// NewWagerController creates a WagerController.
func NewWagerController(db *gorm.DB, wagers *services.WagerService) *WagerController {
	return &WagerController{db: db, wagers: wagers}
}

type betRequest struct {
	Amount  int    `json:"amount" binding:"required,gt=0"`
	EndDate string `json:"end_date" binding:"required"`
}

// Create places a solo bet. The stake leaves the balance immediately.
func (w *WagerController) Create(ctx *gin.Context) {
	userID := middleware.CurrentUserID(ctx)

	var req betRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40090, "invalid request payload")
		return
	}
	endDate, err := parseBetEndDate(req.EndDate)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40091, err.Error())
		return
	}

	bet, err := w.wagers.CreateSoloBet(ctx.Request.Context(), userID, req.Amount, endDate)
	if err != nil {
		wagerErrorResponse(ctx, err)
		return
	}
	utils.Success(ctx, bet)
}

// Active returns the caller's currently running solo bets.
func (w *WagerController) Active(ctx *gin.Context) {
	userID := middleware.CurrentUserID(ctx)

	var bets []models.SoloBet
	if err := w.db.Where("user_id = ? AND status = ?", userID, models.WagerActive).
		Order("bet_end_date").Find(&bets).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50090, "failed to load bets")
		return
	}
	utils.Success(ctx, gin.H{"items": bets})
}

// History returns the caller's settled solo bets, newest first.
func (w *WagerController) History(ctx *gin.Context) {
	userID := middleware.CurrentUserID(ctx)

	var bets []models.SoloBet
	if err := w.db.Where("user_id = ? AND status <> ?", userID, models.WagerActive).
		Order("resolved_at DESC").Limit(100).Find(&bets).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50091, "failed to load bet history")
		return
	}
	utils.Success(ctx, gin.H{"items": bets})
}

// Get returns one of the caller's bets.
func (w *WagerController) Get(ctx *gin.Context) {
	userID := middleware.CurrentUserID(ctx)
	id, err := parseUintParam(ctx, "id")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40092, "invalid bet id")
		return
	}

	var bet models.SoloBet
	if err := w.db.First(&bet, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40430, "bet not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50092, "failed to load bet")
		return
	}
	if bet.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, 40303, "not your bet")
		return
	}
	utils.Success(ctx, bet)
}

func parseBetEndDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.ParseInLocation("2006-01-02", raw, time.Local); err == nil {
		// A bare date means end of that day.
		return models.DayEnd(t), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Time{}, errors.New("end_date must be YYYY-MM-DD or RFC3339")
}

// wagerErrorResponse maps engine sentinels onto the response envelope. Shared
// by the solo bet and challenge controllers.
func wagerErrorResponse(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
	case errors.Is(err, services.ErrWagerNotFound):
		utils.Error(ctx, http.StatusNotFound, 40430, "wager not found")
	case errors.Is(err, services.ErrStakeTooSmall):
		utils.Error(ctx, http.StatusBadRequest, 40093, "stake is below the minimum amount")
	case errors.Is(err, services.ErrStakeTooLarge):
		utils.Error(ctx, http.StatusBadRequest, 40094, "stake cannot exceed half your XP")
	case errors.Is(err, services.ErrBadBetWindow):
		utils.Error(ctx, http.StatusBadRequest, 40095, "end date must be in the future and within the allowed range")
	case errors.Is(err, services.ErrInsufficientXP):
		utils.Error(ctx, http.StatusBadRequest, 40096, "insufficient XP balance")
	case errors.Is(err, services.ErrDuplicateSoloBet):
		utils.Error(ctx, http.StatusConflict, 40902, "an active solo bet already exists")
	case errors.Is(err, services.ErrSelfChallenge):
		utils.Error(ctx, http.StatusBadRequest, 40097, "cannot challenge yourself")
	case errors.Is(err, services.ErrNotFriends):
		utils.Error(ctx, http.StatusForbidden, 40304, "challenges can only be sent to friends")
	case errors.Is(err, services.ErrNotParticipant):
		utils.Error(ctx, http.StatusForbidden, 40305, "you are not part of this wager")
	case errors.Is(err, services.ErrChallengeNotPending):
		utils.Error(ctx, http.StatusConflict, 40903, "challenge is not pending")
	case errors.Is(err, services.ErrWagerNotActive):
		utils.Error(ctx, http.StatusConflict, 40904, "wager is not active")
	default:
		utils.Sugar.Errorf("wager operation failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50093, "wager operation failed")
	}
}
