package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/streakmate/streakmate/metrics"
	"github.com/streakmate/streakmate/middleware"
	"github.com/streakmate/streakmate/models"
	"github.com/streakmate/streakmate/services"
	"github.com/streakmate/streakmate/utils"
)

// CheckInController exposes the daily check-in flow and milestone rewards.
type CheckInController struct {
	db       *gorm.DB
	checkins *services.CheckInService
}

// NewCheckInController creates a CheckInController.
func NewCheckInController(db *gorm.DB, checkins *services.CheckInService) *CheckInController {
	return &CheckInController{db: db, checkins: checkins}
}

// CheckIn records today's activity against a season. An optional date field
// (YYYY-MM-DD) backfills or replays a specific day, mostly for clients in
// other timezones.
func (c *CheckInController) CheckIn(ctx *gin.Context) {
	userID := middleware.CurrentUserID(ctx)

	seasonID, err := parseUintParam(ctx, "id")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40070, "invalid season id")
		return
	}

	var req struct {
		Date string `json:"date"`
	}
	// Body is optional; a bare POST checks in for now.
	_ = ctx.ShouldBindJSON(&req)

	var at *time.Time
	if strings.TrimSpace(req.Date) != "" {
		t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(req.Date), time.Local)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40071, "date must be YYYY-MM-DD")
			return
		}
		at = &t
	}

	res, err := c.checkins.CheckIn(ctx.Request.Context(), userID, seasonID, at)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSeasonNotFound):
			utils.Error(ctx, http.StatusNotFound, 40420, "season not found")
		case errors.Is(err, services.ErrUserNotFound):
			utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
		case errors.Is(err, services.ErrSeasonClosed):
			utils.Error(ctx, http.StatusUnprocessableEntity, 42201, "season is not open on that date")
		default:
			utils.Sugar.Errorf("check-in failed user=%d season=%d: %v", userID, seasonID, err)
			utils.Error(ctx, http.StatusInternalServerError, 50070, "check-in failed")
		}
		return
	}

	metrics.CheckIns.WithLabelValues(string(res.Status)).Inc()
	utils.Success(ctx, res)
}

// MyStreaks returns the caller's per-season streaks plus the overall streak.
func (c *CheckInController) MyStreaks(ctx *gin.Context) {
	userID := middleware.CurrentUserID(ctx)

	var user models.User
	if err := c.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
		return
	}

	var streaks []models.SeasonStreak
	if err := c.db.Where("user_id = ?", userID).Order("season_id").Find(&streaks).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50071, "failed to load streaks")
		return
	}

	utils.Success(ctx, gin.H{
		"overall_streak":  user.OverallStreak,
		"last_login_date": user.LastLoginDate,
		"seasons":         streaks,
	})
}

// Rewards lists queued milestone rewards that have not been claimed yet.
func (c *CheckInController) Rewards(ctx *gin.Context) {
	userID := middleware.CurrentUserID(ctx)

	var rewards []models.UnclaimedReward
	if err := c.db.Where("user_id = ?", userID).Order("date").Find(&rewards).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50072, "failed to load rewards")
		return
	}

	total := 0
	for _, r := range rewards {
		total += r.XP
	}
	utils.Success(ctx, gin.H{"items": rewards, "total_xp": total})
}

// ClaimRewards credits all queued rewards to the caller's XP balance and
// clears the queue in one transaction.
func (c *CheckInController) ClaimRewards(ctx *gin.Context) {
	userID := middleware.CurrentUserID(ctx)

	claimed, err := c.checkins.ClaimRewards(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
			return
		}
		utils.Sugar.Errorf("claim rewards failed user=%d: %v", userID, err)
		utils.Error(ctx, http.StatusInternalServerError, 50073, "failed to claim rewards")
		return
	}

	if claimed > 0 {
		metrics.XPGranted.Add(float64(claimed))
	}
	utils.Success(ctx, gin.H{"claimed_xp": claimed})
}

func parseUintParam(ctx *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(ctx.Param(name)), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(v), nil
}
