package controllers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/streakmate/streakmate/models"
	"github.com/streakmate/streakmate/utils"
)

func parsePagination(ctx *gin.Context) (page, pageSize int) {
	page, pageSize = 1, 10
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
	return page, pageSize
}

// StatsController provides aggregate numbers for the admin dashboard.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// GetStats returns aggregate statistics for the whole system.
func (s *StatsController) GetStats(ctx *gin.Context) {
	var userCount int64
	var clanCount int64
	var activeBets int64
	var openChallenges int64
	var checkedInToday int64
	var dailyRequests int64

	if err := s.db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		// Fallback to 0 instead of failing the whole endpoint
		userCount = 0
	}
	if err := s.db.Model(&models.Clan{}).Count(&clanCount).Error; err != nil {
		clanCount = 0
	}
	if err := s.db.Model(&models.SoloBet{}).
		Where("status = ?", models.WagerActive).Count(&activeBets).Error; err != nil {
		activeBets = 0
	}
	if err := s.db.Model(&models.Challenge{}).
		Where("challenge_status IN ?", []models.ChallengeStatus{models.ChallengePending, models.ChallengeActive}).
		Count(&openChallenges).Error; err != nil {
		openChallenges = 0
	}

	// Users whose global last login falls on today's calendar day.
	dayStart := models.DayStart(time.Now().In(time.Local))
	if err := s.db.Model(&models.User{}).
		Where("last_login_date >= ?", dayStart).Count(&checkedInToday).Error; err != nil {
		checkedInToday = 0
	}

	// Use string date equality to avoid timezone/type mismatches with DATE column
	today := time.Now().In(time.Local).Format("2006-01-02")
	if err := s.db.Model(&models.DailyActivity{}).
		Where("date = ?", today).
		Select("COALESCE(SUM(count),0)").
		Scan(&dailyRequests).Error; err != nil {
		dailyRequests = 0
	}

	utils.Success(ctx, gin.H{
		"user_count":       userCount,
		"clan_count":       clanCount,
		"active_bets":      activeBets,
		"open_challenges":  openChallenges,
		"checked_in_today": checkedInToday,
		"daily_requests":   dailyRequests,
	})
}

// ListUsers returns paginated users including register IP for admin review.
func (s *StatsController) ListUsers(ctx *gin.Context) {
	var users []models.User
	var total int64

	page, pageSize := parsePagination(ctx)

	if err := s.db.Model(&models.User{}).Count(&total).Error; err != nil {
		utils.Error(ctx, 500, 50150, "failed to count users")
		return
	}
	if err := s.db.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&users).Error; err != nil {
		utils.Error(ctx, 500, 50151, "failed to retrieve users")
		return
	}

	items := make([]gin.H, 0, len(users))
	for _, u := range users {
		m := userResponseWithAdmin(u)
		m["register_ip"] = u.RegisterIP
		items = append(items, m)
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
