package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/streakmate/streakmate/models"
	"github.com/streakmate/streakmate/utils"
)

// SeasonController manages season windows. Listing is public; mutation is
// restricted to admins by the router.
type SeasonController struct {
	db *gorm.DB
}

// NewSeasonController creates a SeasonController.
func NewSeasonController(db *gorm.DB) *SeasonController {
	return &SeasonController{db: db}
}

// List returns all seasons, newest first.
func (s *SeasonController) List(ctx *gin.Context) {
	var seasons []models.Season
	if err := s.db.Order("start_date DESC").Find(&seasons).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50080, "failed to load seasons")
		return
	}
	utils.Success(ctx, gin.H{"items": seasons})
}

// Active returns seasons whose window covers today and which are switched on.
func (s *SeasonController) Active(ctx *gin.Context) {
	now := time.Now()
	var seasons []models.Season
	if err := s.db.Where("is_active = ? AND start_date <= ? AND end_date >= ?",
		true, now, models.DayStart(now)).Order("start_date").Find(&seasons).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50081, "failed to load active seasons")
		return
	}
	utils.Success(ctx, gin.H{"items": seasons})
}

type seasonRequest struct {
	Name      string `json:"name" binding:"required,min=1,max=128"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
}

// Create adds a new season window.
func (s *SeasonController) Create(ctx *gin.Context) {
	var req seasonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40080, "invalid request payload")
		return
	}

	start, end, err := parseSeasonWindow(req.StartDate, req.EndDate)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40081, err.Error())
		return
	}

	season := models.Season{
		Name:      strings.TrimSpace(req.Name),
		StartDate: start,
		EndDate:   end,
		IsActive:  true,
	}
	if err := s.db.Create(&season).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50082, "failed to create season")
		return
	}
	utils.Success(ctx, season)
}

// Update edits a season's name or window.
func (s *SeasonController) Update(ctx *gin.Context) {
	id, err := parseUintParam(ctx, "id")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40082, "invalid season id")
		return
	}

	var season models.Season
	if err := s.db.First(&season, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40420, "season not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50083, "failed to load season")
		return
	}

	var req struct {
		Name      string `json:"name"`
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
		IsActive  *bool  `json:"is_active"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40080, "invalid request payload")
		return
	}

	if strings.TrimSpace(req.Name) != "" {
		season.Name = strings.TrimSpace(req.Name)
	}
	if req.StartDate != "" || req.EndDate != "" {
		startStr, endStr := req.StartDate, req.EndDate
		if startStr == "" {
			startStr = season.StartDate.Format("2006-01-02")
		}
		if endStr == "" {
			endStr = season.EndDate.Format("2006-01-02")
		}
		start, end, err := parseSeasonWindow(startStr, endStr)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40081, err.Error())
			return
		}
		season.StartDate, season.EndDate = start, end
	}
	if req.IsActive != nil {
		season.IsActive = *req.IsActive
	}

	if err := s.db.Save(&season).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50084, "failed to update season")
		return
	}
	utils.Success(ctx, season)
}

// Deactivate switches a season off without touching its window or streaks.
func (s *SeasonController) Deactivate(ctx *gin.Context) {
	id, err := parseUintParam(ctx, "id")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40082, "invalid season id")
		return
	}

	res := s.db.Model(&models.Season{}).Where("id = ?", id).Update("is_active", false)
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50085, "failed to deactivate season")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40420, "season not found")
		return
	}
	utils.Success(ctx, gin.H{"message": "season deactivated"})
}

func parseSeasonWindow(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(startStr), time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("start_date must be YYYY-MM-DD")
	}
	end, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(endStr), time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("end_date must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, errors.New("end_date must not be before start_date")
	}
	return start, end, nil
}
