package main

import (
	"time"

	"github.com/streakmate/streakmate/config"
	"github.com/streakmate/streakmate/models"
	"github.com/streakmate/streakmate/repository"
	"github.com/streakmate/streakmate/routes"
	"github.com/streakmate/streakmate/services"
	"github.com/streakmate/streakmate/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Season{},
		&models.SeasonStreak{},
		&models.UnclaimedReward{},
		&models.SoloBet{},
		&models.Challenge{},
		&models.Friendship{},
		&models.Clan{},
		&models.ChatMessage{},
		&models.Notification{},
		&models.XPTransfer{},
		&models.DailyActivity{},
	)

	store := repository.NewGormStore(db)
	notifier := repository.NewGormNotifier(db)
	wagers := services.NewWagerService(store, notifier, services.WagerRules{
		MinAmount:  cfg.MinBetAmount,
		Multiplier: cfg.BetMultiplier,
		MaxDays:    cfg.MaxBetDays,
	})
	checkins := services.NewCheckInService(store, wagers, services.RewardRules{
		ThreeDayXP: cfg.MilestoneThreeDayXP,
		FiveDayXP:  cfg.MilestoneFiveDayXP,
		TenDayXP:   cfg.MilestoneTenDayXP,
	})

	r := routes.SetupRouter(db, notifier, checkins, wagers)

	// Settle expired wagers in the background (best-effort)
	utils.StartWagerSweeper(time.Duration(cfg.SweepIntervalSec)*time.Second, wagers)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.Serve(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
