package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/streakmate/streakmate/config"
	"github.com/streakmate/streakmate/controllers"
	"github.com/streakmate/streakmate/metrics"
	"github.com/streakmate/streakmate/middleware"
	"github.com/streakmate/streakmate/services"
	"github.com/streakmate/streakmate/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, notifier services.Notifier, checkins *services.CheckInService, wagers *services.WagerService) *gin.Engine {
	// Load config and set Gin mode from configuration
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.Use(metrics.GinMiddleware())
	// Record per-route activity after each request
	r.Use(middleware.ActivityRecorder(db))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})
	r.GET("/metrics", metrics.Handler())

	authController := controllers.NewAuthController(db)
	userController := controllers.NewUserController(db, notifier)
	seasonController := controllers.NewSeasonController(db)
	checkinController := controllers.NewCheckInController(db, checkins)
	wagerController := controllers.NewWagerController(db, wagers)
	challengeController := controllers.NewChallengeController(db, wagers)
	friendController := controllers.NewFriendController(db, notifier)
	clanController := controllers.NewClanController(db)
	chatController := controllers.NewChatController(db)
	notificationController := controllers.NewNotificationController(db)
	statsController := controllers.NewStatsController(db)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/oauth/google/login", authController.OAuthRedirect)
	authGroup.GET("/oauth/google/callback", authController.OAuthCallback)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PATCH("/profile", middleware.AuthRequired(), authController.UpdateProfile)

	// Public reads
	api.GET("/users/:id", userController.GetUserPublic)
	api.GET("/user/by-username/:username", userController.GetUserPublicByUsername)
	api.GET("/leaderboard", userController.Leaderboard)
	api.GET("/seasons", seasonController.List)
	api.GET("/seasons/active", seasonController.Active)
	api.GET("/clans", clanController.List)
	api.GET("/clans/:id/members", clanController.Members)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())

	protected.POST("/seasons/:id/checkin", checkinController.CheckIn)
	protected.GET("/streaks", checkinController.MyStreaks)
	protected.GET("/rewards", checkinController.Rewards)
	protected.POST("/rewards/claim", checkinController.ClaimRewards)

	protected.POST("/bets", wagerController.Create)
	protected.GET("/bets/active", wagerController.Active)
	protected.GET("/bets/history", wagerController.History)
	protected.GET("/bets/:id", wagerController.Get)

	protected.POST("/challenges", challengeController.Send)
	protected.POST("/challenges/:id/accept", challengeController.Accept)
	protected.POST("/challenges/:id/decline", challengeController.Decline)
	protected.GET("/challenges/pending", challengeController.Pending)
	protected.GET("/challenges/active", challengeController.Active)
	protected.GET("/challenges/history", challengeController.History)

	protected.POST("/friends/request", friendController.Request)
	protected.POST("/friends/:id/accept", friendController.Accept)
	protected.POST("/friends/:id/decline", friendController.Decline)
	protected.GET("/friends", friendController.List)
	protected.GET("/friends/pending", friendController.Pending)

	protected.POST("/xp/transfer", userController.TransferXP)
	protected.GET("/xp/transfers", userController.Transfers)

	protected.POST("/clans", clanController.Create)
	protected.POST("/clans/:id/join", clanController.Join)
	protected.POST("/clans/leave", clanController.Leave)
	protected.POST("/chat", chatController.Post)
	protected.GET("/chat", chatController.List)

	protected.GET("/notifications", notificationController.List)
	protected.POST("/notifications/:id/read", notificationController.MarkRead)
	protected.POST("/notifications/read-all", notificationController.MarkAllRead)

	admin := api.Group("/admin")
	admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
	admin.GET("/stats", statsController.GetStats)
	admin.GET("/users", statsController.ListUsers)
	admin.POST("/seasons", seasonController.Create)
	admin.PATCH("/seasons/:id", seasonController.Update)
	admin.POST("/seasons/:id/deactivate", seasonController.Deactivate)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
