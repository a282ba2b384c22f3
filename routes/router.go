package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/worktally/worktally/config"
	"github.com/worktally/worktally/controllers"
	"github.com/worktally/worktally/engine"
	"github.com/worktally/worktally/middleware"
	"github.com/worktally/worktally/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, eng *engine.Engine) *gin.Engine {
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
	r.Use(middleware.RequestID())
	// Replace default console logger with zap based access logging
	gl, err := utils.NewRollingFileLogger(cfg.LogPath, cfg.LogLevel,
		cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
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
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}

	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	profileController := controllers.NewProfileController(db, eng)
	sessionController := controllers.NewSessionController(eng)
	disciplineController := controllers.NewDisciplineController(eng)
	challengeController := controllers.NewChallengeController(eng)
	goalController := controllers.NewGoalController(db, eng)
	marketController := controllers.NewMarketController(db, eng)
	casinoController := controllers.NewCasinoController(eng)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())

	protected.PUT("/profile", profileController.Setup)
	protected.PATCH("/profile/rate", profileController.UpdateRate)
	protected.PATCH("/profile/goal", profileController.UpdateGoal)
	protected.PATCH("/profile/points-rate", profileController.UpdatePointsRate)
	protected.PATCH("/profile/notifications", profileController.UpdateNotifications)
	protected.GET("/points/history", profileController.PointsHistory)

	protected.POST("/sessions", sessionController.Create)
	protected.GET("/sessions", sessionController.List)
	protected.GET("/sessions/daily", sessionController.Daily)
	protected.DELETE("/sessions", sessionController.Reset)
	protected.GET("/summary", sessionController.Summary)

	protected.GET("/discipline", disciplineController.Status)
	protected.POST("/discipline/weekdays/:idx/toggle", disciplineController.ToggleWeekday)
	protected.POST("/discipline/days/toggle", disciplineController.ToggleDay)
	protected.POST("/discipline/freeze/buy", disciplineController.BuyFreeze)

	protected.GET("/challenges/offers", challengeController.Offers)
	protected.POST("/challenges", challengeController.Create)
	protected.GET("/challenges/active", challengeController.Active)
	protected.POST("/challenges/active/surrender", challengeController.Surrender)

	protected.GET("/goals", goalController.List)
	protected.POST("/goals", goalController.Create)
	protected.DELETE("/goals/:id", goalController.Delete)

	protected.GET("/market/items", marketController.List)
	protected.POST("/market/items", marketController.Create)
	protected.PATCH("/market/items/:id", marketController.Update)
	protected.DELETE("/market/items/:id", marketController.Delete)
	protected.POST("/market/items/:id/buy", marketController.Buy)
	protected.GET("/market/purchases", marketController.Purchases)

	protected.GET("/casino", casinoController.Info)
	protected.POST("/casino/spin", casinoController.Spin)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
