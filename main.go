package main

import (
	"context"
	"fmt"
	"time"

	"github.com/worktally/worktally/config"
	"github.com/worktally/worktally/engine"
	"github.com/worktally/worktally/models"
	"github.com/worktally/worktally/notifier"
	"github.com/worktally/worktally/routes"
	"github.com/worktally/worktally/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.WorkSession{},
		&models.PointTransaction{},
		&models.HabitState{},
		&models.DayOverride{},
		&models.StreakChallenge{},
		&models.BonusGoal{},
		&models.MarketItem{},
		&models.MarketPurchase{},
	)

	loc := time.FixedZone(fmt.Sprintf("UTC%+d", cfg.TZOffsetHours), cfg.TZOffsetHours*3600)
	eng := engine.New(db, loc)
	eng.MaxCatchUpDays = cfg.MaxCatchUpDays

	r := routes.SetupRouter(db, eng)

	// Background digest poller
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sender := &notifier.LogSender{Logger: utils.Sugar}
	go notifier.New(db, eng, utils.GetRedis(), sender, loc, utils.Sugar).Run(ctx)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
