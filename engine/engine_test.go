package engine

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/worktally/worktally/models"
)

var testUserSeq uint64

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a single connection keeps every query on the same in-memory database
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.WorkSession{},
		&models.PointTransaction{},
		&models.HabitState{},
		&models.DayOverride{},
		&models.StreakChallenge{},
		&models.BonusGoal{},
		&models.MarketItem{},
		&models.MarketPurchase{},
	))

	return New(db, time.UTC)
}

func newTestUser(t *testing.T, e *Engine, points int) uint {
	t.Helper()
	user := models.User{
		Username:          fmt.Sprintf("user%d", atomic.AddUint64(&testUserSeq, 1)),
		RatePerHour:       50,
		GoalAmount:        1000,
		PointsBalance:     points,
		PointsPerMinute:   1,
		NotificationsMode: models.NotifyOff,
		NotificationsHour: 21,
	}
	require.NoError(t, e.db.Create(&user).Error)
	return user.ID
}

// setClock pins the engine clock to noon on the given civil date.
func setClock(t *testing.T, e *Engine, date string) {
	t.Helper()
	d, err := time.ParseInLocation("2006-01-02", date, time.UTC)
	require.NoError(t, err)
	fixed := d.Add(12 * time.Hour)
	e.Now = func() time.Time { return fixed }
}

func mustDate(t *testing.T, date string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation("2006-01-02", date, time.UTC)
	require.NoError(t, err)
	return d
}

func seedHabitState(t *testing.T, e *Engine, state models.HabitState) {
	t.Helper()
	require.NoError(t, e.db.Save(&state).Error)
}

func addSession(t *testing.T, e *Engine, userID uint, at string, seconds int) {
	t.Helper()
	created := mustDate(t, at).Add(10 * time.Hour)
	require.NoError(t, e.db.Create(&models.WorkSession{
		UserID:          userID,
		DurationSeconds: seconds,
		Source:          "test",
		CreatedAt:       created,
	}).Error)
}

func ledgerSum(t *testing.T, e *Engine, userID uint) int {
	t.Helper()
	var sum int64
	require.NoError(t, e.db.Model(&models.PointTransaction{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(delta_points), 0)").Scan(&sum).Error)
	return int(sum)
}
