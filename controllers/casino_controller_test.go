package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/worktally/worktally/engine"
	"github.com/worktally/worktally/middleware"
	"github.com/worktally/worktally/models"
)

func TestDecodeReel(t *testing.T) {
	cases := []struct {
		value   int
		outcome string
	}{
		{64, "jackpot"},
		{1, "triple"},  // 0,0,0
		{22, "triple"}, // 1,1,1
		{2, "pair"},    // 1,0,0
		{37, "lose"},   // 0,1,2
	}
	for _, tc := range cases {
		_, outcome := decodeReel(tc.value)
		assert.Equal(t, tc.outcome, outcome, "value %d", tc.value)
	}
}

func TestCasinoPayoutTable(t *testing.T) {
	assert.Equal(t, 100, casinoPayout("jackpot"))
	assert.Equal(t, 28, casinoPayout("triple"))
	assert.Equal(t, 10, casinoPayout("pair"))
	assert.Equal(t, 0, casinoPayout("lose"))
}

func newCasinoRig(t *testing.T, points, draw int) (*gin.Engine, *engine.Engine, uint) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.WorkSession{}, &models.PointTransaction{},
		&models.HabitState{}, &models.DayOverride{},
	))

	user := models.User{Username: "gambler", PointsBalance: points, PointsPerMinute: 1}
	require.NoError(t, db.Create(&user).Error)

	eng := engine.New(db, time.UTC)
	c := NewCasinoController(eng)
	c.draw = func() int { return draw }

	r := gin.New()
	r.POST("/spin", func(ctx *gin.Context) {
		ctx.Set(middleware.ContextUserIDKey, user.ID)
		c.Spin(ctx)
	})
	return r, eng, user.ID
}

func spin(t *testing.T, r *gin.Engine) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/spin", nil)
	r.ServeHTTP(w, req)

	var body struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body.Data
}

func TestSpinJackpotPaysAndGrantsFreeze(t *testing.T) {
	r, eng, userID := newCasinoRig(t, 100, 64)

	w, data := spin(t, r)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jackpot", data["outcome"])
	assert.EqualValues(t, 190, data["points_balance"]) // 100 - 10 + 100
	assert.EqualValues(t, 2, data["streak_freezes"])   // 1 from the fresh state plus the bonus

	balance, err := eng.Balance(userID)
	require.NoError(t, err)
	assert.Equal(t, 190, balance)
}

func TestSpinLoseDebitsFee(t *testing.T) {
	r, eng, userID := newCasinoRig(t, 100, 37)

	w, data := spin(t, r)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "lose", data["outcome"])
	assert.EqualValues(t, 90, data["points_balance"])

	balance, err := eng.Balance(userID)
	require.NoError(t, err)
	assert.Equal(t, 90, balance)
}

func TestSpinRefusedWhenBroke(t *testing.T) {
	r, eng, userID := newCasinoRig(t, 5, 64)

	w, _ := spin(t, r)
	assert.Equal(t, http.StatusConflict, w.Code)

	balance, err := eng.Balance(userID)
	require.NoError(t, err)
	assert.Equal(t, 5, balance)
}
