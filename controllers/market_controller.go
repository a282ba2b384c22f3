package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/worktally/worktally/engine"
	"github.com/worktally/worktally/models"
	"github.com/worktally/worktally/utils"
)

// MarketController manages the personal reward shop: items a user defines for
// themselves and buys with earned points.
type MarketController struct {
	db  *gorm.DB
	eng *engine.Engine
}

func NewMarketController(db *gorm.DB, eng *engine.Engine) *MarketController {
	return &MarketController{db: db, eng: eng}
}

// List returns the user's items, active first, newest first within a group.
func (m *MarketController) List(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var items []models.MarketItem
	if err := m.db.Where("user_id = ?", userID).
		Order("is_active DESC, id DESC").Find(&items).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to list items")
		return
	}
	utils.Success(ctx, gin.H{"items": items})
}

// Create adds a reward item.
func (m *MarketController) Create(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	type request struct {
		Title       string `json:"title" binding:"required,max=255"`
		CostPoints  int    `json:"cost_points" binding:"required,gt=0"`
		Description string `json:"description" binding:"max=512"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40070, "invalid request payload")
		return
	}

	item := models.MarketItem{
		UserID:      userID,
		Title:       strings.TrimSpace(req.Title),
		CostPoints:  req.CostPoints,
		Description: req.Description,
		IsActive:    true,
	}
	if err := m.db.Create(&item).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50071, "failed to create item")
		return
	}
	utils.Success(ctx, item)
}

// Update changes the price, title or active flag of an item.
func (m *MarketController) Update(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	itemID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40071, "invalid item id")
		return
	}

	type request struct {
		Title       *string `json:"title"`
		CostPoints  *int    `json:"cost_points"`
		Description *string `json:"description"`
		IsActive    *bool   `json:"is_active"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40072, "invalid request payload")
		return
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			utils.Error(ctx, http.StatusBadRequest, 40073, "title cannot be empty")
			return
		}
		updates["title"] = title
	}
	if req.CostPoints != nil {
		if *req.CostPoints <= 0 {
			utils.Error(ctx, http.StatusBadRequest, 40074, "cost_points must be positive")
			return
		}
		updates["cost_points"] = *req.CostPoints
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	res := m.db.Model(&models.MarketItem{}).
		Where("id = ? AND user_id = ?", itemID, userID).Updates(updates)
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50072, "failed to update item")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40404, "item not found")
		return
	}

	var item models.MarketItem
	if err := m.db.First(&item, itemID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50073, "failed to reload item")
		return
	}
	utils.Success(ctx, item)
}

// Delete removes an item. Purchase history keeps its own snapshot.
func (m *MarketController) Delete(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	itemID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40071, "invalid item id")
		return
	}

	res := m.db.Where("id = ? AND user_id = ?", itemID, userID).Delete(&models.MarketItem{})
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50074, "failed to delete item")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40404, "item not found")
		return
	}
	utils.Success(ctx, gin.H{"deleted": true})
}

// Buy debits the ledger for an active item and records a purchase snapshot.
func (m *MarketController) Buy(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	itemID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40071, "invalid item id")
		return
	}

	var item models.MarketItem
	if err := m.db.Where("id = ? AND user_id = ? AND is_active = ?", itemID, userID, true).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40404, "item not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50075, "failed to load item")
		return
	}

	balance, err := m.eng.ApplyTransaction(userID, -item.CostPoints,
		models.ReasonMarketPurchase, item.Title,
		engine.TxRef{Type: "market_item", ID: item.ID}, false)
	if err != nil {
		engineError(ctx, err)
		return
	}

	purchase := models.MarketPurchase{
		UserID:     userID,
		ItemID:     item.ID,
		ItemTitle:  item.Title,
		CostPoints: item.CostPoints,
	}
	if err := m.db.Create(&purchase).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50076, "failed to record purchase")
		return
	}

	utils.Success(ctx, gin.H{
		"purchase":       purchase,
		"points_balance": balance,
	})
}

// Purchases lists the purchase history, newest first.
func (m *MarketController) Purchases(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	limit := 50
	if v := ctx.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	var purchases []models.MarketPurchase
	if err := m.db.Where("user_id = ?", userID).
		Order("id DESC").Limit(limit).Find(&purchases).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50077, "failed to list purchases")
		return
	}
	utils.Success(ctx, gin.H{"items": purchases})
}
