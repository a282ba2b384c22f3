package engine

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/worktally/worktally/models"
)

// TxRef ties a ledger entry to the entity that caused it.
type TxRef struct {
	Type string
	ID   uint
}

// ApplyTransaction atomically moves the balance by delta and appends one
// ledger entry. With allowNegative false a debit that would go below zero
// fails with ErrInsufficientFunds and the unchanged balance.
func (e *Engine) ApplyTransaction(userID uint, delta int, reason, note string, ref TxRef, allowNegative bool) (int, error) {
	unlock := e.locks.lock(userID)
	defer unlock()

	var balance int
	err := e.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		balance, txErr = e.applyTransactionTx(tx, userID, delta, reason, note, ref, allowNegative)
		return txErr
	})
	return balance, err
}

// applyTransactionTx is the composition point: catch-up, challenge creation
// and goal payouts all mutate the ledger through it inside their own store
// transaction.
func (e *Engine) applyTransactionTx(tx *gorm.DB, userID uint, delta int, reason, note string, ref TxRef, allowNegative bool) (int, error) {
	var user models.User
	if err := tx.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}

	newBalance := user.PointsBalance + delta
	if !allowNegative && newBalance < 0 {
		return user.PointsBalance, ErrInsufficientFunds
	}

	if err := tx.Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{"points_balance": newBalance, "updated_at": time.Now()}).Error; err != nil {
		return user.PointsBalance, err
	}

	entry := models.PointTransaction{
		UserID:      userID,
		DeltaPoints: delta,
		Reason:      reason,
		RefType:     ref.Type,
		RefID:       ref.ID,
		Note:        note,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return user.PointsBalance, err
	}
	return newBalance, nil
}

// DeductUpTo removes min(balance, desired) points. It never fails on an empty
// balance; a deduction of zero is still a valid (reported) penalty.
func (e *Engine) DeductUpTo(userID uint, desired int, reason, note string, ref TxRef) (int, error) {
	unlock := e.locks.lock(userID)
	defer unlock()

	var deducted int
	err := e.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		deducted, txErr = e.deductUpToTx(tx, userID, desired, reason, note, ref)
		return txErr
	})
	return deducted, err
}

func (e *Engine) deductUpToTx(tx *gorm.DB, userID uint, desired int, reason, note string, ref TxRef) (int, error) {
	if desired <= 0 {
		return 0, nil
	}
	var user models.User
	if err := tx.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	deducted := desired
	if user.PointsBalance < deducted {
		deducted = user.PointsBalance
	}
	if deducted <= 0 {
		return 0, nil
	}
	_, err := e.applyTransactionTx(tx, userID, -deducted, reason, note, ref, false)
	return deducted, err
}

// SessionPoints computes the reward for a confirmed session: duration times
// the per-minute rate, floored, with a minimum of one point for any non-empty
// session.
func SessionPoints(durationSeconds, pointsPerMinute int) int {
	if durationSeconds <= 0 || pointsPerMinute <= 0 {
		return 0
	}
	points := durationSeconds * pointsPerMinute / 60
	if points < 1 {
		return 1
	}
	return points
}

func (e *Engine) creditForSessionTx(tx *gorm.DB, user *models.User, sessionID uint, durationSeconds int, source string) (int, error) {
	points := SessionPoints(durationSeconds, user.PointsPerMinute)
	if points <= 0 {
		return 0, nil
	}
	_, err := e.applyTransactionTx(tx, user.ID, points, models.ReasonWorkSession, source,
		TxRef{Type: "work_session", ID: sessionID}, false)
	return points, err
}

// Balance returns the current points balance.
func (e *Engine) Balance(userID uint) (int, error) {
	var user models.User
	if err := e.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return user.PointsBalance, nil
}

// RecentTransactions lists the newest ledger entries first.
func (e *Engine) RecentTransactions(userID uint, limit int) ([]models.PointTransaction, error) {
	if limit <= 0 {
		limit = 20
	}
	var entries []models.PointTransaction
	err := e.db.Where("user_id = ?", userID).Order("id DESC").Limit(limit).Find(&entries).Error
	return entries, err
}
