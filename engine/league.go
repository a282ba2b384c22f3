package engine

import (
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/worktally/worktally/models"
)

// League tables, indexed by tier 1..10; element 0 is unused padding. Static
// configuration, not runtime-tunable.
var (
	leagueNames = []string{
		"Bronze", "Silver", "Gold", "Sapphire", "Ruby",
		"Emerald", "Amethyst", "Pearl", "Obsidian", "Diamond",
	}
	leaguePromotionMinutes = []int{0, 240, 300, 360, 420, 480, 540, 600, 660, 720, 1 << 30}
	leagueSafeMinutes      = []int{0, 0, 120, 150, 180, 210, 240, 270, 300, 330, 360}
	leaguePromotionReward  = []int{0, 0, 25, 35, 45, 55, 65, 75, 90, 110, 140}
	leagueDemotionPenalty  = []int{0, 0, 20, 30, 40, 50, 60, 70, 85, 100, 120}
)

// LeagueName returns the display name for a (clamped) tier.
func LeagueName(tier int) string {
	return leagueNames[clampTier(tier)-1]
}

func clampTier(tier int) int {
	if tier < 1 {
		return 1
	}
	if tier > len(leagueNames) {
		return len(leagueNames)
	}
	return tier
}

// scoreWeek applies one finished week's minutes to a tier. Promotion rewards
// are indexed by the new tier, demotion penalties by the old one.
func scoreWeek(tier, minutes int) (newTier, reward, penalty int) {
	tier = clampTier(tier)
	switch {
	case tier < len(leagueNames) && minutes >= leaguePromotionMinutes[tier]:
		return tier + 1, leaguePromotionReward[tier+1], 0
	case tier > 1 && minutes < leagueSafeMinutes[tier]:
		return tier - 1, 0, leagueDemotionPenalty[tier]
	default:
		return tier, 0, 0
	}
}

// rolloverLeagueTx scores every finished week between the stored anchor and
// the current week's Sunday, oldest first, then stores the new anchor. The
// in-progress week is never scored.
func (e *Engine) rolloverLeagueTx(tx *gorm.DB, state *models.HabitState) ([]string, error) {
	var events []string
	current := weekStartSunday(e.today())
	stored := e.parseDate(state.LeagueWeekStart)
	if stored.IsZero() {
		state.LeagueWeekStart = formatDate(current)
		return events, saveHabitStateTx(tx, state)
	}
	if !stored.Before(current) {
		return events, nil
	}
	if floor := addDays(current, -e.MaxCatchUpDays); stored.Before(floor) {
		stored = weekStartSunday(floor)
	}

	tier := clampTier(state.LeagueTier)
	for stored.Before(current) {
		weekStart := stored
		minutes, err := e.rangeSecondsTx(tx, state.UserID, startOfDay(weekStart), endOfDay(addDays(weekStart, 6)))
		if err != nil {
			return events, err
		}
		minutes /= 60

		before := tier
		newTier, reward, penalty := scoreWeek(tier, minutes)
		tier = newTier
		ref := TxRef{Type: "league_week", ID: weekRefID(weekStart)}
		note := fmt.Sprintf("%d min for week %s", minutes, formatDate(weekStart))

		switch {
		case tier > before:
			if reward > 0 {
				if _, err := e.applyTransactionTx(tx, state.UserID, reward,
					models.ReasonLeaguePromotion, note, ref, false); err != nil {
					return events, err
				}
			}
			events = append(events, fmt.Sprintf("League promoted: %s → %s (%d min, +%d points)",
				LeagueName(before), LeagueName(tier), minutes, reward))
		case tier < before:
			deducted, err := e.deductUpToTx(tx, state.UserID, penalty,
				models.ReasonLeagueDemotion, note, ref)
			if err != nil {
				return events, err
			}
			events = append(events, fmt.Sprintf("League demoted: %s → %s (%d min, -%d points)",
				LeagueName(before), LeagueName(tier), minutes, deducted))
		}

		stored = addDays(stored, 7)
	}

	state.LeagueTier = tier
	state.LeagueWeekStart = formatDate(current)
	return events, saveHabitStateTx(tx, state)
}

func weekRefID(weekStart time.Time) uint {
	n, _ := strconv.Atoi(weekStart.Format("20060102"))
	return uint(n)
}
