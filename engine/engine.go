// Package engine implements the discipline and rewards core: the points
// ledger, work-log aggregation, the streak/league catch-up state machine,
// streak challenges and bonus goals. It owns all mutations of user state;
// transport and rendering live elsewhere.
//
// Every operation re-reads state from the store, applies its transitions in a
// single database transaction while holding a per-user lock, and writes back.
// Catch-up is idempotent and only ever advances anchors forward, so a user who
// was away for weeks gets every missed day and league week replayed in order
// on their next interaction.
package engine

import (
	"time"

	"gorm.io/gorm"
)

// DefaultMaxCatchUpDays bounds the missed-day replay loop. Anything further
// back than this is skipped wholesale; a safety bound, not a correctness rule.
const DefaultMaxCatchUpDays = 370

// Engine executes all discipline and ledger operations against the store.
type Engine struct {
	db  *gorm.DB
	loc *time.Location

	// Now is the clock source, replaceable in tests.
	Now func() time.Time

	// MaxCatchUpDays caps the catch-up replay window in civil days.
	MaxCatchUpDays int

	locks userLocks
}

// New creates an Engine working in the given timezone. All civil-date
// computations (workdays, week anchors) happen in loc.
func New(db *gorm.DB, loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{
		db:             db,
		loc:            loc,
		Now:            time.Now,
		MaxCatchUpDays: DefaultMaxCatchUpDays,
	}
}

// DB exposes the underlying handle for read-only collaborators.
func (e *Engine) DB() *gorm.DB { return e.db }
