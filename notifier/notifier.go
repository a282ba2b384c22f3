// Package notifier delivers periodic progress digests. A minute poller picks
// the users whose cadence matches the current wall clock, renders a short
// summary through the engine and hands it to a Sender. Delivery is at most
// once per user per matching minute, enforced through Redis with an in-memory
// fallback.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/worktally/worktally/engine"
	"github.com/worktally/worktally/models"
)

// Sender delivers one rendered digest. Implementations must be safe for
// concurrent use.
type Sender interface {
	Send(ctx context.Context, user *models.User, text string) error
}

// LogSender writes digests to the application log. The default transport
// until a chat integration is plugged in.
type LogSender struct {
	Logger *zap.SugaredLogger
}

func (s *LogSender) Send(_ context.Context, user *models.User, text string) error {
	s.Logger.Infow("progress digest", "user_id", user.ID, "username", user.Username, "text", text)
	return nil
}

// Notifier runs the polling loop.
type Notifier struct {
	db     *gorm.DB
	eng    *engine.Engine
	rdb    *redis.Client
	sender Sender
	loc    *time.Location
	log    *zap.SugaredLogger

	mu   sync.Mutex
	seen map[string]time.Time
}

// New builds a Notifier. rdb may be nil; dedupe then relies on the in-memory
// map only, which is fine for a single process.
func New(db *gorm.DB, eng *engine.Engine, rdb *redis.Client, sender Sender, loc *time.Location, log *zap.SugaredLogger) *Notifier {
	if loc == nil {
		loc = time.UTC
	}
	return &Notifier{
		db:     db,
		eng:    eng,
		rdb:    rdb,
		sender: sender,
		loc:    loc,
		log:    log,
		seen:   make(map[string]time.Time),
	}
}

// Run polls once a minute until the context is cancelled.
func (n *Notifier) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n.tick(ctx, now.In(n.loc))
		}
	}
}

// tick processes one wall-clock minute.
func (n *Notifier) tick(ctx context.Context, now time.Time) {
	if now.Minute() != 0 {
		return
	}

	var users []models.User
	if err := n.db.Where("notifications_mode <> ?", models.NotifyOff).Find(&users).Error; err != nil {
		n.log.Errorw("notifier user query failed", "error", err)
		return
	}

	for i := range users {
		user := &users[i]
		if !cadenceMatches(user, now) {
			continue
		}
		if !n.claim(ctx, user.ID, now) {
			continue
		}
		n.deliver(ctx, user)
	}
}

// cadenceMatches decides whether this hour belongs to the user's cadence.
// Weekly digests go out on Sunday.
func cadenceMatches(user *models.User, now time.Time) bool {
	switch user.NotificationsMode {
	case models.NotifyHourly:
		return true
	case models.NotifyDaily:
		return now.Hour() == user.NotificationsHour
	case models.NotifyWeekly:
		return now.Weekday() == time.Sunday && now.Hour() == user.NotificationsHour
	default:
		return false
	}
}

// claim reserves the (user, hour) slot. Redis SETNX wins across processes;
// when Redis is unreachable the in-memory map still stops duplicates from
// this process.
func (n *Notifier) claim(ctx context.Context, userID uint, now time.Time) bool {
	key := fmt.Sprintf("notify:%d:%s", userID, now.Format("2006010215"))

	n.mu.Lock()
	if _, dup := n.seen[key]; dup {
		n.mu.Unlock()
		return false
	}
	n.seen[key] = now
	n.pruneLocked(now)
	n.mu.Unlock()

	if n.rdb == nil {
		return true
	}
	rctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	ok, err := n.rdb.SetNX(rctx, key, "1", 2*time.Hour).Result()
	if err != nil {
		n.log.Warnw("notifier dedupe fell back to memory", "error", err)
		return true
	}
	return ok
}

func (n *Notifier) pruneLocked(now time.Time) {
	for key, at := range n.seen {
		if now.Sub(at) > 2*time.Hour {
			delete(n.seen, key)
		}
	}
}

func (n *Notifier) deliver(ctx context.Context, user *models.User) {
	summary, _, err := n.eng.Summarize(user.ID)
	if err != nil {
		if errors.Is(err, engine.ErrNotConfigured) {
			return
		}
		n.log.Errorw("notifier summary failed", "user_id", user.ID, "error", err)
		return
	}
	if err := n.sender.Send(ctx, user, renderDigest(summary)); err != nil {
		n.log.Errorw("notifier send failed", "user_id", user.ID, "error", err)
	}
}

// renderDigest formats the short progress text.
func renderDigest(s *engine.Summary) string {
	worked := time.Duration(s.WorkedSeconds) * time.Second
	left := time.Duration(s.LeftSeconds) * time.Second
	text := fmt.Sprintf(
		"Progress %d%%: earned %.2f of %.2f, worked %s, %s to go. Streak %d days, %s league, %d points.",
		s.ProgressPercent, s.Earned, s.GoalAmount,
		formatHours(worked), formatHours(left),
		s.StreakDays, s.LeagueName, s.PointsBalance)
	if s.Challenge != nil {
		text += fmt.Sprintf(" Challenge %d/%d days.", s.Challenge.DaysDone, s.Challenge.DaysTarget)
	}
	return text
}

func formatHours(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%02dm", h, m)
}
