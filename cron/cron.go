package cron

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/meinhoongagan/medical-turns/events"
	"github.com/meinhoongagan/medical-turns/models"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	leaderKey      = "cron:turn-reminders"
	leaderTTL      = 50 * time.Second
	remindedTTL    = 2 * time.Hour
	windowStart    = 55 * time.Minute
	windowEnd      = 65 * time.Minute
	reminderBudget = 45 * time.Second
)

// TurnLister finds the reserved turns starting inside a window.
type TurnLister interface {
	ListReservedBetween(ctx context.Context, from, to time.Time) ([]models.Turn, error)
}

type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, string, error)
	Unlock(ctx context.Context, key, token string) error
}

// Reminders publishes TurnReminderDue for reserved turns starting in about one hour.
type Reminders struct {
	turns  TurnLister
	locker Locker
	events events.Publisher
	log    *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	reminded map[reminderKey]time.Time
}

// reminderKey ties a reminder to the turn's start, so a moved turn is reminded again.
type reminderKey struct {
	turnID uint
	at     int64
}

func NewReminders(turns TurnLister, locker Locker, publisher events.Publisher, log *zap.Logger) *Reminders {
	return &Reminders{
		turns:    turns,
		locker:   locker,
		events:   publisher,
		log:      log,
		now:      time.Now,
		reminded: map[reminderKey]time.Time{},
	}
}

// Start schedules the reminder job with a standard five-field cron spec.
func (r *Reminders) Start(spec string) (*cron.Cron, error) {
	cronLog := cron.PrintfLogger(zap.NewStdLog(r.log.Named("cron")))
	c := cron.New(cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)))
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), reminderBudget)
		defer cancel()
		if _, err := r.Run(ctx); err != nil {
			r.log.Error("reminder run failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add reminder job: %w", err)
	}
	c.Start()
	r.log.Info("Cron job scheduler started for turn reminders", zap.String("spec", spec))
	return c, nil
}

// Run sends the reminders due now and returns how many were published.
// Only the instance holding the leader lock does any work.
func (r *Reminders) Run(ctx context.Context) (int, error) {
	ok, token, err := r.locker.TryLock(ctx, leaderKey, leaderTTL)
	if err != nil {
		return 0, err
	}
	if !ok {
		r.log.Debug("another instance is sending reminders")
		return 0, nil
	}
	defer func() {
		if err := r.locker.Unlock(context.WithoutCancel(ctx), leaderKey, token); err != nil {
			r.log.Warn("failed to release reminder lock", zap.Error(err))
		}
	}()

	now := r.now()
	turns, err := r.turns.ListReservedBetween(ctx, now.Add(windowStart), now.Add(windowEnd))
	if err != nil {
		return 0, fmt.Errorf("list reserved turns: %w", err)
	}

	sent := 0
	for _, turn := range turns {
		key := reminderKey{turnID: turn.ID, at: turn.ScheduledAt.Unix()}
		if turn.PatientID == nil || r.seen(key, now) {
			continue
		}
		// The reminded marker is left to expire so overlapping windows skip the turn.
		first, _, err := r.locker.TryLock(ctx, fmt.Sprintf("turn:%d:%d:reminded", key.turnID, key.at), remindedTTL)
		if err != nil {
			r.log.Warn("reminder dedupe failed", zap.Uint("turn_id", turn.ID), zap.Error(err))
			continue
		}
		if first {
			r.events.Publish(ctx, events.Event{
				Type:        events.TurnReminderDue,
				TurnID:      turn.ID,
				DoctorID:    turn.DoctorID,
				PatientID:   *turn.PatientID,
				ScheduledAt: turn.ScheduledAt,
			})
			sent++
		}
		r.mark(key, now)
	}
	if sent > 0 {
		r.log.Info("turn reminders published", zap.Int("count", sent))
	}
	return sent, nil
}

// seen reports whether this process already handled the reminder. It backs the
// redis marker when the locker grants every key.
func (r *Reminders) seen(key reminderKey, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, at := range r.reminded {
		if now.Sub(at) > remindedTTL {
			delete(r.reminded, k)
		}
	}
	_, ok := r.reminded[key]
	return ok
}

func (r *Reminders) mark(key reminderKey, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reminded[key] = now
}
