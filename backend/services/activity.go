package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"neuralnexus/backend/apperr"
	"neuralnexus/backend/models"
	"neuralnexus/backend/progress"
)

const sessionIdle = 30 * time.Minute

type ActivityInput struct {
	Action    string            `json:"action" validate:"required"`
	GoalID    *uint             `json:"goalId"`
	Metadata  progress.Metadata `json:"metadata"`
	TimeSpent int               `json:"timeSpent" validate:"gte=0"`
}

// LogActivity records a client-reported action and rewards it by the
// per-action table.
func (t *Tracker) LogActivity(ctx context.Context, userID uint, in ActivityInput) (Summary, error) {
	const op = "tracker.log_activity"
	if err := check(op, in); err != nil {
		return Summary{}, err
	}
	action, err := progress.ParseAction(in.Action)
	if err != nil {
		return Summary{}, apperr.Validation(op, "%s", err.Error())
	}

	return t.mutate(ctx, op, userID, func(c *change) error {
		c.agg.LogActivity(action, in.GoalID, in.Metadata, c.now)
		c.agg.UpdateDailyStats(action, in.TimeSpent, c.now)
		c.agg.AddExperience(progress.ExperienceFor(action))
		return t.runAchievements(ctx, c, userID)
	})
}

type TrackInput struct {
	Action   progress.Action
	GoalID   *uint
	Metadata progress.Metadata
}

// Track records a view or settings change by the tracking rule table.
func (t *Tracker) Track(ctx context.Context, userID uint, in TrackInput) (Summary, error) {
	const op = "tracker.track"
	rule, ok := progress.TrackingRuleFor(in.Action)
	if !ok {
		return Summary{}, apperr.Validation(op, "action %q is not tracked", in.Action)
	}
	return t.mutate(ctx, op, userID, func(c *change) error {
		c.agg.LogActivity(in.Action, in.GoalID, in.Metadata, c.now)
		if rule.UpdateStats {
			c.agg.UpdateDailyStats(in.Action, rule.TimeSpent, c.now)
		}
		c.agg.AddExperience(rule.Experience)
		return nil
	})
}

type SessionInput struct {
	IP        string
	UserAgent string
}

// StartSession logs session_start after 30 idle minutes and, with it, the daily
// visit bonus once per calendar day.
func (t *Tracker) StartSession(ctx context.Context, userID uint, in SessionInput) (Summary, error) {
	return t.mutate(ctx, "tracker.start_session", userID, func(c *change) error {
		agg := c.agg
		if agg.LastActivityDate != nil && c.now.Sub(*agg.LastActivityDate) <= sessionIdle {
			c.skip = true
			return nil
		}
		agg.LogActivity(progress.ActionSessionStart, nil, progress.Metadata{
			"ip":        progress.String(in.IP),
			"userAgent": progress.String(in.UserAgent),
		}, c.now)
		// the daily bonus is only paid when a session really starts
		if agg.LastLoginDate == nil || !progress.SameDay(agg.LastLoginDate.In(c.now.Location()), c.now) {
			now := c.now
			agg.LastLoginDate = &now
			agg.AddExperience(5)
		}
		return nil
	})
}

// CheckAchievements runs the rule table and persists only when something new
// was granted.
func (t *Tracker) CheckAchievements(ctx context.Context, userID uint) (Summary, error) {
	return t.mutate(ctx, "tracker.check_achievements", userID, func(c *change) error {
		if err := t.runAchievements(ctx, c, userID); err != nil {
			return err
		}
		c.skip = len(c.granted) == 0
		return nil
	})
}

// Reconcile rebuilds derived counters from the goal store and normalises the
// stored aggregate. It reports whether anything changed.
func (t *Tracker) Reconcile(ctx context.Context, userID uint) (bool, error) {
	const op = "tracker.reconcile"
	changed := false
	_, err := t.mutate(ctx, op, userID, func(c *change) error {
		completed, err := t.goals.CountByUserAndStatus(ctx, c.tx, userID, models.GoalCompleted)
		if err != nil {
			return err
		}
		agg := c.agg
		before := agg.Stats
		beforeLog, beforeDaily := len(agg.ActivityLog), len(agg.DailyStats)

		agg.Stats.TotalGoalsCompleted = int(completed)
		agg.Normalize()

		changed = agg.Stats != before || len(agg.ActivityLog) != beforeLog || len(agg.DailyStats) != beforeDaily
		if !changed {
			c.skip = true
			return nil
		}
		agg.LogActivity(progress.ActionAccountMigrated, nil, progress.Metadata{
			"previousGoalsCompleted": progress.Int(before.TotalGoalsCompleted),
			"goalsCompleted":         progress.Int(agg.Stats.TotalGoalsCompleted),
		}, c.now)
		return nil
	})
	return changed, err
}

// ReconcileAll reconciles every user and returns how many were changed.
func (t *Tracker) ReconcileAll(ctx context.Context) (int, error) {
	ids, err := t.progress.UserIDs(ctx, nil)
	if err != nil {
		return 0, asAppError("tracker.reconcile_all", err)
	}
	updated := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return updated, err
		}
		changed, err := t.Reconcile(ctx, id)
		if err != nil {
			t.log.Error("reconcile failed", zap.Uint("user_id", id), zap.Error(err))
			continue
		}
		if changed {
			updated++
		}
	}
	return updated, nil
}
