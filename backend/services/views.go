package services

import (
	"context"
	"time"

	"neuralnexus/backend/apperr"
	"neuralnexus/backend/models"
	"neuralnexus/backend/progress"
	"neuralnexus/backend/store"
)

const (
	recentGoalsLimit  = 5
	deadlineWindow    = 7 * 24 * time.Hour
	defaultStatsDays  = 30
	defaultPageLimit  = 50
	maxPageLimit      = 200
	leaderboardLimit  = 50
	maxLeaderboardLen = 100
)

func (t *Tracker) load(ctx context.Context, op string, userID uint) (*progress.Aggregate, error) {
	agg, _, err := t.progress.Load(ctx, nil, userID)
	if err != nil {
		return nil, asAppError(op, err)
	}
	agg.Normalize()
	return agg, nil
}

func (t *Tracker) Profile(ctx context.Context, userID uint) (*models.Profile, error) {
	const op = "tracker.profile"
	user, err := t.users.FindByID(ctx, nil, userID)
	if err != nil {
		return nil, asAppError(op, err)
	}
	agg, err := t.load(ctx, op, userID)
	if err != nil {
		return nil, err
	}
	counts, err := t.goals.StatusCounts(ctx, nil, userID)
	if err != nil {
		return nil, asAppError(op, err)
	}
	return &models.Profile{
		User:        *user,
		Stats:       agg.Stats,
		Preferences: agg.Preferences,
		GoalCounts:  counts,
		LastLogin:   agg.LastLoginDate,
	}, nil
}

func (t *Tracker) Dashboard(ctx context.Context, userID uint) (*models.Dashboard, error) {
	const op = "tracker.dashboard"
	agg, err := t.load(ctx, op, userID)
	if err != nil {
		return nil, err
	}
	recent, _, err := t.goals.List(ctx, nil, userID, store.GoalFilter{SortBy: "newest", Limit: recentGoalsLimit})
	if err != nil {
		return nil, asAppError(op, err)
	}
	for i := range recent {
		recent[i] = recent[i].Summary()
	}
	cats, err := t.goals.CategoryStats(ctx, nil, userID)
	if err != nil {
		return nil, asAppError(op, err)
	}
	counts, err := t.goals.StatusCounts(ctx, nil, userID)
	if err != nil {
		return nil, asAppError(op, err)
	}
	deadlines, err := t.goals.UpcomingDeadlines(ctx, nil, userID, t.clock(), deadlineWindow)
	if err != nil {
		return nil, asAppError(op, err)
	}
	if len(deadlines) > recentGoalsLimit {
		deadlines = deadlines[:recentGoalsLimit]
	}
	for i := range deadlines {
		deadlines[i] = deadlines[i].Summary()
	}

	achievements := agg.RecentAchievements()
	if len(achievements) > recentGoalsLimit {
		achievements = achievements[:recentGoalsLimit]
	}
	if cats == nil {
		cats = []models.CategoryStat{}
	}
	return &models.Dashboard{
		RecentGoals:        recent,
		CategoryStats:      cats,
		StatusStats:        counts,
		UpcomingDeadlines:  deadlines,
		Stats:              agg.Stats,
		RecentAchievements: achievements,
	}, nil
}

// Progress computes the progress overview. Weeks start on Sunday.
func (t *Tracker) Progress(ctx context.Context, userID uint) (*models.ProgressOverview, error) {
	const op = "tracker.progress"
	agg, err := t.load(ctx, op, userID)
	if err != nil {
		return nil, err
	}
	now := t.clock()
	today := progress.Day(now)
	weekStart := today.AddDate(0, 0, -int(today.Weekday()))
	weekEnd := weekStart.AddDate(0, 0, 7)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)

	weekDone, err := t.goals.CountCompletedBetween(ctx, nil, userID, weekStart, weekEnd)
	if err != nil {
		return nil, asAppError(op, err)
	}
	weekCreated, err := t.goals.CountCreatedBetween(ctx, nil, userID, weekStart, weekEnd)
	if err != nil {
		return nil, asAppError(op, err)
	}
	monthDone, err := t.goals.CountCompletedBetween(ctx, nil, userID, monthStart, monthEnd)
	if err != nil {
		return nil, asAppError(op, err)
	}
	monthCreated, err := t.goals.CountCreatedBetween(ctx, nil, userID, monthStart, monthEnd)
	if err != nil {
		return nil, asAppError(op, err)
	}
	logins, err := t.users.CountLoginsSince(ctx, nil, userID, monthStart)
	if err != nil {
		return nil, asAppError(op, err)
	}

	weekly := 0
	if weekCreated > 0 {
		weekly = int((weekDone*100 + weekCreated/2) / weekCreated)
	}
	return &models.ProgressOverview{
		StreakDays:            agg.Streak(now),
		LongestStreak:         agg.Stats.LongestStreak,
		Level:                 agg.Stats.Level,
		Experience:            agg.Stats.Experience,
		ExperienceToNextLevel: agg.ExperienceToNextLevel(),
		LevelProgress:         agg.LevelProgress(),
		WeeklyProgress:        weekly,
		MonthlyGoals:          models.MonthlyGoals{Completed: monthDone, Total: monthCreated},
		TotalGoalsCompleted:   agg.Stats.TotalGoalsCompleted,
		TotalLearningTime:     agg.Stats.TotalLearningTime,
		LoginsThisMonth:       logins,
	}, nil
}

func (t *Tracker) Activity(ctx context.Context, userID uint, limit, offset int) (*models.ActivityPage, error) {
	agg, err := t.load(ctx, "tracker.activity", userID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	now := t.clock()
	total := len(agg.ActivityLog)
	return &models.ActivityPage{
		Activities: agg.RecentActivity(limit, offset),
		Today:      agg.ActivitiesOn(now),
		ThisWeek:   agg.ActivitiesSince(now.Add(-7 * 24 * time.Hour)),
		Total:      total,
		Limit:      limit,
		Offset:     offset,
		HasMore:    total > offset+limit,
	}, nil
}

// Achievements grants anything newly earned and lists all badges newest first.
func (t *Tracker) Achievements(ctx context.Context, userID uint) ([]progress.Achievement, []string, error) {
	sum, err := t.CheckAchievements(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	agg, err := t.load(ctx, "tracker.achievements", userID)
	if err != nil {
		return nil, nil, err
	}
	return agg.RecentAchievements(), sum.NewAchievements, nil
}

func (t *Tracker) DailyStats(ctx context.Context, userID uint, days int) (*models.DailyStatsReport, error) {
	agg, err := t.load(ctx, "tracker.daily_stats", userID)
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		days = defaultStatsDays
	}
	if days > progress.MaxDailyStats {
		days = progress.MaxDailyStats
	}
	cutoff := progress.Day(t.clock()).AddDate(0, 0, -days)
	stats, totals := agg.StatsSince(cutoff)
	return &models.DailyStatsReport{Days: days, Stats: stats, Totals: totals}, nil
}

func (t *Tracker) Leaderboard(ctx context.Context, by store.LeaderboardOrder, limit int) ([]models.LeaderboardEntry, error) {
	const op = "tracker.leaderboard"
	if by == "" {
		by = store.ByLevel
	}
	if !by.Valid() {
		return nil, apperr.Validation(op, "unknown leaderboard order %q", by)
	}
	if limit <= 0 {
		limit = leaderboardLimit
	}
	if limit > maxLeaderboardLen {
		limit = maxLeaderboardLen
	}
	rows, err := t.progress.Leaderboard(ctx, nil, by, limit)
	if err != nil {
		return nil, asAppError(op, err)
	}
	if rows == nil {
		rows = []models.LeaderboardEntry{}
	}
	return rows, nil
}
