// Package progress holds the per-user gamification aggregate: the activity log,
// experience and levels, streaks, achievements and daily statistics.
//
// The aggregate is a plain value. Callers load it, mutate it in memory through the
// methods in this package and persist it as a whole.
package progress

import "time"

const (
	// MaxActivityEntries bounds the activity log; the oldest entries are evicted first.
	MaxActivityEntries = 1000
	// MaxDailyStats bounds the daily statistics window.
	MaxDailyStats = 90
)

type Stats struct {
	Level               int `json:"level"`
	Experience          int `json:"experience"`
	TotalGoalsCompleted int `json:"totalGoalsCompleted"`
	TotalLearningTime   int `json:"totalLearningTime"` // minutes
	LongestStreak       int `json:"longestStreak"`
	CurrentStreak       int `json:"currentStreak"`
}

type Preferences struct {
	EmailNotifications       bool `json:"emailNotifications"`
	WeeklyReports            bool `json:"weeklyReports"`
	AchievementNotifications bool `json:"achievementNotifications"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		EmailNotifications:       true,
		WeeklyReports:            true,
		AchievementNotifications: true,
	}
}

// Aggregate is the single per-user progress document.
type Aggregate struct {
	Stats            Stats           `json:"progressStats"`
	ActivityLog      []ActivityEntry `json:"activityLog"`
	Achievements     []Achievement   `json:"achievements"`
	DailyStats       []DailyStat     `json:"dailyStats"`
	LastLoginDate    *time.Time      `json:"lastLoginDate,omitempty"`
	LastActivityDate *time.Time      `json:"lastActivityDate,omitempty"`
	Preferences      Preferences     `json:"preferences"`
}

// NewAggregate returns the zero-valued aggregate created at registration.
func NewAggregate() *Aggregate {
	return &Aggregate{
		Stats:        Stats{Level: 1},
		ActivityLog:  []ActivityEntry{},
		Achievements: []Achievement{},
		DailyStats:   []DailyStat{},
		Preferences:  DefaultPreferences(),
	}
}

// Normalize restores the aggregate invariants. It runs before every save.
func (a *Aggregate) Normalize() {
	if a.Stats.Level < 1 {
		a.Stats.Level = 1
	}
	if a.Stats.Experience < 0 {
		a.Stats.Experience = 0
	}
	if a.Stats.TotalGoalsCompleted < 0 {
		a.Stats.TotalGoalsCompleted = 0
	}
	if a.Stats.TotalLearningTime < 0 {
		a.Stats.TotalLearningTime = 0
	}
	if a.Stats.CurrentStreak < 0 {
		a.Stats.CurrentStreak = 0
	}
	if a.Stats.LongestStreak < a.Stats.CurrentStreak {
		a.Stats.LongestStreak = a.Stats.CurrentStreak
	}
	a.carryLevels()

	if a.ActivityLog == nil {
		a.ActivityLog = []ActivityEntry{}
	}
	if a.Achievements == nil {
		a.Achievements = []Achievement{}
	}
	if a.DailyStats == nil {
		a.DailyStats = []DailyStat{}
	}
	a.trimActivityLog()
	a.trimDailyStats()
}

// Day truncates t to local midnight in t's location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
