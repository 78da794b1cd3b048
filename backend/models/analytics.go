package models

import (
	"time"

	"neuralnexus/backend/progress"
)

type StatusCounts struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"inProgress"`
	Completed  int64 `json:"completed"`
	Paused     int64 `json:"paused"`
}

type CategoryStat struct {
	Category  progress.Category `json:"category"`
	Total     int64             `json:"total"`
	Completed int64             `json:"completed"`
}

type LeaderboardEntry struct {
	Rank                int    `json:"rank"`
	UserID              uint   `json:"userId"`
	Name                string `json:"name"`
	Level               int    `json:"level"`
	CurrentStreak       int    `json:"currentStreak"`
	TotalGoalsCompleted int    `json:"totalGoalsCompleted"`
}

type Profile struct {
	User        User                 `json:"user"`
	Stats       progress.Stats       `json:"progressStats"`
	Preferences progress.Preferences `json:"preferences"`
	GoalCounts  StatusCounts         `json:"goalStats"`
	LastLogin   *time.Time           `json:"lastLoginDate,omitempty"`
}

type Dashboard struct {
	RecentGoals        []Goal                 `json:"recentGoals"`
	CategoryStats      []CategoryStat         `json:"categoryStats"`
	StatusStats        StatusCounts           `json:"statusStats"`
	UpcomingDeadlines  []Goal                 `json:"upcomingDeadlines"`
	Stats              progress.Stats         `json:"progressStats"`
	RecentAchievements []progress.Achievement `json:"recentAchievements"`
}

type ProgressOverview struct {
	StreakDays            int          `json:"streakDays"`
	LongestStreak         int          `json:"longestStreak"`
	Level                 int          `json:"level"`
	Experience            int          `json:"experience"`
	ExperienceToNextLevel int          `json:"experienceToNextLevel"`
	LevelProgress         int          `json:"levelProgress"`
	WeeklyProgress        int          `json:"weeklyProgress"`
	MonthlyGoals          MonthlyGoals `json:"monthlyGoals"`
	TotalGoalsCompleted   int          `json:"totalGoalsCompleted"`
	TotalLearningTime     int          `json:"totalLearningTime"`
	LoginsThisMonth       int64        `json:"loginsThisMonth"`
}

type MonthlyGoals struct {
	Completed int64 `json:"completed"`
	Total     int64 `json:"total"`
}

type ActivityPage struct {
	Activities []progress.ActivityEntry `json:"activities"`
	Today      int                      `json:"today"`
	ThisWeek   int                      `json:"thisWeek"`
	Total      int                      `json:"total"`
	Limit      int                      `json:"limit"`
	Offset     int                      `json:"offset"`
	HasMore    bool                     `json:"hasMore"`
}

type DailyStatsReport struct {
	Days   int                  `json:"days"`
	Stats  []progress.DailyStat `json:"dailyStats"`
	Totals progress.DailyStat   `json:"totals"`
}
