package progress

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var noon = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func daysAgo(n int) time.Time {
	return noon.AddDate(0, 0, -n)
}

func TestExperienceNeeded(t *testing.T) {
	assert.Equal(t, 100, ExperienceNeeded(1))
	assert.Equal(t, 150, ExperienceNeeded(2))
	assert.Equal(t, 550, ExperienceNeeded(10))
	assert.Equal(t, 100, ExperienceNeeded(0))
}

func TestAddExperienceCarriesAcrossLevels(t *testing.T) {
	agg := NewAggregate()

	leveled := agg.AddExperience(260)

	assert.True(t, leveled)
	assert.Equal(t, 3, agg.Stats.Level)
	assert.Equal(t, 10, agg.Stats.Experience)
	assert.Equal(t, 190, agg.ExperienceToNextLevel())
}

func TestAddExperienceIgnoresNonPositive(t *testing.T) {
	agg := NewAggregate()
	agg.Stats.Experience = 40

	assert.False(t, agg.AddExperience(0))
	assert.False(t, agg.AddExperience(-25))
	assert.Equal(t, 40, agg.Stats.Experience)
	assert.Equal(t, 1, agg.Stats.Level)
}

func TestAddExperienceExactBoundary(t *testing.T) {
	agg := NewAggregate()
	agg.Stats.Experience = 95

	assert.True(t, agg.AddExperience(5))
	assert.Equal(t, 2, agg.Stats.Level)
	assert.Equal(t, 0, agg.Stats.Experience)
	assert.Equal(t, 0, agg.LevelProgress())
}

func TestLevelProgress(t *testing.T) {
	agg := NewAggregate()
	agg.Stats.Level = 2
	agg.Stats.Experience = 75

	assert.Equal(t, 50, agg.LevelProgress())
}

func TestStreakCountsConsecutiveDays(t *testing.T) {
	agg := NewAggregate()
	agg.LogActivity(ActionLogin, nil, nil, daysAgo(2))
	agg.LogActivity(ActionLogin, nil, nil, daysAgo(1))
	agg.LogActivity(ActionGoalCreated, nil, nil, noon)
	agg.LogActivity(ActionGoalViewed, nil, nil, noon.Add(time.Hour))

	assert.Equal(t, 3, agg.CalculateStreak(noon))
	assert.Equal(t, 3, agg.Stats.CurrentStreak)
	assert.Equal(t, 3, agg.Stats.LongestStreak)
}

func TestStreakIsZeroWithoutActivityToday(t *testing.T) {
	agg := NewAggregate()
	agg.Stats.LongestStreak = 5
	agg.LogActivity(ActionLogin, nil, nil, daysAgo(1))
	agg.LogActivity(ActionLogin, nil, nil, daysAgo(2))

	assert.Equal(t, 0, agg.CalculateStreak(noon))
	assert.Equal(t, 0, agg.Stats.CurrentStreak)
	assert.Equal(t, 5, agg.Stats.LongestStreak)
}

func TestStreakStopsAtGap(t *testing.T) {
	agg := NewAggregate()
	agg.LogActivity(ActionLogin, nil, nil, daysAgo(3))
	agg.LogActivity(ActionLogin, nil, nil, daysAgo(1))
	agg.LogActivity(ActionLogin, nil, nil, noon)

	assert.Equal(t, 2, agg.Streak(noon))
	assert.Equal(t, 0, agg.Stats.CurrentStreak, "Streak must not mutate")
}

func TestStreakUsesCallerLocation(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	agg := NewAggregate()
	// 20:00 UTC on the 9th is already the 10th at UTC+5.
	agg.LogActivity(ActionLogin, nil, nil, time.Date(2026, time.March, 9, 20, 0, 0, 0, time.UTC))

	assert.Equal(t, 1, agg.Streak(noon.In(loc)))
	assert.Equal(t, 0, agg.Streak(noon))
}

func TestActivityLogIsBounded(t *testing.T) {
	agg := NewAggregate()
	for i := 0; i < MaxActivityEntries+5; i++ {
		agg.LogActivity(ActionAPIUsage, nil, Metadata{"n": Int(i)}, noon)
	}

	require.Len(t, agg.ActivityLog, MaxActivityEntries)
	first, ok := agg.ActivityLog[0].Metadata["n"].AsNumber()
	require.True(t, ok)
	assert.Equal(t, float64(5), first)
	require.NotNil(t, agg.LastActivityDate)
	assert.True(t, agg.LastActivityDate.Equal(noon))
}

func TestRecentActivityPagesNewestFirst(t *testing.T) {
	agg := NewAggregate()
	for i := 0; i < 5; i++ {
		agg.LogActivity(ActionAPIUsage, nil, Metadata{"n": Int(i)}, noon.Add(time.Duration(i)*time.Minute))
	}

	page := agg.RecentActivity(2, 1)
	require.Len(t, page, 2)
	n, _ := page[0].Metadata["n"].AsNumber()
	assert.Equal(t, float64(3), n)
	assert.Empty(t, agg.RecentActivity(10, 5))
	assert.Equal(t, 5, agg.ActivitiesOn(noon))
	assert.Equal(t, 2, agg.ActivitiesSince(noon.Add(3*time.Minute)))
}

func TestUpdateDailyStats(t *testing.T) {
	agg := NewAggregate()

	agg.UpdateDailyStats(ActionGoalCreated, 0, noon)
	agg.UpdateDailyStats(ActionGoalCompleted, 0, noon.Add(time.Hour))
	agg.UpdateDailyStats(ActionCurriculumViewed, 5, noon)
	agg.UpdateDailyStats(ActionSettingsUpdated, 7, noon)
	agg.UpdateDailyStats(ActionGoalCreated, 0, daysAgo(1))

	require.Len(t, agg.DailyStats, 2)
	today := agg.DailyStats[0]
	assert.Equal(t, Day(noon), today.Date)
	assert.Equal(t, 1, today.GoalsCreated)
	assert.Equal(t, 1, today.GoalsCompleted)
	assert.Equal(t, 1, today.CurriculumsViewed)
	assert.Equal(t, 12, today.TimeSpent)
	assert.Equal(t, 1, agg.Stats.TotalGoalsCompleted)
	assert.Equal(t, 12, agg.Stats.TotalLearningTime)
}

func TestDailyStatsAreBounded(t *testing.T) {
	agg := NewAggregate()
	for i := MaxDailyStats + 9; i >= 0; i-- {
		agg.UpdateDailyStats(ActionGoalCreated, 0, daysAgo(i))
	}

	require.Len(t, agg.DailyStats, MaxDailyStats)
	assert.Equal(t, Day(daysAgo(MaxDailyStats-1)), agg.DailyStats[0].Date)

	entries, totals := agg.StatsSince(Day(daysAgo(6)))
	assert.Len(t, entries, 7)
	assert.Equal(t, 7, totals.GoalsCreated)
}

func TestCheckAchievements(t *testing.T) {
	agg := NewAggregate()
	agg.LogActivity(ActionLogin, nil, nil, noon)
	goals := []GoalSnapshot{
		{Category: CategoryDataScience, Completed: true},
		{Category: CategoryWebDevelopment, Completed: true},
		{Category: CategoryDataScience, Completed: true},
		{Category: CategoryWebDevelopment, Completed: true},
		{Category: CategoryDataScience, Completed: true},
		{Category: CategoryWebDevelopment, Completed: true},
		{Category: CategoryDesign, Completed: false},
	}

	granted := agg.CheckAchievements(goals, noon)

	assert.Equal(t, []string{
		"First Goal Completed",
		"Goal Achiever",
		"Data Science Specialist",
		"Web Development Specialist",
	}, granted)
	assert.True(t, agg.HasAchievement("data-science_specialist"))
	assert.False(t, agg.HasAchievement("design_specialist"))
	assert.Equal(t, noon, agg.Achievements[0].EarnedAt)

	assert.Empty(t, agg.CheckAchievements(goals, noon.Add(time.Minute)))
	assert.Len(t, agg.Achievements, 4)
}

func TestCheckAchievementsStreakRules(t *testing.T) {
	agg := NewAggregate()
	for i := 29; i >= 0; i-- {
		agg.LogActivity(ActionLogin, nil, nil, daysAgo(i))
	}

	granted := agg.CheckAchievements(nil, noon)

	assert.Equal(t, []string{"7 Day Streak", "30 Day Streak"}, granted)
	assert.False(t, agg.HasAchievement(ThreeDayStreak.ID), "three day streak is granted by the login flow only")
	assert.Equal(t, 30, agg.Stats.LongestStreak)
}

func TestAwardAchievementIsIdempotent(t *testing.T) {
	agg := NewAggregate()

	assert.True(t, agg.AwardAchievement(Welcome, nil, noon))
	assert.False(t, agg.AwardAchievement(Welcome, nil, noon.Add(time.Hour)))
	require.Len(t, agg.Achievements, 1)
	assert.Equal(t, "Welcome to Neural Nexus", agg.Achievements[0].Name)
	assert.Equal(t, noon, agg.Achievements[0].EarnedAt)
}

func TestNormalizeRestoresInvariants(t *testing.T) {
	agg := &Aggregate{Stats: Stats{Level: 0, Experience: 130, CurrentStreak: 4, LongestStreak: 1}}

	agg.Normalize()

	assert.Equal(t, 2, agg.Stats.Level)
	assert.Equal(t, 30, agg.Stats.Experience)
	assert.Equal(t, 4, agg.Stats.LongestStreak)
	assert.NotNil(t, agg.ActivityLog)
	assert.NotNil(t, agg.Achievements)
	assert.NotNil(t, agg.DailyStats)
}

func TestAggregateJSONDocument(t *testing.T) {
	goalID := uint(7)
	agg := NewAggregate()
	agg.LogActivity(ActionGoalCompleted, &goalID, Metadata{
		"title": String("Learn Go"),
		"tags":  List(String("go"), Bool(true)),
		"extra": Object(map[string]Value{"minutes": Int(15), "none": Null()}),
	}, noon)

	data, err := json.Marshal(agg)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"progressStats"`)

	var decoded Aggregate
	require.NoError(t, json.Unmarshal(data, &decoded))
	entry := decoded.ActivityLog[0]
	assert.Equal(t, ActionGoalCompleted, entry.Action)
	require.NotNil(t, entry.GoalID)
	assert.Equal(t, goalID, *entry.GoalID)

	title, _ := entry.Metadata["title"].AsString()
	assert.Equal(t, "Learn Go", title)
	tags, ok := entry.Metadata["tags"].AsList()
	require.True(t, ok)
	assert.Len(t, tags, 2)
	extra, ok := entry.Metadata["extra"].AsObject()
	require.True(t, ok)
	assert.Equal(t, KindNull, extra["none"].Kind())
	minutes, _ := extra["minutes"].AsNumber()
	assert.Equal(t, float64(15), minutes)
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction("goal_viewed")
	require.NoError(t, err)
	assert.Equal(t, ActionGoalViewed, a)

	_, err = ParseAction("teleported")
	assert.Error(t, err)

	assert.Equal(t, 50, ExperienceFor(ActionGoalCompleted))
	assert.Equal(t, 0, ExperienceFor(ActionGoalUpdated))
}

func TestTotalExperience(t *testing.T) {
	agg := NewAggregate()
	agg.AddExperience(260)

	assert.Equal(t, 260, agg.TotalExperience())
}

func TestDefinitionsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, d := range Definitions() {
		assert.False(t, seen[d.ID], d.ID)
		seen[d.ID] = true
	}
	assert.Len(t, seen, 7+len(Categories()))
	assert.True(t, seen["devops_specialist"])
}
