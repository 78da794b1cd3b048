package progress

import (
	"sort"
	"time"
)

type DailyStat struct {
	Date              time.Time `json:"date"`
	GoalsCreated      int       `json:"goalsCreated"`
	GoalsCompleted    int       `json:"goalsCompleted"`
	CurriculumsViewed int       `json:"curriculumsViewed"`
	TimeSpent         int       `json:"timeSpent"` // minutes
}

// UpdateDailyStats accumulates today's counters for action and adds timeSpent
// minutes when positive. Goal completions also bump TotalGoalsCompleted.
func (a *Aggregate) UpdateDailyStats(action Action, timeSpent int, now time.Time) {
	today := Day(now)
	idx := -1
	for i := range a.DailyStats {
		if SameDay(a.DailyStats[i].Date.In(now.Location()), today) {
			idx = i
			break
		}
	}
	if idx < 0 {
		a.DailyStats = append(a.DailyStats, DailyStat{Date: today})
		idx = len(a.DailyStats) - 1
	}
	stat := &a.DailyStats[idx]

	switch action {
	case ActionGoalCreated:
		stat.GoalsCreated++
	case ActionGoalCompleted:
		stat.GoalsCompleted++
		a.Stats.TotalGoalsCompleted++
	case ActionCurriculumViewed:
		stat.CurriculumsViewed++
	}

	if timeSpent > 0 {
		stat.TimeSpent += timeSpent
		a.Stats.TotalLearningTime += timeSpent
	}

	a.trimDailyStats()
}

func (a *Aggregate) trimDailyStats() {
	if n := len(a.DailyStats); n > MaxDailyStats {
		kept := make([]DailyStat, MaxDailyStats)
		copy(kept, a.DailyStats[n-MaxDailyStats:])
		a.DailyStats = kept
	}
}

// StatsSince returns entries dated at or after cutoff in chronological order
// together with their totals.
func (a *Aggregate) StatsSince(cutoff time.Time) ([]DailyStat, DailyStat) {
	out := []DailyStat{}
	var totals DailyStat
	for _, s := range a.DailyStats {
		if s.Date.Before(cutoff) {
			continue
		}
		out = append(out, s)
		totals.GoalsCreated += s.GoalsCreated
		totals.GoalsCompleted += s.GoalsCompleted
		totals.CurriculumsViewed += s.CurriculumsViewed
		totals.TimeSpent += s.TimeSpent
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, totals
}
