package progress

import "time"

// CalculateStreak recomputes the current streak from the activity log and
// records it on the aggregate together with the longest streak.
//
// Activity older than the bounded log no longer counts towards continuity.
func (a *Aggregate) CalculateStreak(now time.Time) int {
	streak := a.Streak(now)
	a.Stats.CurrentStreak = streak
	if streak > a.Stats.LongestStreak {
		a.Stats.LongestStreak = streak
	}
	return streak
}

// Streak counts consecutive calendar days with activity, ending today, without
// mutating the aggregate. Days are taken in now's location.
func (a *Aggregate) Streak(now time.Time) int {
	loc := now.Location()
	active := make(map[string]struct{}, len(a.ActivityLog))
	for _, e := range a.ActivityLog {
		active[dayKey(e.Timestamp.In(loc))] = struct{}{}
	}

	streak := 0
	for day := Day(now); ; day = day.AddDate(0, 0, -1) {
		if _, ok := active[dayKey(day)]; !ok {
			break
		}
		streak++
	}
	return streak
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
