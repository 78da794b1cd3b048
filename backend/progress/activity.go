package progress

import (
	"time"

	"github.com/segmentio/ksuid"
)

type ActivityEntry struct {
	ID        string    `json:"id"`
	Action    Action    `json:"action"`
	GoalID    *uint     `json:"goalId,omitempty"`
	Metadata  Metadata  `json:"metadata"`
	Timestamp time.Time `json:"timestamp"`
}

// LogActivity appends an entry stamped with now and evicts the oldest entries
// beyond MaxActivityEntries. goalID is a weak reference and may dangle.
func (a *Aggregate) LogActivity(action Action, goalID *uint, metadata Metadata, now time.Time) ActivityEntry {
	if metadata == nil {
		metadata = Metadata{}
	}
	entry := ActivityEntry{
		ID:        ksuid.New().String(),
		Action:    action,
		GoalID:    goalID,
		Metadata:  metadata,
		Timestamp: now,
	}
	a.ActivityLog = append(a.ActivityLog, entry)
	ts := now
	a.LastActivityDate = &ts
	a.trimActivityLog()
	return entry
}

func (a *Aggregate) trimActivityLog() {
	if n := len(a.ActivityLog); n > MaxActivityEntries {
		kept := make([]ActivityEntry, MaxActivityEntries)
		copy(kept, a.ActivityLog[n-MaxActivityEntries:])
		a.ActivityLog = kept
	}
}

// ActivitiesOn counts log entries on the calendar day of now.
func (a *Aggregate) ActivitiesOn(now time.Time) int {
	count := 0
	for _, e := range a.ActivityLog {
		if SameDay(e.Timestamp.In(now.Location()), now) {
			count++
		}
	}
	return count
}

// ActivitiesSince counts log entries at or after since.
func (a *Aggregate) ActivitiesSince(since time.Time) int {
	count := 0
	for _, e := range a.ActivityLog {
		if !e.Timestamp.Before(since) {
			count++
		}
	}
	return count
}

// RecentActivity returns up to limit entries, newest first, skipping offset.
func (a *Aggregate) RecentActivity(limit, offset int) []ActivityEntry {
	n := len(a.ActivityLog)
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || offset >= n {
		return []ActivityEntry{}
	}
	out := make([]ActivityEntry, 0, limit)
	for i := n - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, a.ActivityLog[i])
	}
	return out
}
