package progress

import "fmt"

// Action is the kind of a tracked user action.
type Action string

const (
	ActionLogin               Action = "login"
	ActionRegistration        Action = "registration"
	ActionSessionStart        Action = "session_start"
	ActionAPIUsage            Action = "api_usage"
	ActionGoalCreated         Action = "goal_created"
	ActionGoalCompleted       Action = "goal_completed"
	ActionGoalUpdated         Action = "goal_updated"
	ActionGoalDeleted         Action = "goal_deleted"
	ActionGoalViewed          Action = "goal_viewed"
	ActionCurriculumViewed    Action = "curriculum_viewed"
	ActionCurriculumGenerated Action = "curriculum_generated"
	ActionProfileUpdated      Action = "profile_updated"
	ActionDashboardViewed     Action = "dashboard_viewed"
	ActionSettingsUpdated     Action = "settings_updated"
	ActionPasswordChanged     Action = "password_changed"
	ActionAccountMigrated     Action = "account_migrated"
)

var knownActions = map[Action]struct{}{
	ActionLogin:               {},
	ActionRegistration:        {},
	ActionSessionStart:        {},
	ActionAPIUsage:            {},
	ActionGoalCreated:         {},
	ActionGoalCompleted:       {},
	ActionGoalUpdated:         {},
	ActionGoalDeleted:         {},
	ActionGoalViewed:          {},
	ActionCurriculumViewed:    {},
	ActionCurriculumGenerated: {},
	ActionProfileUpdated:      {},
	ActionDashboardViewed:     {},
	ActionSettingsUpdated:     {},
	ActionPasswordChanged:     {},
	ActionAccountMigrated:     {},
}

func (a Action) Valid() bool {
	_, ok := knownActions[a]
	return ok
}

func ParseAction(s string) (Action, error) {
	a := Action(s)
	if !a.Valid() {
		return "", fmt.Errorf("unknown action %q", s)
	}
	return a, nil
}

// experienceByAction is the reward table for client-reported activity.
var experienceByAction = map[Action]int{
	ActionGoalCreated:      10,
	ActionGoalCompleted:    50,
	ActionCurriculumViewed: 5,
	ActionLogin:            2,
}

// ExperienceFor returns the experience granted for a client-reported action.
func ExperienceFor(a Action) int {
	return experienceByAction[a]
}

// TrackingRule describes the side effects of an explicitly tracked view or update.
type TrackingRule struct {
	Experience  int
	UpdateStats bool
	TimeSpent   int // minutes, only applied with UpdateStats
}

var trackingRules = map[Action]TrackingRule{
	ActionGoalViewed:       {Experience: 2},
	ActionCurriculumViewed: {Experience: 5, UpdateStats: true, TimeSpent: 5},
	ActionProfileUpdated:   {Experience: 5},
	ActionDashboardViewed:  {Experience: 1},
	ActionSettingsUpdated:  {Experience: 2},
}

func TrackingRuleFor(a Action) (TrackingRule, bool) {
	r, ok := trackingRules[a]
	return r, ok
}
