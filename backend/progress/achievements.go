package progress

import "time"

type Achievement struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	EarnedAt    time.Time `json:"earnedAt"`
	Metadata    Metadata  `json:"metadata,omitempty"`
}

// Definition describes a badge before it is granted.
type Definition struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

var (
	Welcome = Definition{
		ID:          "welcome",
		Name:        "Welcome to Neural Nexus",
		Description: "Joined the platform and started the learning journey",
		Icon:        "star",
	}
	FirstGoal = Definition{
		ID:          "first_goal",
		Name:        "First Goal Completed",
		Description: "Completed your first learning goal",
		Icon:        "trophy",
	}
	ThreeDayStreak = Definition{
		ID:          "three_day_streak",
		Name:        "3 Day Streak",
		Description: "Stayed active for 3 days in a row",
		Icon:        "fire",
	}
	WeekStreak = Definition{
		ID:          "week_streak",
		Name:        "7 Day Streak",
		Description: "Stayed active for a whole week",
		Icon:        "fire",
	}
	MonthStreak = Definition{
		ID:          "month_streak",
		Name:        "30 Day Streak",
		Description: "Stayed active for 30 days in a row",
		Icon:        "fire",
	}
	FiveGoals = Definition{
		ID:          "five_goals",
		Name:        "Goal Achiever",
		Description: "Completed 5 learning goals",
		Icon:        "star",
	}
	TenGoals = Definition{
		ID:          "ten_goals",
		Name:        "Learning Master",
		Description: "Completed 10 learning goals",
		Icon:        "crown",
	}
)

const specialistThreshold = 3

// Definitions lists every badge that can be earned, specialists last.
func Definitions() []Definition {
	defs := []Definition{Welcome, FirstGoal, ThreeDayStreak, WeekStreak, MonthStreak, FiveGoals, TenGoals}
	for _, c := range Categories() {
		defs = append(defs, SpecialistDefinition(c))
	}
	return defs
}

// SpecialistDefinition is the badge for completing three goals in category.
func SpecialistDefinition(c Category) Definition {
	return Definition{
		ID:          string(c) + "_specialist",
		Name:        c.DisplayName() + " Specialist",
		Description: "Completed 3 goals in " + c.DisplayName(),
		Icon:        "medal",
	}
}

type Category string

const (
	CategoryWebDevelopment    Category = "web-development"
	CategoryDataScience       Category = "data-science"
	CategoryMobileDevelopment Category = "mobile-development"
	CategoryDevOps            Category = "devops"
	CategoryDesign            Category = "design"
	CategoryBusiness          Category = "business"
	CategoryLanguage          Category = "language"
	CategoryGeneral           Category = "general"
)

var categoryNames = map[Category]string{
	CategoryWebDevelopment:    "Web Development",
	CategoryDataScience:       "Data Science",
	CategoryMobileDevelopment: "Mobile Development",
	CategoryDevOps:            "DevOps",
	CategoryDesign:            "UI/UX Design",
	CategoryBusiness:          "Business",
	CategoryLanguage:          "Programming Language",
	CategoryGeneral:           "General",
}

// Categories lists every known category in display order.
func Categories() []Category {
	return []Category{
		CategoryWebDevelopment,
		CategoryDataScience,
		CategoryMobileDevelopment,
		CategoryDevOps,
		CategoryDesign,
		CategoryBusiness,
		CategoryLanguage,
		CategoryGeneral,
	}
}

func (c Category) Valid() bool {
	_, ok := categoryNames[c]
	return ok
}

func (c Category) DisplayName() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return string(c)
}

// GoalSnapshot is the view of a goal the achievement rules need.
type GoalSnapshot struct {
	Category  Category
	Completed bool
}

func (a *Aggregate) HasAchievement(id string) bool {
	for _, ach := range a.Achievements {
		if ach.ID == id {
			return true
		}
	}
	return false
}

// AwardAchievement grants def once. It reports false when already earned.
func (a *Aggregate) AwardAchievement(def Definition, metadata Metadata, now time.Time) bool {
	if a.HasAchievement(def.ID) {
		return false
	}
	a.Achievements = append(a.Achievements, Achievement{
		ID:          def.ID,
		Name:        def.Name,
		Description: def.Description,
		Icon:        def.Icon,
		EarnedAt:    now,
		Metadata:    metadata,
	})
	return true
}

// CheckAchievements evaluates the rule table against goals and the streak as of
// now. It returns the names of achievements granted by this call, in rule order.
func (a *Aggregate) CheckAchievements(goals []GoalSnapshot, now time.Time) []string {
	completed := 0
	perCategory := map[Category]int{}
	var order []Category
	for _, g := range goals {
		if !g.Completed {
			continue
		}
		completed++
		if _, seen := perCategory[g.Category]; !seen {
			order = append(order, g.Category)
		}
		perCategory[g.Category]++
	}
	streak := a.CalculateStreak(now)

	granted := []string{}
	award := func(ok bool, def Definition) {
		if ok && a.AwardAchievement(def, nil, now) {
			granted = append(granted, def.Name)
		}
	}

	award(completed >= 1, FirstGoal)
	award(streak >= 7, WeekStreak)
	award(streak >= 30, MonthStreak)
	award(completed >= 5, FiveGoals)
	award(completed >= 10, TenGoals)
	for _, c := range order {
		award(perCategory[c] >= specialistThreshold, SpecialistDefinition(c))
	}
	return granted
}

// RecentAchievements returns the achievements newest first.
func (a *Aggregate) RecentAchievements() []Achievement {
	out := make([]Achievement, len(a.Achievements))
	copy(out, a.Achievements)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
