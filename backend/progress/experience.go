package progress

// ExperienceNeeded is the experience required to clear level.
// Every level-progress consumer must go through this function.
func ExperienceNeeded(level int) int {
	if level < 1 {
		level = 1
	}
	return 100 + (level-1)*50
}

// AddExperience adds points and rolls over as many levels as they cover.
// It reports whether the level increased. Non-positive points are a no-op.
func (a *Aggregate) AddExperience(points int) bool {
	if points <= 0 {
		return false
	}
	before := a.Stats.Level
	a.Stats.Experience += points
	a.carryLevels()
	return a.Stats.Level > before
}

func (a *Aggregate) carryLevels() {
	if a.Stats.Level < 1 {
		a.Stats.Level = 1
	}
	for a.Stats.Experience >= ExperienceNeeded(a.Stats.Level) {
		a.Stats.Experience -= ExperienceNeeded(a.Stats.Level)
		a.Stats.Level++
	}
}

// ExperienceToNextLevel is the remaining experience for the current level.
func (a *Aggregate) ExperienceToNextLevel() int {
	return ExperienceNeeded(a.Stats.Level) - a.Stats.Experience
}

// LevelProgress is the rounded percentage of the current level already earned.
func (a *Aggregate) LevelProgress() int {
	need := ExperienceNeeded(a.Stats.Level)
	return (a.Stats.Experience*100 + need/2) / need
}

// TotalExperience is the experience earned since level 1.
func (a *Aggregate) TotalExperience() int {
	total := a.Stats.Experience
	for l := 1; l < a.Stats.Level; l++ {
		total += ExperienceNeeded(l)
	}
	return total
}
