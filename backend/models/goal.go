package models

import (
	"strings"
	"time"

	"neuralnexus/backend/progress"
)

type GoalStatus string

const (
	GoalPending    GoalStatus = "pending"
	GoalInProgress GoalStatus = "in-progress"
	GoalCompleted  GoalStatus = "completed"
	GoalPaused     GoalStatus = "paused"
)

func (s GoalStatus) Valid() bool {
	switch s {
	case GoalPending, GoalInProgress, GoalCompleted, GoalPaused:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Goal struct {
	ID                    uint              `gorm:"primaryKey" json:"id"`
	UserID                uint              `gorm:"index;not null" json:"userId"`
	Description           string            `gorm:"not null" json:"description"`
	Category              progress.Category `gorm:"size:32;index;not null;default:general" json:"category"`
	Priority              Priority          `gorm:"size:16;not null;default:medium" json:"priority"`
	Status                GoalStatus        `gorm:"size:16;index;not null;default:pending" json:"status"`
	TargetDate            *time.Time        `json:"targetDate,omitempty"`
	Curriculum            string            `json:"curriculum,omitempty"`
	HasCurriculum         bool              `json:"hasCurriculum"`
	CurriculumGeneratedAt *time.Time        `json:"curriculumGeneratedAt,omitempty"`
	CompletedAt           *time.Time        `json:"completedAt,omitempty"`
	CreatedAt             time.Time         `json:"createdAt"`
	UpdatedAt             time.Time         `json:"updatedAt"`
}

// Normalize trims free text and derives HasCurriculum. Called before every write.
func (g *Goal) Normalize() {
	g.Description = strings.TrimSpace(g.Description)
	if g.Category == "" {
		g.Category = progress.CategoryGeneral
	}
	if g.Priority == "" {
		g.Priority = PriorityMedium
	}
	if g.Status == "" {
		g.Status = GoalPending
	}
	g.HasCurriculum = strings.TrimSpace(g.Curriculum) != ""
	if g.Status != GoalCompleted {
		g.CompletedAt = nil
	}
}

func (g *Goal) Snapshot() progress.GoalSnapshot {
	return progress.GoalSnapshot{Category: g.Category, Completed: g.Status == GoalCompleted}
}

// Summary omits the curriculum body for list views.
func (g Goal) Summary() Goal {
	g.Curriculum = ""
	return g
}
