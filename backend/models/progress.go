package models

import (
	"time"

	"gorm.io/datatypes"

	"neuralnexus/backend/progress"
)

// UserProgress stores the whole per-user aggregate as one JSON document.
// Level, CurrentStreak and TotalGoalsCompleted are copied out for leaderboards.
type UserProgress struct {
	UserID              uint                                   `gorm:"primaryKey;autoIncrement:false"`
	Version             int                                    `gorm:"not null;default:1"`
	Level               int                                    `gorm:"index;not null;default:1"`
	CurrentStreak       int                                    `gorm:"index;not null;default:0"`
	TotalGoalsCompleted int                                    `gorm:"index;not null;default:0"`
	Document            datatypes.JSONType[progress.Aggregate] `gorm:"not null"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (UserProgress) TableName() string {
	return "user_progress"
}

// Aggregate returns a copy of the stored document as written.
func (p *UserProgress) Aggregate() *progress.Aggregate {
	agg := p.Document.Data()
	return &agg
}

// SetAggregate normalizes agg and copies it into the row.
func (p *UserProgress) SetAggregate(agg *progress.Aggregate) {
	agg.Normalize()
	p.Document = datatypes.NewJSONType(*agg)
	p.Level = agg.Stats.Level
	p.CurrentStreak = agg.Stats.CurrentStreak
	p.TotalGoalsCompleted = agg.Stats.TotalGoalsCompleted
}
