package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"neuralnexus/backend/apperr"
	"neuralnexus/backend/models"
	"neuralnexus/backend/progress"
)

// ErrVersionConflict is returned by Save when the stored version moved on.
var ErrVersionConflict = errors.New("progress version conflict")

type ProgressRepo struct {
	db *gorm.DB
}

func NewProgressRepo(db *gorm.DB) *ProgressRepo {
	return &ProgressRepo{db: db}
}

func (r *ProgressRepo) Create(ctx context.Context, tx *gorm.DB, userID uint, agg *progress.Aggregate) error {
	row := models.UserProgress{UserID: userID, Version: 1}
	row.SetAggregate(agg)
	return pick(r.db, tx).WithContext(ctx).Create(&row).Error
}

// Load returns the stored aggregate and its version.
func (r *ProgressRepo) Load(ctx context.Context, tx *gorm.DB, userID uint) (*progress.Aggregate, int, error) {
	var row models.UserProgress
	err := pick(r.db, tx).WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, 0, apperr.NotFound("progress.load", "progress")
	}
	if err != nil {
		return nil, 0, err
	}
	return row.Aggregate(), row.Version, nil
}

// Save writes the whole document if the stored version still equals
// expectedVersion, and returns the new version.
func (r *ProgressRepo) Save(ctx context.Context, tx *gorm.DB, userID uint, agg *progress.Aggregate, expectedVersion int) (int, error) {
	agg.Normalize()
	db := pick(r.db, tx).WithContext(ctx)
	res := db.Model(&models.UserProgress{}).
		Where("user_id = ? AND version = ?", userID, expectedVersion).
		Updates(map[string]interface{}{
			"version":               expectedVersion + 1,
			"level":                 agg.Stats.Level,
			"current_streak":        agg.Stats.CurrentStreak,
			"total_goals_completed": agg.Stats.TotalGoalsCompleted,
			"document":              datatypes.NewJSONType(*agg),
			"updated_at":            time.Now(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := db.Model(&models.UserProgress{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return 0, err
		}
		if count == 0 {
			return 0, apperr.NotFound("progress.save", "progress")
		}
		return 0, ErrVersionConflict
	}
	return expectedVersion + 1, nil
}

func (r *ProgressRepo) UserIDs(ctx context.Context, tx *gorm.DB) ([]uint, error) {
	var ids []uint
	err := pick(r.db, tx).WithContext(ctx).Model(&models.UserProgress{}).
		Order("user_id").
		Pluck("user_id", &ids).Error
	return ids, err
}

type LeaderboardOrder string

const (
	ByLevel  LeaderboardOrder = "level"
	ByStreak LeaderboardOrder = "streak"
	ByGoals  LeaderboardOrder = "goals"
)

var leaderboardColumns = map[LeaderboardOrder]string{
	ByLevel:  "user_progress.level DESC, user_progress.total_goals_completed DESC",
	ByStreak: "user_progress.current_streak DESC, user_progress.level DESC",
	ByGoals:  "user_progress.total_goals_completed DESC, user_progress.level DESC",
}

func (o LeaderboardOrder) Valid() bool {
	_, ok := leaderboardColumns[o]
	return ok
}

// Leaderboard ranks users by the denormalised progress columns.
func (r *ProgressRepo) Leaderboard(ctx context.Context, tx *gorm.DB, by LeaderboardOrder, limit int) ([]models.LeaderboardEntry, error) {
	order, ok := leaderboardColumns[by]
	if !ok {
		order = leaderboardColumns[ByLevel]
	}
	var rows []models.LeaderboardEntry
	err := pick(r.db, tx).WithContext(ctx).
		Table("user_progress").
		Select("user_progress.user_id, users.name, user_progress.level, user_progress.current_streak, user_progress.total_goals_completed").
		Joins("JOIN users ON users.id = user_progress.user_id").
		Order(order + ", user_progress.user_id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows, nil
}
