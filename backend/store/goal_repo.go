package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"neuralnexus/backend/apperr"
	"neuralnexus/backend/models"
	"neuralnexus/backend/progress"
)

type GoalRepo struct {
	db *gorm.DB
}

func NewGoalRepo(db *gorm.DB) *GoalRepo {
	return &GoalRepo{db: db}
}

// GoalFilter narrows List. Zero values mean no filter.
type GoalFilter struct {
	Status   models.GoalStatus
	Category progress.Category
	Priority models.Priority
	Search   string
	SortBy   string
	Limit    int
	Offset   int
}

var goalSorts = map[string]string{
	"newest":     "created_at DESC, id DESC",
	"oldest":     "created_at ASC, id ASC",
	"targetDate": "target_date IS NULL, target_date ASC, id ASC",
	"updated":    "updated_at DESC, id DESC",
}

func (r *GoalRepo) Create(ctx context.Context, tx *gorm.DB, g *models.Goal) error {
	g.Normalize()
	return pick(r.db, tx).WithContext(ctx).Create(g).Error
}

func (r *GoalRepo) Save(ctx context.Context, tx *gorm.DB, g *models.Goal) error {
	g.Normalize()
	return pick(r.db, tx).WithContext(ctx).Save(g).Error
}

func (r *GoalRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	return pick(r.db, tx).WithContext(ctx).Delete(&models.Goal{}, id).Error
}

func (r *GoalRepo) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Goal, error) {
	var g models.Goal
	err := pick(r.db, tx).WithContext(ctx).First(&g, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("goals.find", "goal")
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GoalRepo) FindByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]models.Goal, error) {
	var goals []models.Goal
	err := pick(r.db, tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&goals).Error
	return goals, err
}

func (r *GoalRepo) CountByUserAndStatus(ctx context.Context, tx *gorm.DB, userID uint, status models.GoalStatus) (int64, error) {
	var count int64
	err := pick(r.db, tx).WithContext(ctx).Model(&models.Goal{}).
		Where("user_id = ? AND status = ?", userID, status).
		Count(&count).Error
	return count, err
}

// List returns one page of the user's goals and the total matching count.
func (r *GoalRepo) List(ctx context.Context, tx *gorm.DB, userID uint, f GoalFilter) ([]models.Goal, int64, error) {
	q := pick(r.db, tx).WithContext(ctx).Model(&models.Goal{}).Where("user_id = ?", userID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		q = q.Where("LOWER(description) LIKE ?", "%"+strings.ToLower(s)+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order, ok := goalSorts[f.SortBy]
	if !ok {
		order = goalSorts["newest"]
	}
	var goals []models.Goal
	q = q.Order(order).Offset(f.Offset)
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if err := q.Find(&goals).Error; err != nil {
		return nil, 0, err
	}
	return goals, total, nil
}

func (r *GoalRepo) StatusCounts(ctx context.Context, tx *gorm.DB, userID uint) (models.StatusCounts, error) {
	var rows []struct {
		Status models.GoalStatus
		Count  int64
	}
	var out models.StatusCounts
	err := pick(r.db, tx).WithContext(ctx).Model(&models.Goal{}).
		Select("status, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return out, err
	}
	for _, row := range rows {
		out.Total += row.Count
		switch row.Status {
		case models.GoalPending:
			out.Pending = row.Count
		case models.GoalInProgress:
			out.InProgress = row.Count
		case models.GoalCompleted:
			out.Completed = row.Count
		case models.GoalPaused:
			out.Paused = row.Count
		}
	}
	return out, nil
}

func (r *GoalRepo) CategoryStats(ctx context.Context, tx *gorm.DB, userID uint) ([]models.CategoryStat, error) {
	var rows []models.CategoryStat
	err := pick(r.db, tx).WithContext(ctx).Model(&models.Goal{}).
		Select("category, COUNT(*) AS total, SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS completed", models.GoalCompleted).
		Where("user_id = ?", userID).
		Group("category").
		Order("category").
		Scan(&rows).Error
	return rows, err
}

// UpcomingDeadlines returns unfinished goals due between now and now+within.
func (r *GoalRepo) UpcomingDeadlines(ctx context.Context, tx *gorm.DB, userID uint, now time.Time, within time.Duration) ([]models.Goal, error) {
	var goals []models.Goal
	err := pick(r.db, tx).WithContext(ctx).
		Where("user_id = ? AND status <> ? AND target_date IS NOT NULL AND target_date >= ? AND target_date <= ?",
			userID, models.GoalCompleted, now, now.Add(within)).
		Order("target_date ASC").
		Find(&goals).Error
	return goals, err
}

func (r *GoalRepo) CountCompletedBetween(ctx context.Context, tx *gorm.DB, userID uint, from, to time.Time) (int64, error) {
	var count int64
	err := pick(r.db, tx).WithContext(ctx).Model(&models.Goal{}).
		Where("user_id = ? AND status = ? AND completed_at >= ? AND completed_at < ?", userID, models.GoalCompleted, from, to).
		Count(&count).Error
	return count, err
}

func (r *GoalRepo) CountCreatedBetween(ctx context.Context, tx *gorm.DB, userID uint, from, to time.Time) (int64, error) {
	var count int64
	err := pick(r.db, tx).WithContext(ctx).Model(&models.Goal{}).
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, from, to).
		Count(&count).Error
	return count, err
}
