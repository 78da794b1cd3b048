// Package services applies user actions to goals and to the per-user
// progress aggregate.
package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"neuralnexus/backend/apperr"
	"neuralnexus/backend/curriculum"
	"neuralnexus/backend/models"
	"neuralnexus/backend/progress"
	"neuralnexus/backend/store"
)

const maxSaveAttempts = 3

type Transactor interface {
	WithinTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type UserStore interface {
	Create(ctx context.Context, tx *gorm.DB, u *models.User) error
	FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error)
	FindByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)
	EmailTaken(ctx context.Context, tx *gorm.DB, email string, exceptID uint) (bool, error)
	Save(ctx context.Context, tx *gorm.DB, u *models.User) error
	RecordLogin(ctx context.Context, tx *gorm.DB, entry *models.LoginHistory) error
	CountLoginsSince(ctx context.Context, tx *gorm.DB, userID uint, since time.Time) (int64, error)
}

type GoalStore interface {
	Create(ctx context.Context, tx *gorm.DB, g *models.Goal) error
	Save(ctx context.Context, tx *gorm.DB, g *models.Goal) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Goal, error)
	FindByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]models.Goal, error)
	CountByUserAndStatus(ctx context.Context, tx *gorm.DB, userID uint, status models.GoalStatus) (int64, error)
	List(ctx context.Context, tx *gorm.DB, userID uint, f store.GoalFilter) ([]models.Goal, int64, error)
	StatusCounts(ctx context.Context, tx *gorm.DB, userID uint) (models.StatusCounts, error)
	CategoryStats(ctx context.Context, tx *gorm.DB, userID uint) ([]models.CategoryStat, error)
	UpcomingDeadlines(ctx context.Context, tx *gorm.DB, userID uint, now time.Time, within time.Duration) ([]models.Goal, error)
	CountCompletedBetween(ctx context.Context, tx *gorm.DB, userID uint, from, to time.Time) (int64, error)
	CountCreatedBetween(ctx context.Context, tx *gorm.DB, userID uint, from, to time.Time) (int64, error)
}

type ProgressStore interface {
	Create(ctx context.Context, tx *gorm.DB, userID uint, agg *progress.Aggregate) error
	Load(ctx context.Context, tx *gorm.DB, userID uint) (*progress.Aggregate, int, error)
	Save(ctx context.Context, tx *gorm.DB, userID uint, agg *progress.Aggregate, expectedVersion int) (int, error)
	Leaderboard(ctx context.Context, tx *gorm.DB, by store.LeaderboardOrder, limit int) ([]models.LeaderboardEntry, error)
	UserIDs(ctx context.Context, tx *gorm.DB) ([]uint, error)
}

type TokenIssuer interface {
	Issue(userID uint, name string) (string, error)
}

type CurriculumQueue interface {
	Enqueue(req curriculum.Request) bool
}

// Summary describes the progress after an action.
type Summary struct {
	Level                 int      `json:"level"`
	Experience            int      `json:"experience"`
	ExperienceToNextLevel int      `json:"experienceToNextLevel"`
	LevelProgress         int      `json:"levelProgress"`
	CurrentStreak         int      `json:"currentStreak"`
	LongestStreak         int      `json:"longestStreak"`
	ExperienceGained      int      `json:"experienceGained"`
	LeveledUp             bool     `json:"leveledUp"`
	NewAchievements       []string `json:"newAchievements"`
}

func summarize(before, after *progress.Aggregate, granted []string) Summary {
	if granted == nil {
		granted = []string{}
	}
	return Summary{
		Level:                 after.Stats.Level,
		Experience:            after.Stats.Experience,
		ExperienceToNextLevel: after.ExperienceToNextLevel(),
		LevelProgress:         after.LevelProgress(),
		CurrentStreak:         after.Stats.CurrentStreak,
		LongestStreak:         after.Stats.LongestStreak,
		ExperienceGained:      after.TotalExperience() - before.TotalExperience(),
		LeveledUp:             after.Stats.Level > before.Stats.Level,
		NewAchievements:       granted,
	}
}

type Deps struct {
	Tx         Transactor
	Users      UserStore
	Goals      GoalStore
	Progress   ProgressStore
	Locker     Locker
	Tokens     TokenIssuer
	Curriculum CurriculumQueue
	Log        *zap.Logger
	Location   *time.Location
}

// Tracker is the single write path for goals and progress.
type Tracker struct {
	tx         Transactor
	users      UserStore
	goals      GoalStore
	progress   ProgressStore
	locker     Locker
	tokens     TokenIssuer
	curriculum CurriculumQueue
	log        *zap.Logger
	loc        *time.Location
	now        func() time.Time
}

func NewTracker(d Deps) *Tracker {
	t := &Tracker{
		tx:         d.Tx,
		users:      d.Users,
		goals:      d.Goals,
		progress:   d.Progress,
		locker:     d.Locker,
		tokens:     d.Tokens,
		curriculum: d.Curriculum,
		log:        d.Log,
		loc:        d.Location,
		now:        time.Now,
	}
	if t.locker == nil {
		t.locker = NewKeyedMutex()
	}
	if t.log == nil {
		t.log = zap.NewNop()
	}
	if t.loc == nil {
		t.loc = time.Local
	}
	return t
}

func (t *Tracker) clock() time.Time {
	return t.now().In(t.loc)
}

// change is the unit of work handed to mutate callbacks.
type change struct {
	tx      *gorm.DB
	agg     *progress.Aggregate
	now     time.Time
	granted []string
	// skip leaves the stored aggregate untouched
	skip bool
}

func (c *change) grant(names ...string) {
	c.granted = append(c.granted, names...)
}

// mutate applies fn to a freshly loaded aggregate inside one transaction while
// holding the user's lock. The aggregate is saved with a version check and the
// whole unit is retried on conflict.
func (t *Tracker) mutate(ctx context.Context, op string, userID uint, fn func(c *change) error) (Summary, error) {
	unlock, err := t.locker.Lock(ctx, userLockKey(userID))
	if err != nil {
		return Summary{}, apperr.Persistence(op, err)
	}
	defer unlock()

	for attempt := 1; ; attempt++ {
		var sum Summary
		err := t.tx.WithinTx(ctx, func(tx *gorm.DB) error {
			agg, version, err := t.progress.Load(ctx, tx, userID)
			if err != nil {
				return err
			}
			before := *agg
			c := &change{tx: tx, agg: agg, now: t.clock()}
			if err := fn(c); err != nil {
				return err
			}
			if !c.skip {
				// every saved action refreshes the streak so idle gaps decay it
				agg.CalculateStreak(c.now)
				if _, err := t.progress.Save(ctx, tx, userID, agg, version); err != nil {
					return err
				}
			}
			sum = summarize(&before, agg, c.granted)
			return nil
		})
		if err == nil {
			return sum, nil
		}
		if errors.Is(err, store.ErrVersionConflict) && attempt < maxSaveAttempts {
			t.log.Debug("progress version conflict, retrying",
				zap.String("op", op), zap.Uint("user_id", userID), zap.Int("attempt", attempt))
			continue
		}
		return Summary{}, asAppError(op, err)
	}
}

// asAppError keeps classified errors and reports anything else as a
// persistence failure.
func asAppError(op string, err error) error {
	if apperr.KindOf(err) != nil {
		return err
	}
	return apperr.Persistence(op, err)
}

func (t *Tracker) snapshots(ctx context.Context, tx *gorm.DB, userID uint) ([]progress.GoalSnapshot, error) {
	goals, err := t.goals.FindByUser(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]progress.GoalSnapshot, len(goals))
	for i := range goals {
		out[i] = goals[i].Snapshot()
	}
	return out, nil
}

// runAchievements evaluates the rule table against fresh goal state.
func (t *Tracker) runAchievements(ctx context.Context, c *change, userID uint) error {
	snaps, err := t.snapshots(ctx, c.tx, userID)
	if err != nil {
		return err
	}
	c.grant(c.agg.CheckAchievements(snaps, c.now)...)
	return nil
}

// ownedGoal loads a goal and checks it belongs to userID.
func (t *Tracker) ownedGoal(ctx context.Context, tx *gorm.DB, op string, userID, goalID uint) (*models.Goal, error) {
	goal, err := t.goals.FindByID(ctx, tx, goalID)
	if err != nil {
		return nil, err
	}
	if goal.UserID != userID {
		return nil, apperr.Forbidden(op, "Not authorized to access this goal")
	}
	return goal, nil
}
