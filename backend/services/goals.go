package services

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"neuralnexus/backend/apperr"
	"neuralnexus/backend/curriculum"
	"neuralnexus/backend/models"
	"neuralnexus/backend/progress"
	"neuralnexus/backend/store"
)

type GoalInput struct {
	Description string            `json:"description" validate:"required,max=1000"`
	Category    progress.Category `json:"category"`
	Priority    models.Priority   `json:"priority"`
	TargetDate  *time.Time        `json:"targetDate"`
}

type GoalUpdate struct {
	Description     *string            `json:"description" validate:"omitempty,max=1000"`
	Category        *progress.Category `json:"category"`
	Priority        *models.Priority   `json:"priority"`
	Status          *models.GoalStatus `json:"status"`
	TargetDate      *time.Time         `json:"targetDate"`
	ClearTargetDate bool               `json:"clearTargetDate"`
}

type GoalResult struct {
	Goal    models.Goal `json:"goal"`
	Summary Summary     `json:"progress"`
}

func (in *GoalInput) normalize(op string) error {
	in.Description = strings.TrimSpace(in.Description)
	if in.Category == "" {
		in.Category = progress.CategoryGeneral
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if err := check(op, *in); err != nil {
		return err
	}
	if !in.Category.Valid() {
		return apperr.Validation(op, "unknown category %q", in.Category)
	}
	if !in.Priority.Valid() {
		return apperr.Validation(op, "unknown priority %q", in.Priority)
	}
	return nil
}

func (in *GoalUpdate) normalize(op string) error {
	if in.Description != nil {
		d := strings.TrimSpace(*in.Description)
		if d == "" {
			return apperr.Validation(op, "description is required")
		}
		in.Description = &d
	}
	if err := check(op, *in); err != nil {
		return err
	}
	if in.Category != nil && !in.Category.Valid() {
		return apperr.Validation(op, "unknown category %q", *in.Category)
	}
	if in.Priority != nil && !in.Priority.Valid() {
		return apperr.Validation(op, "unknown priority %q", *in.Priority)
	}
	if in.Status != nil && !in.Status.Valid() {
		return apperr.Validation(op, "unknown status %q", *in.Status)
	}
	return nil
}

// CreateGoal stores the goal, rewards it and queues curriculum generation.
func (t *Tracker) CreateGoal(ctx context.Context, userID uint, in GoalInput) (*GoalResult, error) {
	const op = "tracker.create_goal"
	if err := in.normalize(op); err != nil {
		return nil, err
	}

	var goal models.Goal
	var userName string
	sum, err := t.mutate(ctx, op, userID, func(c *change) error {
		user, err := t.users.FindByID(ctx, c.tx, userID)
		if err != nil {
			return err
		}
		userName = user.Name
		goal = models.Goal{
			UserID:      userID,
			Description: in.Description,
			Category:    in.Category,
			Priority:    in.Priority,
			Status:      models.GoalPending,
			TargetDate:  in.TargetDate,
		}
		if err := t.goals.Create(ctx, c.tx, &goal); err != nil {
			return err
		}
		id := goal.ID
		c.agg.LogActivity(progress.ActionGoalCreated, &id, progress.Metadata{
			"description": progress.String(goal.Description),
			"category":    progress.String(string(goal.Category)),
		}, c.now)
		c.agg.UpdateDailyStats(progress.ActionGoalCreated, 0, c.now)
		c.agg.AddExperience(progress.ExperienceFor(progress.ActionGoalCreated))
		return t.runAchievements(ctx, c, userID)
	})
	if err != nil {
		return nil, err
	}

	if t.curriculum != nil {
		queued := t.curriculum.Enqueue(curriculum.Request{
			GoalID:          goal.ID,
			GoalDescription: goal.Description,
			Category:        string(goal.Category),
			Priority:        string(goal.Priority),
			UserID:          userID,
			UserName:        userName,
		})
		if !queued {
			t.log.Warn("curriculum generation not queued", zap.Uint("goal_id", goal.ID))
		}
	}
	return &GoalResult{Goal: goal, Summary: sum}, nil
}

// UpdateGoal edits a goal. Moving it into completed from any other status
// runs the completion rewards.
func (t *Tracker) UpdateGoal(ctx context.Context, userID, goalID uint, in GoalUpdate) (*GoalResult, error) {
	const op = "tracker.update_goal"
	if err := in.normalize(op); err != nil {
		return nil, err
	}

	var goal *models.Goal
	sum, err := t.mutate(ctx, op, userID, func(c *change) error {
		g, err := t.ownedGoal(ctx, c.tx, op, userID, goalID)
		if err != nil {
			return err
		}
		goal = g
		wasCompleted := g.Status == models.GoalCompleted

		changed := []progress.Value{}
		if in.Description != nil && *in.Description != g.Description {
			g.Description = *in.Description
			changed = append(changed, progress.String("description"))
		}
		if in.Category != nil && *in.Category != g.Category {
			g.Category = *in.Category
			changed = append(changed, progress.String("category"))
		}
		if in.Priority != nil && *in.Priority != g.Priority {
			g.Priority = *in.Priority
			changed = append(changed, progress.String("priority"))
		}
		if in.ClearTargetDate {
			g.TargetDate = nil
			changed = append(changed, progress.String("targetDate"))
		} else if in.TargetDate != nil {
			g.TargetDate = in.TargetDate
			changed = append(changed, progress.String("targetDate"))
		}
		if in.Status != nil && *in.Status != g.Status {
			g.Status = *in.Status
			changed = append(changed, progress.String("status"))
		}

		completing := !wasCompleted && g.Status == models.GoalCompleted
		if completing {
			now := c.now
			g.CompletedAt = &now
		}
		if err := t.goals.Save(ctx, c.tx, g); err != nil {
			return err
		}

		id := g.ID
		if completing {
			c.agg.LogActivity(progress.ActionGoalCompleted, &id, progress.Metadata{
				"description": progress.String(g.Description),
				"category":    progress.String(string(g.Category)),
			}, c.now)
			c.agg.UpdateDailyStats(progress.ActionGoalCompleted, 0, c.now)
			c.agg.AddExperience(progress.ExperienceFor(progress.ActionGoalCompleted))
			return t.runAchievements(ctx, c, userID)
		}
		c.agg.LogActivity(progress.ActionGoalUpdated, &id, progress.Metadata{
			"fields": progress.List(changed...),
		}, c.now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &GoalResult{Goal: *goal, Summary: sum}, nil
}

func (t *Tracker) DeleteGoal(ctx context.Context, userID, goalID uint) error {
	const op = "tracker.delete_goal"
	_, err := t.mutate(ctx, op, userID, func(c *change) error {
		g, err := t.ownedGoal(ctx, c.tx, op, userID, goalID)
		if err != nil {
			return err
		}
		if err := t.goals.Delete(ctx, c.tx, g.ID); err != nil {
			return err
		}
		id := g.ID
		c.agg.LogActivity(progress.ActionGoalDeleted, &id, progress.Metadata{
			"description": progress.String(g.Description),
		}, c.now)
		return nil
	})
	return err
}

// ViewCurriculum returns the goal with its curriculum and rewards the view.
func (t *Tracker) ViewCurriculum(ctx context.Context, userID, goalID uint) (*GoalResult, error) {
	const op = "tracker.view_curriculum"
	var goal *models.Goal
	sum, err := t.mutate(ctx, op, userID, func(c *change) error {
		g, err := t.ownedGoal(ctx, c.tx, op, userID, goalID)
		if err != nil {
			return err
		}
		goal = g
		id := g.ID
		c.agg.LogActivity(progress.ActionCurriculumViewed, &id, progress.Metadata{
			"hasCurriculum": progress.Bool(g.HasCurriculum),
		}, c.now)
		c.agg.UpdateDailyStats(progress.ActionCurriculumViewed, 5, c.now)
		c.agg.AddExperience(progress.ExperienceFor(progress.ActionCurriculumViewed))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &GoalResult{Goal: *goal, Summary: sum}, nil
}

// CurriculumGenerated stores generated text on the goal. It grants no experience.
func (t *Tracker) CurriculumGenerated(ctx context.Context, userID, goalID uint, text string) error {
	const op = "tracker.curriculum_generated"
	_, err := t.mutate(ctx, op, userID, func(c *change) error {
		g, err := t.ownedGoal(ctx, c.tx, op, userID, goalID)
		if err != nil {
			return err
		}
		now := c.now
		g.Curriculum = text
		g.CurriculumGeneratedAt = &now
		if err := t.goals.Save(ctx, c.tx, g); err != nil {
			return err
		}
		id := g.ID
		c.agg.LogActivity(progress.ActionCurriculumGenerated, &id, progress.Metadata{
			"length": progress.Int(len(text)),
		}, c.now)
		return nil
	})
	return err
}

func (t *Tracker) GetGoal(ctx context.Context, userID, goalID uint) (*models.Goal, error) {
	const op = "tracker.get_goal"
	g, err := t.ownedGoal(ctx, nil, op, userID, goalID)
	if err != nil {
		return nil, asAppError(op, err)
	}
	return g, nil
}

func (t *Tracker) ListGoals(ctx context.Context, userID uint, f store.GoalFilter) ([]models.Goal, int64, error) {
	const op = "tracker.list_goals"
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, apperr.Validation(op, "unknown status %q", f.Status)
	}
	if f.Category != "" && !f.Category.Valid() {
		return nil, 0, apperr.Validation(op, "unknown category %q", f.Category)
	}
	if f.Priority != "" && !f.Priority.Valid() {
		return nil, 0, apperr.Validation(op, "unknown priority %q", f.Priority)
	}
	goals, total, err := t.goals.List(ctx, nil, userID, f)
	if err != nil {
		return nil, 0, asAppError(op, err)
	}
	for i := range goals {
		goals[i] = goals[i].Summary()
	}
	return goals, total, nil
}
