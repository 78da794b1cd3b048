package services

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"neuralnexus/backend/apperr"
	"neuralnexus/backend/models"
	"neuralnexus/backend/progress"
)

type RegisterInput struct {
	Name      string `json:"name" validate:"required,min=3,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	UserAgent string `json:"-"`
}

type LoginInput struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	UserAgent string `json:"-"`
	IP        string `json:"-"`
}

type AuthResult struct {
	Token   string      `json:"token"`
	User    models.User `json:"user"`
	Summary Summary     `json:"progress"`
}

// Register creates the account and its progress aggregate in one transaction.
func (t *Tracker) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	const op = "tracker.register"
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := check(op, in); err != nil {
		return nil, err
	}
	hash, err := models.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrPersistence, op, err)
	}

	user := models.User{Name: in.Name, Email: in.Email, PasswordHash: hash}
	var sum Summary
	err = t.tx.WithinTx(ctx, func(tx *gorm.DB) error {
		if err := t.users.Create(ctx, tx, &user); err != nil {
			return err
		}
		now := t.clock()
		agg := progress.NewAggregate()
		before := *agg
		agg.LogActivity(progress.ActionRegistration, nil, progress.Metadata{
			"registrationDate": progress.Time(now),
			"userAgent":        progress.String(in.UserAgent),
		}, now)
		var granted []string
		if agg.AwardAchievement(progress.Welcome, nil, now) {
			granted = append(granted, progress.Welcome.Name)
		}
		agg.AddExperience(10)
		if err := t.progress.Create(ctx, tx, user.ID, agg); err != nil {
			return err
		}
		sum = summarize(&before, agg, granted)
		return nil
	})
	if err != nil {
		return nil, asAppError(op, err)
	}

	token, err := t.tokens.Issue(user.ID, user.Name)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrPersistence, op, err)
	}
	t.log.Info("user registered", zap.Uint("user_id", user.ID))
	return &AuthResult{Token: token, User: user, Summary: sum}, nil
}

// Login verifies credentials and applies the daily login rewards.
func (t *Tracker) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	const op = "tracker.login"
	if err := check(op, in); err != nil {
		return nil, err
	}
	user, err := t.users.FindByEmail(ctx, nil, in.Email)
	if err != nil {
		if apperr.KindOf(err) == apperr.ErrNotFound {
			return nil, apperr.Unauthenticated(op, "Invalid credentials")
		}
		return nil, asAppError(op, err)
	}
	if !user.CheckPassword(in.Password) {
		return nil, apperr.Unauthenticated(op, "Invalid credentials")
	}

	sum, err := t.mutate(ctx, op, user.ID, func(c *change) error {
		agg := c.agg
		firstToday := agg.LastLoginDate == nil || !progress.SameDay(agg.LastLoginDate.In(c.now.Location()), c.now)

		agg.LogActivity(progress.ActionLogin, nil, progress.Metadata{
			"loginTime": progress.Time(c.now),
			"userAgent": progress.String(in.UserAgent),
			"ip":        progress.String(in.IP),
		}, c.now)
		now := c.now
		agg.LastLoginDate = &now

		streak := agg.CalculateStreak(c.now)
		if firstToday {
			agg.AddExperience(5)
			if streak == 3 && agg.AwardAchievement(progress.ThreeDayStreak, nil, c.now) {
				c.grant(progress.ThreeDayStreak.Name)
			}
		}
		if err := t.users.RecordLogin(ctx, c.tx, &models.LoginHistory{
			UserID:    user.ID,
			LoginTime: c.now,
			IP:        in.IP,
			UserAgent: in.UserAgent,
		}); err != nil {
			return err
		}
		return t.runAchievements(ctx, c, user.ID)
	})
	if err != nil {
		return nil, err
	}

	token, err := t.tokens.Issue(user.ID, user.Name)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrPersistence, op, err)
	}
	return &AuthResult{Token: token, User: *user, Summary: sum}, nil
}

type ProfileInput struct {
	Name  *string `json:"name" validate:"omitempty,min=3,max=50"`
	Email *string `json:"email" validate:"omitempty,email"`
}

func (t *Tracker) UpdateProfile(ctx context.Context, userID uint, in ProfileInput) (*models.User, error) {
	const op = "tracker.update_profile"
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		in.Name = &name
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		in.Email = &email
	}
	if err := check(op, in); err != nil {
		return nil, err
	}

	var user *models.User
	_, err := t.mutate(ctx, op, userID, func(c *change) error {
		c.skip = true
		u, err := t.users.FindByID(ctx, c.tx, userID)
		if err != nil {
			return err
		}
		if in.Email != nil && *in.Email != u.Email {
			taken, err := t.users.EmailTaken(ctx, c.tx, *in.Email, userID)
			if err != nil {
				return err
			}
			if taken {
				return apperr.New(apperr.ErrConflict, op, "Email is already in use")
			}
			u.Email = *in.Email
		}
		if in.Name != nil {
			u.Name = *in.Name
		}
		user = u
		return t.users.Save(ctx, c.tx, u)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

type PasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

func (t *Tracker) ChangePassword(ctx context.Context, userID uint, in PasswordInput) error {
	const op = "tracker.change_password"
	if err := check(op, in); err != nil {
		return err
	}
	hash, err := models.HashPassword(in.NewPassword)
	if err != nil {
		return apperr.Wrap(apperr.ErrPersistence, op, err)
	}

	_, err = t.mutate(ctx, op, userID, func(c *change) error {
		u, err := t.users.FindByID(ctx, c.tx, userID)
		if err != nil {
			return err
		}
		if !u.CheckPassword(in.CurrentPassword) {
			return apperr.Validation(op, "Current password is incorrect")
		}
		u.PasswordHash = hash
		if err := t.users.Save(ctx, c.tx, u); err != nil {
			return err
		}
		c.agg.LogActivity(progress.ActionPasswordChanged, nil, nil, c.now)
		return nil
	})
	return err
}

type PreferencesInput struct {
	EmailNotifications       *bool `json:"emailNotifications"`
	WeeklyReports            *bool `json:"weeklyReports"`
	AchievementNotifications *bool `json:"achievementNotifications"`
}

func (t *Tracker) UpdatePreferences(ctx context.Context, userID uint, in PreferencesInput) (progress.Preferences, error) {
	var prefs progress.Preferences
	_, err := t.mutate(ctx, "tracker.update_preferences", userID, func(c *change) error {
		p := &c.agg.Preferences
		if in.EmailNotifications != nil {
			p.EmailNotifications = *in.EmailNotifications
		}
		if in.WeeklyReports != nil {
			p.WeeklyReports = *in.WeeklyReports
		}
		if in.AchievementNotifications != nil {
			p.AchievementNotifications = *in.AchievementNotifications
		}
		prefs = *p
		return nil
	})
	return prefs, err
}
