package controllers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"neuralnexus/backend/middleware"
	"neuralnexus/backend/models"
	"neuralnexus/backend/progress"
	"neuralnexus/backend/services"
	"neuralnexus/backend/utils"
)

type ActivityTracker interface {
	Track(ctx context.Context, userID uint, in services.TrackInput) (services.Summary, error)
}

type UserService interface {
	ActivityTracker
	Profile(ctx context.Context, userID uint) (*models.Profile, error)
	UpdateProfile(ctx context.Context, userID uint, in services.ProfileInput) (*models.User, error)
	ChangePassword(ctx context.Context, userID uint, in services.PasswordInput) error
	UpdatePreferences(ctx context.Context, userID uint, in services.PreferencesInput) (progress.Preferences, error)
	Dashboard(ctx context.Context, userID uint) (*models.Dashboard, error)
	Activity(ctx context.Context, userID uint, limit, offset int) (*models.ActivityPage, error)
	LogActivity(ctx context.Context, userID uint, in services.ActivityInput) (services.Summary, error)
	Achievements(ctx context.Context, userID uint) ([]progress.Achievement, []string, error)
	StartSession(ctx context.Context, userID uint, in services.SessionInput) (services.Summary, error)
}

type UserController struct {
	svc UserService
	log *zap.Logger
}

func NewUserController(svc UserService, log *zap.Logger) *UserController {
	return &UserController{svc: svc, log: log}
}

// track records a view without failing the request it belongs to.
func track(ctx context.Context, svc ActivityTracker, log *zap.Logger, userID uint, in services.TrackInput) {
	if _, err := svc.Track(ctx, userID, in); err != nil {
		log.Warn("activity tracking failed",
			zap.Uint("user_id", userID), zap.String("action", string(in.Action)), zap.Error(err))
	}
}

// GetProfile godoc
// @Summary Get user profile
// @Description Returns the authenticated user's profile, progress stats, preferences and goal counts
// @Tags users
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=models.Profile}
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	profile, err := uc.svc.Profile(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, profile)
}

// UpdateProfile godoc
// @Summary Update user profile
// @Description Updates the name and/or email of the authenticated user
// @Tags users
// @Accept json
// @Produce json
// @Param input body services.ProfileInput true "Profile update data"
// @Success 200 {object} utils.SuccessResponse{data=models.User}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [put]
func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	var input services.ProfileInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	userID := middleware.UserID(c)
	user, err := uc.svc.UpdateProfile(c.UserContext(), userID, input)
	if err != nil {
		return utils.HandleError(c, err)
	}
	track(c.UserContext(), uc.svc, uc.log, userID, services.TrackInput{Action: progress.ActionProfileUpdated})
	return utils.Message(c, fiber.StatusOK, "Profile updated successfully", user)
}

// ChangePassword godoc
// @Summary Change password
// @Tags users
// @Accept json
// @Produce json
// @Param input body services.PasswordInput true "Current and new password"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/change-password [put]
func (uc *UserController) ChangePassword(c *fiber.Ctx) error {
	var input services.PasswordInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := uc.svc.ChangePassword(c.UserContext(), middleware.UserID(c), input); err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Message(c, fiber.StatusOK, "Password changed successfully", nil)
}

// UpdatePreferences godoc
// @Summary Update notification preferences
// @Tags users
// @Accept json
// @Produce json
// @Param input body services.PreferencesInput true "Preferences to change"
// @Success 200 {object} utils.SuccessResponse{data=progress.Preferences}
// @Security ApiKeyAuth
// @Router /user/preferences [put]
func (uc *UserController) UpdatePreferences(c *fiber.Ctx) error {
	var input services.PreferencesInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	userID := middleware.UserID(c)
	prefs, err := uc.svc.UpdatePreferences(c.UserContext(), userID, input)
	if err != nil {
		return utils.HandleError(c, err)
	}
	track(c.UserContext(), uc.svc, uc.log, userID, services.TrackInput{Action: progress.ActionSettingsUpdated})
	return utils.Message(c, fiber.StatusOK, "Preferences updated successfully", prefs)
}

// GetDashboard godoc
// @Summary Get dashboard
// @Description Recent goals, category and status stats, upcoming deadlines and recent achievements
// @Tags users
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=models.Dashboard}
// @Security ApiKeyAuth
// @Router /user/dashboard [get]
func (uc *UserController) GetDashboard(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	dash, err := uc.svc.Dashboard(c.UserContext(), userID)
	if err != nil {
		return utils.HandleError(c, err)
	}
	track(c.UserContext(), uc.svc, uc.log, userID, services.TrackInput{Action: progress.ActionDashboardViewed})
	return utils.Success(c, fiber.StatusOK, dash)
}

// GetActivity godoc
// @Summary Get activity log
// @Description Returns the activity log newest first
// @Tags users
// @Produce json
// @Param limit query int false "Page size" default(50)
// @Param offset query int false "Entries to skip" default(0)
// @Success 200 {object} utils.SuccessResponse{data=models.ActivityPage}
// @Security ApiKeyAuth
// @Router /user/activity [get]
func (uc *UserController) GetActivity(c *fiber.Ctx) error {
	page, err := uc.svc.Activity(c.UserContext(), middleware.UserID(c), c.QueryInt("limit"), c.QueryInt("offset"))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, page)
}

// LogActivity godoc
// @Summary Log a client activity
// @Tags users
// @Accept json
// @Produce json
// @Param input body services.ActivityInput true "Activity"
// @Success 201 {object} utils.SuccessResponse{data=services.Summary}
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/activity [post]
func (uc *UserController) LogActivity(c *fiber.Ctx) error {
	var input services.ActivityInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	sum, err := uc.svc.LogActivity(c.UserContext(), middleware.UserID(c), input)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Created(c, "Activity logged", sum)
}

// GetAchievements godoc
// @Summary Get achievements
// @Description Grants anything newly earned and returns all achievements newest first
// @Tags users
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /user/achievements [get]
func (uc *UserController) GetAchievements(c *fiber.Ctx) error {
	list, granted, err := uc.svc.Achievements(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"achievements":    list,
		"newAchievements": granted,
		"total":           len(list),
	})
}

// StartSession godoc
// @Summary Start a session
// @Description Logs session_start after 30 idle minutes and grants the daily visit bonus
// @Tags users
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=services.Summary}
// @Security ApiKeyAuth
// @Router /user/session [post]
func (uc *UserController) StartSession(c *fiber.Ctx) error {
	sum, err := uc.svc.StartSession(c.UserContext(), middleware.UserID(c), services.SessionInput{
		IP:        c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	})
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, sum)
}
