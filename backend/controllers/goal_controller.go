package controllers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"neuralnexus/backend/middleware"
	"neuralnexus/backend/models"
	"neuralnexus/backend/progress"
	"neuralnexus/backend/services"
	"neuralnexus/backend/store"
	"neuralnexus/backend/utils"
)

const (
	defaultGoalPage = 20
	maxGoalPage     = 100
)

type GoalService interface {
	ActivityTracker
	CreateGoal(ctx context.Context, userID uint, in services.GoalInput) (*services.GoalResult, error)
	UpdateGoal(ctx context.Context, userID, goalID uint, in services.GoalUpdate) (*services.GoalResult, error)
	DeleteGoal(ctx context.Context, userID, goalID uint) error
	GetGoal(ctx context.Context, userID, goalID uint) (*models.Goal, error)
	ListGoals(ctx context.Context, userID uint, f store.GoalFilter) ([]models.Goal, int64, error)
	ViewCurriculum(ctx context.Context, userID, goalID uint) (*services.GoalResult, error)
}

type GoalController struct {
	svc GoalService
	log *zap.Logger
}

func NewGoalController(svc GoalService, log *zap.Logger) *GoalController {
	return &GoalController{svc: svc, log: log}
}

func goalID(c *fiber.Ctx) (uint, bool) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

// CreateGoal godoc
// @Summary Create a learning goal
// @Description Stores the goal, rewards it and queues curriculum generation
// @Tags goals
// @Accept json
// @Produce json
// @Param input body services.GoalInput true "Goal"
// @Success 201 {object} utils.SuccessResponse{data=services.GoalResult}
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /goals [post]
func (gc *GoalController) CreateGoal(c *fiber.Ctx) error {
	var input services.GoalInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	res, err := gc.svc.CreateGoal(c.UserContext(), middleware.UserID(c), input)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Created(c, "Goal created successfully", res)
}

// ListGoals godoc
// @Summary List goals
// @Tags goals
// @Produce json
// @Param status query string false "pending, in-progress, completed or paused"
// @Param category query string false "Category"
// @Param priority query string false "low, medium or high"
// @Param search query string false "Substring of the description"
// @Param sort query string false "newest, oldest, targetDate or updated" default(newest)
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Goals to skip" default(0)
// @Success 200 {object} utils.SuccessResponse{data=[]models.Goal,meta=utils.PageMeta}
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /goals [get]
func (gc *GoalController) ListGoals(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultGoalPage)
	if limit <= 0 {
		limit = defaultGoalPage
	}
	if limit > maxGoalPage {
		limit = maxGoalPage
	}
	offset := c.QueryInt("offset")
	if offset < 0 {
		offset = 0
	}

	goals, total, err := gc.svc.ListGoals(c.UserContext(), middleware.UserID(c), store.GoalFilter{
		Status:   models.GoalStatus(c.Query("status")),
		Category: progress.Category(c.Query("category")),
		Priority: models.Priority(c.Query("priority")),
		Search:   c.Query("search"),
		SortBy:   c.Query("sort", "newest"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Paginate(c, goals, total, limit, offset)
}

// GetGoal godoc
// @Summary Get a goal
// @Tags goals
// @Produce json
// @Param id path int true "Goal ID"
// @Success 200 {object} utils.SuccessResponse{data=models.Goal}
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /goals/{id} [get]
func (gc *GoalController) GetGoal(c *fiber.Ctx) error {
	id, ok := goalID(c)
	if !ok {
		return utils.BadRequest(c, "Invalid goal ID")
	}
	userID := middleware.UserID(c)
	goal, err := gc.svc.GetGoal(c.UserContext(), userID, id)
	if err != nil {
		return utils.HandleError(c, err)
	}
	track(c.UserContext(), gc.svc, gc.log, userID, services.TrackInput{Action: progress.ActionGoalViewed, GoalID: &id})
	return utils.Success(c, fiber.StatusOK, goal)
}

// UpdateGoal godoc
// @Summary Update a goal
// @Description Completing a goal grants experience and may unlock achievements
// @Tags goals
// @Accept json
// @Produce json
// @Param id path int true "Goal ID"
// @Param input body services.GoalUpdate true "Fields to change"
// @Success 200 {object} utils.SuccessResponse{data=services.GoalResult}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /goals/{id} [put]
func (gc *GoalController) UpdateGoal(c *fiber.Ctx) error {
	id, ok := goalID(c)
	if !ok {
		return utils.BadRequest(c, "Invalid goal ID")
	}
	var input services.GoalUpdate
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	res, err := gc.svc.UpdateGoal(c.UserContext(), middleware.UserID(c), id, input)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Message(c, fiber.StatusOK, "Goal updated successfully", res)
}

// DeleteGoal godoc
// @Summary Delete a goal
// @Tags goals
// @Produce json
// @Param id path int true "Goal ID"
// @Success 200 {object} utils.SuccessResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /goals/{id} [delete]
func (gc *GoalController) DeleteGoal(c *fiber.Ctx) error {
	id, ok := goalID(c)
	if !ok {
		return utils.BadRequest(c, "Invalid goal ID")
	}
	if err := gc.svc.DeleteGoal(c.UserContext(), middleware.UserID(c), id); err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Message(c, fiber.StatusOK, "Goal deleted successfully", nil)
}

// GetCurriculum godoc
// @Summary Get the generated curriculum of a goal
// @Description Returns the goal with its curriculum and rewards the view
// @Tags goals
// @Produce json
// @Param id path int true "Goal ID"
// @Success 200 {object} utils.SuccessResponse{data=services.GoalResult}
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /goals/{id}/curriculum [get]
func (gc *GoalController) GetCurriculum(c *fiber.Ctx) error {
	id, ok := goalID(c)
	if !ok {
		return utils.BadRequest(c, "Invalid goal ID")
	}
	res, err := gc.svc.ViewCurriculum(c.UserContext(), middleware.UserID(c), id)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, res)
}
