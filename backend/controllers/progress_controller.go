package controllers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"neuralnexus/backend/middleware"
	"neuralnexus/backend/models"
	"neuralnexus/backend/utils"
)

type ProgressService interface {
	Progress(ctx context.Context, userID uint) (*models.ProgressOverview, error)
	DailyStats(ctx context.Context, userID uint, days int) (*models.DailyStatsReport, error)
}

type ProgressController struct {
	svc ProgressService
}

func NewProgressController(svc ProgressService) *ProgressController {
	return &ProgressController{svc: svc}
}

// GetProgress godoc
// @Summary Get user progress
// @Description Returns streak, level, weekly and monthly goal progress and totals
// @Tags progress
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=models.ProgressOverview}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/progress [get]
func (pc *ProgressController) GetProgress(c *fiber.Ctx) error {
	overview, err := pc.svc.Progress(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, overview)
}

// GetDailyStats godoc
// @Summary Get daily stats
// @Description Returns per-day counters for the last N days with totals
// @Tags progress
// @Produce json
// @Param days query int false "Number of days" default(30)
// @Success 200 {object} utils.SuccessResponse{data=models.DailyStatsReport}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/daily-stats [get]
func (pc *ProgressController) GetDailyStats(c *fiber.Ctx) error {
	report, err := pc.svc.DailyStats(c.UserContext(), middleware.UserID(c), c.QueryInt("days"))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, report)
}
