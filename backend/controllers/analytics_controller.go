package controllers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"neuralnexus/backend/models"
	"neuralnexus/backend/store"
	"neuralnexus/backend/utils"
)

type LeaderboardService interface {
	Leaderboard(ctx context.Context, by store.LeaderboardOrder, limit int) ([]models.LeaderboardEntry, error)
}

type AnalyticsController struct {
	svc LeaderboardService
}

func NewAnalyticsController(svc LeaderboardService) *AnalyticsController {
	return &AnalyticsController{svc: svc}
}

// GetLeaderboard возвращает рейтинг пользователей
// @Summary Get leaderboard
// @Tags analytics
// @Produce json
// @Param by query string false "level, streak or goals" default(level)
// @Param limit query int false "Number of entries" default(50)
// @Success 200 {object} utils.SuccessResponse{data=[]models.LeaderboardEntry}
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /leaderboard [get]
func (ac *AnalyticsController) GetLeaderboard(c *fiber.Ctx) error {
	by := store.LeaderboardOrder(c.Query("by", string(store.ByLevel)))
	rows, err := ac.svc.Leaderboard(c.UserContext(), by, c.QueryInt("limit"))
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, rows)
}
