package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"neuralnexus/backend/progress"
	"neuralnexus/backend/utils"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type OverviewController struct {
	db  Pinger
	log *zap.Logger
}

func NewOverviewController(db Pinger, log *zap.Logger) *OverviewController {
	return &OverviewController{db: db, log: log}
}

type categoryInfo struct {
	ID   progress.Category `json:"id"`
	Name string            `json:"name"`
}

// GetCatalog godoc
// @Summary Goal categories and achievement catalog
// @Tags overview
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Router /overview/catalog [get]
func (oc *OverviewController) GetCatalog(c *fiber.Ctx) error {
	cats := progress.Categories()
	out := make([]categoryInfo, len(cats))
	for i, cat := range cats {
		out[i] = categoryInfo{ID: cat, Name: cat.DisplayName()}
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"categories":   out,
		"achievements": progress.Definitions(),
	})
}

// Health godoc
// @Summary Health check
// @Tags overview
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 503 {object} utils.ErrorResponse
// @Router /health [get]
func (oc *OverviewController) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()
	if err := oc.db.PingContext(ctx); err != nil {
		oc.log.Error("database ping failed", zap.Error(err))
		return utils.Error(c, fiber.StatusServiceUnavailable, "database unavailable")
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}
