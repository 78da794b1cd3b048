package controllers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"neuralnexus/backend/services"
	"neuralnexus/backend/utils"
)

type AuthService interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.AuthResult, error)
	Login(ctx context.Context, in services.LoginInput) (*services.AuthResult, error)
}

type AuthController struct {
	svc AuthService
}

func NewAuthController(svc AuthService) *AuthController {
	return &AuthController{svc: svc}
}

// Register godoc
// @Summary Register a new user
// @Description Creates a new user account with its progress record and returns a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param input body services.RegisterInput true "User registration data"
// @Success 201 {object} utils.SuccessResponse{data=services.AuthResult}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /auth/register [post]
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var input services.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	input.UserAgent = c.Get(fiber.HeaderUserAgent)

	res, err := ac.svc.Register(c.UserContext(), input)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Created(c, "User registered successfully", res)
}

// Login godoc
// @Summary User login
// @Description Authenticates a user, applies the daily login bonus and returns a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param input body services.LoginInput true "Login credentials"
// @Success 200 {object} utils.SuccessResponse{data=services.AuthResult}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Router /auth/login [post]
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var input services.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	input.UserAgent = c.Get(fiber.HeaderUserAgent)
	input.IP = c.IP()

	res, err := ac.svc.Login(c.UserContext(), input)
	if err != nil {
		return utils.HandleError(c, err)
	}
	return utils.Message(c, fiber.StatusOK, "Login successful", res)
}
