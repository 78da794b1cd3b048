package utils

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"neuralnexus/backend/apperr"
)

// SuccessResponse структура для успешных ответов
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

// ErrorResponse структура для ошибок
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Message string      `json:"message,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// PageMeta описывает страницу списка
type PageMeta struct {
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	HasMore bool  `json:"hasMore"`
}

// Success создает успешный JSON ответ
func Success(c *fiber.Ctx, status int, data interface{}, meta ...interface{}) error {
	response := SuccessResponse{
		Success: true,
		Data:    data,
	}

	if len(meta) > 0 {
		response.Meta = meta[0]
	}

	return c.Status(status).JSON(response)
}

// Message отправляет успешный ответ с сообщением
func Message(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(SuccessResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error создает JSON ответ с ошибкой
func Error(c *fiber.Ctx, status int, message string, details ...interface{}) error {
	response := ErrorResponse{
		Success: false,
		Error:   http.StatusText(status),
		Message: message,
	}

	if len(details) > 0 {
		response.Details = details[0]
	}

	return c.Status(status).JSON(response)
}

// Paginate отправляет страницу списка
func Paginate(c *fiber.Ctx, data interface{}, total int64, limit, offset int) error {
	return Success(c, fiber.StatusOK, data, PageMeta{
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+limit) < total,
	})
}

// Created отправляет ответ 201 Created
func Created(c *fiber.Ctx, message string, data interface{}) error {
	return Message(c, fiber.StatusCreated, message, data)
}

// BadRequest отправляет ответ 400 Bad Request
func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

// StatusFor сопоставляет вид ошибки с HTTP статусом
func StatusFor(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	switch apperr.KindOf(err) {
	case apperr.ErrValidation:
		return fiber.StatusBadRequest
	case apperr.ErrNotFound:
		return fiber.StatusNotFound
	case apperr.ErrAuthorization:
		return fiber.StatusForbidden
	case apperr.ErrUnauthenticated:
		return fiber.StatusUnauthorized
	case apperr.ErrConflict:
		return fiber.StatusConflict
	case apperr.ErrUpstream:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// HandleError отправляет ошибку сервиса в общем формате
func HandleError(c *fiber.Ctx, err error) error {
	status := StatusFor(err)
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return Error(c, status, fe.Message)
	}
	return Error(c, status, apperr.Message(err))
}

// ErrorHandler используется как fiber.Config.ErrorHandler
func ErrorHandler(c *fiber.Ctx, err error) error {
	return HandleError(c, err)
}
