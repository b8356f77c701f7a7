package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/zooplan/training-platform/internal/apperr"
)

// JsonOK — успешный ответ в конверте {"data": ...}.
func JsonOK(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{"data": data})
}

// JsonError — ответ с кодом и машинно-проверяемой причиной.
func JsonError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// FromAppError отображает таксономию ядра в HTTP-статусы.
// Сервисы про HTTP не знают, всё отображение — здесь.
func FromAppError(c *fiber.Ctx, err error) error {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		return JsonError(c, fiber.StatusInternalServerError, string(apperr.CodeInternal), "internal error")
	}
	switch ae.Code {
	case apperr.CodeNotFound:
		return JsonError(c, fiber.StatusNotFound, string(ae.Code), ae.Message)
	case apperr.CodeBadRequest:
		return JsonError(c, fiber.StatusBadRequest, string(ae.Code), ae.Message)
	case apperr.CodeConflict:
		return JsonError(c, fiber.StatusConflict, string(ae.Code), ae.Message)
	default:
		return JsonError(c, fiber.StatusInternalServerError, string(ae.Code), "internal error")
	}
}
