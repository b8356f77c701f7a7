package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Ключ tenant-контекста в Locals.
const CompanyIDKey = "company_id"

// Tenant кладёт идентификатор компании в Locals.
// Аутентификация — внешняя подсистема: сюда контекст приходит уже
// разрешённым, в заголовке X-Company-ID.
func Tenant() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get("X-Company-ID")
		if raw == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "company context is missing")
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid company id")
		}
		c.Locals(CompanyIDKey, id)
		return c.Next()
	}
}

// CompanyID достаёт tenant-контекст, положенный Tenant().
func CompanyID(c *fiber.Ctx) (uuid.UUID, error) {
	v, ok := c.Locals(CompanyIDKey).(uuid.UUID)
	if !ok || v == uuid.Nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "company context is missing")
	}
	return v, nil
}
