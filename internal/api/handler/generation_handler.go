package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/zooplan/training-platform/internal/api/middleware"
	"github.com/zooplan/training-platform/internal/apperr"
	"github.com/zooplan/training-platform/internal/schedule"
	"github.com/zooplan/training-platform/internal/service"
)

type GenerationHandler struct {
	generator *service.GeneratorService
	validate  *validator.Validate
}

func NewGenerationHandler(generator *service.GeneratorService, validate *validator.Validate) *GenerationHandler {
	return &GenerationHandler{generator: generator, validate: validate}
}

type generateRequest struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

// Generate — POST /api/v1/templates/:id/generate
func (h *GenerationHandler) Generate(c *fiber.Ctx) error {
	companyID, err := middleware.CompanyID(c)
	if err != nil {
		return err
	}

	templateID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return JsonError(c, fiber.StatusBadRequest, string(apperr.CodeBadRequest), "invalid template id")
	}

	var req generateRequest
	if err := c.BodyParser(&req); err != nil {
		return JsonError(c, fiber.StatusBadRequest, string(apperr.CodeBadRequest), "invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return JsonError(c, fiber.StatusBadRequest, string(apperr.CodeBadRequest), err.Error())
	}

	start, err := schedule.ParseDate(req.StartDate)
	if err != nil {
		return JsonError(c, fiber.StatusBadRequest, string(apperr.CodeBadRequest), "invalid start date")
	}
	end, err := schedule.ParseDate(req.EndDate)
	if err != nil {
		return JsonError(c, fiber.StatusBadRequest, string(apperr.CodeBadRequest), "invalid end date")
	}

	report, err := h.generator.Generate(c.UserContext(), companyID, templateID, start, end)
	if err != nil {
		return FromAppError(c, err)
	}
	return JsonOK(c, fiber.StatusOK, report)
}
