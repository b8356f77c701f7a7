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

type SessionHandler struct {
	sessions *service.SessionService
	validate *validator.Validate
}

func NewSessionHandler(sessions *service.SessionService, validate *validator.Validate) *SessionHandler {
	return &SessionHandler{sessions: sessions, validate: validate}
}

type sessionRequest struct {
	TrainerID       string `json:"trainer_id" validate:"required,uuid4"`
	PackageID       string `json:"package_id" validate:"required,uuid4"`
	Date            string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime       string `json:"start_time" validate:"required"`
	EndTime         string `json:"end_time" validate:"required"`
	MaxParticipants int    `json:"max_participants" validate:"required,gt=0"`
}

// Create — POST /api/v1/sessions, одиночная сессия вне шаблонов.
func (h *SessionHandler) Create(c *fiber.Ctx) error {
	companyID, err := middleware.CompanyID(c)
	if err != nil {
		return err
	}

	var req sessionRequest
	if err := c.BodyParser(&req); err != nil {
		return JsonError(c, fiber.StatusBadRequest, string(apperr.CodeBadRequest), "invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return JsonError(c, fiber.StatusBadRequest, string(apperr.CodeBadRequest), err.Error())
	}

	trainerID, _ := uuid.Parse(req.TrainerID)
	packageID, _ := uuid.Parse(req.PackageID)

	ses, err := h.sessions.Create(c.UserContext(), companyID, service.SessionInput{
		TrainerID:       trainerID,
		PackageID:       packageID,
		Date:            req.Date,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		MaxParticipants: req.MaxParticipants,
	})
	if err != nil {
		return FromAppError(c, err)
	}
	return JsonOK(c, fiber.StatusCreated, ses)
}

// List — GET /api/v1/sessions?trainer_id=&from=&to=&page=&page_size=
func (h *SessionHandler) List(c *fiber.Ctx) error {
	companyID, err := middleware.CompanyID(c)
	if err != nil {
		return err
	}
	trainerID, err := uuid.Parse(c.Query("trainer_id"))
	if err != nil {
		return JsonError(c, fiber.StatusBadRequest, string(apperr.CodeBadRequest), "invalid trainer_id")
	}
	from, err := schedule.ParseDate(c.Query("from"))
	if err != nil {
		return JsonError(c, fiber.StatusBadRequest, string(apperr.CodeBadRequest), "invalid from date")
	}
	to, err := schedule.ParseDate(c.Query("to"))
	if err != nil {
		return JsonError(c, fiber.StatusBadRequest, string(apperr.CodeBadRequest), "invalid to date")
	}

	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("page_size", 0)

	result, err := h.sessions.List(c.UserContext(), companyID, trainerID, from, to, page, pageSize)
	if err != nil {
		return FromAppError(c, err)
	}
	return JsonOK(c, fiber.StatusOK, result)
}
