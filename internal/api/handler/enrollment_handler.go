package handler

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/zooplan/training-platform/internal/api/middleware"
	"github.com/zooplan/training-platform/internal/apperr"
	"github.com/zooplan/training-platform/internal/model"
	"github.com/zooplan/training-platform/internal/service"
)

type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
	validate    *validator.Validate
}

func NewEnrollmentHandler(enrollments *service.EnrollmentService, validate *validator.Validate) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments, validate: validate}
}

type enrollRequest struct {
	SessionID string `json:"session_id" validate:"required,uuid4"`
	TutorID   string `json:"tutor_id" validate:"required,uuid4"`
	PetID     string `json:"pet_id" validate:"required,uuid4"`
}

type cancelRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// Ответ по записи. Токены наружу не отдаются: они уходят только
// в события для канала уведомлений.
type enrollmentResponse struct {
	ID          uuid.UUID              `json:"id"`
	SessionID   uuid.UUID              `json:"session_id"`
	TutorID     uuid.UUID              `json:"tutor_id"`
	PetID       uuid.UUID              `json:"pet_id"`
	Status      model.EnrollmentStatus `json:"status"`
	EnrolledAt  time.Time              `json:"enrolled_at"`
	CancelledAt *time.Time             `json:"cancelled_at,omitempty"`
}

func toEnrollmentResponse(e *model.Enrollment) enrollmentResponse {
	return enrollmentResponse{
		ID:          e.ID,
		SessionID:   e.SessionID,
		TutorID:     e.TutorID,
		PetID:       e.PetID,
		Status:      e.Status,
		EnrolledAt:  e.EnrolledAt,
		CancelledAt: e.CancelledAt,
	}
}

// Enroll — POST /api/v1/enrollments
func (h *EnrollmentHandler) Enroll(c *fiber.Ctx) error {
	companyID, err := middleware.CompanyID(c)
	if err != nil {
		return err
	}

	var req enrollRequest
	if err := c.BodyParser(&req); err != nil {
		return JsonError(c, fiber.StatusBadRequest, string(apperr.CodeBadRequest), "invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return JsonError(c, fiber.StatusBadRequest, string(apperr.CodeBadRequest), err.Error())
	}

	sessionID, _ := uuid.Parse(req.SessionID)
	tutorID, _ := uuid.Parse(req.TutorID)
	petID, _ := uuid.Parse(req.PetID)

	enr, err := h.enrollments.Enroll(c.UserContext(), companyID, sessionID, tutorID, petID)
	if err != nil {
		return FromAppError(c, err)
	}
	return JsonOK(c, fiber.StatusCreated, toEnrollmentResponse(enr))
}

// Cancel — POST /api/v1/enrollments/:id/cancel
func (h *EnrollmentHandler) Cancel(c *fiber.Ctx) error {
	companyID, err := middleware.CompanyID(c)
	if err != nil {
		return err
	}

	enrollmentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return JsonError(c, fiber.StatusBadRequest, string(apperr.CodeBadRequest), "invalid enrollment id")
	}

	var req cancelRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return JsonError(c, fiber.StatusBadRequest, string(apperr.CodeBadRequest), "invalid request body")
		}
	}

	enr, err := h.enrollments.Cancel(c.UserContext(), companyID, enrollmentID, req.Reason)
	if err != nil {
		return FromAppError(c, err)
	}
	return JsonOK(c, fiber.StatusOK, toEnrollmentResponse(enr))
}

// ConfirmByToken — POST /public/enrollments/confirm/:token
// Токен — единственное полномочие; tenant-контекст не требуется,
// наружу уходят только данные самой записи.
func (h *EnrollmentHandler) ConfirmByToken(c *fiber.Ctx) error {
	token := c.Params("token")
	if token == "" {
		return JsonError(c, fiber.StatusBadRequest, string(apperr.CodeBadRequest), "token is required")
	}

	res, err := h.enrollments.ConfirmByToken(c.UserContext(), token)
	if err != nil {
		return FromAppError(c, err)
	}
	return JsonOK(c, fiber.StatusOK, res)
}

// CancelByToken — POST /public/enrollments/cancel/:token
func (h *EnrollmentHandler) CancelByToken(c *fiber.Ctx) error {
	token := c.Params("token")
	if token == "" {
		return JsonError(c, fiber.StatusBadRequest, string(apperr.CodeBadRequest), "token is required")
	}

	var req cancelRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return JsonError(c, fiber.StatusBadRequest, string(apperr.CodeBadRequest), "invalid request body")
		}
	}

	res, err := h.enrollments.CancelByToken(c.UserContext(), token, req.Reason)
	if err != nil {
		return FromAppError(c, err)
	}
	return JsonOK(c, fiber.StatusOK, res)
}
