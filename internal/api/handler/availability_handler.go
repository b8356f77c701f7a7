package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/zooplan/training-platform/internal/api/middleware"
	"github.com/zooplan/training-platform/internal/apperr"
	"github.com/zooplan/training-platform/internal/model"
	"github.com/zooplan/training-platform/internal/service"
)

type AvailabilityHandler struct {
	availability *service.AvailabilityService
	validate     *validator.Validate
}

func NewAvailabilityHandler(availability *service.AvailabilityService, validate *validator.Validate) *AvailabilityHandler {
	return &AvailabilityHandler{availability: availability, validate: validate}
}

type configRequest struct {
	WorkStart          string  `json:"work_start" validate:"required"`
	WorkEnd            string  `json:"work_end" validate:"required"`
	SlotDurationMin    int     `json:"slot_duration_min" validate:"required,gt=0"`
	LunchStart         *string `json:"lunch_start"`
	LunchEnd           *string `json:"lunch_end"`
	BreakStart         *string `json:"break_start"`
	BreakEnd           *string `json:"break_end"`
	WorkingDays        []int   `json:"working_days" validate:"required,min=1,dive,gte=0,lte=6"`
	TimeZone           string  `json:"time_zone"`
	BufferMin          int     `json:"buffer_min" validate:"gte=0"`
	MaxBookingsPerDay  int     `json:"max_bookings_per_day" validate:"gte=0"`
	AdvanceBookingDays int     `json:"advance_booking_days" validate:"gte=0"`
	MinNoticeHours     int     `json:"min_notice_hours" validate:"gte=0"`
	IsActive           *bool   `json:"is_active"`
}

// SaveConfig — PUT /api/v1/trainers/:id/availability
func (h *AvailabilityHandler) SaveConfig(c *fiber.Ctx) error {
	companyID, err := middleware.CompanyID(c)
	if err != nil {
		return err
	}
	trainerID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return JsonError(c, fiber.StatusBadRequest, string(apperr.CodeBadRequest), "invalid trainer id")
	}

	var req configRequest
	if err := c.BodyParser(&req); err != nil {
		return JsonError(c, fiber.StatusBadRequest, string(apperr.CodeBadRequest), "invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return JsonError(c, fiber.StatusBadRequest, string(apperr.CodeBadRequest), err.Error())
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	cfg, err := h.availability.SaveConfig(c.UserContext(), companyID, trainerID, service.ConfigInput{
		WorkStart:          req.WorkStart,
		WorkEnd:            req.WorkEnd,
		SlotDurationMin:    req.SlotDurationMin,
		LunchStart:         req.LunchStart,
		LunchEnd:           req.LunchEnd,
		BreakStart:         req.BreakStart,
		BreakEnd:           req.BreakEnd,
		WorkingDays:        req.WorkingDays,
		TimeZone:           req.TimeZone,
		BufferMin:          req.BufferMin,
		MaxBookingsPerDay:  req.MaxBookingsPerDay,
		AdvanceBookingDays: req.AdvanceBookingDays,
		MinNoticeHours:     req.MinNoticeHours,
		IsActive:           active,
	})
	if err != nil {
		return FromAppError(c, err)
	}
	return JsonOK(c, fiber.StatusOK, cfg)
}

type exceptionRequest struct {
	Date      string  `json:"date" validate:"required,datetime=2006-01-02"`
	Type      string  `json:"type" validate:"required,oneof=blocked custom_hours"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
	Reason    string  `json:"reason" validate:"max=500"`
}

// CreateException — POST /api/v1/trainers/:id/exceptions
func (h *AvailabilityHandler) CreateException(c *fiber.Ctx) error {
	companyID, err := middleware.CompanyID(c)
	if err != nil {
		return err
	}
	trainerID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return JsonError(c, fiber.StatusBadRequest, string(apperr.CodeBadRequest), "invalid trainer id")
	}

	var req exceptionRequest
	if err := c.BodyParser(&req); err != nil {
		return JsonError(c, fiber.StatusBadRequest, string(apperr.CodeBadRequest), "invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return JsonError(c, fiber.StatusBadRequest, string(apperr.CodeBadRequest), err.Error())
	}

	ex, err := h.availability.CreateException(c.UserContext(), companyID, trainerID, service.ExceptionInput{
		Date:      req.Date,
		Type:      model.ExceptionType(req.Type),
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Reason:    req.Reason,
	})
	if err != nil {
		return FromAppError(c, err)
	}
	return JsonOK(c, fiber.StatusCreated, ex)
}

type templateRequest struct {
	TrainerID       string `json:"trainer_id" validate:"required,uuid4"`
	PackageID       string `json:"package_id" validate:"required,uuid4"`
	Name            string `json:"name" validate:"required,max=255"`
	StartTime       string `json:"start_time" validate:"required"`
	EndTime         string `json:"end_time" validate:"required"`
	Recurrence      string `json:"recurrence" validate:"required,oneof=once daily weekly monthly"`
	Weekdays        []int  `json:"weekdays" validate:"dive,gte=0,lte=6"`
	StartDate       string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate         string `json:"end_date" validate:"required,datetime=2006-01-02"`
	MaxParticipants int    `json:"max_participants" validate:"required,gt=0"`
}

// CreateTemplate — POST /api/v1/templates
func (h *AvailabilityHandler) CreateTemplate(c *fiber.Ctx) error {
	companyID, err := middleware.CompanyID(c)
	if err != nil {
		return err
	}

	var req templateRequest
	if err := c.BodyParser(&req); err != nil {
		return JsonError(c, fiber.StatusBadRequest, string(apperr.CodeBadRequest), "invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return JsonError(c, fiber.StatusBadRequest, string(apperr.CodeBadRequest), err.Error())
	}

	trainerID, _ := uuid.Parse(req.TrainerID)
	packageID, _ := uuid.Parse(req.PackageID)

	tpl, err := h.availability.CreateTemplate(c.UserContext(), companyID, service.TemplateInput{
		TrainerID:       trainerID,
		PackageID:       packageID,
		Name:            req.Name,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		Recurrence:      model.Recurrence(req.Recurrence),
		Weekdays:        req.Weekdays,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		MaxParticipants: req.MaxParticipants,
	})
	if err != nil {
		return FromAppError(c, err)
	}
	return JsonOK(c, fiber.StatusCreated, tpl)
}

// ListTemplates — GET /api/v1/templates?trainer_id=
func (h *AvailabilityHandler) ListTemplates(c *fiber.Ctx) error {
	companyID, err := middleware.CompanyID(c)
	if err != nil {
		return err
	}
	trainerID, err := uuid.Parse(c.Query("trainer_id"))
	if err != nil {
		return JsonError(c, fiber.StatusBadRequest, string(apperr.CodeBadRequest), "invalid trainer_id")
	}

	list, err := h.availability.ListTemplates(c.UserContext(), companyID, trainerID)
	if err != nil {
		return FromAppError(c, err)
	}
	return JsonOK(c, fiber.StatusOK, list)
}
