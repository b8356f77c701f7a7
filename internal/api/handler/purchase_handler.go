package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/zooplan/training-platform/internal/api/middleware"
	"github.com/zooplan/training-platform/internal/apperr"
	"github.com/zooplan/training-platform/internal/service"
)

type PurchaseHandler struct {
	purchases *service.PurchaseService
	validate  *validator.Validate
}

func NewPurchaseHandler(purchases *service.PurchaseService, validate *validator.Validate) *PurchaseHandler {
	return &PurchaseHandler{purchases: purchases, validate: validate}
}

type purchaseRequest struct {
	TutorID   string `json:"tutor_id" validate:"required,uuid4"`
	PackageID string `json:"package_id" validate:"required,uuid4"`
}

// Create — POST /api/v1/purchases
func (h *PurchaseHandler) Create(c *fiber.Ctx) error {
	companyID, err := middleware.CompanyID(c)
	if err != nil {
		return err
	}

	var req purchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return JsonError(c, fiber.StatusBadRequest, string(apperr.CodeBadRequest), "invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return JsonError(c, fiber.StatusBadRequest, string(apperr.CodeBadRequest), err.Error())
	}

	tutorID, _ := uuid.Parse(req.TutorID)
	packageID, _ := uuid.Parse(req.PackageID)

	p, err := h.purchases.Create(c.UserContext(), companyID, tutorID, packageID)
	if err != nil {
		return FromAppError(c, err)
	}
	return JsonOK(c, fiber.StatusCreated, p)
}
