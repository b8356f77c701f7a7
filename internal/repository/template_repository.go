package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/zooplan/training-platform/internal/model"
)

type TemplateRepository interface {
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*model.SessionTemplate, error)
	Create(ctx context.Context, t *model.SessionTemplate) error
	ListByTrainer(ctx context.Context, companyID, trainerID uuid.UUID) ([]model.SessionTemplate, error)
}

type GormTemplateRepository struct {
	db *gorm.DB
}

func NewGormTemplateRepository(db *gorm.DB) *GormTemplateRepository {
	return &GormTemplateRepository{db: db}
}

func (r *GormTemplateRepository) GetByID(ctx context.Context, companyID, id uuid.UUID) (*model.SessionTemplate, error) {
	var t model.SessionTemplate
	if err := r.db.WithContext(ctx).
		First(&t, "id = ? AND company_id = ?", id, companyID).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *GormTemplateRepository) Create(ctx context.Context, t *model.SessionTemplate) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *GormTemplateRepository) ListByTrainer(ctx context.Context, companyID, trainerID uuid.UUID) ([]model.SessionTemplate, error) {
	var list []model.SessionTemplate
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND trainer_id = ?", companyID, trainerID).
		Order("created_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
