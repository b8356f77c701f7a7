package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/zooplan/training-platform/internal/model"
)

type TrainerRepository interface {
	// Найти тренера в пределах компании.
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*model.Trainer, error)
}

// Реализация на GORM.
type GormTrainerRepository struct {
	db *gorm.DB
}

func NewGormTrainerRepository(db *gorm.DB) *GormTrainerRepository {
	return &GormTrainerRepository{db: db}
}

func (r *GormTrainerRepository) GetByID(ctx context.Context, companyID, id uuid.UUID) (*model.Trainer, error) {
	var t model.Trainer
	if err := r.db.WithContext(ctx).
		First(&t, "id = ? AND company_id = ?", id, companyID).Error; err != nil {
		return nil, err
	}
	return &t, nil
}
