package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/zooplan/training-platform/internal/model"
)

type AvailabilityRepository interface {
	WithTx(tx *gorm.DB) AvailabilityRepository

	// Активная конфигурация рабочих часов тренера.
	ActiveConfigByTrainer(ctx context.Context, companyID, trainerID uuid.UUID) (*model.AvailabilityConfig, error)

	ConfigByTrainer(ctx context.Context, companyID, trainerID uuid.UUID) (*model.AvailabilityConfig, error)

	SaveConfig(ctx context.Context, cfg *model.AvailabilityConfig) error

	// Исключения тренера внутри интервала дат (границы включительно).
	ListExceptions(ctx context.Context, companyID, trainerID uuid.UUID, from, to time.Time) ([]model.AvailabilityException, error)

	ExceptionExists(ctx context.Context, companyID, trainerID uuid.UUID, date time.Time) (bool, error)

	CreateException(ctx context.Context, e *model.AvailabilityException) error
}

type GormAvailabilityRepository struct {
	db *gorm.DB
}

func NewGormAvailabilityRepository(db *gorm.DB) *GormAvailabilityRepository {
	return &GormAvailabilityRepository{db: db}
}

func (r *GormAvailabilityRepository) WithTx(tx *gorm.DB) AvailabilityRepository {
	return &GormAvailabilityRepository{db: tx}
}

func (r *GormAvailabilityRepository) ActiveConfigByTrainer(ctx context.Context, companyID, trainerID uuid.UUID) (*model.AvailabilityConfig, error) {
	var cfg model.AvailabilityConfig
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND trainer_id = ? AND is_active = ?", companyID, trainerID, true).
		First(&cfg).Error
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *GormAvailabilityRepository) ConfigByTrainer(ctx context.Context, companyID, trainerID uuid.UUID) (*model.AvailabilityConfig, error) {
	var cfg model.AvailabilityConfig
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND trainer_id = ?", companyID, trainerID).
		First(&cfg).Error
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *GormAvailabilityRepository) SaveConfig(ctx context.Context, cfg *model.AvailabilityConfig) error {
	return r.db.WithContext(ctx).Save(cfg).Error
}

func (r *GormAvailabilityRepository) ListExceptions(ctx context.Context, companyID, trainerID uuid.UUID, from, to time.Time) ([]model.AvailabilityException, error) {
	var list []model.AvailabilityException
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND trainer_id = ?", companyID, trainerID).
		Where("date >= ? AND date <= ?", datatypes.Date(from), datatypes.Date(to)).
		Order("date ASC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *GormAvailabilityRepository) ExceptionExists(ctx context.Context, companyID, trainerID uuid.UUID, date time.Time) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.AvailabilityException{}).
		Where("company_id = ? AND trainer_id = ? AND date = ?", companyID, trainerID, datatypes.Date(date)).
		Count(&n).Error
	return n > 0, err
}

func (r *GormAvailabilityRepository) CreateException(ctx context.Context, e *model.AvailabilityException) error {
	return r.db.WithContext(ctx).Create(e).Error
}
