package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/zooplan/training-platform/internal/model"
)

type EventRepository interface {
	WithTx(tx *gorm.DB) EventRepository

	// Create пишет строку журнала; вызывается в транзакции операции.
	Create(ctx context.Context, e *model.Event) error
}

type GormEventRepository struct {
	db *gorm.DB
}

func NewGormEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

func (r *GormEventRepository) WithTx(tx *gorm.DB) EventRepository {
	return &GormEventRepository{db: tx}
}

func (r *GormEventRepository) Create(ctx context.Context, e *model.Event) error {
	return r.db.WithContext(ctx).Create(e).Error
}
