package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/zooplan/training-platform/internal/model"
)

type SessionRepository interface {
	WithTx(tx *gorm.DB) SessionRepository

	GetByID(ctx context.Context, companyID, id uuid.UUID) (*model.Session, error)

	Create(ctx context.Context, s *model.Session) error

	// CreateBatch сохраняет пачку сгенерированных сессий одним вызовом.
	CreateBatch(ctx context.Context, sessions []model.Session) error

	// Занятые сессии тренера на дату для фильтра конфликтов:
	// отменённые и истёкшие не блокируют дату.
	ListBlockingByTrainerAndDate(ctx context.Context, companyID, trainerID uuid.UUID, date time.Time) ([]model.Session, error)

	ListByTrainerRange(ctx context.Context, companyID, trainerID uuid.UUID, from, to time.Time) ([]model.Session, error)

	// ReserveSlot уменьшает available_slots guard-условием
	// available_slots > 0; два конкурентных бронирования не могут
	// забрать последний слот одновременно.
	ReserveSlot(ctx context.Context, id uuid.UUID) (bool, error)

	// ReleaseSlot возвращает слот с потолком max_participants.
	ReleaseSlot(ctx context.Context, id uuid.UUID) (bool, error)

	// ExpireStale переводит просроченные active/scheduled сессии
	// в expired; возвращает количество затронутых строк.
	ExpireStale(ctx context.Context, before time.Time) (int64, error)
}

type GormSessionRepository struct {
	db *gorm.DB
}

func NewGormSessionRepository(db *gorm.DB) *GormSessionRepository {
	return &GormSessionRepository{db: db}
}

func (r *GormSessionRepository) WithTx(tx *gorm.DB) SessionRepository {
	return &GormSessionRepository{db: tx}
}

func (r *GormSessionRepository) GetByID(ctx context.Context, companyID, id uuid.UUID) (*model.Session, error) {
	var s model.Session
	if err := r.db.WithContext(ctx).
		First(&s, "id = ? AND company_id = ?", id, companyID).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormSessionRepository) Create(ctx context.Context, s *model.Session) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *GormSessionRepository) CreateBatch(ctx context.Context, sessions []model.Session) error {
	if len(sessions) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&sessions).Error
}

func (r *GormSessionRepository) ListBlockingByTrainerAndDate(ctx context.Context, companyID, trainerID uuid.UUID, date time.Time) ([]model.Session, error) {
	var list []model.Session
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND trainer_id = ? AND date = ?", companyID, trainerID, datatypes.Date(date)).
		Where("status NOT IN ?", []model.SessionStatus{
			model.SessionStatusCancelled,
			model.SessionStatusExpired,
		}).
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *GormSessionRepository) ListByTrainerRange(ctx context.Context, companyID, trainerID uuid.UUID, from, to time.Time) ([]model.Session, error) {
	var list []model.Session
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND trainer_id = ?", companyID, trainerID).
		Where("date >= ? AND date <= ?", datatypes.Date(from), datatypes.Date(to)).
		Order("date ASC, start_time ASC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *GormSessionRepository) ReserveSlot(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("id = ? AND available_slots > 0", id).
		UpdateColumn("available_slots", gorm.Expr("available_slots - 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *GormSessionRepository) ReleaseSlot(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("id = ? AND available_slots < max_participants", id).
		UpdateColumn("available_slots", gorm.Expr("available_slots + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *GormSessionRepository) ExpireStale(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("date < ?", datatypes.Date(before)).
		Where("status IN ?", []model.SessionStatus{
			model.SessionStatusActive,
			model.SessionStatusScheduled,
		}).
		Update("status", model.SessionStatusExpired)
	return res.RowsAffected, res.Error
}
