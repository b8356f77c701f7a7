package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/zooplan/training-platform/internal/model"
)

type EnrollmentRepository interface {
	WithTx(tx *gorm.DB) EnrollmentRepository

	Create(ctx context.Context, e *model.Enrollment) error

	GetByID(ctx context.Context, companyID, id uuid.UUID) (*model.Enrollment, error)

	// Публичные операции: токен сам является полномочием,
	// tenant-проверки здесь нет намеренно.
	GetByConfirmationToken(ctx context.Context, token string) (*model.Enrollment, error)
	GetByCancellationToken(ctx context.Context, token string) (*model.Enrollment, error)

	// Есть ли у питомца действующая запись на эту сессию.
	// Отменённая запись не мешает записаться снова.
	ActiveExistsForPet(ctx context.Context, sessionID, petID uuid.UUID) (bool, error)

	CountActiveBySession(ctx context.Context, sessionID uuid.UUID) (int64, error)

	MarkConfirmed(ctx context.Context, id uuid.UUID, at time.Time) error

	// MarkCancelled переводит запись в cancelled guard-условием
	// «статус ещё не терминальный». false — переход уже не возможен;
	// конкурентная двойная отмена не обратит счётчики дважды.
	MarkCancelled(ctx context.Context, id uuid.UUID, at time.Time, reason string) (bool, error)
}

type GormEnrollmentRepository struct {
	db *gorm.DB
}

func NewGormEnrollmentRepository(db *gorm.DB) *GormEnrollmentRepository {
	return &GormEnrollmentRepository{db: db}
}

func (r *GormEnrollmentRepository) WithTx(tx *gorm.DB) EnrollmentRepository {
	return &GormEnrollmentRepository{db: tx}
}

func (r *GormEnrollmentRepository) Create(ctx context.Context, e *model.Enrollment) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *GormEnrollmentRepository) GetByID(ctx context.Context, companyID, id uuid.UUID) (*model.Enrollment, error) {
	var e model.Enrollment
	if err := r.db.WithContext(ctx).
		First(&e, "id = ? AND company_id = ?", id, companyID).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *GormEnrollmentRepository) GetByConfirmationToken(ctx context.Context, token string) (*model.Enrollment, error) {
	var e model.Enrollment
	if err := r.db.WithContext(ctx).
		First(&e, "confirmation_token = ?", token).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *GormEnrollmentRepository) GetByCancellationToken(ctx context.Context, token string) (*model.Enrollment, error) {
	var e model.Enrollment
	if err := r.db.WithContext(ctx).
		First(&e, "cancellation_token = ?", token).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *GormEnrollmentRepository) ActiveExistsForPet(ctx context.Context, sessionID, petID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Where("session_id = ? AND pet_id = ? AND status = ?",
			sessionID, petID, model.EnrollmentStatusEnrolled).
		Count(&n).Error
	return n > 0, err
}

func (r *GormEnrollmentRepository) CountActiveBySession(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Where("session_id = ? AND status IN ?", sessionID, []model.EnrollmentStatus{
			model.EnrollmentStatusEnrolled,
			model.EnrollmentStatusConfirmed,
			model.EnrollmentStatusCheckedIn,
		}).
		Count(&n).Error
	return n, err
}

func (r *GormEnrollmentRepository) MarkConfirmed(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       model.EnrollmentStatusConfirmed,
			"confirmed_at": at,
		}).Error
}

func (r *GormEnrollmentRepository) MarkCancelled(ctx context.Context, id uuid.UUID, at time.Time, reason string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Where("id = ? AND status NOT IN ?", id, []model.EnrollmentStatus{
			model.EnrollmentStatusCancelled,
			model.EnrollmentStatusCheckedIn,
			model.EnrollmentStatusNoShow,
		}).
		Updates(map[string]any{
			"status":              model.EnrollmentStatusCancelled,
			"cancelled_at":        at,
			"cancellation_reason": reason,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
