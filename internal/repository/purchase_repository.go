package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/zooplan/training-platform/internal/model"
)

type PurchaseRepository interface {
	// WithTx возвращает репозиторий поверх транзакции.
	WithTx(tx *gorm.DB) PurchaseRepository

	// Единственная активная покупка клиента по пакету.
	ActiveByTutorAndPackage(ctx context.Context, companyID, tutorID, packageID uuid.UUID) (*model.PackagePurchase, error)

	GetByID(ctx context.Context, id uuid.UUID) (*model.PackagePurchase, error)

	// CountActive пересчитывает активные покупки пары (tutor, package).
	// Вызывается внутри той же транзакции, что и вставка: проверка до
	// транзакции оставляет окно гонки.
	CountActive(ctx context.Context, companyID, tutorID, packageID uuid.UUID) (int64, error)

	Create(ctx context.Context, p *model.PackagePurchase) error

	// ConsumeCredit увеличивает used_sessions на 1 guard-условием
	// used_sessions < total_sessions; при исчерпании переводит статус
	// в used. Возвращает false, если кредит взять не удалось.
	ConsumeCredit(ctx context.Context, id uuid.UUID) (bool, error)

	// RefundCredit — точная обратная операция: уменьшает used_sessions
	// с полом 0 и возвращает статус used -> active, если счётчик снова
	// ниже total_sessions.
	RefundCredit(ctx context.Context, id uuid.UUID) (bool, error)
}

type GormPurchaseRepository struct {
	db *gorm.DB
}

func NewGormPurchaseRepository(db *gorm.DB) *GormPurchaseRepository {
	return &GormPurchaseRepository{db: db}
}

func (r *GormPurchaseRepository) WithTx(tx *gorm.DB) PurchaseRepository {
	return &GormPurchaseRepository{db: tx}
}

func (r *GormPurchaseRepository) ActiveByTutorAndPackage(ctx context.Context, companyID, tutorID, packageID uuid.UUID) (*model.PackagePurchase, error) {
	var p model.PackagePurchase
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND tutor_id = ? AND package_id = ? AND status = ?",
			companyID, tutorID, packageID, model.PurchaseStatusActive).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormPurchaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.PackagePurchase, error) {
	var p model.PackagePurchase
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormPurchaseRepository) CountActive(ctx context.Context, companyID, tutorID, packageID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.PackagePurchase{}).
		Where("company_id = ? AND tutor_id = ? AND package_id = ? AND status = ?",
			companyID, tutorID, packageID, model.PurchaseStatusActive).
		Count(&n).Error
	return n, err
}

func (r *GormPurchaseRepository) Create(ctx context.Context, p *model.PackagePurchase) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *GormPurchaseRepository) ConsumeCredit(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.PackagePurchase{}).
		Where("id = ? AND used_sessions < total_sessions", id).
		Updates(map[string]any{
			"used_sessions": gorm.Expr("used_sessions + 1"),
			"status": gorm.Expr(
				"CASE WHEN used_sessions + 1 >= total_sessions THEN ? ELSE status END",
				model.PurchaseStatusUsed,
			),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *GormPurchaseRepository) RefundCredit(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.PackagePurchase{}).
		Where("id = ? AND used_sessions > 0", id).
		Updates(map[string]any{
			"used_sessions": gorm.Expr("used_sessions - 1"),
			"status": gorm.Expr(
				"CASE WHEN status = ? AND used_sessions - 1 < total_sessions THEN ? ELSE status END",
				model.PurchaseStatusUsed, model.PurchaseStatusActive,
			),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
