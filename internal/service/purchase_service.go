package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/zooplan/training-platform/internal/apperr"
	"github.com/zooplan/training-platform/internal/model"
	"github.com/zooplan/training-platform/internal/repository"
)

// PurchaseService — выдача покупок пакетов.
// Правило «одна активная покупка на пару (tutor, package)» — частичная
// уникальность по status = active; переносимого частичного индекса нет,
// поэтому проверка и вставка выполняются в одной транзакции.
type PurchaseService struct {
	db *gorm.DB

	tutors    repository.TutorRepository
	packages  repository.PackageRepository
	purchases repository.PurchaseRepository

	log *zap.Logger
}

func NewPurchaseService(
	db *gorm.DB,
	tutors repository.TutorRepository,
	packages repository.PackageRepository,
	purchases repository.PurchaseRepository,
	log *zap.Logger,
) *PurchaseService {
	return &PurchaseService{
		db:        db,
		tutors:    tutors,
		packages:  packages,
		purchases: purchases,
		log:       log,
	}
}

// Create выдаёт клиенту покупку пакета. Параллельная выдача второй
// активной покупки той же пары упирается в пересчёт внутри транзакции.
func (s *PurchaseService) Create(ctx context.Context, companyID, tutorID, packageID uuid.UUID) (*model.PackagePurchase, error) {
	if _, err := s.tutors.GetByID(ctx, companyID, tutorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("tutor not found")
		}
		return nil, apperr.Internal("load tutor", err)
	}
	pkg, err := s.packages.GetByID(ctx, companyID, packageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("package not found")
		}
		return nil, apperr.Internal("load package", err)
	}
	if pkg.TotalSessions <= 0 {
		return nil, apperr.BadRequest("package has no sessions")
	}

	p := &model.PackagePurchase{
		ID:            uuid.New(),
		CompanyID:     companyID,
		TutorID:       tutorID,
		PackageID:     packageID,
		TotalSessions: pkg.TotalSessions,
		Status:        model.PurchaseStatusActive,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.purchases.WithTx(tx)
		n, err := repo.CountActive(ctx, companyID, tutorID, packageID)
		if err != nil {
			return err
		}
		if n > 0 {
			return apperr.Conflict("tutor already has an active purchase for this package")
		}
		return repo.Create(ctx, p)
	})
	if err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return nil, ae
		}
		return nil, apperr.Internal("create purchase", err)
	}

	s.log.Info("purchase created",
		zap.String("purchase_id", p.ID.String()),
		zap.Int("total_sessions", p.TotalSessions),
	)

	return p, nil
}
