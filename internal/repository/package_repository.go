package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/zooplan/training-platform/internal/model"
)

type PackageRepository interface {
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*model.Package, error)
	Create(ctx context.Context, pkg *model.Package) error
}

type GormPackageRepository struct {
	db *gorm.DB
}

func NewGormPackageRepository(db *gorm.DB) *GormPackageRepository {
	return &GormPackageRepository{db: db}
}

func (r *GormPackageRepository) GetByID(ctx context.Context, companyID, id uuid.UUID) (*model.Package, error) {
	var p model.Package
	if err := r.db.WithContext(ctx).
		First(&p, "id = ? AND company_id = ?", id, companyID).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormPackageRepository) Create(ctx context.Context, pkg *model.Package) error {
	return r.db.WithContext(ctx).Create(pkg).Error
}
