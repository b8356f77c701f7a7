package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/zooplan/training-platform/internal/model"
)

type TutorRepository interface {
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*model.Tutor, error)
}

type PetRepository interface {
	GetByID(ctx context.Context, companyID, id uuid.UUID) (*model.Pet, error)
}

type GormTutorRepository struct {
	db *gorm.DB
}

func NewGormTutorRepository(db *gorm.DB) *GormTutorRepository {
	return &GormTutorRepository{db: db}
}

func (r *GormTutorRepository) GetByID(ctx context.Context, companyID, id uuid.UUID) (*model.Tutor, error) {
	var t model.Tutor
	if err := r.db.WithContext(ctx).
		First(&t, "id = ? AND company_id = ?", id, companyID).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

type GormPetRepository struct {
	db *gorm.DB
}

func NewGormPetRepository(db *gorm.DB) *GormPetRepository {
	return &GormPetRepository{db: db}
}

func (r *GormPetRepository) GetByID(ctx context.Context, companyID, id uuid.UUID) (*model.Pet, error) {
	var p model.Pet
	if err := r.db.WithContext(ctx).
		First(&p, "id = ? AND company_id = ?", id, companyID).Error; err != nil {
		return nil, err
	}
	return &p, nil
}
