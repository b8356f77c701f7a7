package model

import (
	"time"

	"github.com/google/uuid"
)

// companies — граница мультитенантности.
// Каждая сущность платформы принадлежит ровно одной компании.
type Company struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	Name string `gorm:"type:varchar(255);not null"`

	IsActive bool `gorm:"not null;default:true;index"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}
