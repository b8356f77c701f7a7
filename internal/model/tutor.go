package model

import (
	"time"

	"github.com/google/uuid"
)

// tutors — клиенты, покупающие пакеты и записывающие питомцев на занятия.
type Tutor struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	CompanyID uuid.UUID `gorm:"type:uuid;not null;index"`

	DisplayName  string `gorm:"type:varchar(255);not null"`
	Email        string `gorm:"type:varchar(255)"`
	ContactPhone string `gorm:"type:varchar(32)"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Company *Company `gorm:"foreignKey:CompanyID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`

	Pets []Pet `gorm:"foreignKey:TutorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// pets — подопечные клиента, фактические участники занятий.
type Pet struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	CompanyID uuid.UUID `gorm:"type:uuid;not null;index"`
	TutorID   uuid.UUID `gorm:"type:uuid;not null;index"`

	Name  string `gorm:"type:varchar(255);not null"`
	Breed string `gorm:"type:varchar(255)"`

	Note string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Tutor *Tutor `gorm:"foreignKey:TutorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
