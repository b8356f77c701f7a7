package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Статус сессии.
type SessionStatus string

const (
	SessionStatusActive     SessionStatus = "active"
	SessionStatusScheduled  SessionStatus = "scheduled"
	SessionStatusConfirmed  SessionStatus = "confirmed"
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusCancelled  SessionStatus = "cancelled"
	SessionStatusExpired    SessionStatus = "expired"
	SessionStatusNoShow     SessionStatus = "no_show"
)

// sessions — конкретное датированное занятие с ёмкостью.
// Инвариант: 0 <= available_slots <= max_participants, и
// available_slots + количество активных записей == max_participants.
type Session struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	CompanyID uuid.UUID `gorm:"type:uuid;not null;index"`
	TrainerID uuid.UUID `gorm:"type:uuid;not null;index"`
	PackageID uuid.UUID `gorm:"type:uuid;not null;index"`

	// Обратная ссылка на шаблон; nil для созданных вручную сессий.
	TemplateID *uuid.UUID `gorm:"type:uuid;index"`

	Date datatypes.Date `gorm:"type:date;not null;index"`

	StartTime string `gorm:"type:varchar(5);not null"`
	EndTime   string `gorm:"type:varchar(5);not null"`

	MaxParticipants int `gorm:"not null;default:1"`
	AvailableSlots  int `gorm:"not null;default:1"`

	Status SessionStatus `gorm:"type:varchar(32);not null;default:'scheduled';index"`

	// Неизменяемый внешний ключ корреляции; выдаётся при создании.
	ExternalKey string `gorm:"type:varchar(64);not null;uniqueIndex"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Trainer  *Trainer         `gorm:"foreignKey:TrainerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Package  *Package         `gorm:"foreignKey:PackageID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Template *SessionTemplate `gorm:"foreignKey:TemplateID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}
